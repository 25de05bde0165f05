package parser

import (
	"fmt"
	"strings"
)

// DefaultFactory creates parsers for supported formats
type DefaultFactory struct {
	parsers map[string]Parser
}

// NewFactory creates a new parser factory with default parsers
func NewFactory() Factory {
	f := &DefaultFactory{
		parsers: make(map[string]Parser),
	}

	f.registerParser(NewScriptParser())

	return f
}

// registerParser registers a parser for its supported formats
func (f *DefaultFactory) registerParser(p Parser) {
	for _, format := range p.SupportedFormats() {
		f.parsers[strings.ToLower(format)] = p
	}
}

// GetParser returns a parser for the given format.
// A leading dot is ignored so file extensions can be passed directly.
func (f *DefaultFactory) GetParser(format string) (Parser, error) {
	format = strings.TrimPrefix(strings.ToLower(format), ".")
	parser, ok := f.parsers[format]
	if !ok {
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	return parser, nil
}
