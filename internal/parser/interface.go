package parser

import (
	"context"

	"github.com/unalkalkan/Prompter/pkg/types"
)

// Parser defines the interface for script parsers
type Parser interface {
	// Parse splits a script into preprocessed lines, skipping empty ones
	Parse(ctx context.Context, data []byte) ([]*types.Line, error)

	// SupportedFormats returns the file formats this parser supports
	SupportedFormats() []string
}

// Factory creates parsers for different formats
type Factory interface {
	// GetParser returns a parser for the given format
	GetParser(format string) (Parser, error)
}
