package parser

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/unalkalkan/Prompter/pkg/types"
)

// ErrEmptyScript is returned when a script has no usable lines
var ErrEmptyScript = errors.New("no content found in script")

const (
	// maxLineBytes bounds a single script line; pasted paragraphs can be long
	maxLineBytes = 1 << 20
)

// ScriptParser parses plain-text teleprompter scripts, one logical line per
// text line
type ScriptParser struct{}

// NewScriptParser creates a new script parser
func NewScriptParser() *ScriptParser {
	return &ScriptParser{}
}

// Parse preprocesses every line of a script
func (p *ScriptParser) Parse(ctx context.Context, data []byte) ([]*types.Line, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lines := make([]*types.Line, 0)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		if lineNumber%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line, ok := p.ParseLine(scanner.Text())
		if !ok {
			continue
		}
		line.Number = lineNumber
		lines = append(lines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading script: %w", err)
	}

	if len(lines) == 0 {
		return nil, ErrEmptyScript
	}

	return lines, nil
}

// ParseLine preprocesses a single raw line. It reports false for lines that
// are empty once cleaned.
func (p *ScriptParser) ParseLine(raw string) (*types.Line, bool) {
	text := CleanLine(raw)
	if text == "" {
		return nil, false
	}

	normalized, hasEnd := Normalize(text)
	speaker, message := SplitSpeaker(normalized)

	return &types.Line{
		Speaker:      speaker,
		Message:      message,
		HasEndMarker: hasEnd,
	}, true
}

// SupportedFormats returns the formats this parser supports
func (p *ScriptParser) SupportedFormats() []string {
	return []string{"txt", "text"}
}
