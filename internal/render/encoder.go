package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/unalkalkan/Prompter/pkg/types"
)

// ErrUnsupportedFormat is returned for output formats without an encoder
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Encoder materializes a deck into a presentation format
type Encoder interface {
	// Encode writes the deck to w
	Encode(w io.Writer, deck *types.Deck) error

	// ContentType returns the MIME type of the encoded output
	ContentType() string

	// Extension returns the file extension, without the dot
	Extension() string

	// Binary reports whether the output is unsafe to print on a terminal
	Binary() bool
}

var encoders = map[string]func() Encoder{
	"txt":    func() Encoder { return TextEncoder{} },
	"ndjson": func() Encoder { return NDJSONEncoder{} },
	"html":   func() Encoder { return HTMLEncoder{} },
	"zip":    func() Encoder { return ArchiveEncoder{} },
}

// NewEncoder returns the encoder for format
func NewEncoder(format string) (Encoder, error) {
	newFn, ok := encoders[strings.ToLower(strings.TrimPrefix(format, "."))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnsupportedFormat, format, strings.Join(Formats(), ", "))
	}
	return newFn(), nil
}

// Formats returns the supported output formats in sorted order
func Formats() []string {
	names := make([]string, 0, len(encoders))
	for name := range encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TextEncoder writes one block per slide: "[n] SPEAKER: text"
type TextEncoder struct{}

func (TextEncoder) Encode(w io.Writer, deck *types.Deck) error {
	for i, slide := range deck.Slides {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		var err error
		if slide.Speaker != "" {
			_, err = fmt.Fprintf(w, "[%d] %s: %s\n", slide.Number, slide.Speaker, slide.Text)
		} else {
			_, err = fmt.Fprintf(w, "[%d] %s\n", slide.Number, slide.Text)
		}
		if err != nil {
			return fmt.Errorf("failed to write slide %d: %w", slide.Number, err)
		}
	}
	return nil
}

func (TextEncoder) ContentType() string { return "text/plain; charset=utf-8" }
func (TextEncoder) Extension() string   { return "txt" }
func (TextEncoder) Binary() bool        { return false }

// NDJSONEncoder writes one JSON object per slide
type NDJSONEncoder struct{}

func (NDJSONEncoder) Encode(w io.Writer, deck *types.Deck) error {
	enc := json.NewEncoder(w)
	for _, slide := range deck.Slides {
		if err := enc.Encode(slide); err != nil {
			return fmt.Errorf("failed to marshal slide %d: %w", slide.Number, err)
		}
	}
	return nil
}

func (NDJSONEncoder) ContentType() string { return "application/x-ndjson" }
func (NDJSONEncoder) Extension() string   { return "ndjson" }
func (NDJSONEncoder) Binary() bool        { return false }
