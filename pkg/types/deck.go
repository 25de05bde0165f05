package types

import "time"

// Thresholds holds the word-count budget for a single slide
type Thresholds struct {
	Ideal   int `yaml:"ideal" toml:"ideal" json:"ideal"`       // soft target per slide
	Maximum int `yaml:"maximum" toml:"maximum" json:"maximum"` // hard ceiling per slide
}

// Line represents one logical line of a script after preprocessing
type Line struct {
	Number       int      `json:"number"`            // 1-based line number in the source script
	Speaker      string   `json:"speaker,omitempty"` // Leading all-caps speaker tag, if any
	Message      string   `json:"message"`           // Normalized message body fed to the segmenter
	HasEndMarker bool     `json:"has_end_marker"`    // Message contained a sentence end ("//")
	Fragments    []string `json:"fragments"`         // Finalized slide texts, set by the segmenter
}

// RunKind classifies a styled run of slide text
type RunKind string

const (
	RunSpeaker RunKind = "speaker"
	RunAction  RunKind = "action"
	RunDefault RunKind = "default"
)

// Run is a contiguous piece of slide text rendered in a single style
type Run struct {
	Kind RunKind `json:"kind"`
	Text string  `json:"text"`
}

// Slide is the text assigned to one teleprompter slide
type Slide struct {
	Number  int    `json:"number"`            // 1-based position in the deck
	Line    int    `json:"line"`              // Source line number
	Speaker string `json:"speaker,omitempty"` // Speaker tag repeated on every slide of the line
	Text    string `json:"text"`              // Finalized fragment text
	Runs    []Run  `json:"runs"`
}

// Deck represents a generated slide deck
type Deck struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Thresholds Thresholds `json:"thresholds"`
	TotalLines int        `json:"total_lines"`
	Slides     []Slide    `json:"slides"`
	CreatedAt  time.Time  `json:"created_at"`
	Formats    []string   `json:"formats,omitempty"` // Encoded artifacts stored for this deck
}

// DeckSummary is the listing view of a stored deck
type DeckSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	TotalSlides int       `json:"total_slides"`
	CreatedAt   time.Time `json:"created_at"`
}

// Summary returns the listing view of the deck
func (d *Deck) Summary() DeckSummary {
	return DeckSummary{
		ID:          d.ID,
		Title:       d.Title,
		TotalSlides: len(d.Slides),
		CreatedAt:   d.CreatedAt,
	}
}
