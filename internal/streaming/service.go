package streaming

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/unalkalkan/Prompter/internal/deck"
	"github.com/unalkalkan/Prompter/pkg/types"
)

// Service streams the slides of stored decks to prompter clients
type Service struct {
	deckRepo deck.Repository
}

// NewService creates a new streaming service
func NewService(deckRepo deck.Repository) *Service {
	return &Service{
		deckRepo: deckRepo,
	}
}

// StreamItem represents a single item in the NDJSON stream
type StreamItem struct {
	types.Slide
	DeckID string `json:"deck_id"`
	Total  int    `json:"total"`
	Last   bool   `json:"last"`
}

// StreamSlides returns the slides numbered after the given cursor. A cursor
// of 0 starts from the first slide; a cursor past the end yields nothing.
func (s *Service) StreamSlides(ctx context.Context, deckID string, after int) ([]StreamItem, error) {
	if after < 0 {
		return nil, fmt.Errorf("invalid cursor: %d", after)
	}

	d, err := s.deckRepo.GetDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}

	total := len(d.Slides)
	items := make([]StreamItem, 0)
	for _, slide := range d.Slides {
		if slide.Number <= after {
			continue
		}
		items = append(items, StreamItem{
			Slide:  slide,
			DeckID: d.ID,
			Total:  total,
			Last:   slide.Number == total,
		})
	}

	return items, nil
}

// WriteNDJSON writes one JSON object per line
func WriteNDJSON(w io.Writer, items []StreamItem) error {
	enc := json.NewEncoder(w)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("failed to marshal item: %w", err)
		}
	}
	return nil
}
