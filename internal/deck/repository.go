package deck

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/unalkalkan/Prompter/internal/storage"
	"github.com/unalkalkan/Prompter/pkg/types"
)

var (
	// ErrNotFound is returned when a deck or one of its artifacts is not stored
	ErrNotFound = errors.New("deck not found")

	// ErrInvalidID is returned for IDs that cannot name a deck directory
	ErrInvalidID = errors.New("invalid deck id")
)

const (
	rootDir      = "decks"
	metadataFile = "deck.json"
)

// Repository persists generated decks and their encoded artifacts.
// Source scripts are never stored.
type Repository interface {
	// SaveDeck stores deck metadata and slides
	SaveDeck(ctx context.Context, deck *types.Deck) error

	// GetDeck retrieves a deck by ID
	GetDeck(ctx context.Context, deckID string) (*types.Deck, error)

	// ListDecks returns summaries of all stored decks, newest first
	ListDecks(ctx context.Context) ([]types.DeckSummary, error)

	// DeleteDeck removes a deck and every artifact stored for it
	DeleteDeck(ctx context.Context, deckID string) error

	// SaveArtifact stores an encoded artifact of a deck
	SaveArtifact(ctx context.Context, deckID, format string, data io.Reader) error

	// GetArtifact retrieves an encoded artifact of a deck
	GetArtifact(ctx context.Context, deckID, format string) (io.ReadCloser, error)
}

// StorageRepository implements Repository using a storage adapter
type StorageRepository struct {
	storage storage.Adapter
}

// NewRepository creates a new deck repository
func NewRepository(storageAdapter storage.Adapter) Repository {
	return &StorageRepository{
		storage: storageAdapter,
	}
}

func deckDir(deckID string) string {
	return path.Join(rootDir, deckID)
}

func artifactPath(deckID, format string) string {
	return path.Join(deckDir(deckID), "deck."+format)
}

// validID rejects IDs that would address another deck's directory
func validID(deckID string) error {
	if deckID == "" || strings.ContainsAny(deckID, `/\.`) {
		return fmt.Errorf("%w: %q", ErrInvalidID, deckID)
	}
	return nil
}

// SaveDeck stores deck metadata and slides
func (r *StorageRepository) SaveDeck(ctx context.Context, deck *types.Deck) error {
	if err := validID(deck.ID); err != nil {
		return err
	}

	data, err := json.Marshal(deck)
	if err != nil {
		return fmt.Errorf("failed to marshal deck: %w", err)
	}

	return r.storage.Put(ctx, path.Join(deckDir(deck.ID), metadataFile), bytes.NewReader(data))
}

// GetDeck retrieves a deck by ID
func (r *StorageRepository) GetDeck(ctx context.Context, deckID string) (*types.Deck, error) {
	if err := validID(deckID); err != nil {
		return nil, err
	}

	reader, err := r.storage.Get(ctx, path.Join(deckDir(deckID), metadataFile))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, deckID)
		}
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}
	defer reader.Close()

	var deck types.Deck
	if err := json.NewDecoder(reader).Decode(&deck); err != nil {
		return nil, fmt.Errorf("failed to decode deck: %w", err)
	}

	return &deck, nil
}

// ListDecks returns summaries of all stored decks, newest first
func (r *StorageRepository) ListDecks(ctx context.Context) ([]types.DeckSummary, error) {
	paths, err := r.storage.List(ctx, rootDir+"/")
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}

	summaries := make([]types.DeckSummary, 0)
	for _, p := range paths {
		if path.Base(p) != metadataFile {
			continue
		}

		deck, err := r.GetDeck(ctx, path.Base(path.Dir(p)))
		if err != nil {
			continue // Skip decks that can't be read
		}
		summaries = append(summaries, deck.Summary())
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})

	return summaries, nil
}

// DeleteDeck removes a deck and every artifact stored for it
func (r *StorageRepository) DeleteDeck(ctx context.Context, deckID string) error {
	if err := validID(deckID); err != nil {
		return err
	}

	paths, err := r.storage.List(ctx, deckDir(deckID)+"/")
	if err != nil {
		return fmt.Errorf("failed to list deck files: %w", err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, deckID)
	}

	for _, p := range paths {
		if err := r.storage.Delete(ctx, p); err != nil {
			return fmt.Errorf("failed to delete %s: %w", p, err)
		}
	}
	return nil
}

// SaveArtifact stores an encoded artifact of a deck
func (r *StorageRepository) SaveArtifact(ctx context.Context, deckID, format string, data io.Reader) error {
	if err := validID(deckID); err != nil {
		return err
	}
	return r.storage.Put(ctx, artifactPath(deckID, format), data)
}

// GetArtifact retrieves an encoded artifact of a deck
func (r *StorageRepository) GetArtifact(ctx context.Context, deckID, format string) (io.ReadCloser, error) {
	if err := validID(deckID); err != nil {
		return nil, err
	}

	reader, err := r.storage.Get(ctx, artifactPath(deckID, format))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s (%s)", ErrNotFound, deckID, format)
		}
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}
	return reader, nil
}
