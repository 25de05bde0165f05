package pipeline

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/unalkalkan/Prompter/internal/parser"
	"github.com/unalkalkan/Prompter/internal/render"
	"github.com/unalkalkan/Prompter/internal/segmentation"
	"github.com/unalkalkan/Prompter/pkg/types"
)

// ProgressCallback is called after each script line is segmented
type ProgressCallback func(segmentedLines, totalLines int)

// Builder turns a raw script into a slide deck: parse, segment, render
type Builder struct {
	parser parser.Parser
	logger *slog.Logger
	now    func() time.Time
}

// NewBuilder creates a deck builder. A nil logger discards log output.
func NewBuilder(p parser.Parser, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Builder{
		parser: p,
		logger: logger,
		now:    time.Now,
	}
}

// Build generates a deck from script using the given word budget
func (b *Builder) Build(ctx context.Context, title string, script []byte, th types.Thresholds) (*types.Deck, error) {
	return b.BuildWithProgress(ctx, title, script, th, nil)
}

// BuildWithProgress generates a deck and reports per-line progress
func (b *Builder) BuildWithProgress(ctx context.Context, title string, script []byte, th types.Thresholds, progressCb ProgressCallback) (*types.Deck, error) {
	segmenter, err := segmentation.NewSegmenter(th)
	if err != nil {
		return nil, err
	}

	lines, err := b.parser.Parse(ctx, script)
	if err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		segmenter.SegmentLine(line)
		if progressCb != nil {
			progressCb(i+1, len(lines))
		}
	}

	createdAt := b.now().UTC()
	deck := &types.Deck{
		ID:         NewDeckID(createdAt),
		Title:      title,
		Thresholds: th,
		TotalLines: len(lines),
		Slides:     render.BuildSlides(lines),
		CreatedAt:  createdAt,
	}

	b.logger.InfoContext(ctx, "deck built",
		"deck_id", deck.ID,
		"lines", deck.TotalLines,
		"slides", len(deck.Slides),
		"ideal", th.Ideal,
		"maximum", th.Maximum,
	)

	return deck, nil
}

// SegmentText segments a single raw line, returning its speaker tag and
// finalized fragments. Empty lines yield no fragments.
func SegmentText(raw string, th types.Thresholds) (string, []string, error) {
	segmenter, err := segmentation.NewSegmenter(th)
	if err != nil {
		return "", nil, err
	}
	line, ok := parser.NewScriptParser().ParseLine(raw)
	if !ok {
		return "", []string{}, nil
	}
	return line.Speaker, segmenter.SegmentLine(line), nil
}

// NewDeckID returns a lexically sortable deck identifier
func NewDeckID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}
