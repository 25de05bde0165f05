package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unalkalkan/Prompter/internal/parser"
	"github.com/unalkalkan/Prompter/internal/segmentation"
	"github.com/unalkalkan/Prompter/pkg/types"
)

const sampleScript = `HOST Halo pemirsa. (SENYUM) Apa kabar?

[source: 4] GUEST Baik, terima kasih.
HOST one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen sixteen seventeen eighteen nineteen.
`

func TestBuilder_Build(t *testing.T) {
	b := NewBuilder(parser.NewScriptParser(), nil)
	fixed := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return fixed }

	deck, err := b.Build(context.Background(), "Pagi", []byte(sampleScript), segmentation.DefaultThresholds())
	require.NoError(t, err)

	assert.Equal(t, "Pagi", deck.Title)
	assert.Equal(t, 3, deck.TotalLines)
	assert.Equal(t, fixed, deck.CreatedAt)

	id, err := ulid.Parse(deck.ID)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(fixed), id.Time())

	texts := make([]string, len(deck.Slides))
	for i, s := range deck.Slides {
		texts[i] = s.Text
	}
	assert.Equal(t, []string{
		"Halo pemirsa / (SENYUM) Apa kabar? //",
		"Baik / terima kasih //",
		"one two three four five six seven eight nine ten /",
		"eleven twelve thirteen fourteen fifteen sixteen seventeen eighteen nineteen //",
	}, texts)

	assert.Equal(t, "HOST", deck.Slides[0].Speaker)
	assert.Equal(t, "GUEST", deck.Slides[1].Speaker)
	assert.Equal(t, 3, deck.Slides[1].Line)
	assert.Equal(t, 4, deck.Slides[3].Number)
}

func TestBuilder_Progress(t *testing.T) {
	b := NewBuilder(parser.NewScriptParser(), nil)

	var calls []int
	_, err := b.BuildWithProgress(context.Background(), "", []byte(sampleScript), segmentation.DefaultThresholds(), func(done, total int) {
		assert.Equal(t, 3, total)
		calls = append(calls, done)
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, calls)
}

func TestBuilder_Errors(t *testing.T) {
	b := NewBuilder(parser.NewScriptParser(), nil)

	_, err := b.Build(context.Background(), "", []byte("  \n\n"), segmentation.DefaultThresholds())
	assert.True(t, errors.Is(err, parser.ErrEmptyScript))

	_, err = b.Build(context.Background(), "", []byte(sampleScript), types.Thresholds{Ideal: 5, Maximum: 2})
	assert.ErrorIs(t, err, segmentation.ErrInvalidThresholds)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = b.Build(ctx, "", []byte(strings.Repeat("HOST halo\n", 10)), segmentation.DefaultThresholds())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSegmentText(t *testing.T) {
	speaker, fragments, err := SegmentText("HOST Halo pemirsa, apa kabar?", segmentation.DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, "HOST", speaker)
	assert.Equal(t, []string{"Halo pemirsa / apa kabar?"}, fragments)

	speaker, fragments, err = SegmentText("   ", segmentation.DefaultThresholds())
	require.NoError(t, err)
	assert.Empty(t, speaker)
	assert.Empty(t, fragments)
}
