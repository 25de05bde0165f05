package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/unalkalkan/Prompter/pkg/types"
)

// PreviewStyles holds the terminal styles for each run kind
type PreviewStyles struct {
	Speaker lipgloss.Style
	Action  lipgloss.Style
	Default lipgloss.Style
	Frame   lipgloss.Style
	Caption lipgloss.Style
}

// DefaultPreviewStyles mirrors the studio colors on a dark terminal
func DefaultPreviewStyles() PreviewStyles {
	return PreviewStyles{
		Speaker: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		Action:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Default: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(1, 2).
			Align(lipgloss.Center),
		Caption: lipgloss.NewStyle().Faint(true),
	}
}

// StyleRun renders a single run with the style for its kind
func (s PreviewStyles) StyleRun(run types.Run) string {
	switch run.Kind {
	case types.RunSpeaker:
		return s.Speaker.Render(run.Text)
	case types.RunAction:
		return s.Action.Render(run.Text)
	default:
		return s.Default.Render(run.Text)
	}
}

// Preview writes every slide of the deck as a framed, styled box of the given
// width. The speaker tag sits on its own line above the text.
func Preview(w io.Writer, deck *types.Deck, width int, styles PreviewStyles) error {
	frame := styles.Frame
	if width > 0 {
		frame = frame.Width(width)
	}

	for _, slide := range deck.Slides {
		var b strings.Builder
		for _, run := range slide.Runs {
			b.WriteString(styles.StyleRun(run))
			if run.Kind == types.RunSpeaker {
				b.WriteString("\n")
			}
		}

		caption := styles.Caption.Render(fmt.Sprintf("slide %d · line %d", slide.Number, slide.Line))
		if _, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, caption, frame.Render(b.String()))); err != nil {
			return fmt.Errorf("failed to write preview: %w", err)
		}
	}
	return nil
}
