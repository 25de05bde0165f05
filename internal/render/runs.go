package render

import (
	"strings"

	"github.com/unalkalkan/Prompter/pkg/types"
)

// Tokenize splits a finalized fragment into default and action runs.
//
// An action run spans from "(" to the first ")" after it, inclusive. When a
// "(" has no matching ")", the remaining text (including anything before the
// "(") is emitted as one default run.
func Tokenize(fragment string) []types.Run {
	var runs []types.Run
	rest := fragment

	for rest != "" {
		open := strings.Index(rest, "(")
		if open < 0 {
			runs = append(runs, types.Run{Kind: types.RunDefault, Text: rest})
			break
		}

		closeOff := strings.Index(rest[open:], ")")
		if closeOff < 0 {
			runs = append(runs, types.Run{Kind: types.RunDefault, Text: rest})
			break
		}
		end := open + closeOff + 1

		if open > 0 {
			runs = append(runs, types.Run{Kind: types.RunDefault, Text: rest[:open]})
		}
		runs = append(runs, types.Run{Kind: types.RunAction, Text: rest[open:end]})
		rest = rest[end:]
	}

	return runs
}

// BuildSlides produces one slide per fragment, in line order. Slides of a
// line with a speaker tag start with a speaker run.
func BuildSlides(lines []*types.Line) []types.Slide {
	slides := make([]types.Slide, 0)
	for _, line := range lines {
		for _, fragment := range line.Fragments {
			runs := make([]types.Run, 0, 4)
			if line.Speaker != "" {
				runs = append(runs, types.Run{Kind: types.RunSpeaker, Text: line.Speaker})
			}
			runs = append(runs, Tokenize(fragment)...)

			slides = append(slides, types.Slide{
				Number:  len(slides) + 1,
				Line:    line.Number,
				Speaker: line.Speaker,
				Text:    fragment,
				Runs:    runs,
			})
		}
	}
	return slides
}
