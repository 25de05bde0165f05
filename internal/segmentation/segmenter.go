package segmentation

import (
	"regexp"
	"strings"

	"github.com/unalkalkan/Prompter/pkg/types"
)

const (
	// PhraseSeparator splits a line into phrases
	PhraseSeparator = "/"
	// SentenceEnd marks the end of a sentence in normalized text
	SentenceEnd = "//"

	continuation = " " + PhraseSeparator
	phraseJoin   = " " + PhraseSeparator + " "
)

var separatorPattern = regexp.MustCompile(`\s*/\s*`)

// Segmenter turns preprocessed script lines into slide fragments
type Segmenter struct {
	thresholds types.Thresholds
}

// NewSegmenter creates a segmenter for the given word budget
func NewSegmenter(th types.Thresholds) (*Segmenter, error) {
	if err := Validate(th); err != nil {
		return nil, err
	}
	return &Segmenter{thresholds: th}, nil
}

// Thresholds returns the word budget in use
func (s *Segmenter) Thresholds() types.Thresholds {
	return s.thresholds
}

// SegmentLine segments the line's message and stores the finalized fragments on it
func (s *Segmenter) SegmentLine(line *types.Line) []string {
	line.Fragments = Finalize(Segment(line.Message, s.thresholds), line.HasEndMarker)
	return line.Fragments
}

// Phrases splits text on "/" and drops empty phrases.
// Every single slash separates, so "//" never survives inside a phrase.
func Phrases(text string) []string {
	raw := separatorPattern.Split(text, -1)
	phrases := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			phrases = append(phrases, p)
		}
	}
	return phrases
}

// fragment accumulates the phrases of one slide
type fragment struct {
	phrases []string
	words   int
}

func (f *fragment) empty() bool {
	return len(f.phrases) == 0
}

func (f *fragment) add(phrase string, words int) {
	f.phrases = append(f.phrases, phrase)
	f.words += words
}

func (f *fragment) reset(phrase string, words int) {
	f.phrases = []string{phrase}
	f.words = words
}

func (f *fragment) text() string {
	return strings.Join(f.phrases, phraseJoin)
}

// Segment splits one message body into slide fragments.
//
// Phrases are packed onto a slide while the running word count stays within
// th.Ideal. A phrase that would push the count past Ideal but not past
// Maximum is still kept on the slide when it contains "//" or ")". A phrase
// longer than Maximum on its own is broken up by FairSplit against Ideal.
// Every fragment except the last ends with " /".
func Segment(text string, th types.Thresholds) []string {
	var (
		slides  []string
		current fragment
	)

	flush := func() {
		if !current.empty() {
			slides = append(slides, current.text()+continuation)
		}
		current = fragment{}
	}

	for _, phrase := range Phrases(text) {
		words := CountWords(phrase)

		if words > th.Maximum {
			flush()
			chunks := FairSplit(phrase, th.Ideal)
			for _, chunk := range chunks[:len(chunks)-1] {
				slides = append(slides, chunk+continuation)
			}
			last := chunks[len(chunks)-1]
			current.reset(last, CountWords(last))
			continue
		}

		if accepts(current.words+words, phrase, th) {
			current.add(phrase, words)
			continue
		}

		flush()
		current.reset(phrase, words)
	}

	if !current.empty() {
		slides = append(slides, current.text())
	}
	return slides
}

// accepts decides whether a phrase may join the current fragment
func accepts(potential int, phrase string, th types.Thresholds) bool {
	switch {
	case potential <= th.Ideal:
		return true
	case potential <= th.Maximum:
		return strings.Contains(phrase, SentenceEnd) || strings.Contains(phrase, ")")
	default:
		return false
	}
}

// Finalize repairs the trailing markers of a line's fragments.
// Every fragment but the last ends with "/". The last loses one trailing "/"
// and, when the message contained a sentence end, ends with "//".
func Finalize(fragments []string, hasEndMarker bool) []string {
	out := make([]string, len(fragments))
	for i, f := range fragments {
		f = strings.TrimSpace(f)
		if i == len(fragments)-1 {
			if strings.HasSuffix(f, PhraseSeparator) {
				f = strings.TrimSpace(strings.TrimSuffix(f, PhraseSeparator))
			}
			if hasEndMarker && !strings.HasSuffix(f, SentenceEnd) {
				f += " " + SentenceEnd
			}
		} else if !strings.HasSuffix(f, PhraseSeparator) {
			f += continuation
		}
		out[i] = f
	}
	return out
}
