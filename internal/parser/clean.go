package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	citationOpen  = "[source:"
	citationClose = "]"
)

// cleaner removes characters that pasted scripts commonly carry and that
// break word counting
var cleaner = strings.NewReplacer(
	"\u200b", "",  // zero-width space
	"\u00a0", " ", // non-breaking space
)

// punctuation turns sentence and clause punctuation into slash markers
var punctuation = strings.NewReplacer(
	".", " //",
	",", " /",
)

// CleanLine trims a raw line, strips invisible characters and drops a
// leading "[source: ...]" citation. It returns "" for lines with no content.
func CleanLine(raw string) string {
	text := cleaner.Replace(strings.TrimSpace(raw))
	text = StripCitation(strings.TrimSpace(text))
	return strings.TrimSpace(text)
}

// StripCitation keeps only the text after the citation's closing bracket.
// A line without a complete citation is returned unchanged.
func StripCitation(text string) string {
	if !strings.Contains(text, citationOpen) {
		return text
	}
	_, rest, found := strings.Cut(text, citationClose)
	if !found {
		return text
	}
	return strings.TrimSpace(rest)
}

// Normalize converts "." to "//" and "," to "/" and reports whether the
// result contains a sentence end
func Normalize(text string) (string, bool) {
	text = punctuation.Replace(text)
	hasEnd := strings.Contains(text, "//")
	return strings.ReplaceAll(text, "//", " //"), hasEnd
}

// SplitSpeaker separates a leading speaker tag from the message.
// The first word is a speaker tag when it is all caps, longer than one
// character, does not start with "/" and is followed by more text.
func SplitSpeaker(text string) (speaker, message string) {
	text = strings.TrimLeftFunc(text, unicode.IsSpace)
	idx := strings.IndexFunc(text, unicode.IsSpace)
	if idx < 0 {
		return "", text
	}

	first := text[:idx]
	rest := strings.TrimLeftFunc(text[idx:], unicode.IsSpace)
	if rest == "" || !isSpeakerTag(first) {
		return "", text
	}
	return first, rest
}

// isSpeakerTag reports whether word has at least one cased letter and no
// lowercase or titlecase letters
func isSpeakerTag(word string) bool {
	if utf8.RuneCountInString(word) <= 1 || strings.HasPrefix(word, "/") {
		return false
	}
	cased := false
	for _, r := range word {
		switch {
		case unicode.IsLower(r), unicode.IsTitle(r):
			return false
		case unicode.IsUpper(r):
			cased = true
		}
	}
	return cased
}
