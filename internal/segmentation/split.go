package segmentation

import "strings"

// CountWords returns the number of whitespace-delimited words in s
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// FairSplit breaks an over-long phrase into near-equal word chunks.
//
// The number of chunks is decided first (ceil(words/target)) and the words are
// filled ceil(words/chunks) at a time, so the trailing chunk is never left
// with a stray word or two. No chunk exceeds target and only the last may be
// shorter. A phrase already within target, or a non-positive target, is
// returned unsplit.
func FairSplit(phrase string, target int) []string {
	words := strings.Fields(phrase)
	total := len(words)
	if target <= 0 || total <= target {
		return []string{phrase}
	}

	groups := ceilDiv(total, target)
	perGroup := ceilDiv(total, groups)

	chunks := make([]string, 0, groups)
	for i := 0; i < total; i += perGroup {
		end := min(i+perGroup, total)
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
