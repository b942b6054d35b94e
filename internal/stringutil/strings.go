// Package stringutil provides common string manipulation utilities.
package stringutil

import "strings"

// NormalizeSpace trims the string and collapses all interior whitespace
// runs into single spaces.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Tokenize splits s into lowercase word tokens. A token is a maximal run
// of letters and digits; everything else is a separator.
func Tokenize(s string) []string {
	s = strings.ToLower(s)

	var tokens []string
	var word strings.Builder
	for _, r := range s {
		if isWordRune(r) {
			word.WriteRune(r)
			continue
		}
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}
	if word.Len() > 0 {
		tokens = append(tokens, word.String())
	}
	return tokens
}

func isWordRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 127
}

// Similarity returns a similarity ratio between two strings in [0, 1]
// using the Ratcliff/Obershelp algorithm (recursive longest common
// substring matching). Comparison is case-insensitive.
//
// The ratio is 2*M/T where M is the total number of matched characters
// and T is the combined length of both strings. Identical strings score
// 1.0; strings with no characters in common score 0.0.
//
// Example:
//
//	Similarity("johnson", "jonson") ≈ 0.92
//	Similarity("smith", "smyth") = 0.80
func Similarity(a, b string) float64 {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	matched := matchingRunes(ra, rb)
	return 2 * float64(matched) / float64(total)
}

// matchingRunes returns the total length of matching blocks between a and b.
// Finds the longest common substring, then recurses on the pieces to its
// left and right. This mirrors how sequence matchers count matches.
func matchingRunes(a, b []rune) int {
	ai, bi, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingRunes(a[:ai], b[:bi]) +
		matchingRunes(a[ai+size:], b[bi+size:])
}

// longestCommonBlock finds the earliest longest common substring of a and b.
// Returns the start index in a, start index in b, and the block length.
func longestCommonBlock(a, b []rune) (int, int, int) {
	bestA, bestB, bestSize := 0, 0, 0

	// Rolling DP row: prev[j+1] is the match run length ending at a[i-1], b[j].
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := range a {
		for j := range b {
			if a[i] != b[j] {
				curr[j+1] = 0
				continue
			}
			curr[j+1] = prev[j] + 1
			if curr[j+1] > bestSize {
				bestSize = curr[j+1]
				bestA = i + 1 - bestSize
				bestB = j + 1 - bestSize
			}
		}
		prev, curr = curr, prev
	}

	return bestA, bestB, bestSize
}
