package services

import (
	"sort"
	"strings"
	"unicode"

	"promptforge/internal/models"
)

// CalculateMetrics derives basic statistics from prompt text. It is a pure
// function with no failure mode.
//
// Characters counts code points, words counts whitespace-delimited tokens and
// lines counts newline-delimited segments (empty text is still one line).
// SpecialChars is the deduplicated set of characters that are neither
// alphanumeric nor whitespace, sorted for stable output.
func CalculateMetrics(prompt string) models.PromptMetrics {
	special := make(map[rune]struct{})
	characters := 0
	for _, r := range prompt {
		characters++
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			special[r] = struct{}{}
		}
	}

	specialChars := make([]string, 0, len(special))
	for r := range special {
		specialChars = append(specialChars, string(r))
	}
	sort.Strings(specialChars)

	return models.PromptMetrics{
		Characters:   characters,
		Words:        len(strings.Fields(prompt)),
		Lines:        len(strings.Split(prompt, "\n")),
		SpecialChars: specialChars,
	}
}
