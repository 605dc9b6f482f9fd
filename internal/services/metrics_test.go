package services

import (
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCalculateMetricsBasic(t *testing.T) {
	m := CalculateMetrics("Hello, world!\nSecond line.")

	assert.Equal(t, utf8.RuneCountInString("Hello, world!\nSecond line."), m.Characters)
	assert.Equal(t, 4, m.Words)
	assert.Equal(t, 2, m.Lines)
	assert.ElementsMatch(t, []string{",", "!", "."}, m.SpecialChars)
}

func TestCalculateMetricsEmpty(t *testing.T) {
	m := CalculateMetrics("")

	assert.Equal(t, 0, m.Characters)
	assert.Equal(t, 0, m.Words)
	assert.Equal(t, 1, m.Lines)
	assert.Empty(t, m.SpecialChars)
}

func TestCalculateMetricsLines(t *testing.T) {
	assert.Equal(t, 2, CalculateMetrics("a\nb").Lines)
	assert.Equal(t, 2, CalculateMetrics("a\n").Lines)
	assert.Equal(t, 1, CalculateMetrics("a").Lines)
}

func TestCalculateMetricsUnicode(t *testing.T) {
	// 4 code points, not byte length
	m := CalculateMetrics("日本語!")
	assert.Equal(t, 4, m.Characters)
	assert.Equal(t, []string{"!"}, m.SpecialChars)
}

func TestCalculateMetricsSpecialCharsSet(t *testing.T) {
	m := CalculateMetrics("a! b! c? a?\t\n{x}{y}")

	seen := make(map[string]bool)
	for _, c := range m.SpecialChars {
		assert.False(t, seen[c], "duplicate special char %q", c)
		seen[c] = true

		r, _ := utf8.DecodeRuneInString(c)
		assert.False(t, unicode.IsSpace(r), "special chars must not contain whitespace")
		assert.False(t, unicode.IsLetter(r) || unicode.IsDigit(r), "special chars must not contain alphanumerics")
	}
	assert.ElementsMatch(t, []string{"!", "?", "{", "}"}, m.SpecialChars)
}
