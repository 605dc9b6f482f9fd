package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"promptforge/internal/models"
)

const suggestionsSystemPrompt = `You are a senior prompt engineering expert. Based on the given prompt, generate 3-5 specific, actionable optimization suggestions.

Requirements:
1. Suggestions must target the specific prompt content, not generic advice
2. Each suggestion should be concise, no more than 20 words
3. Suggestions should cover different aspects: structure, clarity, context, output format, etc.
4. Suggestions must be directly actionable by the user
5. Return only the suggestion list, one suggestion per line, with no other commentary

Example format:
Add a role definition to make answers more professional
Specify the output format to avoid inconsistent results
Include concrete examples to lower the barrier to understanding`

// fallbackSuggestions pads underproduced responses; the first three are also
// the fixed result when generation fails entirely.
var fallbackSuggestions = []string{
	"Consider adding more specific context information",
	"Clearly define the expected output format",
	"Include examples to improve understanding",
	"Strengthen the clarity and actionability of instructions",
	"Improve the prompt structure for readability",
}

const (
	minSuggestions = 3
	maxSuggestions = 5

	suggestionTemperature = 0.3
	suggestionMaxTokens   = 300

	// Leading bullet and numbering characters stripped from each line.
	bulletCutset = "•-*0123456789.） "
)

// GenerateSuggestions produces 3-5 prompt-improvement suggestions using one
// gateway call. Gateway failures are absorbed: the fixed fallback list is
// returned instead of an error.
func (s *AIService) GenerateSuggestions(ctx context.Context, prompt, model, analysisContext string) []string {
	if model == "" {
		model = s.cfg.DefaultAnalysisModel
	}

	userMessage := "Generate specific optimization suggestions for the following prompt:\n\n" + prompt
	if analysisContext != "" {
		userMessage += "\n\nAnalysis context:\n" + analysisContext
	}

	messages := []models.ChatMessage{
		{Role: models.RoleSystem, Content: suggestionsSystemPrompt},
		{Role: models.RoleUser, Content: userMessage},
	}

	response, err := s.CallAI(ctx, messages, model, suggestionTemperature, suggestionMaxTokens)
	if err != nil {
		return append([]string(nil), fallbackSuggestions[:minSuggestions]...)
	}

	suggestions := parseSuggestions(response)

	// Pad deterministically when the model underproduces.
	if len(suggestions) < minSuggestions {
		suggestions = append(suggestions, fallbackSuggestions[:maxSuggestions-len(suggestions)]...)
	}
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}

func parseSuggestions(response string) []string {
	var suggestions []string
	for _, line := range strings.Split(strings.TrimSpace(response), "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, bulletCutset)
		if utf8.RuneCountInString(line) > 5 {
			suggestions = append(suggestions, line)
		}
	}
	return suggestions
}
