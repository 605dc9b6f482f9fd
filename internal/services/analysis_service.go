package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"promptforge/config"
	"promptforge/internal/models"

	"go.uber.org/zap"
)

// Analysis modes.
const (
	AnalysisQuick    = "quick"
	AnalysisDetailed = "detailed"
	AnalysisDual     = "dual"
)

const (
	quickSystemPrompt    = "You are a prompt engineering expert. Provide a quick analysis of the prompt."
	detailedSystemPrompt = "You are a senior prompt engineer. Provide a detailed analysis of the prompt."

	quickTemperature    = 0.3
	quickMaxTokens      = 500
	detailedTemperature = 0.5
	detailedMaxTokens   = 1500

	// Context passed to the suggestion generator is built from report
	// prefixes, not the full reports.
	quickContextChars    = 200
	detailedContextChars = 300
)

// AnalysisService orchestrates quick/detailed/dual analysis reports plus
// suggestions for one prompt.
type AnalysisService struct {
	cfg    *config.Config
	ai     *AIService
	logger *zap.Logger
}

func NewAnalysisService(cfg *config.Config, ai *AIService, logger *zap.Logger) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisService{cfg: cfg, ai: ai, logger: logger}
}

// Analyze runs the analysis pipeline. It never returns an error: any gateway
// or validation failure is converted into a structured failure result with
// metrics still populated.
func (s *AnalysisService) Analyze(ctx context.Context, prompt, model, analysisType string, reporter Reporter) models.AnalysisResult {
	if reporter == nil {
		reporter = NopReporter{}
	}
	if model == "" {
		model = s.cfg.DefaultAnalysisModel
	}

	if utf8.RuneCountInString(prompt) > s.cfg.MaxPromptLength {
		msg := fmt.Sprintf("prompt length exceeds the limit (%d characters)", s.cfg.MaxPromptLength)
		reporter.Error(msg)
		return s.failure(prompt, msg)
	}

	reporter.Info(fmt.Sprintf("starting prompt analysis, mode: %s, model: %s", analysisType, model))

	metrics := CalculateMetrics(prompt)
	reporter.Progress(25, 100, "metrics calculated")

	var quickReport, detailedReport *string

	if analysisType == AnalysisQuick || analysisType == AnalysisDual {
		messages := []models.ChatMessage{
			{Role: models.RoleSystem, Content: quickSystemPrompt},
			{Role: models.RoleUser, Content: "Analyze this prompt:\n" + prompt},
		}
		report, err := s.ai.CallAI(ctx, messages, model, quickTemperature, quickMaxTokens)
		if err != nil {
			reporter.Error("analysis failed: " + err.Error())
			return s.failure(prompt, err.Error())
		}
		quickReport = &report
		reporter.Progress(60, 100, "quick analysis complete")
	}

	if analysisType == AnalysisDetailed || analysisType == AnalysisDual {
		messages := []models.ChatMessage{
			{Role: models.RoleSystem, Content: detailedSystemPrompt},
			{Role: models.RoleUser, Content: "Analyze this prompt in detail:\n" + prompt},
		}
		report, err := s.ai.CallAI(ctx, messages, model, detailedTemperature, detailedMaxTokens)
		if err != nil {
			reporter.Error("analysis failed: " + err.Error())
			return s.failure(prompt, err.Error())
		}
		detailedReport = &report
		reporter.Progress(90, 100, "detailed analysis complete")
	}

	reporter.Progress(95, 100, "generating optimization suggestions")

	var analysisContext string
	if quickReport != nil {
		analysisContext += "Quick analysis: " + truncateRunes(*quickReport, quickContextChars)
	}
	if detailedReport != nil {
		analysisContext += "\nDetailed analysis: " + truncateRunes(*detailedReport, detailedContextChars)
	}

	suggestions := s.ai.GenerateSuggestions(ctx, prompt, model, analysisContext)

	reporter.Progress(100, 100, "analysis complete")
	reporter.Info("prompt analysis completed successfully")

	return models.AnalysisResult{
		Success:        true,
		QuickReport:    quickReport,
		DetailedReport: detailedReport,
		Metrics:        metrics,
		Suggestions:    suggestions,
	}
}

// failure is the single place where errors become an AnalysisResult: both
// reports absent, suggestions empty, metrics recomputed from the prompt.
func (s *AnalysisService) failure(prompt, errMsg string) models.AnalysisResult {
	s.logger.Error("prompt analysis failed", zap.String("error", errMsg))
	return models.AnalysisResult{
		Success:      false,
		Metrics:      CalculateMetrics(prompt),
		Suggestions:  []string{},
		ErrorMessage: errMsg,
	}
}

// truncateRunes keeps at most n characters and always marks the cut, even
// when the report was already short enough.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes) + "..."
}
