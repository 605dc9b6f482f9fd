package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"promptforge/config"
	"promptforge/internal/models"

	"go.uber.org/zap"
)

// ExecutionService performs variable substitution and a single gateway call,
// producing a timed result with approximate token accounting.
type ExecutionService struct {
	cfg     *config.Config
	ai      *AIService
	history *HistoryService
	logger  *zap.Logger
}

func NewExecutionService(cfg *config.Config, ai *AIService, history *HistoryService, logger *zap.Logger) *ExecutionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecutionService{cfg: cfg, ai: ai, history: history, logger: logger}
}

// Execute runs a prompt against a single model. It never returns an error:
// failures become a structured result with ExecutionTime measured up to the
// failure point.
func (s *ExecutionService) Execute(ctx context.Context, prompt, model string, temperature float64, maxTokens int, variables map[string]string, reporter Reporter) models.ExecutionResult {
	if reporter == nil {
		reporter = NopReporter{}
	}
	if model == "" {
		model = s.cfg.DefaultExecutionModel
	}

	if utf8.RuneCountInString(prompt) > s.cfg.MaxPromptLength {
		msg := fmt.Sprintf("prompt length exceeds the limit (%d characters)", s.cfg.MaxPromptLength)
		reporter.Error(msg)
		return models.ExecutionResult{
			Success:      false,
			Model:        model,
			TokenUsage:   map[string]int{},
			ErrorMessage: msg,
		}
	}

	reporter.Info("executing prompt with model " + model)
	start := time.Now()

	// Literal substring replacement; no escaping, no recursion. Later
	// replacements can affect earlier placeholder text when keys overlap.
	if len(variables) > 0 {
		for key, value := range variables {
			prompt = strings.ReplaceAll(prompt, "{"+key+"}", value)
		}
		reporter.Info(fmt.Sprintf("substituted %d variables", len(variables)))
	}

	reporter.Progress(25, 100, "preparing execution")

	messages := []models.ChatMessage{{Role: models.RoleUser, Content: prompt}}
	response, err := s.ai.CallAI(ctx, messages, model, temperature, maxTokens)
	elapsed := time.Since(start).Seconds()

	var result models.ExecutionResult
	if err != nil {
		reporter.Error("execution failed: " + err.Error())
		result = models.ExecutionResult{
			Success:       false,
			Model:         model,
			ExecutionTime: elapsed,
			TokenUsage:    map[string]int{},
			ErrorMessage:  err.Error(),
		}
	} else {
		reporter.Progress(100, 100, "execution complete")
		reporter.Info(fmt.Sprintf("execution succeeded in %.2fs", elapsed))
		result = models.ExecutionResult{
			Success:       true,
			Response:      response,
			Model:         model,
			ExecutionTime: elapsed,
			// Whitespace word counts approximate tokens; this is not a
			// real tokenizer.
			TokenUsage: map[string]int{
				"input":  len(strings.Fields(prompt)),
				"output": len(strings.Fields(response)),
			},
		}
	}

	if s.history != nil {
		if err := s.history.Record(prompt, temperature, maxTokens, result); err != nil {
			// History is best-effort and never fails the pipeline.
			s.logger.Warn("failed to record execution history", zap.Error(err))
		}
	}
	return result
}
