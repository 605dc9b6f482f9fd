package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"promptforge/config"
	"promptforge/internal/models"
	"promptforge/internal/utils"

	"go.uber.org/zap"
)

// Provider family tags.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

const (
	anthropicVersion = "2023-06-01"
	callTimeout      = 60 * time.Second

	// Anthropic requires max_tokens; this is substituted when the caller
	// passes zero.
	anthropicDefaultMaxTokens = 1000
)

// providerRule maps model-name substrings to a provider family. Rules are
// evaluated in order and the first match wins.
type providerRule struct {
	keywords []string
	provider string
}

var providerRules = []providerRule{
	{keywords: []string{"claude", "sonnet", "haiku", "opus"}, provider: ProviderAnthropic},
	{keywords: []string{"gpt", "o1", "o3", "davinci", "curie", "babbage", "ada"}, provider: ProviderOpenAI},
}

// AIService is the gateway that normalizes chat requests across provider
// families and performs the vendor HTTP call. It is safe for concurrent use.
type AIService struct {
	cfg    *config.Config
	client *http.Client
	logger *zap.Logger
}

func NewAIService(cfg *config.Config, logger *zap.Logger) *AIService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIService{
		cfg:    cfg,
		client: utils.NewHTTPClient(callTimeout, logger),
		logger: logger,
	}
}

// WithHTTPClient swaps the transport client. Used by tests.
func (s *AIService) WithHTTPClient(client *http.Client) *AIService {
	s.client = client
	return s
}

// CallAI sends a chat request to the provider derived from the model name and
// returns the textual completion. Validation happens before any network I/O.
func (s *AIService) CallAI(ctx context.Context, messages []models.ChatMessage, model string, temperature float64, maxTokens int) (string, error) {
	if err := validateMessages(messages); err != nil {
		return "", err
	}
	if temperature < 0 || temperature > 2 {
		return "", invalidArgf("temperature must be between 0 and 2, got %g", temperature)
	}
	if maxTokens < 0 {
		return "", invalidArgf("max_tokens must not be negative, got %d", maxTokens)
	}

	if model == "" {
		model = s.cfg.DefaultExecutionModel
	}

	provider := s.resolveProvider(model)
	switch provider {
	case ProviderAnthropic:
		return s.callAnthropic(ctx, messages, model, temperature, maxTokens)
	case ProviderOpenAI:
		return s.callOpenAI(ctx, messages, model, temperature, maxTokens)
	default:
		return "", unavailablef("unsupported AI provider: %s", provider)
	}
}

func validateMessages(messages []models.ChatMessage) error {
	if len(messages) == 0 {
		return invalidArgf("messages must not be empty")
	}
	for i, msg := range messages {
		if msg.Role == "" {
			return invalidArgf("message %d is missing a role", i)
		}
		if !models.ValidRole(msg.Role) {
			return invalidArgf("message %d has invalid role %q, must be system, user or assistant", i, msg.Role)
		}
	}
	return nil
}

// resolveProvider derives the provider family from a model name by
// case-insensitive substring match, falling back to the configured default.
func (s *AIService) resolveProvider(model string) string {
	modelLower := strings.ToLower(model)
	for _, rule := range providerRules {
		for _, kw := range rule.keywords {
			if strings.Contains(modelLower, kw) {
				return rule.provider
			}
		}
	}
	return s.cfg.DefaultProvider
}

type openAIRequest struct {
	Model       string               `json:"model"`
	Messages    []models.ChatMessage `json:"messages"`
	Temperature float64              `json:"temperature"`
	MaxTokens   int                  `json:"max_tokens,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (s *AIService) callOpenAI(ctx context.Context, messages []models.ChatMessage, model string, temperature float64, maxTokens int) (string, error) {
	if s.cfg.OpenAIAPIKey == "" {
		return "", unavailablef("OpenAI API key is not configured")
	}

	if model == "" {
		model = s.cfg.OpenAIModel
	}

	reqBody := openAIRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
	}
	if maxTokens > 0 {
		reqBody.MaxTokens = maxTokens
	}

	endpoint := strings.TrimRight(s.cfg.OpenAIBaseURL, "/") + "/chat/completions"
	headers := map[string]string{
		"Authorization": "Bearer " + s.cfg.OpenAIAPIKey,
	}

	body, err := s.post(ctx, ProviderOpenAI, endpoint, headers, reqBody)
	if err != nil {
		return "", err
	}

	var result openAIResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", &UpstreamError{Provider: ProviderOpenAI, Body: "malformed response: " + err.Error()}
	}
	if len(result.Choices) == 0 {
		return "", &UpstreamError{Provider: ProviderOpenAI, Body: "empty response"}
	}
	return result.Choices[0].Message.Content, nil
}

type anthropicRequest struct {
	Model       string               `json:"model"`
	MaxTokens   int                  `json:"max_tokens"`
	Temperature float64              `json:"temperature"`
	Messages    []models.ChatMessage `json:"messages"`
	System      string               `json:"system,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (s *AIService) callAnthropic(ctx context.Context, messages []models.ChatMessage, model string, temperature float64, maxTokens int) (string, error) {
	if s.cfg.AnthropicAPIKey == "" {
		return "", unavailablef("Anthropic API key is not configured")
	}

	// Anthropic accepts temperature in [0,1] while the unified contract uses
	// [0,2]: values above 1 are halved, then clamped.
	if temperature > 1.0 {
		temperature = temperature / 2.0
	}
	if temperature < 0 {
		temperature = 0
	} else if temperature > 1 {
		temperature = 1
	}

	// The system message travels in a dedicated field; all other messages
	// are forwarded in their original order. If multiple system messages are
	// present the last one wins.
	var system string
	chat := make([]models.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == models.RoleSystem {
			system = msg.Content
			continue
		}
		chat = append(chat, msg)
	}

	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	reqBody := anthropicRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages:    chat,
		System:      system,
	}

	endpoint := strings.TrimRight(s.cfg.AnthropicBaseURL, "/") + "/v1/messages"
	headers := map[string]string{
		"x-api-key":         s.cfg.AnthropicAPIKey,
		"anthropic-version": anthropicVersion,
	}

	body, err := s.post(ctx, ProviderAnthropic, endpoint, headers, reqBody)
	if err != nil {
		return "", err
	}

	var result anthropicResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", &UpstreamError{Provider: ProviderAnthropic, Body: "malformed response: " + err.Error()}
	}
	if len(result.Content) == 0 {
		return "", &UpstreamError{Provider: ProviderAnthropic, Body: "empty response"}
	}
	return result.Content[0].Text, nil
}

// post performs one JSON POST and returns the response body. Non-2xx
// statuses and transport failures (including the 60s timeout) surface as
// *UpstreamError; there are no retries.
func (s *AIService) post(ctx context.Context, provider, endpoint string, headers map[string]string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &UpstreamError{Provider: provider, Body: "marshal request: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, &UpstreamError{Provider: provider, Body: "construct request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Provider: provider, Body: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Provider: provider, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
