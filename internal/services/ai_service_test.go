package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"promptforge/config"
	"promptforge/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		OpenAIAPIKey:          "sk-test",
		OpenAIBaseURL:         "https://api.openai.com/v1",
		AnthropicAPIKey:       "ak-test",
		AnthropicBaseURL:      "https://api.anthropic.com",
		DefaultProvider:       "anthropic",
		MaxPromptLength:       50000,
		DefaultAnalysisModel:  "claude-3-sonnet-20240229",
		DefaultExecutionModel: "claude-3-sonnet-20240229",
		OpenAIModel:           "gpt-4-turbo-preview",
	}
}

func userMessages(content string) []models.ChatMessage {
	return []models.ChatMessage{{Role: models.RoleUser, Content: content}}
}

// fakeOpenAI returns a vendor stub speaking the chat-completions schema and a
// pointer to the last request body it decoded.
func fakeOpenAI(t *testing.T, reply string, calls *int64) (*httptest.Server, *map[string]interface{}) {
	t.Helper()
	lastBody := &map[string]interface{}{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			atomic.AddInt64(calls, 1)
		}
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(lastBody))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": reply}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, lastBody
}

func fakeAnthropic(t *testing.T, reply string) (*httptest.Server, *map[string]interface{}) {
	t.Helper()
	lastBody := &map[string]interface{}{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "ak-test", r.Header.Get("x-api-key"))
		require.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.Equal(t, "/v1/messages", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(lastBody))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{{"type": "text", "text": reply}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, lastBody
}

func TestCallAIValidation(t *testing.T) {
	svc := NewAIService(testConfig(), nil)
	ctx := context.Background()

	_, err := svc.CallAI(ctx, nil, "gpt-4", 0.7, 100)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.CallAI(ctx, []models.ChatMessage{{Role: "robot", Content: "hi"}}, "gpt-4", 0.7, 100)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "message 0")

	_, err = svc.CallAI(ctx, userMessages("hi"), "gpt-4", -0.1, 100)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.CallAI(ctx, userMessages("hi"), "gpt-4", 2.1, 100)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.CallAI(ctx, userMessages("hi"), "gpt-4", 0.7, -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCallAITemperatureBoundariesAccepted(t *testing.T) {
	cfg := testConfig()
	srv, _ := fakeOpenAI(t, "ok", nil)
	cfg.OpenAIBaseURL = srv.URL
	svc := NewAIService(cfg, nil)

	for _, temp := range []float64{0.0, 2.0} {
		out, err := svc.CallAI(context.Background(), userMessages("hi"), "gpt-4", temp, 100)
		require.NoError(t, err)
		assert.Equal(t, "ok", out)
	}
}

func TestResolveProvider(t *testing.T) {
	svc := NewAIService(testConfig(), nil)

	assert.Equal(t, ProviderAnthropic, svc.resolveProvider("claude-3-opus-20240229"))
	assert.Equal(t, ProviderAnthropic, svc.resolveProvider("CLAUDE-3-HAIKU"))
	assert.Equal(t, ProviderOpenAI, svc.resolveProvider("gpt-4-turbo-preview"))
	assert.Equal(t, ProviderOpenAI, svc.resolveProvider("o1-preview"))
	// unrecognized falls back to the configured default
	assert.Equal(t, "anthropic", svc.resolveProvider("foo-bar"))
}

func TestCallAIUnresolvableProvider(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultProvider = "cohere"
	svc := NewAIService(cfg, nil)

	_, err := svc.CallAI(context.Background(), userMessages("hi"), "foo-bar", 0.7, 100)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestCallAIMissingAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.OpenAIAPIKey = ""
	cfg.AnthropicAPIKey = ""
	svc := NewAIService(cfg, nil)
	ctx := context.Background()

	_, err := svc.CallAI(ctx, userMessages("hi"), "gpt-4", 0.7, 100)
	assert.ErrorIs(t, err, ErrProviderUnavailable)

	_, err = svc.CallAI(ctx, userMessages("hi"), "claude-3-opus", 0.7, 100)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestCallOpenAIRequestShape(t *testing.T) {
	cfg := testConfig()
	srv, lastBody := fakeOpenAI(t, "hello there", nil)
	cfg.OpenAIBaseURL = srv.URL
	svc := NewAIService(cfg, nil)

	out, err := svc.CallAI(context.Background(), userMessages("hi"), "gpt-4", 0.7, 0)
	require.NoError(t, err)
	assert.Equal(t, "hello there", out)

	body := *lastBody
	assert.Equal(t, "gpt-4", body["model"])
	assert.InDelta(t, 0.7, body["temperature"], 1e-9)
	// max_tokens omitted when not positive
	_, present := body["max_tokens"]
	assert.False(t, present)

	_, err = svc.CallAI(context.Background(), userMessages("hi"), "gpt-4", 0.7, 256)
	require.NoError(t, err)
	assert.InDelta(t, 256, (*lastBody)["max_tokens"], 1e-9)
}

func TestCallAnthropicRequestShape(t *testing.T) {
	cfg := testConfig()
	srv, lastBody := fakeAnthropic(t, "claude says hi")
	cfg.AnthropicBaseURL = srv.URL
	svc := NewAIService(cfg, nil)

	messages := []models.ChatMessage{
		{Role: models.RoleSystem, Content: "be terse"},
		{Role: models.RoleUser, Content: "hi"},
		{Role: models.RoleAssistant, Content: "hello"},
		{Role: models.RoleUser, Content: "bye"},
	}

	out, err := svc.CallAI(context.Background(), messages, "claude-3-sonnet", 1.6, 0)
	require.NoError(t, err)
	assert.Equal(t, "claude says hi", out)

	body := *lastBody
	// system message is split out; remaining messages keep their order
	assert.Equal(t, "be terse", body["system"])
	sent := body["messages"].([]interface{})
	require.Len(t, sent, 3)
	assert.Equal(t, "user", sent[0].(map[string]interface{})["role"])
	assert.Equal(t, "assistant", sent[1].(map[string]interface{})["role"])
	assert.Equal(t, "bye", sent[2].(map[string]interface{})["content"])

	// temperature 1.6 is halved to 0.8
	assert.InDelta(t, 0.8, body["temperature"], 1e-9)
	// max_tokens substituted when not positive
	assert.InDelta(t, 1000, body["max_tokens"], 1e-9)
}

func TestCallAnthropicTemperatureUnchangedBelowOne(t *testing.T) {
	cfg := testConfig()
	srv, lastBody := fakeAnthropic(t, "ok")
	cfg.AnthropicBaseURL = srv.URL
	svc := NewAIService(cfg, nil)

	_, err := svc.CallAI(context.Background(), userMessages("hi"), "claude-3-haiku", 0.4, 100)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, (*lastBody)["temperature"], 1e-9)
}

func TestCallAIUpstreamStatusError(t *testing.T) {
	cfg := testConfig()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()
	cfg.OpenAIBaseURL = srv.URL
	svc := NewAIService(cfg, nil)

	_, err := svc.CallAI(context.Background(), userMessages("hi"), "gpt-4", 0.7, 100)
	require.Error(t, err)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusTooManyRequests, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "rate limited")
}

func TestCallAIEmptyChoices(t *testing.T) {
	cfg := testConfig()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer srv.Close()
	cfg.OpenAIBaseURL = srv.URL
	svc := NewAIService(cfg, nil)

	_, err := svc.CallAI(context.Background(), userMessages("hi"), "gpt-4", 0.7, 100)
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
}

func TestCallAIEmptyModelUsesDefault(t *testing.T) {
	cfg := testConfig()
	srv, lastBody := fakeAnthropic(t, "ok")
	cfg.AnthropicBaseURL = srv.URL
	svc := NewAIService(cfg, nil)

	_, err := svc.CallAI(context.Background(), userMessages("hi"), "", 0.7, 100)
	require.NoError(t, err)
	assert.Equal(t, "claude-3-sonnet-20240229", (*lastBody)["model"])
}
