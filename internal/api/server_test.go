package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"promptforge/config"
	"promptforge/internal/database"
	"promptforge/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		AnthropicAPIKey:       "ak-test",
		AnthropicBaseURL:      "https://api.anthropic.com",
		OpenAIBaseURL:         "https://api.openai.com/v1",
		DefaultProvider:       "anthropic",
		DatabasePath:          ":memory:",
		MaxPromptLength:       50000,
		DefaultAnalysisModel:  "claude-3-sonnet-20240229",
		DefaultExecutionModel: "claude-3-sonnet-20240229",
	}

	db, err := database.Connect("file::memory:?cache=shared")
	require.NoError(t, err)

	ai := services.NewAIService(cfg, nil)
	analysis := services.NewAnalysisService(cfg, ai, nil)
	history := services.NewHistoryService(db)
	execution := services.NewExecutionService(cfg, ai, history, nil)
	library := services.NewLibraryService(db, nil)

	return NewServer(cfg, analysis, execution, library, history, nil)
}

func TestNewServer(t *testing.T) {
	s := testServer(t)
	assert.NotNil(t, s.MCPServer())
}

func TestHealthEndpoint(t *testing.T) {
	router := testServer(t).NewHTTPRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestParseHistoryLimit(t *testing.T) {
	assert.Equal(t, 10, parseHistoryLimit("promptforge://history/10"))
	assert.Equal(t, defaultHistoryLimit, parseHistoryLimit("promptforge://history/"))
	assert.Equal(t, defaultHistoryLimit, parseHistoryLimit("promptforge://history/abc"))
	assert.Equal(t, defaultHistoryLimit, parseHistoryLimit("promptforge://history/-3"))
}

func TestInputValidation(t *testing.T) {
	assert.Error(t, validate.Struct(AnalyzeInput{}))
	assert.NoError(t, validate.Struct(AnalyzeInput{Prompt: "p"}))
	assert.Error(t, validate.Struct(AnalyzeInput{Prompt: "p", AnalysisType: "bogus"}))
	assert.NoError(t, validate.Struct(AnalyzeInput{Prompt: "p", AnalysisType: "dual"}))

	assert.Error(t, validate.Struct(ExecuteInput{Prompt: "p", Temperature: 2.5}))
	assert.NoError(t, validate.Struct(ExecuteInput{Prompt: "p", Temperature: 2.0}))

	assert.Error(t, validate.Struct(SavePromptInput{Title: "t"}))
	assert.NoError(t, validate.Struct(SavePromptInput{Title: "t", Content: "c"}))

	assert.Error(t, validate.Struct(SearchPromptsInput{Limit: 500}))
	assert.NoError(t, validate.Struct(SearchPromptsInput{}))
}
