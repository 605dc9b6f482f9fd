package api

import (
	"context"
	"fmt"
	"time"

	"promptforge/config"
	"promptforge/internal/models"
	"promptforge/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

const (
	serverName    = "promptforge"
	serverVersion = "1.0.0"
)

var validate = validator.New()

// Server wires the pipeline services into an MCP server exposing the
// analyze/execute/library tools and the config/status/history resources.
type Server struct {
	cfg       *config.Config
	analysis  *services.AnalysisService
	execution *services.ExecutionService
	library   *services.LibraryService
	history   *services.HistoryService
	logger    *zap.Logger

	mcp *mcp.Server
}

func NewServer(cfg *config.Config, analysis *services.AnalysisService, execution *services.ExecutionService, library *services.LibraryService, history *services.HistoryService, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:       cfg,
		analysis:  analysis,
		execution: execution,
		library:   library,
		history:   history,
		logger:    logger,
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	s.registerTools()
	s.registerResources()

	return s
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Run serves MCP over the given transport until the context is cancelled.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.mcp.Run(ctx, transport)
}

// reporter builds the per-request side channel; every request gets its own
// id so interleaved calls stay distinguishable in the logs.
func (s *Server) reporter(tool string) services.Reporter {
	return services.NewZapReporter(s.logger.With(
		zap.String("tool", tool),
		zap.String("request_id", uuid.NewString()),
	))
}

type AnalyzeInput struct {
	Prompt       string `json:"prompt" validate:"required" jsonschema:"the prompt text to analyze"`
	Model        string `json:"model,omitempty" jsonschema:"AI model to use; empty selects the configured default"`
	AnalysisType string `json:"analysis_type,omitempty" validate:"omitempty,oneof=quick detailed dual" jsonschema:"analysis type: quick, detailed or dual"`
}

type ExecuteInput struct {
	Prompt      string            `json:"prompt" validate:"required" jsonschema:"the prompt to execute"`
	Model       string            `json:"model,omitempty" jsonschema:"AI model name; empty selects the configured default"`
	Temperature float64           `json:"temperature,omitempty" validate:"gte=0,lte=2" jsonschema:"sampling temperature between 0 and 2"`
	MaxTokens   int               `json:"max_tokens,omitempty" validate:"gte=0,lte=4000" jsonschema:"maximum output tokens"`
	Variables   map[string]string `json:"variables,omitempty" jsonschema:"placeholder variables substituted into the prompt"`
}

type SavePromptInput struct {
	Title       string   `json:"title" validate:"required" jsonschema:"prompt title"`
	Content     string   `json:"content" validate:"required" jsonschema:"prompt content"`
	Description string   `json:"description,omitempty" jsonschema:"prompt description"`
	Category    string   `json:"category,omitempty" jsonschema:"category, defaults to General"`
	Tags        []string `json:"tags,omitempty" jsonschema:"tag list"`
}

type GetPromptInput struct {
	ID uint `json:"prompt_id" validate:"required" jsonschema:"prompt id"`
}

type GetPromptOutput struct {
	Found  bool                `json:"found"`
	Prompt *models.SavedPrompt `json:"prompt,omitempty"`
}

type SearchPromptsInput struct {
	Query    string   `json:"query,omitempty" jsonschema:"substring matched against title, content and description"`
	Category string   `json:"category,omitempty" jsonschema:"exact category filter"`
	Tags     []string `json:"tags,omitempty" jsonschema:"a prompt matches when it shares at least one tag"`
	Limit    int      `json:"limit,omitempty" validate:"gte=0,lte=100" jsonschema:"maximum number of results, defaults to 20"`
}

type SearchPromptsOutput struct {
	Prompts []models.SavedPrompt `json:"prompts"`
	Count   int                  `json:"count"`
}

type DeletePromptInput struct {
	ID uint `json:"prompt_id" validate:"required" jsonschema:"id of the prompt to delete"`
}

type DeletePromptOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "analyze_prompt",
		Description: "Run a full prompt analysis with quick and detailed reports plus optimization suggestions",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in AnalyzeInput) (*mcp.CallToolResult, models.AnalysisResult, error) {
		if err := validate.Struct(in); err != nil {
			return nil, models.AnalysisResult{}, err
		}
		analysisType := in.AnalysisType
		if analysisType == "" {
			analysisType = services.AnalysisDual
		}
		result := s.analysis.Analyze(ctx, in.Prompt, in.Model, analysisType, s.reporter("analyze_prompt"))
		return nil, result, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "execute_prompt",
		Description: "Execute a prompt against an AI model and return the timed response",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in ExecuteInput) (*mcp.CallToolResult, models.ExecutionResult, error) {
		if err := validate.Struct(in); err != nil {
			return nil, models.ExecutionResult{}, err
		}
		result := s.execution.Execute(ctx, in.Prompt, in.Model, in.Temperature, in.MaxTokens, in.Variables, s.reporter("execute_prompt"))
		return nil, result, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "save_prompt",
		Description: "Save a prompt to the library",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in SavePromptInput) (*mcp.CallToolResult, *models.SavedPrompt, error) {
		if err := validate.Struct(in); err != nil {
			return nil, nil, err
		}
		saved, err := s.library.Save(in.Title, in.Content, in.Description, in.Category, in.Tags)
		if err != nil {
			return nil, nil, err
		}
		s.logger.Info("prompt saved", zap.Uint("id", saved.ID), zap.String("title", saved.Title))
		return nil, saved, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_saved_prompt",
		Description: "Fetch a saved prompt by id",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in GetPromptInput) (*mcp.CallToolResult, GetPromptOutput, error) {
		if err := validate.Struct(in); err != nil {
			return nil, GetPromptOutput{}, err
		}
		prompt, err := s.library.Get(in.ID)
		if err != nil {
			return nil, GetPromptOutput{}, err
		}
		return nil, GetPromptOutput{Found: prompt != nil, Prompt: prompt}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_prompts",
		Description: "Search and filter saved prompts",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in SearchPromptsInput) (*mcp.CallToolResult, SearchPromptsOutput, error) {
		if err := validate.Struct(in); err != nil {
			return nil, SearchPromptsOutput{}, err
		}
		prompts, err := s.library.Search(in.Query, in.Category, in.Tags, in.Limit)
		if err != nil {
			return nil, SearchPromptsOutput{}, err
		}
		return nil, SearchPromptsOutput{Prompts: prompts, Count: len(prompts)}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "delete_prompt",
		Description: "Delete a saved prompt by id",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in DeletePromptInput) (*mcp.CallToolResult, DeletePromptOutput, error) {
		if err := validate.Struct(in); err != nil {
			return nil, DeletePromptOutput{}, err
		}
		deleted, err := s.library.Delete(in.ID)
		if err != nil {
			return nil, DeletePromptOutput{}, err
		}
		if deleted {
			return nil, DeletePromptOutput{Success: true, Message: fmt.Sprintf("prompt %d deleted", in.ID)}, nil
		}
		return nil, DeletePromptOutput{Success: false, Message: fmt.Sprintf("prompt %d not found", in.ID)}, nil
	})
}

type serverConfigInfo struct {
	Name               string          `json:"name"`
	Version            string          `json:"version"`
	AvailableProviders map[string]bool `json:"available_providers"`
	DefaultProvider    string          `json:"default_provider"`
	DatabasePath       string          `json:"database_path"`
	Features           []string        `json:"features"`
	SupportedModels    []string        `json:"supported_models"`
}

type serverStatusInfo struct {
	Status              string `json:"status"`
	Timestamp           string `json:"timestamp"`
	DatabaseConnected   bool   `json:"database_connected"`
	AIServicesAvailable int    `json:"ai_services_available"`
}

func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		URI:         "promptforge://config",
		Name:        "server-config",
		Description: "Server configuration and capabilities",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		info := serverConfigInfo{
			Name:               "PromptForge MCP Server",
			Version:            serverVersion,
			AvailableProviders: s.cfg.AvailableProviders(),
			DefaultProvider:    s.cfg.DefaultProvider,
			DatabasePath:       s.cfg.DatabasePath,
			Features:           []string{"analysis", "execution", "library", "history"},
			SupportedModels: []string{
				"gpt-4.1", "gpt-4", "gpt-3.5-turbo",
				"claude-3-5-sonnet-20241022", "claude-3-opus-20240229",
				"o3",
			},
		}
		return jsonResource(req.Params.URI, info)
	})

	s.mcp.AddResource(&mcp.Resource{
		URI:         "promptforge://status",
		Name:        "server-status",
		Description: "Server health and provider availability",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		available := 0
		for _, ok := range s.cfg.AvailableProviders() {
			if ok {
				available++
			}
		}
		info := serverStatusInfo{
			Status:              "healthy",
			Timestamp:           time.Now().Format(time.RFC3339),
			DatabaseConnected:   s.history != nil,
			AIServicesAvailable: available,
		}
		return jsonResource(req.Params.URI, info)
	})

	s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "promptforge://history/{limit}",
		Name:        "execution-history",
		Description: "Most recent prompt executions",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		limit := parseHistoryLimit(req.Params.URI)
		records, err := s.history.Recent(limit)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, records)
	})
}
