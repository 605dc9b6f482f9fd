package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// AI provider configuration
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	AnthropicAPIKey  string
	AnthropicBaseURL string
	DefaultProvider  string

	// Database configuration
	DatabasePath string

	// Optional redis cache
	RedisAddr     string
	RedisPort     string
	RedisPassword string

	// Server configuration
	ServerPort       int
	MaxPromptLength  int
	AnalysisTimeout  int
	ExecutionTimeout int
	DebugMode        bool

	// Model defaults
	DefaultAnalysisModel  string
	DefaultExecutionModel string
	OpenAIModel           string

	// Log configuration
	LogLevel      string
	LogFilename   string
	LogMaxSize    int
	LogMaxBackups int
	LogMaxAge     int
	LogCompress   bool
}

func (c *Config) RedisFullAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisAddr, c.RedisPort)
}

// AvailableProviders reports which providers have credentials configured.
func (c *Config) AvailableProviders() map[string]bool {
	return map[string]bool{
		"openai":    c.OpenAIAPIKey != "",
		"anthropic": c.AnthropicAPIKey != "",
	}
}

// ModelForProvider returns the default model for a provider name.
func (c *Config) ModelForProvider(provider string) string {
	if provider == "openai" {
		return c.OpenAIModel
	}
	return c.DefaultAnalysisModel
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		// Ignore error if .env file is not found
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	return &Config{
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicBaseURL: getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		DefaultProvider:  getEnv("DEFAULT_AI_PROVIDER", "anthropic"),

		DatabasePath: getEnv("DATABASE_PATH", "promptforge.db"),

		RedisAddr:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		ServerPort:       getEnvAsInt("MCP_SERVER_PORT", 8080),
		MaxPromptLength:  getEnvAsInt("MAX_PROMPT_LENGTH", 50000),
		AnalysisTimeout:  getEnvAsInt("ANALYSIS_TIMEOUT", 30),
		ExecutionTimeout: getEnvAsInt("EXECUTION_TIMEOUT", 60),
		DebugMode:        getEnvAsBool("DEBUG_MODE", false),

		DefaultAnalysisModel:  getEnv("DEFAULT_ANALYSIS_MODEL", "claude-3-sonnet-20240229"),
		DefaultExecutionModel: getEnv("DEFAULT_EXECUTION_MODEL", "claude-3-sonnet-20240229"),
		OpenAIModel:           getEnv("OPENAI_MODEL", "gpt-4-turbo-preview"),

		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		LogFilename:   getEnv("LOG_FILENAME", "logs/promptforge.log"),
		LogMaxSize:    getEnvAsInt("LOG_MAX_SIZE", 100),
		LogMaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 3),
		LogMaxAge:     getEnvAsInt("LOG_MAX_AGE", 28),
		LogCompress:   getEnvAsBool("LOG_COMPRESS", true),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
