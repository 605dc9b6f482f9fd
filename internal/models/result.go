package models

// PromptMetrics is a snapshot of basic statistics derived from prompt text.
type PromptMetrics struct {
	Characters   int      `json:"characters"`
	Words        int      `json:"words"`
	Lines        int      `json:"lines"`
	SpecialChars []string `json:"special_chars"`
}

// AnalysisResult is the outcome of one analysis pipeline run.
//
// When Success is false both reports are nil and ErrorMessage is set;
// Metrics is populated either way.
type AnalysisResult struct {
	Success        bool          `json:"success"`
	QuickReport    *string       `json:"quick_report"`
	DetailedReport *string       `json:"detailed_report"`
	Metrics        PromptMetrics `json:"metrics"`
	Suggestions    []string      `json:"suggestions"`
	ErrorMessage   string        `json:"error_message,omitempty"`
}

// ExecutionResult is the outcome of one prompt execution.
type ExecutionResult struct {
	Success       bool           `json:"success"`
	Response      string         `json:"response"`
	Model         string         `json:"model"`
	ExecutionTime float64        `json:"execution_time"`
	TokenUsage    map[string]int `json:"token_usage"`
	ErrorMessage  string         `json:"error_message,omitempty"`
}
