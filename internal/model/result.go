package model

// Summary is the abstractive synthesis of the selected representative comments
type Summary struct {
	ExecutiveSummary string   `json:"executive_summary"`
	KeyPoints        []string `json:"key_points"`
	NextSteps        []string `json:"next_steps"`
}

// EmptySummary returns a summary with empty fields (non-nil slices, so the
// JSON output carries [] rather than null)
func EmptySummary() Summary {
	return Summary{
		ExecutiveSummary: "",
		KeyPoints:        []string{},
		NextSteps:        []string{},
	}
}

// ConfigUsed echoes the effective configuration back in the result
type ConfigUsed struct {
	Host               string    `json:"host"`
	Provider           string    `json:"provider"`
	ChatModel          string    `json:"chat_model"`
	EmbedModel         string    `json:"embed_model"`
	TopK               int       `json:"topk"`
	MaxSummaryComments int       `json:"max_summary_comments"`
	Weights            []float64 `json:"weights"`
}

// AnalysisResult is the complete output of one pipeline invocation.
// TopComments is always exactly the prefix of AllComments of length
// min(topK, len(AllComments)); AllComments is sorted descending by
// must_read_score with input order preserved among ties.
type AnalysisResult struct {
	Summary     Summary         `json:"summary"`
	TopComments []ScoredComment `json:"top_comments"`
	AllComments []ScoredComment `json:"all_comments"`
	ConfigUsed  ConfigUsed      `json:"config_used"`
}
