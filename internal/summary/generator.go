package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"threadlens/internal/llm"
	"threadlens/internal/model"
	"threadlens/internal/stance"
)

// taskInstructions is the fixed synthesis request appended to every prompt
const taskInstructions = `Given the ORIGINAL POST (may be empty) and a list of representative COMMENTS, produce a concise analysis.
Return EXACTLY the following JSON object (no markdown, no code fences):
{
  "executive_summary": "4-8 crisp sentences",
  "key_points": ["bullet 1", "bullet 2"],
  "next_steps": ["actionable 1", "actionable 2"]
}`

// fencePattern matches fenced code blocks so their delimiters can be dropped
// before JSON extraction
var fencePattern = regexp.MustCompile("```[a-zA-Z]*")

// Generator produces the structured synthesis of the selected representative
// comments plus the source post
type Generator struct {
	client llm.Client
	model  string
}

// NewGenerator creates a generator using the given chat model
func NewGenerator(client llm.Client, chatModel string) *Generator {
	return &Generator{client: client, model: chatModel}
}

// Generate prompts the service and parses the structured synthesis.
// A response that does not parse at all becomes the executive summary
// verbatim, with empty key points and next steps.
func (g *Generator) Generate(ctx context.Context, originalPost string, representatives []string) (model.Summary, error) {
	var b strings.Builder
	for _, c := range representatives {
		b.WriteString("- ")
		b.WriteString(c)
		b.WriteString("\n")
	}

	userPrompt := fmt.Sprintf("ORIGINAL POST:\n%s\n\nCOMMENTS:\n%s\n%s",
		originalPost, strings.TrimRight(b.String(), "\n"), taskInstructions)

	raw, err := g.client.Chat(ctx, g.model, stance.SystemPrompt, userPrompt)
	if err != nil {
		return model.Summary{}, err
	}

	return ParseResponse(raw), nil
}

// rawSummary tolerates non-list values for the list fields
type rawSummary struct {
	ExecutiveSummary string          `json:"executive_summary"`
	KeyPoints        json.RawMessage `json:"key_points"`
	NextSteps        json.RawMessage `json:"next_steps"`
}

// ParseResponse decodes a model response into a Summary. Code-fence
// delimiters are stripped, then the first "{" through the last "}" is
// JSON-decoded; missing fields default to empty, non-list values for list
// fields are coerced to empty lists, and list items are stringified,
// trimmed, and dropped when empty.
func ParseResponse(raw string) model.Summary {
	cleaned := strings.TrimSpace(fencePattern.ReplaceAllString(raw, ""))

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end <= start {
		return fallbackSummary(raw)
	}

	var parsed rawSummary
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &parsed); err != nil {
		return fallbackSummary(raw)
	}

	return model.Summary{
		ExecutiveSummary: strings.TrimSpace(parsed.ExecutiveSummary),
		KeyPoints:        stringList(parsed.KeyPoints),
		NextSteps:        stringList(parsed.NextSteps),
	}
}

// fallbackSummary turns an unparseable response into the summary text itself
func fallbackSummary(raw string) model.Summary {
	s := model.EmptySummary()
	s.ExecutiveSummary = strings.TrimSpace(raw)
	return s
}

// stringList coerces a JSON value into a cleaned list of strings
func stringList(raw json.RawMessage) []string {
	out := []string{}
	if len(raw) == 0 {
		return out
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return out // Non-list values become empty lists
	}

	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			s = strings.Trim(string(item), `"`) // Stringify numbers and the like
		}
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
