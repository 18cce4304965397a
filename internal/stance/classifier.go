package stance

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"threadlens/internal/llm"
	"threadlens/internal/model"
	"threadlens/internal/worker"
)

// SystemPrompt demands strict JSON-only output from the model
const SystemPrompt = "You are a precise, concise analyst. When asked to output structured data, " +
	"return strictly valid JSON without any surrounding text or code fences. " +
	"Do not add any extra commentary."

// taskInstructions is the fixed per-comment classification request
const taskInstructions = `You will receive:
- The ORIGINAL POST content (may be empty).
- A single COMMENT.

Task:
1) STANCE: "support", "oppose", or "neutral" toward the post's main claim(s).
2) INTENSITY: 1-5 (1 = calm/weak, 5 = very strong).
3) REASONS: short phrase (<= 12 words) explaining your judgement.

Return exactly:
{"stance":"support|oppose|neutral","intensity":<1-5>,"reasons":"short phrase"}`

// Classifier assigns a stance record to each comment by prompting the
// generation service. Malformed responses never propagate: every parse
// failure degrades to the deterministic fallback record.
type Classifier struct {
	client  llm.Client
	model   string
	pool    *worker.Pool
	limiter *worker.Limiter
}

// NewClassifier creates a classifier running up to workers concurrent calls,
// optionally gated by limiter (nil disables throttling)
func NewClassifier(client llm.Client, chatModel string, workers int, limiter *worker.Limiter) *Classifier {
	return &Classifier{
		client:  client,
		model:   chatModel,
		pool:    worker.NewPool(workers),
		limiter: limiter,
	}
}

// ClassifyAll returns one stance record per input comment, in input order.
// Comments without text receive the fallback record without a service call.
// Only transport failures (exhausted retries) abort the batch.
func (c *Classifier) ClassifyAll(ctx context.Context, comments []model.Comment, originalPost string) ([]model.StanceRecord, error) {
	records := make([]model.StanceRecord, len(comments))

	err := c.pool.Run(ctx, len(comments), func(ctx context.Context, i int) error {
		if !comments[i].HasText() {
			rec := model.FallbackStance()
			rec.Reason = ""
			records[i] = rec
			return nil
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		rec, err := c.Classify(ctx, comments[i].Text, originalPost)
		if err != nil {
			return fmt.Errorf("classify comment %d: %w", i, err)
		}
		records[i] = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Classify judges a single comment against the original post
func (c *Classifier) Classify(ctx context.Context, commentText, originalPost string) (model.StanceRecord, error) {
	userPrompt := fmt.Sprintf("ORIGINAL POST:\n%s\n\nCOMMENT:\n%s\n\n%s",
		originalPost, commentText, taskInstructions)

	raw, err := c.client.Chat(ctx, c.model, SystemPrompt, userPrompt)
	if err != nil {
		return model.StanceRecord{}, err
	}

	return ParseResponse(raw), nil
}

// rawStance is the wire shape the model is instructed to return
type rawStance struct {
	Stance    string          `json:"stance"`
	Intensity json.RawMessage `json:"intensity"`
	Reasons   string          `json:"reasons"`
}

// ParseResponse extracts a stance record from a raw model response.
// Any parse failure yields the fallback record; an invalid stance value
// degrades to neutral and intensity is clamped to [1,5].
func ParseResponse(raw string) model.StanceRecord {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return model.FallbackStance()
	}

	var parsed rawStance
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return model.FallbackStance()
	}
	if parsed.Stance == "" {
		return model.FallbackStance()
	}

	rec := model.StanceRecord{
		Stance:    model.Stance(parsed.Stance),
		Intensity: parseIntensity(parsed.Intensity),
		Reason:    parsed.Reasons,
	}
	if !model.ValidStance(rec.Stance) {
		rec.Stance = model.StanceNeutral
	}
	if rec.Reason == "" {
		rec.Reason = "fallback"
	}
	return rec
}

// parseIntensity accepts both numeric and quoted intensities, defaulting to 2
func parseIntensity(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 2
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return model.ClampIntensity(int(n))
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(s), "%g", &f); err == nil {
			return model.ClampIntensity(int(f))
		}
	}
	return 2
}
