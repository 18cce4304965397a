package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"threadlens/internal/cache"
	"threadlens/internal/llm"
	"threadlens/internal/model"
	"threadlens/internal/score"
	"threadlens/internal/stance"
	"threadlens/internal/summary"
	"threadlens/internal/worker"
)

// embedCacheTTL bounds how long embedding vectors are reused across
// invocations of the same pipeline instance
const embedCacheTTL = 30 * time.Minute

// Pipeline composes embedding, stance classification, controversy
// aggregation, diversified selection, synthesis and ranking into one
// analysis call. A pipeline instance is safe for concurrent use; each
// invocation's configuration is passed by value.
type Pipeline struct {
	embedCache cache.Cache
	limiter    *worker.Limiter
	verbose    bool
	newClient  func(model.Config) (llm.Client, error)
}

// Option tweaks pipeline construction
type Option func(*Pipeline)

// WithVerbose enables progress output on stderr
func WithVerbose(v bool) Option {
	return func(p *Pipeline) { p.verbose = v }
}

// WithChatRate throttles chat calls to requestsPerSecond with the given burst
func WithChatRate(requestsPerSecond float64, burst int) Option {
	return func(p *Pipeline) { p.limiter = worker.NewLimiter(requestsPerSecond, burst) }
}

// WithClientFactory overrides how generation clients are constructed
// (used by tests to substitute a stub adapter)
func WithClientFactory(factory func(model.Config) (llm.Client, error)) Option {
	return func(p *Pipeline) { p.newClient = factory }
}

// NewPipeline creates a pipeline with an in-memory embedding cache
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		embedCache: cache.NewMemoryCache(embedCacheTTL, 2*embedCacheTTL),
		newClient:  llm.NewClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Analyze runs the full pipeline over the comment batch. When no comment has
// non-empty text it returns the empty result without any service call.
// Malformed model responses are absorbed into deterministic fallbacks; only
// configuration errors and exhausted-retry service failures abort the call.
//
// Textless comments are excluded from the embedding batch; their novelty is
// imputed as 0 and they remain in the final ranked set.
func (p *Pipeline) Analyze(ctx context.Context, comments []model.Comment, originalPost string, cfg model.Config) (*model.AnalysisResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Collect the comments that carry text; their batch index is needed to
	// map novelty scores back to the full comment list.
	texts := make([]string, 0, len(comments))
	textIdx := make([]int, 0, len(comments))
	for i, c := range comments {
		if c.HasText() {
			texts = append(texts, c.Text)
			textIdx = append(textIdx, i)
		}
	}

	if len(texts) == 0 {
		return &model.AnalysisResult{
			Summary:     model.EmptySummary(),
			TopComments: []model.ScoredComment{},
			AllComments: []model.ScoredComment{},
			ConfigUsed:  cfg.Used(),
		}, nil
	}

	client, err := p.newClient(cfg)
	if err != nil {
		return nil, err
	}

	// 1. Embed all non-empty texts
	p.logf("embedding %d comments with %s", len(texts), cfg.EmbedModel)
	embeddings, err := p.embedTexts(ctx, client, cfg.EmbedModel, texts)
	if err != nil {
		return nil, fmt.Errorf("embed comments: %w", err)
	}

	// 2. Novelty over the embedded batch
	noveltyK := cfg.TopK
	if noveltyK > score.NoveltyK {
		noveltyK = score.NoveltyK
	}
	novelty := score.Novelty(embeddings, noveltyK)

	// 3. Classify every comment, including textless ones
	p.logf("classifying %d comments with %s", len(comments), cfg.ChatModel)
	classifier := stance.NewClassifier(client, cfg.ChatModel, cfg.ClassifyWorkers, p.limiter)
	records, err := classifier.ClassifyAll(ctx, comments, originalPost)
	if err != nil {
		return nil, fmt.Errorf("classify comments: %w", err)
	}

	// 4. Controversy over all classified comments
	stances := make([]model.Stance, len(records))
	intensities := make([]int, len(records))
	for i, r := range records {
		stances[i] = r.Stance
		intensities[i] = r.Intensity
	}
	controversy := score.Controversy(stances, intensities)

	// 5. Select representatives around the centroid
	maxReps := cfg.MaxSummaryComments
	if maxReps > len(texts) {
		maxReps = len(texts)
	}
	centroid := score.Centroid(embeddings)
	repIdx := score.MMR(centroid, embeddings, cfg.MMRLambda, maxReps)
	representatives := make([]string, len(repIdx))
	for i, idx := range repIdx {
		representatives[i] = texts[idx]
	}

	// 6. Synthesize the summary
	p.logf("summarizing %d representative comments", len(representatives))
	gen := summary.NewGenerator(client, cfg.ChatModel)
	summ, err := gen.Generate(ctx, originalPost, representatives)
	if err != nil {
		return nil, fmt.Errorf("generate summary: %w", err)
	}

	// 7. Merge per-comment fields and rank
	popularity := score.Popularity(comments)
	scored := make([]model.ScoredComment, len(comments))
	for i, c := range comments {
		scored[i] = model.ScoredComment{
			Comment:      c,
			StanceRecord: records[i],
			Controversy:  controversy[i],
			Popularity:   popularity[i],
		}
	}
	for batchPos, commentPos := range textIdx {
		scored[commentPos].Novelty = novelty[batchPos]
	}

	all, top := score.Rank(scored, cfg.Weights, cfg.TopK)

	return &model.AnalysisResult{
		Summary:     summ,
		TopComments: top,
		AllComments: all,
		ConfigUsed:  cfg.Used(),
	}, nil
}

// embedTexts returns one vector per text, reusing cached vectors and
// embedding only the misses in a single batch call
func (p *Pipeline) embedTexts(ctx context.Context, client llm.Client, embedModel string, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))

	missing := make([]string, 0, len(texts))
	missingIdx := make([]int, 0, len(texts))
	for i, t := range texts {
		if vec, ok := p.embedCache.Get(cache.Key(embedModel, t)); ok {
			vectors[i] = vec
			continue
		}
		missing = append(missing, t)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) > 0 {
		fresh, err := client.Embed(ctx, embedModel, missing)
		if err != nil {
			return nil, err
		}
		for i, vec := range fresh {
			vectors[missingIdx[i]] = vec
			p.embedCache.Set(cache.Key(embedModel, missing[i]), vec, embedCacheTTL)
		}
	}

	return vectors, nil
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
