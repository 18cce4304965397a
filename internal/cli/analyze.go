package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"threadlens/internal/model"
	"threadlens/internal/pipeline"
	"threadlens/internal/scrape"
)

var (
	inputPath        string
	originalPostPath string
	storyID          string
	provider         string
	host             string
	chatModel        string
	embedModel       string
	topK             int
	maxSummary       int
	weightsFlag      string
	classifyWorkers  int
	analyzeTimeout   time.Duration
	outJSON          string
	outMD            string
	outCSV           string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze discussion comments into a ranked, explainable digest",
	Long: `Analyze reads a JSON array of comment records and produces:
- A per-comment stance classification (support/oppose/neutral, intensity 1-5)
- Novelty and controversy scores normalized to [0,1]
- A short synthesis of a diversified subset of comments
- A single weighted ranking of all comments

Example:
  threadlens analyze --input comments.json --original-post post.txt
  threadlens analyze -i - < comments.json
  threadlens analyze --story 40000000 --topk 5 --out-md digest.md
  threadlens analyze -i comments.json --weights 1,0,0 --out-json result.json`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Input flags
	analyzeCmd.Flags().StringVarP(&inputPath, "input", "i", "", "path to JSON array of comments, or - for stdin")
	analyzeCmd.Flags().StringVar(&originalPostPath, "original-post", "", "optional path to original post text, or - for stdin")
	analyzeCmd.Flags().StringVar(&storyID, "story", "", "scrape this Hacker News story instead of reading --input")

	// Model flags
	analyzeCmd.Flags().StringVar(&provider, "provider", "", "generation provider (ollama, openai)")
	analyzeCmd.Flags().StringVar(&host, "host", "", "generation service base URL")
	analyzeCmd.Flags().StringVar(&chatModel, "chat-model", "", "chat model name")
	analyzeCmd.Flags().StringVar(&embedModel, "embed-model", "", "embedding model name")

	// Pipeline flags
	analyzeCmd.Flags().IntVar(&topK, "topk", 0, "top-K comments to rank")
	analyzeCmd.Flags().IntVar(&maxSummary, "max-summary-comments", 0, "max comments selected for the summary")
	analyzeCmd.Flags().StringVar(&weightsFlag, "weights", "", "comma-separated weights: novelty,controversy,popularity")
	analyzeCmd.Flags().IntVar(&classifyWorkers, "workers", 0, "concurrent stance-classification calls")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 10*time.Minute, "overall analysis timeout")

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "out-json", "", "write result JSON to file (default: stdout)")
	analyzeCmd.Flags().StringVar(&outMD, "out-md", "", "write Markdown digest to file")
	analyzeCmd.Flags().StringVar(&outCSV, "out-csv", "", "write all ranked comments as CSV")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	comments, originalPost, err := readAnalyzeInput(ctx)
	if err != nil {
		return err
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing %d comments\n", len(comments))
		fmt.Fprintf(os.Stderr, "Provider: %s (%s)\n", cfg.Provider, cfg.Host)
		fmt.Fprintf(os.Stderr, "Models: chat=%s embed=%s\n\n", cfg.ChatModel, cfg.EmbedModel)
	}

	p := pipeline.NewPipeline(pipeline.WithVerbose(verbose))
	result, err := p.Analyze(ctx, comments, originalPost, cfg)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	if err := pipeline.RenderJSON(result, outJSON); err != nil {
		return err
	}
	if verbose && outJSON != "" {
		fmt.Fprintf(os.Stderr, "Wrote JSON: %s\n", outJSON)
	}

	if outMD != "" {
		if err := pipeline.RenderMarkdown(result, outMD); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote Markdown: %s\n", outMD)
		}
	}

	if outCSV != "" {
		if err := pipeline.RenderCSV(result, outCSV); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote CSV: %s\n", outCSV)
		}
	}

	return nil
}

// readAnalyzeInput loads the comment batch and optional original post, either
// from files/stdin or by scraping a story page
func readAnalyzeInput(ctx context.Context) ([]model.Comment, string, error) {
	if storyID != "" {
		scraper := scrape.NewScraper(30 * time.Second)
		story, err := scraper.FetchStory(ctx, storyID, scrape.ScrapeOptions{MaxDepth: -1})
		if err != nil {
			return nil, "", fmt.Errorf("scrape story: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Scraped %d comments from story %s\n", len(story.Comments), storyID)
		}
		return story.Comments, story.OriginalPost(), nil
	}

	if inputPath == "" {
		return nil, "", fmt.Errorf("either --input or --story is required")
	}

	data, err := readFileOrStdin(inputPath)
	if err != nil {
		return nil, "", fmt.Errorf("read input: %w", err)
	}

	var comments []model.Comment
	if err := json.Unmarshal(data, &comments); err != nil {
		return nil, "", fmt.Errorf("input must be a JSON array of comment objects: %w", err)
	}

	originalPost := ""
	if originalPostPath != "" {
		postData, err := readFileOrStdin(originalPostPath)
		if err != nil {
			return nil, "", fmt.Errorf("read original post: %w", err)
		}
		originalPost = string(postData)
	}

	return comments, originalPost, nil
}

// buildConfig layers CLI flags over the file/env base configuration
func buildConfig() (model.Config, error) {
	cfg := loadBaseConfig()

	if provider != "" {
		cfg.Provider = provider
	}
	if host != "" {
		cfg.Host = host
	}
	if chatModel != "" {
		cfg.ChatModel = chatModel
	}
	if embedModel != "" {
		cfg.EmbedModel = embedModel
	}
	if topK != 0 {
		cfg.TopK = topK
	}
	if maxSummary != 0 {
		cfg.MaxSummaryComments = maxSummary
	}
	if classifyWorkers != 0 {
		cfg.ClassifyWorkers = classifyWorkers
	}

	if weightsFlag != "" {
		weights, err := parseWeights(weightsFlag)
		if err != nil {
			return model.Config{}, err
		}
		cfg.Weights = weights
	}

	return cfg, nil
}

// parseWeights parses "novelty,controversy,popularity"; missing entries pad
// with zero
func parseWeights(s string) ([3]float64, error) {
	parts := strings.Split(s, ",")
	values := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return [3]float64{}, fmt.Errorf("invalid weights %q: %w", s, err)
		}
		values = append(values, v)
	}
	return model.PadWeights(values), nil
}

func readFileOrStdin(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
