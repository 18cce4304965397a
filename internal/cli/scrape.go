package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"threadlens/internal/scrape"
)

var (
	scrapeMaxDepth int
	scrapeLimit    int
	scrapeTimeout  time.Duration
	scrapeOut      string
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape <story-id>",
	Short: "Scrape the comments of a Hacker News story",
	Long: `Scrape fetches a Hacker News discussion page and emits its comments as a
JSON array suitable for 'threadlens analyze --input'.

Deleted and dead comments are kept with empty text so thread structure stays
intact.

Example:
  threadlens scrape 40000000
  threadlens scrape 40000000 --max-depth 2 --limit 200 --out comments.json`,
	Args: cobra.ExactArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().IntVar(&scrapeMaxDepth, "max-depth", 2, "include only comments nested at most this deep (-1 for no limit)")
	scrapeCmd.Flags().IntVar(&scrapeLimit, "limit", 0, "cap the number of comments (0 for no cap)")
	scrapeCmd.Flags().DurationVar(&scrapeTimeout, "timeout", 30*time.Second, "fetch timeout")
	scrapeCmd.Flags().StringVar(&scrapeOut, "out", "", "write comments JSON to file (default: stdout)")
}

func runScrape(cmd *cobra.Command, args []string) error {
	id := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
	defer cancel()

	scraper := scrape.NewScraper(scrapeTimeout)
	story, err := scraper.FetchStory(ctx, id, scrape.ScrapeOptions{
		MaxDepth: scrapeMaxDepth,
		Limit:    scrapeLimit,
	})
	if err != nil {
		return fmt.Errorf("scrape story %s: %w", id, err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Story: %s\n", story.Title)
		fmt.Fprintf(os.Stderr, "Comments: %d\n", len(story.Comments))
	}

	data, err := json.MarshalIndent(story.Comments, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal comments: %w", err)
	}
	data = append(data, '\n')

	if scrapeOut == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(scrapeOut, data, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
