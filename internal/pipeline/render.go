package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"threadlens/internal/model"
)

// RenderJSON writes the result as indented JSON to path, or to stdout when
// path is empty
func RenderJSON(result *model.AnalysisResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return nil
}

// RenderMarkdown writes a human-readable digest of the result
func RenderMarkdown(result *model.AnalysisResult, path string) error {
	var b strings.Builder

	b.WriteString("# Comment Analysis Results\n\n")
	b.WriteString("## Executive Summary\n\n")
	b.WriteString(result.Summary.ExecutiveSummary)
	b.WriteString("\n")

	if len(result.Summary.KeyPoints) > 0 {
		b.WriteString("\n## Key Points\n\n")
		for _, kp := range result.Summary.KeyPoints {
			fmt.Fprintf(&b, "- %s\n", kp)
		}
	}

	if len(result.Summary.NextSteps) > 0 {
		b.WriteString("\n## Next Steps\n\n")
		for _, ns := range result.Summary.NextSteps {
			fmt.Fprintf(&b, "- %s\n", ns)
		}
	}

	b.WriteString("\n## Top Comments\n\n")
	for _, c := range result.TopComments {
		fmt.Fprintf(&b, "- [%s] %s | stance=%s | score=%.3f\n",
			c.ID, c.Author, c.Stance, c.MustReadScore)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// RenderCSV writes all ranked comments as CSV
func RenderCSV(result *model.AnalysisResult, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create CSV: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close CSV: %w", closeErr)
		}
	}()

	w := csv.NewWriter(f)
	header := []string{
		"id", "author", "text", "stance", "intensity", "reason",
		"novelty", "controversy", "popularity", "must_read_score",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	for _, c := range result.AllComments {
		row := []string{
			c.ID,
			c.Author,
			c.Text,
			string(c.Stance),
			strconv.Itoa(c.Intensity),
			c.Reason,
			formatScore(c.Novelty),
			formatScore(c.Controversy),
			formatScore(c.Popularity),
			formatScore(c.MustReadScore),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
