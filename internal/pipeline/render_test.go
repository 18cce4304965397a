package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"threadlens/internal/model"
)

func sampleResult() *model.AnalysisResult {
	scored := []model.ScoredComment{
		{
			Comment:      model.Comment{ID: "c1", Author: "alice", Text: "strong take, \"quoted\""},
			StanceRecord: model.StanceRecord{Stance: model.StanceSupport, Intensity: 4, Reason: "endorses"},
			Novelty:      0.9, Controversy: 0.2, Popularity: 1, MustReadScore: 0.595,
		},
		{
			Comment:      model.Comment{ID: "c2", Author: "bob", Text: "meh"},
			StanceRecord: model.StanceRecord{Stance: model.StanceNeutral, Intensity: 2, Reason: "indifferent"},
		},
	}
	return &model.AnalysisResult{
		Summary: model.Summary{
			ExecutiveSummary: "A lively thread.",
			KeyPoints:        []string{"one point"},
			NextSteps:        []string{"do the thing"},
		},
		TopComments: scored[:1],
		AllComments: scored,
		ConfigUsed:  model.DefaultConfig().Used(),
	}
}

func TestRenderJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := RenderJSON(sampleResult(), path); err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var result model.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if result.Summary.ExecutiveSummary != "A lively thread." {
		t.Errorf("summary = %q", result.Summary.ExecutiveSummary)
	}
	if len(result.AllComments) != 2 || result.AllComments[0].MustReadScore != 0.595 {
		t.Errorf("all_comments = %+v", result.AllComments)
	}
}

func TestRenderMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	if err := RenderMarkdown(sampleResult(), path); err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	out := string(data)

	for _, want := range []string{
		"# Comment Analysis Results",
		"## Executive Summary",
		"A lively thread.",
		"## Key Points",
		"- one point",
		"## Next Steps",
		"- do the thing",
		"## Top Comments",
		"[c1] alice",
		"stance=support",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if strings.Contains(out, "[c2]") {
		t.Error("markdown should list only top comments")
	}
}

func TestRenderMarkdown_EmptySections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	result := sampleResult()
	result.Summary.KeyPoints = nil
	result.Summary.NextSteps = nil

	if err := RenderMarkdown(result, path); err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "## Key Points") {
		t.Error("empty key points section should be omitted")
	}
}

func TestRenderCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := RenderCSV(sampleResult(), path); err != nil {
		t.Fatalf("RenderCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "id" || rows[0][9] != "must_read_score" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "c1" || rows[1][3] != "support" || rows[1][9] != "0.595000" {
		t.Errorf("first row = %v", rows[1])
	}
	// Quotes in comment text survive the CSV round trip.
	if rows[1][2] != `strong take, "quoted"` {
		t.Errorf("text = %q", rows[1][2])
	}
}
