package model

import (
	"encoding/json"
	"testing"
)

func TestCommentHasText(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"hello", true},
		{"", false},
		{"   ", false},
		{"\n\t", false},
		{" x ", true},
	}
	for _, tt := range tests {
		c := Comment{Text: tt.text}
		if got := c.HasText(); got != tt.want {
			t.Errorf("HasText(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestValidStance(t *testing.T) {
	for _, s := range []Stance{StanceSupport, StanceOppose, StanceNeutral} {
		if !ValidStance(s) {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []Stance{"", "agree", "SUPPORT", "mixed"} {
		if ValidStance(s) {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestFallbackStance(t *testing.T) {
	fb := FallbackStance()
	if fb.Stance != StanceNeutral || fb.Intensity != 2 || fb.Reason != "fallback" {
		t.Errorf("unexpected fallback %+v", fb)
	}
}

func TestClampIntensity(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 1}, {-3, 1}, {1, 1}, {3, 3}, {5, 5}, {6, 5}, {100, 5},
	}
	for _, tt := range tests {
		if got := ClampIntensity(tt.in); got != tt.want {
			t.Errorf("ClampIntensity(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCommentJSONRoundTrip(t *testing.T) {
	raw := `{
		"id": "c1",
		"author": "alice",
		"text": "interesting point",
		"age": "2 hours ago",
		"timestamp": "2026-08-29T10:00:00Z",
		"depth": 1,
		"parent_id": "c0",
		"upvotes": 12
	}`

	var c Comment
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.ID != "c1" || c.Author != "alice" || c.Depth != 1 {
		t.Errorf("unexpected comment %+v", c)
	}
	if c.ParentID != "c0" {
		t.Errorf("ParentID = %q", c.ParentID)
	}
	if c.Upvotes == nil || *c.Upvotes != 12 {
		t.Errorf("Upvotes = %v", c.Upvotes)
	}
}

func TestCommentMissingUpvotes(t *testing.T) {
	var c Comment
	if err := json.Unmarshal([]byte(`{"id":"c1","text":"hi"}`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Upvotes != nil {
		t.Errorf("missing upvotes must stay nil, got %v", *c.Upvotes)
	}
}
