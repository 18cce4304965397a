package model

// Comment is a single discussion comment as produced by the scraper.
// Text is empty for deleted/dead comments; such comments are still ranked.
type Comment struct {
	ID        string   `json:"id,omitempty"`
	Author    string   `json:"author,omitempty"`
	Text      string   `json:"text"`
	Age       string   `json:"age,omitempty"`        // Human-readable age label (e.g., "3 hours ago")
	Timestamp string   `json:"timestamp,omitempty"`  // RFC 3339 timestamp derived from the age label
	Depth     int      `json:"depth"`                // Reply nesting level (0 = top level)
	ParentID  string   `json:"parent_id,omitempty"`  // ID of the parent comment, if any
	Upvotes   *float64 `json:"upvotes,omitempty"`    // Optional popularity measure
}

// HasText reports whether the comment carries analyzable text
func (c Comment) HasText() bool {
	return c.Text != ""
}

// Stance is the classified position of a comment toward the source post
type Stance string

const (
	StanceSupport Stance = "support"
	StanceOppose  Stance = "oppose"
	StanceNeutral Stance = "neutral"
)

// ValidStance reports whether s is one of the three recognized stances
func ValidStance(s Stance) bool {
	switch s {
	case StanceSupport, StanceOppose, StanceNeutral:
		return true
	}
	return false
}

// StanceRecord is the classifier's judgment for one comment
type StanceRecord struct {
	Stance    Stance `json:"stance"`
	Intensity int    `json:"intensity"` // Always clamped to [1,5]
	Reason    string `json:"reason"`    // Short phrase explaining the judgment
}

// FallbackStance is the deterministic record used when the model response
// cannot be parsed, or when a comment has no text to classify.
func FallbackStance() StanceRecord {
	return StanceRecord{Stance: StanceNeutral, Intensity: 2, Reason: "fallback"}
}

// ClampIntensity forces an intensity into the [1,5] range
func ClampIntensity(v int) int {
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}

// ScoredComment is a comment with its derived per-comment scores attached.
// Novelty, controversy and popularity are normalized to [0,1];
// MustReadScore is the weighted sum used for ranking.
type ScoredComment struct {
	Comment
	StanceRecord

	Novelty       float64 `json:"novelty"`
	Controversy   float64 `json:"controversy"`
	Popularity    float64 `json:"popularity"`
	MustReadScore float64 `json:"must_read_score"`
}
