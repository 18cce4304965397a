package score

import "testing"

func TestMMR_EmptyCandidates(t *testing.T) {
	got := MMR([]float64{1, 0}, nil, 0.65, 5)
	if len(got) != 0 {
		t.Errorf("expected empty selection, got %v", got)
	}
}

func TestMMR_FirstPickMaximizesQuerySimilarity(t *testing.T) {
	query := []float64{1, 0}
	candidates := [][]float64{
		{0, 1},
		{1, 0.1},
		{1, 0}, // Exactly the query direction
		{0.5, 0.5},
	}

	got := MMR(query, candidates, 0.65, 1)
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("expected first pick 2, got %v", got)
	}
}

func TestMMR_NoDuplicatesAndBounded(t *testing.T) {
	query := []float64{1, 1, 1}
	candidates := [][]float64{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{1, 1, 0},
		{0, 1, 1},
	}

	for k := 0; k <= 7; k++ {
		got := MMR(query, candidates, 0.65, k)

		max := k
		if max > len(candidates) {
			max = len(candidates)
		}
		if len(got) > max {
			t.Errorf("k=%d: selected %d items, want <= %d", k, len(got), max)
		}

		seen := make(map[int]bool)
		for _, idx := range got {
			if seen[idx] {
				t.Errorf("k=%d: duplicate index %d in %v", k, idx, got)
			}
			seen[idx] = true
			if idx < 0 || idx >= len(candidates) {
				t.Errorf("k=%d: index %d out of range", k, idx)
			}
		}
	}
}

func TestMMR_PrefersDiversity(t *testing.T) {
	// Candidates 0 and 1 are near-identical; with full diversity weight the
	// second pick must be the distinct candidate 2
	query := []float64{1, 0.5}
	candidates := [][]float64{
		{1, 0.5},
		{1, 0.499},
		{0, 1},
	}

	got := MMR(query, candidates, 0.0, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 picks, got %v", got)
	}
	if got[0] != 0 {
		t.Errorf("expected first pick 0, got %d", got[0])
	}
	if got[1] != 2 {
		t.Errorf("expected diverse second pick 2, got %d", got[1])
	}
}

func TestMMR_SelectionOrderPreserved(t *testing.T) {
	query := []float64{1, 0}
	candidates := [][]float64{
		{0.2, 1},
		{1, 0},
	}

	got := MMR(query, candidates, 0.65, 2)
	if len(got) != 2 || got[0] != 1 || got[1] != 0 {
		t.Errorf("expected selection order [1 0], got %v", got)
	}
}
