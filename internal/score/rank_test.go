package score

import (
	"testing"

	"threadlens/internal/model"
)

func scoredComment(id string, novelty, controversy, popularity float64) model.ScoredComment {
	return model.ScoredComment{
		Comment:     model.Comment{ID: id},
		Novelty:     novelty,
		Controversy: controversy,
		Popularity:  popularity,
	}
}

func TestRank_TopIsPrefixOfAll(t *testing.T) {
	comments := []model.ScoredComment{
		scoredComment("a", 0.1, 0.2, 0),
		scoredComment("b", 0.9, 0.8, 0),
		scoredComment("c", 0.5, 0.5, 0),
	}

	all, top := Rank(comments, model.DefaultWeights(), 2)

	if len(all) != 3 {
		t.Fatalf("expected 3 ranked comments, got %d", len(all))
	}
	if len(top) != 2 {
		t.Fatalf("expected 2 top comments, got %d", len(top))
	}
	for i := range top {
		if top[i].ID != all[i].ID {
			t.Errorf("top[%d] = %s, want prefix of all (%s)", i, top[i].ID, all[i].ID)
		}
	}
}

func TestRank_TopKExceedsBatch(t *testing.T) {
	comments := []model.ScoredComment{scoredComment("a", 0.5, 0.5, 0)}

	_, top := Rank(comments, model.DefaultWeights(), 10)
	if len(top) != 1 {
		t.Errorf("expected min(topK, N) = 1 top comments, got %d", len(top))
	}
}

func TestRank_NoveltyOnlyWeights(t *testing.T) {
	// Weight vector (1,0,0) must order strictly by novelty descending
	comments := []model.ScoredComment{
		scoredComment("low", 0.2, 0.9, 1),
		scoredComment("high", 0.9, 0.1, 0),
		scoredComment("mid", 0.5, 0.5, 0.5),
	}

	all, _ := Rank(comments, [3]float64{1, 0, 0}, 3)
	wantOrder := []string{"high", "mid", "low"}
	for i, want := range wantOrder {
		if all[i].ID != want {
			t.Errorf("position %d: got %s, want %s", i, all[i].ID, want)
		}
	}
	for i, want := range []float64{0.9, 0.5, 0.2} {
		if all[i].MustReadScore != want {
			t.Errorf("position %d: score %g, want %g", i, all[i].MustReadScore, want)
		}
	}
}

func TestRank_StableOnTies(t *testing.T) {
	// Equal scores must preserve input order
	comments := []model.ScoredComment{
		scoredComment("first", 0.5, 0.5, 0),
		scoredComment("second", 0.5, 0.5, 0),
		scoredComment("third", 0.5, 0.5, 0),
	}

	all, _ := Rank(comments, model.DefaultWeights(), 3)
	wantOrder := []string{"first", "second", "third"}
	for i, want := range wantOrder {
		if all[i].ID != want {
			t.Errorf("position %d: got %s, want %s (stable sort required)", i, all[i].ID, want)
		}
	}
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	comments := []model.ScoredComment{
		scoredComment("a", 0.1, 0, 0),
		scoredComment("b", 0.9, 0, 0),
	}

	Rank(comments, [3]float64{1, 0, 0}, 2)
	if comments[0].ID != "a" || comments[1].ID != "b" {
		t.Error("input slice order must not change")
	}
	if comments[0].MustReadScore != 0 {
		t.Error("input slice must not receive scores")
	}
}

func TestPopularity(t *testing.T) {
	up := func(v float64) *float64 { return &v }

	t.Run("no upvotes anywhere", func(t *testing.T) {
		comments := []model.Comment{{ID: "a"}, {ID: "b"}}
		got := Popularity(comments)
		if len(got) != 2 || got[0] != 0 || got[1] != 0 {
			t.Errorf("expected zero vector, got %v", got)
		}
	})

	t.Run("normalized", func(t *testing.T) {
		comments := []model.Comment{
			{ID: "a", Upvotes: up(10)},
			{ID: "b"},
			{ID: "c", Upvotes: up(50)},
		}
		got := Popularity(comments)
		if got[2] != 1 {
			t.Errorf("max upvotes should normalize to 1, got %g", got[2])
		}
		if got[1] != 0 {
			t.Errorf("missing upvotes should count as the minimum, got %g", got[1])
		}
		if got[0] <= got[1] || got[0] >= got[2] {
			t.Errorf("expected got[1] < got[0] < got[2], got %v", got)
		}
	})

	t.Run("uniform upvotes", func(t *testing.T) {
		comments := []model.Comment{
			{ID: "a", Upvotes: up(7)},
			{ID: "b", Upvotes: up(7)},
		}
		got := Popularity(comments)
		if got[0] != 0 || got[1] != 0 {
			t.Errorf("uniform upvotes should normalize to zeros, got %v", got)
		}
	})
}
