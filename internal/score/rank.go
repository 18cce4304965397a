package score

import (
	"sort"

	"threadlens/internal/model"
)

// Popularity min-max normalizes the upvote counts of a comment batch.
// Comments without an upvote value count as 0. When no comment carries one,
// the result is a zero vector of matching length.
func Popularity(comments []model.Comment) []float64 {
	pop := make([]float64, len(comments))
	any := false
	for i, c := range comments {
		if c.Upvotes != nil {
			pop[i] = *c.Upvotes
			any = true
		}
	}
	if !any {
		return pop
	}
	return minMaxNormalize(pop)
}

// Rank fills in must_read_score = w1·novelty + w2·controversy + w3·popularity
// for every comment and sorts descending by score. The sort is stable:
// ties preserve the original input order. The returned top slice is exactly
// the prefix of the sorted slice of length min(topK, len(comments)).
func Rank(comments []model.ScoredComment, weights [3]float64, topK int) (all, top []model.ScoredComment) {
	all = make([]model.ScoredComment, len(comments))
	copy(all, comments)

	for i := range all {
		all[i].MustReadScore = weights[0]*all[i].Novelty +
			weights[1]*all[i].Controversy +
			weights[2]*all[i].Popularity
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].MustReadScore > all[j].MustReadScore
	})

	n := topK
	if n > len(all) {
		n = len(all)
	}
	if n < 0 {
		n = 0
	}
	return all, all[:n]
}
