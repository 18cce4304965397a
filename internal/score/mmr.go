package score

import "math"

// MMR greedily selects up to k candidate indices balancing relevance to the
// query vector against diversity from already-selected candidates
// (maximal marginal relevance). The first pick maximizes similarity to the
// query; each later pick maximizes
//
//	lambda·sim(candidate, query) − (1−lambda)·max(sim(candidate, selected))
//
// Ties go to the first index encountered. Output order is selection order.
func MMR(query []float64, candidates [][]float64, lambda float64, k int) []int {
	n := len(candidates)
	if n == 0 || k <= 0 {
		return []int{}
	}
	if k > n {
		k = n
	}

	simToQuery := make([]float64, n)
	for i, c := range candidates {
		simToQuery[i] = Cosine(c, query)
	}

	selected := make([]int, 0, k)
	picked := make([]bool, n)

	// Maximum similarity to any already-selected candidate, updated per pick
	maxSimSelected := make([]float64, n)
	for i := range maxSimSelected {
		maxSimSelected[i] = math.Inf(-1)
	}

	for len(selected) < k {
		bestIdx := -1
		bestScore := math.Inf(-1)

		for i := 0; i < n; i++ {
			if picked[i] {
				continue // Never reselect
			}
			var s float64
			if len(selected) == 0 {
				s = simToQuery[i]
			} else {
				s = lambda*simToQuery[i] - (1-lambda)*maxSimSelected[i]
			}
			if s > bestScore {
				bestScore = s
				bestIdx = i
			}
		}

		if bestIdx < 0 || math.IsInf(bestScore, -1) {
			break
		}

		picked[bestIdx] = true
		selected = append(selected, bestIdx)

		for i := 0; i < n; i++ {
			if picked[i] {
				continue
			}
			if s := Cosine(candidates[i], candidates[bestIdx]); s > maxSimSelected[i] {
				maxSimSelected[i] = s
			}
		}
	}

	return selected
}
