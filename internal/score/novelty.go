package score

import (
	"math"
	"sort"
)

// NoveltyK is the cap on the number of nearest neighbors considered
const NoveltyK = 10

// Novelty converts an embedding batch into per-item novelty scores in [0,1].
// Novelty is 1 minus the mean similarity to the k most similar neighbors,
// min-max normalized across the batch. A single item has novelty 0.
func Novelty(vectors [][]float64, k int) []float64 {
	n := len(vectors)
	if n == 0 {
		return []float64{}
	}
	if n == 1 {
		return []float64{0}
	}

	sim := similarityMatrix(vectors)
	for i := range sim {
		sim[i][i] = math.Inf(-1) // Never count self-similarity
	}

	kEff := k
	if kEff > NoveltyK {
		kEff = NoveltyK
	}
	if kEff > n-1 {
		kEff = n - 1
	}
	if kEff < 1 {
		kEff = 1
	}

	novelty := make([]float64, n)
	row := make([]float64, n)
	for i := 0; i < n; i++ {
		copy(row, sim[i])
		sort.Float64s(row)

		var sum float64
		for _, s := range row[n-kEff:] {
			sum += s
		}
		novelty[i] = 1 - sum/float64(kEff)
	}

	return minMaxNormalize(novelty)
}
