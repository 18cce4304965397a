package score

import "math"

// normEpsilon guards min-max normalization against near-zero spreads
const normEpsilon = 1e-9

// Cosine returns the cosine similarity between two vectors.
// Zero-norm vectors yield 0.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// similarityMatrix computes the full pairwise cosine-similarity matrix
func similarityMatrix(vectors [][]float64) [][]float64 {
	n := len(vectors)
	sim := make([][]float64, n)
	for i := range sim {
		sim[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		sim[i][i] = 1
		for j := i + 1; j < n; j++ {
			s := Cosine(vectors[i], vectors[j])
			sim[i][j] = s
			sim[j][i] = s
		}
	}
	return sim
}

// Centroid returns the element-wise mean of the vectors, or nil for an
// empty batch
func Centroid(vectors [][]float64) []float64 {
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	centroid := make([]float64, dim)
	for _, v := range vectors {
		for i := 0; i < dim && i < len(v); i++ {
			centroid[i] += v[i]
		}
	}
	for i := range centroid {
		centroid[i] /= float64(len(vectors))
	}
	return centroid
}

// minMaxNormalize rescales values to [0,1] in place. When the spread is
// below normEpsilon every value becomes 0 to avoid amplifying noise.
func minMaxNormalize(values []float64) []float64 {
	if len(values) == 0 {
		return values
	}
	minV, maxV := values[0], values[0]
	for _, v := range values[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	if maxV-minV < normEpsilon {
		for i := range values {
			values[i] = 0
		}
		return values
	}
	for i := range values {
		values[i] = (values[i] - minV) / (maxV - minV)
	}
	return values
}
