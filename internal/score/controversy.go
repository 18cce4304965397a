package score

import (
	"math"

	"threadlens/internal/model"
)

// Controversy combines polarization entropy, intensity and a minority bonus
// into per-comment controversy scores in [0,1].
//
// The batch-level base is 0.5·entropy + 0.5·avgIntensity where entropy is the
// binary entropy over support/oppose shares (neutral excluded; max 1.0 at a
// 50/50 split) and avgIntensity is the mean clamped intensity divided by 5.
// Each comment then gets a minority bonus (1 − its stance's share of the
// batch) · (intensity/5), and the resulting vector is min-max normalized.
func Controversy(stances []model.Stance, intensities []int) []float64 {
	n := len(stances)
	if n == 0 {
		return []float64{}
	}

	counts := map[model.Stance]int{}
	for _, s := range stances {
		counts[s]++
	}
	supportCount := counts[model.StanceSupport]
	opposeCount := counts[model.StanceOppose]
	total := supportCount + opposeCount

	entropy := 0.0
	if total > 0 {
		pSupport := float64(supportCount) / float64(total)
		pOppose := float64(opposeCount) / float64(total)
		entropy = binaryEntropyTerm(pSupport) + binaryEntropyTerm(pOppose)
	}

	var intensitySum float64
	for _, v := range intensities {
		intensitySum += float64(model.ClampIntensity(v))
	}
	avgIntensity := intensitySum / float64(n) / 5.0

	base := 0.5*entropy + 0.5*avgIntensity

	perComment := make([]float64, n)
	for i, s := range stances {
		share := float64(counts[s]) / float64(n)
		bonus := (1 - share) * float64(model.ClampIntensity(intensities[i])) / 5.0
		perComment[i] = 0.5*base + 0.5*bonus
	}

	return minMaxNormalize(perComment)
}

// binaryEntropyTerm returns −p·log2(p), with the 0·log(0) = 0 convention
func binaryEntropyTerm(p float64) float64 {
	if p <= 0 {
		return 0
	}
	return -p * math.Log2(p)
}
