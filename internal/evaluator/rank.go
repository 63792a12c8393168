package evaluator

import (
	"cmp"
	"math"
	"slices"
)

// TopOffsets returns the offsets of the k highest scores, best first.
//
// Each selected score is mapped back to the first position holding that value,
// so classes with exactly equal scores collapse onto the earliest index and the
// same offset may appear more than once. NaN scores rank last.
func TopOffsets(scores []float32, k int) []int {
	ranked := Rank(scores, k)
	if ranked == nil {
		return nil
	}
	offsets := make([]int, len(ranked))
	for i, p := range ranked {
		offsets[i] = p.Offset
	}
	return offsets
}

// Rank is TopOffsets keeping each offset's score.
func Rank(scores []float32, k int) []Prediction {
	n := min(k, len(scores))
	if n <= 0 {
		return nil
	}

	sorted := slices.Clone(scores)
	slices.SortFunc(sorted, func(a, b float32) int { return cmp.Compare(b, a) })

	out := make([]Prediction, n)
	for i, v := range sorted[:n] {
		out[i] = Prediction{Offset: firstIndex(scores, v), Score: v}
	}
	return out
}

func firstIndex(scores []float32, v float32) int {
	nan := math.IsNaN(float64(v))
	for i, s := range scores {
		if s == v || (nan && math.IsNaN(float64(s))) {
			return i
		}
	}
	return -1
}
