// Package mock provides synthetic classifier outputs and an in-memory model
// runtime for tests that must not depend on the ONNX Runtime library.
package mock

import (
	"math"
)

// NewUniformScores returns classes scores all equal to value.
func NewUniformScores(classes int, value float32) []float32 {
	if classes <= 0 {
		return nil
	}
	data := make([]float32, classes)
	for i := range data {
		data[i] = value
	}
	return data
}

// NewRankedScores returns a score vector in which the offsets of ranking come
// first, in that order. ranking[0] gets high, later entries step down evenly
// towards low, and every other offset gets low. Offsets outside [0, classes)
// are ignored.
func NewRankedScores(classes int, ranking []int, high, low float32) []float32 {
	data := NewUniformScores(classes, low)
	if data == nil || len(ranking) == 0 {
		return data
	}
	step := (float64(high) - float64(low)) / float64(len(ranking))
	for i, offset := range ranking {
		if offset < 0 || offset >= classes {
			continue
		}
		data[offset] = float32(float64(high) - float64(i)*step)
	}
	return data
}

// Softmax turns logits into probabilities that sum to 1 without changing
// their order.
func Softmax(logits []float32) []float32 {
	if len(logits) == 0 {
		return nil
	}
	maxLogit := logits[0]
	for _, v := range logits[1:] {
		if v > maxLogit {
			maxLogit = v
		}
	}
	out := make([]float32, len(logits))
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v - maxLogit))
		out[i] = float32(e)
		sum += e
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
	return out
}
