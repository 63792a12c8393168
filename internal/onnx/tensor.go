package onnx

import (
	"errors"
	"fmt"
)

// Tensor is a float32 input for the classifier together with its NCHW shape.
type Tensor struct {
	Data  []float32
	Shape []int64
}

// NewImageTensor wraps the channel-major pixels of one image as a
// [1, c, h, w] tensor. data is used as-is, not copied.
func NewImageTensor(data []float32, c, h, w int) (Tensor, error) {
	if data == nil {
		return Tensor{}, errors.New("nil data")
	}
	if want := c * h * w; len(data) != want {
		return Tensor{}, fmt.Errorf("unexpected data length: got %d, want %d (%dx%dx%d)", len(data), want, c, h, w)
	}
	return Tensor{Data: data, Shape: []int64{1, int64(c), int64(h), int64(w)}}, nil
}

// ValidateNCHW rejects shapes that are not rank 4 or that carry a
// non-positive (dynamic) dimension.
func ValidateNCHW(shape []int64) error {
	if len(shape) != 4 {
		return fmt.Errorf("want a rank 4 NCHW shape, got rank %d", len(shape))
	}
	for i, v := range shape {
		if v <= 0 {
			return fmt.Errorf("dimension %d must be > 0, got %d", i, v)
		}
	}
	return nil
}

// VerifyImageTensor checks that t's data fills its shape exactly.
func VerifyImageTensor(t Tensor) error {
	if err := ValidateNCHW(t.Shape); err != nil {
		return err
	}
	want := t.Shape[0] * t.Shape[1] * t.Shape[2] * t.Shape[3]
	if int64(len(t.Data)) != want {
		return fmt.Errorf("tensor holds %d values, shape %v needs %d", len(t.Data), t.Shape, want)
	}
	return nil
}

// TensorStats returns the minimum, maximum and mean of data.
func TensorStats(data []float32) (minVal, maxVal, mean float32) {
	if len(data) == 0 {
		return 0, 0, 0
	}
	minVal, maxVal = data[0], data[0]
	var sum float64
	for _, v := range data {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
		sum += float64(v)
	}
	return minVal, maxVal, float32(sum / float64(len(data)))
}

// squareInputSize returns the spatial edge length declared by an NCHW input
// shape, or fallback when the model leaves H/W dynamic or non-square.
func squareInputSize(dims []int64, fallback int) int {
	if len(dims) != 4 {
		return fallback
	}
	h, w := dims[2], dims[3]
	if h <= 0 || w <= 0 || h != w {
		return fallback
	}
	return int(h)
}
