package onnx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImageTensorAndVerify(t *testing.T) {
	c, h, w := 3, 4, 5
	data := make([]float32, c*h*w)
	ten, err := NewImageTensor(data, c, h, w)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 4, 5}, ten.Shape)
	require.NoError(t, ValidateNCHW(ten.Shape))
	require.NoError(t, VerifyImageTensor(ten))
}

func TestNewImageTensorErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    []float32
		wantErr bool
	}{
		{name: "nil data", data: nil, wantErr: true},
		{name: "data too short", data: make([]float32, 10), wantErr: true},
		{name: "data too long", data: make([]float32, 100), wantErr: true},
		{name: "valid data", data: make([]float32, 3*224*224), wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewImageTensor(tt.data, 3, 224, 224)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateNCHW(t *testing.T) {
	tests := []struct {
		name    string
		shape   []int64
		wantErr bool
	}{
		{name: "valid NCHW", shape: []int64{1, 3, 224, 224}},
		{name: "wrong rank - 2D", shape: []int64{3, 224}, wantErr: true},
		{name: "wrong rank - 5D", shape: []int64{1, 3, 224, 224, 1}, wantErr: true},
		{name: "zero N dimension", shape: []int64{0, 3, 224, 224}, wantErr: true},
		{name: "dynamic H", shape: []int64{1, 3, -1, 224}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNCHW(tt.shape)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVerifyImageTensor_LengthMismatch(t *testing.T) {
	err := VerifyImageTensor(Tensor{Data: make([]float32, 5), Shape: []int64{1, 3, 2, 2}})
	assert.Error(t, err)
}

func TestTensorStats(t *testing.T) {
	minVal, maxVal, mean := TensorStats([]float32{-2, 0, 4, 2})
	assert.Equal(t, float32(-2), minVal)
	assert.Equal(t, float32(4), maxVal)
	assert.InDelta(t, 1.0, mean, 1e-6)

	minVal, maxVal, mean = TensorStats(nil)
	assert.Zero(t, minVal)
	assert.Zero(t, maxVal)
	assert.Zero(t, mean)
}

func TestSquareInputSize(t *testing.T) {
	assert.Equal(t, 299, squareInputSize([]int64{1, 3, 299, 299}, 224))
	assert.Equal(t, 224, squareInputSize([]int64{-1, 3, -1, -1}, 224))
	assert.Equal(t, 224, squareInputSize([]int64{1, 3, 100, 200}, 224))
	assert.Equal(t, 224, squareInputSize([]int64{1, 1000}, 224))
}
