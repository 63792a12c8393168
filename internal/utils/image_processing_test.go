package utils

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/topacc/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPixelTensor_Length(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	for _, name := range []string{"wide.png", "tall.jpeg", "small.gif", "square.bmp"} {
		t.Run(name, func(t *testing.T) {
			w, h := 300, 200
			switch name {
			case "tall.jpeg":
				w, h = 120, 400
			case "small.gif":
				w, h = 16, 16
			case "square.bmp":
				w, h = 224, 224
			}
			path := testutil.WriteTestImage(t, dir, name, w, h, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

			data, err := BuildPixelTensor(path, false)
			require.NoError(t, err)
			assert.Len(t, data, 3*224*224)
		})
	}
}

func TestBuildPixelTensor_MissingFile(t *testing.T) {
	_, err := BuildPixelTensor(filepath.Join(t.TempDir(), "missing.jpeg"), true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInputNotFound)
}

func TestBuildPixelTensor_UnsupportedExtension(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "image.tiff", "not really a tiff")

	_, err := BuildPixelTensor(path, false)
	require.Error(t, err)
	var procErr *ImageProcessingError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, "load", procErr.Operation)
	assert.False(t, errors.Is(err, ErrInputNotFound))
}

func TestBuildPixelTensor_CorruptImage(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "broken.png", "definitely not png data")

	_, err := BuildPixelTensor(path, false)
	var procErr *ImageProcessingError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, "decode", procErr.Operation)
}

func TestBuildPixelTensor_RawIntensities(t *testing.T) {
	path := testutil.WriteTestImage(t, t.TempDir(), "solid.png", 50, 80, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	data, err := BuildPixelTensor(path, false)
	require.NoError(t, err)

	plane := 224 * 224
	for i, want := range []float32{10, 20, 30} {
		for _, v := range data[i*plane : (i+1)*plane] {
			require.InDelta(t, want, v, 1)
		}
	}
}

func TestBuildPixelTensorSize(t *testing.T) {
	path := testutil.WriteTestImage(t, t.TempDir(), "wide.jpg", 64, 32, color.Black)

	data, err := BuildPixelTensorSize(path, 16, true)
	require.NoError(t, err)
	assert.Len(t, data, 3*16*16)
}

func TestBuildPixelTensorInto_ReusesBuffer(t *testing.T) {
	path := testutil.WriteTestImage(t, t.TempDir(), "solid.png", 10, 10, color.White)
	buf := make([]float32, TensorLength(8)+16)

	data, err := BuildPixelTensorInto(path, 8, false, buf)
	require.NoError(t, err)
	require.Len(t, data, TensorLength(8))
	assert.Same(t, &buf[0], &data[0])
}

func TestChannelMajorPixels_ChannelOrder(t *testing.T) {
	img := testutil.CreateTestImage(4, 3, color.NRGBA{R: 255, G: 128, B: 7, A: 255})

	data, err := ChannelMajorPixels(img, false, nil)
	require.NoError(t, err)
	require.Len(t, data, 3*4*3)

	assert.Equal(t, float32(255), data[0])
	assert.Equal(t, float32(128), data[12])
	assert.Equal(t, float32(7), data[24])
}

func TestChannelMajorPixels_RowMajor(t *testing.T) {
	img := testutil.CreateGradientImage(5, 3)

	data, err := ChannelMajorPixels(img, false, nil)
	require.NoError(t, err)

	plane := 5 * 3
	for y := range 3 {
		for x := range 5 {
			px := img.NRGBAAt(x, y)
			idx := y*5 + x
			assert.Equal(t, float32(px.R), data[idx], "red at %d,%d", x, y)
			assert.Equal(t, float32(px.G), data[plane+idx], "green at %d,%d", x, y)
			assert.Equal(t, float32(px.B), data[2*plane+idx], "blue at %d,%d", x, y)
		}
	}
}

func TestChannelMajorPixels_MeanCentered(t *testing.T) {
	img := testutil.CreateGradientImage(7, 5)

	raw, err := ChannelMajorPixels(img, false, nil)
	require.NoError(t, err)
	centered, err := ChannelMajorPixels(img, true, nil)
	require.NoError(t, err)

	plane := 7 * 5
	for c := range 3 {
		var sum float64
		for _, v := range raw[c*plane : (c+1)*plane] {
			sum += float64(v)
		}
		mean := sum / float64(plane)
		for i := range plane {
			assert.InDelta(t, float64(raw[c*plane+i])-mean, float64(centered[c*plane+i]), 1e-4)
		}
	}
}

func TestChannelMajorPixels_NonNRGBAInput(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	for i := range gray.Pix {
		gray.Pix[i] = 90
	}

	data, err := ChannelMajorPixels(gray, false, nil)
	require.NoError(t, err)
	for _, v := range data {
		assert.Equal(t, float32(90), v)
	}
}

func TestChannelMajorPixels_NilImage(t *testing.T) {
	_, err := ChannelMajorPixels(nil, true, nil)
	var procErr *ImageProcessingError
	require.ErrorAs(t, err, &procErr)
}

func TestCropToSquare_CropsInsteadOfStretching(t *testing.T) {
	black := color.NRGBA{A: 255}
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}

	tests := []struct {
		name string
		img  image.Image
	}{
		{name: "wide", img: testutil.CreateStripedImage(300, 100, black, white, black)},
		{name: "wide upscaled", img: testutil.CreateStripedImage(150, 50, black, white, black)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := CropToSquare(tt.img, 100)
			require.NoError(t, err)
			require.Equal(t, image.Rect(0, 0, 100, 100), out.Bounds())

			// Only the white middle band survives a center crop. Edge columns
			// may pick up resampling ringing, so sample the interior.
			for y := 0; y < 100; y += 9 {
				for x := 10; x < 90; x += 9 {
					px := out.NRGBAAt(x, y)
					assert.InDelta(t, 255, int(px.R), 2, "pixel %d,%d", x, y)
				}
			}
		})
	}
}

func TestCropToSquare_InvalidInput(t *testing.T) {
	_, err := CropToSquare(nil, 10)
	require.Error(t, err)

	_, err = CropToSquare(testutil.CreateTestImage(2, 2, color.White), 0)
	require.Error(t, err)
}

func TestIsSupportedImage(t *testing.T) {
	for _, p := range []string{"a.gif", "b.BMP", "c.jpg", "d.JPEG", "e.png"} {
		assert.True(t, IsSupportedImage(p), p)
	}
	for _, p := range []string{"a.tiff", "b", "c.webp"} {
		assert.False(t, IsSupportedImage(p), p)
	}
}

func TestCheckInputFile(t *testing.T) {
	dir := t.TempDir()
	assert.ErrorIs(t, CheckInputFile("", "model"), ErrInputNotFound)
	assert.ErrorIs(t, CheckInputFile(filepath.Join(dir, "nope"), "model"), ErrInputNotFound)
	assert.ErrorIs(t, CheckInputFile(dir, "model"), ErrInputNotFound)

	path := testutil.WriteFile(t, dir, "model.onnx", "x")
	assert.NoError(t, CheckInputFile(path, "model"))
}
