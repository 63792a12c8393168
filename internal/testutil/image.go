package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

// CreateTestImage creates a simple test image with the specified dimensions and color.
func CreateTestImage(width, height int, backgroundColor color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{backgroundColor}, image.Point{}, draw.Src)
	return img
}

// CreateStripedImage creates an image split into three equal vertical bands.
func CreateStripedImage(width, height int, left, middle, right color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	band := width / 3
	for y := range height {
		for x := range width {
			switch {
			case x < band:
				img.Set(x, y, left)
			case x < 2*band:
				img.Set(x, y, middle)
			default:
				img.Set(x, y, right)
			}
		}
	}
	return img
}

// CreateGradientImage creates an image whose channels vary with position, so
// every pixel differs from its neighbours.
func CreateGradientImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8((x * 7) % 256),
				G: uint8((y * 11) % 256),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}
	return img
}

// SaveImage encodes img according to the extension of path.
func SaveImage(t *testing.T, img image.Image, path string) {
	t.Helper()

	require.NoError(t, EnsureDir(filepath.Dir(path)), "Failed to create directory for %s", path)

	file, err := os.Create(path) //nolint:gosec // G304: Test file creation with controlled path
	require.NoError(t, err, "Failed to create file %s", path)
	defer func() {
		require.NoError(t, file.Close())
	}()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: 95})
	case ".gif":
		err = gif.Encode(file, img, nil)
	case ".bmp":
		err = bmp.Encode(file, img)
	default:
		err = png.Encode(file, img)
	}
	require.NoError(t, err, "Failed to encode image %s", path)
}

// WriteTestImage saves a solid test image as dir/name and returns its path.
func WriteTestImage(t *testing.T, dir, name string, width, height int, c color.Color) string {
	t.Helper()

	path := filepath.Join(dir, name)
	SaveImage(t, CreateTestImage(width, height, c), path)
	return path
}
