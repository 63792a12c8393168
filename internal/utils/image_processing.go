package utils

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// DefaultTargetSize is the square edge length classification models expect.
const DefaultTargetSize = 224

// NumChannels is the number of colour planes emitted per pixel (R, G, B).
const NumChannels = 3

// ImageProcessingError represents errors that can occur during image processing.
type ImageProcessingError struct {
	Operation string
	Err       error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image processing error in %s: %v", e.Operation, e.Err)
}

func (e *ImageProcessingError) Unwrap() error { return e.Err }

// TensorLength returns the number of values in a channel-major tensor for a
// square image with the given edge length.
func TensorLength(size int) int {
	return NumChannels * size * size
}

// CropToSquare scales img so its shorter side equals size and crops the longer
// side around the center. Aspect ratio is never changed.
func CropToSquare(img image.Image, size int) (*image.NRGBA, error) {
	if img == nil {
		return nil, &ImageProcessingError{Operation: "crop", Err: errors.New("input image is nil")}
	}
	if size <= 0 {
		return nil, &ImageProcessingError{Operation: "crop", Err: fmt.Errorf("invalid target size: %d", size)}
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &ImageProcessingError{Operation: "crop", Err: errors.New("invalid image dimensions")}
	}
	return imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos), nil
}

// ChannelMajorPixels flattens img into R, G and B planes. Within a plane pixels
// are emitted row by row, left to right. Values are raw 0-255 intensities; when
// meanCenter is set each plane has its own arithmetic mean subtracted.
//
// buf is used when it has enough capacity, otherwise a new slice is allocated.
func ChannelMajorPixels(img image.Image, meanCenter bool, buf []float32) ([]float32, error) {
	if img == nil {
		return nil, &ImageProcessingError{Operation: "pixels", Err: errors.New("input image is nil")}
	}

	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		nrgba = imaging.Clone(img)
	}
	bounds := nrgba.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, &ImageProcessingError{Operation: "pixels", Err: errors.New("invalid image dimensions")}
	}

	plane := width * height
	needed := NumChannels * plane
	if cap(buf) < needed {
		buf = make([]float32, needed)
	}
	data := buf[:needed]

	var means [NumChannels]float64
	if meanCenter {
		means = channelMeans(nrgba)
	}

	for c := range NumChannels {
		out := data[c*plane : (c+1)*plane]
		mean := means[c]
		for y := range height {
			row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+width*4]
			for x := range width {
				out[y*width+x] = float32(float64(row[x*4+c]) - mean)
			}
		}
	}

	return data, nil
}

// channelMeans returns the per-channel average of the raw 0-255 intensities.
func channelMeans(img *image.NRGBA) [NumChannels]float64 {
	var sums [NumChannels]float64
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	for y := range height {
		row := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for x := range width {
			sums[0] += float64(row[x*4])
			sums[1] += float64(row[x*4+1])
			sums[2] += float64(row[x*4+2])
		}
	}
	n := float64(width * height)
	return [NumChannels]float64{sums[0] / n, sums[1] / n, sums[2] / n}
}

// BuildPixelTensor loads the image at path and returns its 224x224
// channel-major tensor.
func BuildPixelTensor(path string, meanCenter bool) ([]float32, error) {
	return BuildPixelTensorInto(path, DefaultTargetSize, meanCenter, nil)
}

// BuildPixelTensorSize is BuildPixelTensor for a size x size target.
func BuildPixelTensorSize(path string, size int, meanCenter bool) ([]float32, error) {
	return BuildPixelTensorInto(path, size, meanCenter, nil)
}

// BuildPixelTensorInto loads the image at path, center-crops it to size x size
// and writes its channel-major pixels into buf (allocating when buf is too small).
func BuildPixelTensorInto(path string, size int, meanCenter bool, buf []float32) ([]float32, error) {
	img, _, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	square, err := CropToSquare(img, size)
	if err != nil {
		return nil, err
	}
	return ChannelMajorPixels(square, meanCenter, buf)
}
