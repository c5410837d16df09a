package imageio

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// ErrSizeMismatch is returned when combining images of different sizes
var ErrSizeMismatch = errors.New("images differ in size")

// Combine averages images with weights 1, decay, decay², ... normalized by
// their sum. A decay of 1 is a plain average.
func Combine(images []*image.RGBA, decay float64) (*image.RGBA, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("no images to combine")
	}
	if decay < 0 || math.IsNaN(decay) {
		return nil, fmt.Errorf("decay %v must be non-negative", decay)
	}

	bounds := images[0].Bounds()
	rowLen := bounds.Dx() * 4
	accum := make([]float64, rowLen*bounds.Dy())
	weight, total := 1.0, 0.0
	for i, img := range images {
		if img.Bounds().Size() != bounds.Size() {
			return nil, fmt.Errorf("%w: image %d is %v, image 0 is %v", ErrSizeMismatch, i, img.Bounds().Size(), bounds.Size())
		}
		b := img.Bounds()
		for y := 0; y < bounds.Dy(); y++ {
			start := img.PixOffset(b.Min.X, b.Min.Y+y)
			src := img.Pix[start : start+rowLen]
			dst := accum[y*rowLen:]
			for j, v := range src {
				dst[j] += weight * float64(v) / 255
			}
		}
		total += weight
		weight *= decay
	}

	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		src := accum[y*rowLen:]
		dst := out.Pix[y*out.Stride : y*out.Stride+rowLen]
		for j := range dst {
			v := src[j] / total
			dst[j] = uint8(math.Min(255, math.Max(0, v*255+1e-9)))
		}
	}
	return out, nil
}

// CombineFiles loads and combines image files, in order
func CombineFiles(paths []string, decay float64) (*image.RGBA, error) {
	images := make([]*image.RGBA, 0, len(paths))
	for _, path := range paths {
		img, err := Load(path)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return Combine(images, decay)
}
