// Package imageio converts radiance to 8-bit images and reads and writes them.
package imageio

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/df07/go-photon-mapper/pkg/core"
)

// ColorFromVec3 converts a radiance value to RGBA with clamping and gamma
// correction. A gamma of 1 leaves values linear.
func ColorFromVec3(v core.Vec3, gamma float64) color.RGBA {
	v = v.Clamp(0.0, 1.0)
	if gamma > 0 && gamma != 1 {
		v = v.GammaCorrect(gamma)
	}
	return color.RGBA{
		R: uint8(255*v.X + 0.5),
		G: uint8(255*v.Y + 0.5),
		B: uint8(255*v.Z + 0.5),
		A: 255,
	}
}

// ToRGBA converts rows of radiance (row 0 at the top) to an image
func ToRGBA(radiance [][]core.Vec3, gamma float64) *image.RGBA {
	height := len(radiance)
	width := 0
	if height > 0 {
		width = len(radiance[0])
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y, row := range radiance {
		for x, v := range row {
			img.SetRGBA(x, y, ColorFromVec3(v, gamma))
		}
	}
	return img
}

// Format identifies an image encoding
type Format string

const (
	FormatPNG  Format = "png"
	FormatTIFF Format = "tiff"
	FormatBMP  Format = "bmp"
)

// FormatFromPath picks the encoding from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".tif", ".tiff":
		return FormatTIFF, nil
	case ".bmp":
		return FormatBMP, nil
	default:
		return "", fmt.Errorf("unsupported image extension %q (want .png, .tiff or .bmp)", filepath.Ext(path))
	}
}

// Save writes img to path, choosing the encoder from the extension
func Save(path string, img image.Image) (err error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer func() { err = multierr.Append(err, file.Close()) }()

	switch format {
	case FormatTIFF:
		err = tiff.Encode(file, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case FormatBMP:
		err = bmp.Encode(file, img)
	default:
		err = png.Encode(file, img)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return nil
}

// Load decodes a PNG, TIFF or BMP file into RGBA
func Load(path string) (*image.RGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	// tiff and bmp register their decoders on import
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba, nil
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba, nil
}
