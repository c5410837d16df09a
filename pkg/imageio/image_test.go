package imageio

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/df07/go-photon-mapper/pkg/core"
)

func TestColorFromVec3(t *testing.T) {
	tests := []struct {
		name  string
		in    core.Vec3
		gamma float64
		want  color.RGBA
	}{
		{"black", core.Vec3{}, 2.0, color.RGBA{0, 0, 0, 255}},
		{"white clamps", core.NewVec3(4, 1, 2), 2.0, color.RGBA{255, 255, 255, 255}},
		{"negative clamps", core.NewVec3(-1, 0, 0), 2.0, color.RGBA{0, 0, 0, 255}},
		{"linear", core.NewVec3(0.5, 0.25, 0), 1.0, color.RGBA{128, 64, 0, 255}},
		{"gamma 2", core.NewVec3(0.25, 0, 0), 2.0, color.RGBA{128, 0, 0, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ColorFromVec3(tt.in, tt.gamma); got != tt.want {
				t.Errorf("got %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestToRGBA(t *testing.T) {
	radiance := [][]core.Vec3{
		{core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), core.NewVec3(0, 0, 1)},
		{core.Vec3{}, core.NewVec3(1, 1, 1), core.Vec3{}},
	}
	img := ToRGBA(radiance, 1)
	if img.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Fatalf("bounds: got %v", img.Bounds())
	}
	if got := img.RGBAAt(1, 0); got != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("pixel (1,0): got %v", got)
	}
	if got := img.RGBAAt(1, 1); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("pixel (1,1): got %v", got)
	}
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestSaveLoad_Formats(t *testing.T) {
	src := solid(4, 3, color.RGBA{10, 200, 30, 255})
	src.SetRGBA(2, 1, color.RGBA{255, 0, 128, 255})

	for _, ext := range []string{".png", ".tiff", ".tif", ".bmp"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "out"+ext)
			if err := Save(path, src); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if got.Bounds() != src.Bounds() {
				t.Fatalf("bounds: got %v, expected %v", got.Bounds(), src.Bounds())
			}
			for y := 0; y < 3; y++ {
				for x := 0; x < 4; x++ {
					if got.RGBAAt(x, y) != src.RGBAAt(x, y) {
						t.Fatalf("pixel (%d,%d): got %v, expected %v", x, y, got.RGBAAt(x, y), src.RGBAAt(x, y))
					}
				}
			}
		})
	}

	if err := Save(filepath.Join(t.TempDir(), "out.jpg"), src); err == nil {
		t.Error("Expected error for unsupported extension")
	}
}

func TestCombine(t *testing.T) {
	a := solid(2, 2, color.RGBA{200, 100, 0, 255})
	b := solid(2, 2, color.RGBA{50, 100, 255, 255})

	tests := []struct {
		name  string
		decay float64
		want  color.RGBA
	}{
		// (200 + 0.5*50) / 1.5 = 150; (0 + 0.5*255) / 1.5 = 85
		{"decay half", 0.5, color.RGBA{150, 100, 85, 255}},
		{"plain average", 1.0, color.RGBA{125, 100, 127, 255}},
		{"first only", 0.0, color.RGBA{200, 100, 0, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Combine([]*image.RGBA{a, b}, tt.decay)
			if err != nil {
				t.Fatal(err)
			}
			if got := out.RGBAAt(1, 1); got != tt.want {
				t.Errorf("got %v, expected %v", got, tt.want)
			}
		})
	}

	if _, err := Combine([]*image.RGBA{a, solid(3, 2, color.RGBA{})}, 1); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("Expected ErrSizeMismatch, got %v", err)
	}
	if _, err := Combine(nil, 1); err == nil {
		t.Error("Expected error for no images")
	}
}

func TestCombineFiles(t *testing.T) {
	dir := t.TempDir()
	paths := []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.bmp")}
	if err := Save(paths[0], solid(2, 2, color.RGBA{100, 0, 0, 255})); err != nil {
		t.Fatal(err)
	}
	if err := Save(paths[1], solid(2, 2, color.RGBA{200, 0, 0, 255})); err != nil {
		t.Fatal(err)
	}
	out, err := CombineFiles(paths, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.RGBAAt(0, 0).R; got != 150 {
		t.Errorf("combined red: got %d, expected 150", got)
	}
}
