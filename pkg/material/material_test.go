package material

import (
	"math"
	"testing"

	"github.com/df07/go-photon-mapper/pkg/core"
)

func TestReflect(t *testing.T) {
	d := core.NewVec3(1, -1, 0).Normalize()
	n := core.NewVec3(0, 1, 0)
	r := Reflect(d, n)
	expected := core.NewVec3(1, 1, 0).Normalize()
	if r.Subtract(expected).Length() > 1e-9 {
		t.Errorf("Reflect: got %v, expected %v", r, expected)
	}
	if math.Abs(r.Length()-1) > 1e-9 {
		t.Errorf("Reflected direction should stay unit length, got %f", r.Length())
	}
}

func TestRefract(t *testing.T) {
	n := core.NewVec3(0, 1, 0)

	t.Run("Normal incidence passes straight through", func(t *testing.T) {
		d := core.NewVec3(0, -1, 0)
		tr, ok := Refract(d, n, 1.0/1.5)
		if !ok {
			t.Fatal("Expected refraction at normal incidence")
		}
		if tr.Subtract(d).Length() > 1e-9 {
			t.Errorf("Expected %v, got %v", d, tr)
		}
	})

	t.Run("Snell's law holds entering glass", func(t *testing.T) {
		d := core.NewVec3(1, -1, 0).Normalize()
		ratio := 1.0 / 1.5
		tr, ok := Refract(d, n, ratio)
		if !ok {
			t.Fatal("Expected refraction entering glass")
		}
		sinI := math.Sqrt(1 - math.Pow(d.Dot(n), 2))
		sinT := math.Sqrt(1 - math.Pow(tr.Dot(n), 2))
		if math.Abs(sinT-ratio*sinI) > 1e-9 {
			t.Errorf("Snell's law violated: sinT=%f, expected %f", sinT, ratio*sinI)
		}
		if math.Abs(tr.Length()-1) > 1e-9 {
			t.Errorf("Transmitted direction should be unit length, got %f", tr.Length())
		}
		if tr.Y >= 0 {
			t.Errorf("Transmitted ray should continue downward, got %v", tr)
		}
	})

	t.Run("Total internal reflection leaving glass at grazing angle", func(t *testing.T) {
		d := core.NewVec3(1, -0.2, 0).Normalize()
		if _, ok := Refract(d, n, 1.5); ok {
			t.Error("Expected total internal reflection")
		}
	})
}

func TestReflectance(t *testing.T) {
	// Normal incidence on glass gives R0 = 0.04
	if r := Reflectance(1.0, 1.5); math.Abs(r-0.04) > 1e-9 {
		t.Errorf("Reflectance at normal incidence: got %f, expected 0.04", r)
	}
	// Grazing incidence reflects everything
	if r := Reflectance(0.0, 1.5); math.Abs(r-1.0) > 1e-9 {
		t.Errorf("Reflectance at grazing incidence: got %f, expected 1", r)
	}
}

func TestMaterialReflectivity(t *testing.T) {
	n := core.NewVec3(0, 0, 1)
	d := core.NewVec3(0, 0, -1)

	mirror := NewMirror(0.7)
	if k := mirror.Reflectivity(n, d); k != 0.7 {
		t.Errorf("Mirror reflectivity: got %f, expected 0.7", k)
	}

	glass := NewGlass(1.5)
	if k := glass.Reflectivity(n, d); math.Abs(k-0.04) > 1e-9 {
		t.Errorf("Glass reflectivity at normal incidence: got %f, expected 0.04", k)
	}

	if r := glass.RefractionRatio(false); math.Abs(r-1/1.5) > 1e-12 {
		t.Errorf("Entering ratio: got %f", r)
	}
	if r := glass.RefractionRatio(true); r != 1.5 {
		t.Errorf("Leaving ratio: got %f", r)
	}
}

func TestMaterialValidate(t *testing.T) {
	tests := []struct {
		name    string
		mat     Material
		wantErr bool
	}{
		{"Diffuse", NewDiffuse(core.NewVec3(0.8, 0.5, 0.2)), false},
		{"Glass", NewGlass(1.5), false},
		{"Overbright diffuse", NewDiffuse(core.NewVec3(1.2, 0, 0)), true},
		{"Bad reflectivity", Material{MirrorReflectivity: 2, IOR: 1}, true},
		{"Bad transmission", Material{Transmission: -0.5, IOR: 1}, true},
		{"Zero ior", Material{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mat.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate: got %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDiffuseProbability(t *testing.T) {
	m := NewDiffuse(core.NewVec3(0.2, 0.65, 0.1))
	if p := m.DiffuseProbability(); p != 0.65 {
		t.Errorf("DiffuseProbability: got %f, expected 0.65", p)
	}
}
