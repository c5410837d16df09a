package core

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

// fixedSampler returns the same values every call, for exact mapping checks
type fixedSampler struct {
	u, v float64
}

func (f fixedSampler) Get1D() float64 { return f.u }
func (f fixedSampler) Get2D() Vec2    { return NewVec2(f.u, f.v) }
func (f fixedSampler) Get3D() Vec3    { return NewVec3(f.u, f.v, f.u) }

func TestBuildOrthonormalBasis(t *testing.T) {
	axes := []Vec3{
		NewVec3(0, 0, 1),
		NewVec3(1, 0, 0), // triggers the fallback reference
		NewVec3(-1, 0, 0),
		NewVec3(0, -1, 0),
		NewVec3(1, 1, 1).Normalize(),
		NewVec3(0.95, 0.1, 0.05).Normalize(),
	}

	for _, axis := range axes {
		x, y := BuildOrthonormalBasis(axis)
		if math.Abs(x.Length()-1) > 1e-9 || math.Abs(y.Length()-1) > 1e-9 {
			t.Errorf("axis %v: basis vectors not unit length: |x|=%f |y|=%f", axis, x.Length(), y.Length())
		}
		if math.Abs(x.Dot(axis)) > 1e-9 || math.Abs(y.Dot(axis)) > 1e-9 || math.Abs(x.Dot(y)) > 1e-9 {
			t.Errorf("axis %v: basis not orthogonal: x=%v y=%v", axis, x, y)
		}
		if x.Cross(y).Subtract(axis).Length() > 1e-9 {
			t.Errorf("axis %v: basis not right-handed", axis)
		}
	}
}

func TestSampleDirectionsAroundAxis(t *testing.T) {
	random := rand.New(rand.NewSource(42))
	sampler := NewRandomSampler(random)

	tests := []struct {
		name   string
		axis   Vec3
		ratio  float64
		minCos float64
	}{
		{"Full sphere", NewVec3(0, 0, 1), 1.0, -1.0},
		{"Hemisphere", NewVec3(0, 1, 0), 0.5, 0.0},
		{"Narrow cone", NewVec3(1, 0, 0), 0.1, 0.8},
		{"Unnormalized axis", NewVec3(0, 0, -5), 0.5, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			axis := tt.axis.Normalize()
			dirs := SampleDirectionsAroundAxis(500, tt.axis, tt.ratio, sampler)
			if len(dirs) != 500 {
				t.Fatalf("Expected 500 directions, got %d", len(dirs))
			}
			for _, d := range dirs {
				if math.Abs(d.Length()-1) > 1e-9 {
					t.Fatalf("Direction not unit length: %v", d)
				}
				if d.Dot(axis) < tt.minCos-1e-9 {
					t.Fatalf("Direction %v outside cone: cos=%f, min %f", d, d.Dot(axis), tt.minCos)
				}
			}
		})
	}
}

func TestSampleAroundAxis_ZeroRatioReturnsAxis(t *testing.T) {
	axis := NewVec3(0.3, -0.4, 0.5).Normalize()
	sampler := NewSeededSampler(7)
	for i := 0; i < 10; i++ {
		d := SampleAroundAxis(axis, 0, sampler.Get2D())
		if d.Subtract(axis).Length() > 1e-9 {
			t.Errorf("Expected axis %v, got %v", axis, d)
		}
	}
}

func TestSampleDirectionsOnSphere_Uniform(t *testing.T) {
	sampler := NewSeededSampler(42)
	dirs := SampleDirectionsOnSphere(20000, sampler)

	var mean Vec3
	upper := 0
	for _, d := range dirs {
		mean = mean.Add(d)
		if d.Z > 0 {
			upper++
		}
	}
	mean = mean.Multiply(1.0 / float64(len(dirs)))
	if mean.Length() > 0.03 {
		t.Errorf("Mean direction should be near zero for uniform sphere samples, got %v", mean)
	}
	fraction := float64(upper) / float64(len(dirs))
	if math.Abs(fraction-0.5) > 0.02 {
		t.Errorf("Expected half the samples in the upper hemisphere, got %f", fraction)
	}
}

func TestSampleDiskPositions(t *testing.T) {
	axis := NewVec3(0, 0, -1)
	radius := 2.5
	points := SampleDiskPositions(2000, axis, radius, NewSeededSampler(42))

	inner := 0
	for _, p := range points {
		if p.Length() > radius+1e-9 {
			t.Fatalf("Point %v outside disk of radius %f", p, radius)
		}
		if math.Abs(p.Dot(axis)) > 1e-9 {
			t.Fatalf("Point %v not in plane perpendicular to axis", p)
		}
		if p.Length() < radius/2 {
			inner++
		}
	}

	// Uniform over area: a quarter of the points fall inside half the radius
	fraction := float64(inner) / float64(len(points))
	if math.Abs(fraction-0.25) > 0.04 {
		t.Errorf("Expected ~25%% of points within half radius, got %f", fraction)
	}
}

func TestSampleDisk_Mapping(t *testing.T) {
	// u=1 puts the point on the rim, v=0 on the basis x axis
	axis := NewVec3(0, 0, 1)
	x, _ := BuildOrthonormalBasis(axis)
	p := SampleDisk(axis, 3, NewVec2(1, 0))
	if p.Subtract(x.Multiply(3)).Length() > 1e-9 {
		t.Errorf("Expected %v, got %v", x.Multiply(3), p)
	}
}

func TestSampleBernoulli(t *testing.T) {
	tests := []struct {
		name    string
		p       float64
		u       float64
		want    bool
		wantErr bool
	}{
		{"Zero never fires", 0, 0, false, false},
		{"One always fires", 1, 0.999999, true, false},
		{"Below threshold", 0.5, 0.49, true, false},
		{"At threshold", 0.5, 0.5, false, false},
		{"Negative", -0.1, 0.2, false, true},
		{"Above one", 1.2, 0.2, false, true},
		{"NaN", math.NaN(), 0.2, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SampleBernoulli(tt.p, fixedSampler{u: tt.u})
			if tt.wantErr {
				if !errors.Is(err, ErrProbabilityOutOfRange) {
					t.Fatalf("Expected ErrProbabilityOutOfRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("SampleBernoulli(%f) with u=%f: got %v, expected %v", tt.p, tt.u, got, tt.want)
			}
		})
	}
}

func TestSampleBernoulli_Frequency(t *testing.T) {
	sampler := NewSeededSampler(42)
	const trials = 20000
	hits := 0
	for i := 0; i < trials; i++ {
		ok, err := SampleBernoulli(0.3, sampler)
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			hits++
		}
	}
	rate := float64(hits) / trials
	if math.Abs(rate-0.3) > 0.02 {
		t.Errorf("Bernoulli rate: got %f, expected 0.3", rate)
	}
}

func TestVanDerCorput(t *testing.T) {
	tests := []struct {
		index, base int
		expected    float64
	}{
		{0, 2, -0.5},
		{1, 2, 0.0},
		{2, 2, -0.25},
		{3, 2, 0.25},
		{4, 2, -0.375},
		{1, 3, 1.0/3.0 - 0.5},
		{2, 3, 2.0/3.0 - 0.5},
		{3, 3, 1.0/9.0 - 0.5},
	}

	for _, tt := range tests {
		got := VanDerCorput(tt.index, tt.base)
		if math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("VanDerCorput(%d, %d): got %f, expected %f", tt.index, tt.base, got, tt.expected)
		}
	}

	for i := 0; i < 1000; i++ {
		v := VanDerCorput(i, 3)
		if v < -0.5 || v >= 0.5 {
			t.Fatalf("VanDerCorput(%d, 3) = %f out of [-0.5, 0.5)", i, v)
		}
	}
}

func TestVanDerCorput_InvalidBasePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for base 1")
		}
	}()
	VanDerCorput(3, 1)
}
