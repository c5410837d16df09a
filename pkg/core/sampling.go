package core

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrProbabilityOutOfRange is returned by SampleBernoulli for p outside [0, 1]
var ErrProbabilityOutOfRange = errors.New("probability out of range [0, 1]")

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler backed by a fresh generator with the given seed
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// Get3D returns three random float64 values in [0, 1)
func (r *RandomSampler) Get3D() Vec3 {
	return NewVec3(r.random.Float64(), r.random.Float64(), r.random.Float64())
}

// BuildOrthonormalBasis returns two unit vectors x and y such that (x, y, axis)
// is a right-handed orthonormal frame. axis must be a unit vector.
func BuildOrthonormalBasis(axis Vec3) (Vec3, Vec3) {
	ref := NewVec3(1, 0, 0)
	if math.Abs(axis.Dot(ref)) > 0.9 {
		ref = NewVec3(0, 1, 0)
	}
	// Gram-Schmidt against the axis
	x := ref.Subtract(axis.Multiply(ref.Dot(axis))).Normalize()
	y := axis.Cross(x)
	return x, y
}

// SampleOnUnitSphere generates a uniform random direction on the unit sphere
func SampleOnUnitSphere(sample Vec2) Vec3 {
	z := 1.0 - 2.0*sample.X // z ∈ [-1, 1]
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * sample.Y
	x := r * math.Cos(phi)
	y := r * math.Sin(phi)
	return NewVec3(x, y, z)
}

// SampleAroundAxis maps a 2D sample to a unit direction whose angle to axis
// satisfies cosθ ∈ [1-2·ratio, 1], uniformly in cosθ and azimuth.
// ratio 1 covers the sphere, 0.5 the hemisphere, 0 returns the axis itself.
func SampleAroundAxis(axis Vec3, ratio float64, sample Vec2) Vec3 {
	ratio = max(0, min(1, ratio))
	axis = axis.Normalize()

	cosTheta := 1.0 - 2.0*ratio*sample.X
	sinTheta := math.Sqrt(math.Max(0, 1.0-cosTheta*cosTheta))
	phi := 2.0 * math.Pi * sample.Y

	x, y := BuildOrthonormalBasis(axis)
	return x.Multiply(sinTheta * math.Cos(phi)).
		Add(y.Multiply(sinTheta * math.Sin(phi))).
		Add(axis.Multiply(cosTheta))
}

// SampleDisk maps a 2D sample to a point on the disk of the given radius
// centered at the origin and perpendicular to axis. The radius uses sqrt(u)
// so points are uniform over the disk area.
func SampleDisk(axis Vec3, radius float64, sample Vec2) Vec3 {
	x, y := BuildOrthonormalBasis(axis.Normalize())
	r := math.Sqrt(sample.X) * radius
	theta := 2.0 * math.Pi * sample.Y
	return x.Multiply(r * math.Cos(theta)).Add(y.Multiply(r * math.Sin(theta)))
}

// SampleDirectionsOnSphere returns n independent uniform directions on the unit sphere
func SampleDirectionsOnSphere(n int, sampler Sampler) []Vec3 {
	dirs := make([]Vec3, max(0, n))
	for i := range dirs {
		dirs[i] = SampleOnUnitSphere(sampler.Get2D())
	}
	return dirs
}

// SampleDirectionsAroundAxis returns n unit directions within the cone around
// axis described by ratio (see SampleAroundAxis)
func SampleDirectionsAroundAxis(n int, axis Vec3, ratio float64, sampler Sampler) []Vec3 {
	dirs := make([]Vec3, max(0, n))
	for i := range dirs {
		dirs[i] = SampleAroundAxis(axis, ratio, sampler.Get2D())
	}
	return dirs
}

// SampleDiskPositions returns n offsets uniformly distributed over the disk of
// the given radius perpendicular to axis
func SampleDiskPositions(n int, axis Vec3, radius float64, sampler Sampler) []Vec3 {
	points := make([]Vec3, max(0, n))
	for i := range points {
		points[i] = SampleDisk(axis, radius, sampler.Get2D())
	}
	return points
}

// SampleBernoulli returns true with probability p
func SampleBernoulli(p float64, sampler Sampler) (bool, error) {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return false, fmt.Errorf("%w: %v", ErrProbabilityOutOfRange, p)
	}
	return sampler.Get1D() < p, nil
}

// VanDerCorput returns the radical inverse of index in the given base,
// shifted into [-0.5, 0.5). Used for stratified antialiasing offsets.
func VanDerCorput(index, base int) float64 {
	if base < 2 {
		panic(fmt.Sprintf("VanDerCorput: base must be at least 2, got %d", base))
	}
	if index < 0 {
		index = -index
	}
	q, denom := 0.0, 1.0
	for index > 0 {
		denom *= float64(base)
		q += float64(index%base) / denom
		index /= base
	}
	return q - 0.5
}
