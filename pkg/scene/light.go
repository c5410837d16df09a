package scene

import (
	"fmt"
	"math"

	"github.com/df07/go-photon-mapper/pkg/core"
)

// LightKind selects how a light emits
type LightKind int

const (
	PointLight LightKind = iota // Emits from a single point in all directions
	AreaLight                   // Emits from a disk, one-sided along its facing
)

func (k LightKind) String() string {
	switch k {
	case PointLight:
		return "point"
	case AreaLight:
		return "area"
	default:
		return fmt.Sprintf("LightKind(%d)", int(k))
	}
}

// ParseLightKind converts a scene file light type into a LightKind
func ParseLightKind(s string) (LightKind, error) {
	switch s {
	case "point", "POINT":
		return PointLight, nil
	case "area", "AREA":
		return AreaLight, nil
	default:
		return 0, fmt.Errorf("unknown light type %q", s)
	}
}

// Light is a point or area light. Area lights face along (0,0,-1) rotated by
// Rotation and emit from a disk of diameter Size centered at Location.
type Light struct {
	Name     string
	Kind     LightKind
	Location core.Vec3
	Rotation core.Vec3 // XYZ Euler angles in radians
	Energy   float64
	Color    core.Vec3
	Size     float64
}

// NewPointLight creates a point light
func NewPointLight(name string, location, color core.Vec3, energy float64) Light {
	return Light{Name: name, Kind: PointLight, Location: location, Color: color, Energy: energy}
}

// NewAreaLight creates a disk area light
func NewAreaLight(name string, location, rotation, color core.Vec3, energy, size float64) Light {
	return Light{
		Name:     name,
		Kind:     AreaLight,
		Location: location,
		Rotation: rotation,
		Color:    color,
		Energy:   energy,
		Size:     size,
	}
}

// Facing returns the emission normal of the light
func (l Light) Facing() core.Vec3 {
	return core.NewVec3(0, 0, -1).Rotate(l.Rotation).Normalize()
}

// Radiance returns color·energy/4π, the intensity used for direct lighting
func (l Light) Radiance() core.Vec3 {
	return l.Color.Multiply(l.Energy / (4 * math.Pi))
}

// EmissionAxis returns the axis and cone ratio photons are emitted around:
// the full sphere for point lights, the facing hemisphere for area lights
func (l Light) EmissionAxis() (core.Vec3, float64) {
	if l.Kind == AreaLight {
		return l.Facing(), 0.5
	}
	return core.NewVec3(0, 0, 1), 1.0
}

// SampleEmissionPoint returns a point light's location, or a uniform point on
// an area light's disk
func (l Light) SampleEmissionPoint(sampler core.Sampler) core.Vec3 {
	if l.Kind != AreaLight || l.Size <= 0 {
		return l.Location
	}
	return l.Location.Add(core.SampleDisk(l.Facing(), l.Size/2, sampler.Get2D()))
}

// FacingFactor is max(0, facing·normalize(point - location)) for area lights
// and 1 for point lights
func (l Light) FacingFactor(point core.Vec3) float64 {
	if l.Kind != AreaLight {
		return 1
	}
	return math.Max(0, l.Facing().Dot(point.Subtract(l.Location).Normalize()))
}

// Validate checks the light is physically meaningful
func (l Light) Validate() error {
	if l.Energy < 0 {
		return fmt.Errorf("light %q: energy %v must be non-negative", l.Name, l.Energy)
	}
	if l.Kind == AreaLight && l.Size < 0 {
		return fmt.Errorf("light %q: size %v must be non-negative", l.Name, l.Size)
	}
	return nil
}
