package material

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/df07/go-photon-mapper/pkg/core"
)

// Material describes how a surface scatters light for both photon tracing
// and Blinn-Phong shading
type Material struct {
	DiffuseColor       core.Vec3
	SpecularColor      core.Vec3
	SpecularHardness   float64
	MirrorReflectivity float64
	IOR                float64
	Transmission       float64
	UseFresnel         bool
}

// NewDiffuse creates a matte material with the given albedo
func NewDiffuse(albedo core.Vec3) Material {
	return Material{DiffuseColor: albedo, IOR: 1.0}
}

// NewMirror creates a perfect specular reflector
func NewMirror(reflectivity float64) Material {
	return Material{MirrorReflectivity: reflectivity, IOR: 1.0}
}

// NewGlass creates a clear dielectric with Fresnel reflectance
func NewGlass(ior float64) Material {
	return Material{IOR: ior, Transmission: 1.0, UseFresnel: true}
}

// DiffuseProbability is the chance a photon spawns a diffuse bounce (k_d)
func (m Material) DiffuseProbability() float64 {
	return max(0, min(1, m.DiffuseColor.MaxComponent()))
}

// Reflectivity returns k_r for a ray travelling along direction and hitting a
// surface whose normal has been flipped to face against the ray
func (m Material) Reflectivity(normal, direction core.Vec3) float64 {
	if !m.UseFresnel {
		return m.MirrorReflectivity
	}
	return Reflectance(-normal.Dot(direction), m.IOR)
}

// RefractionRatio returns n1/n2 for crossing the surface. Rays entering the
// object go from air (1.0) into the material, rays leaving go the other way.
func (m Material) RefractionRatio(inside bool) float64 {
	if inside {
		return m.IOR
	}
	return 1.0 / m.IOR
}

// Validate checks the material parameters are usable as probabilities
func (m Material) Validate() error {
	var err error
	if !inUnitRange(m.DiffuseColor) {
		err = multierr.Append(err, fmt.Errorf("diffuse_color %v must have components in [0, 1]", m.DiffuseColor))
	}
	if m.SpecularHardness < 0 {
		err = multierr.Append(err, fmt.Errorf("specular_hardness %v must be non-negative", m.SpecularHardness))
	}
	if m.MirrorReflectivity < 0 || m.MirrorReflectivity > 1 {
		err = multierr.Append(err, fmt.Errorf("mirror_reflectivity %v must be in [0, 1]", m.MirrorReflectivity))
	}
	if m.Transmission < 0 || m.Transmission > 1 {
		err = multierr.Append(err, fmt.Errorf("transmission %v must be in [0, 1]", m.Transmission))
	}
	if m.IOR <= 0 {
		err = multierr.Append(err, fmt.Errorf("ior %v must be positive", m.IOR))
	}
	return err
}

func inUnitRange(c core.Vec3) bool {
	return c.X >= 0 && c.X <= 1 && c.Y >= 0 && c.Y <= 1 && c.Z >= 0 && c.Z <= 1
}
