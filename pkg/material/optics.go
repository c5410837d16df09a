package material

import (
	"math"

	"github.com/df07/go-photon-mapper/pkg/core"
)

// Reflect mirrors direction about the surface normal: r = d - 2(d·n)n
func Reflect(direction, normal core.Vec3) core.Vec3 {
	return direction.Subtract(normal.Multiply(2 * direction.Dot(normal)))
}

// Refract bends a unit direction through a surface using Snell's law.
// normal must face against direction and ratio is n1/n2.
// Returns false on total internal reflection.
func Refract(direction, normal core.Vec3, ratio float64) (core.Vec3, bool) {
	cosI := direction.Dot(normal)
	radicand := 1.0 - ratio*ratio*(1.0-cosI*cosI)
	if radicand <= 0 {
		return core.Vec3{}, false
	}
	return direction.Multiply(ratio).Subtract(normal.Multiply(ratio*cosI + math.Sqrt(radicand))), true
}

// Reflectance calculates the Fresnel reflectance using Schlick's approximation.
// cosine is the cosine of the incident angle, ior the material's refractive index.
func Reflectance(cosine, ior float64) float64 {
	r0 := (1 - ior) / (1 + ior)
	r0 = r0 * r0
	cosine = max(0, min(1, cosine))
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
