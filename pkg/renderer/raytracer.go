package renderer

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-photon-mapper/pkg/core"
	"github.com/df07/go-photon-mapper/pkg/material"
	"github.com/df07/go-photon-mapper/pkg/photonmap"
	"github.com/df07/go-photon-mapper/pkg/scene"
)

// ErrPhotonMapRequired is returned when photon gathering is selected without
// an indexed photon map
var ErrPhotonMapRequired = errors.New("photon gathering requires an indexed photon map")

// RayTracer computes radiance along camera rays: direct Blinn-Phong lighting
// with shadow rays, specular recursion and an indirect diffuse estimate
type RayTracer struct {
	scene   scene.Scene
	config  Config
	ambient core.Vec3
	photons *photonmap.PhotonMap
}

// Option configures a RayTracer
type Option func(*RayTracer)

// WithAmbient sets the color added to surfaces no light reaches
func WithAmbient(ambient core.Vec3) Option {
	return func(rt *RayTracer) { rt.ambient = ambient }
}

// WithPhotonMap supplies the map used by IndirectPhotons
func WithPhotonMap(pm *photonmap.PhotonMap) Option {
	return func(rt *RayTracer) { rt.photons = pm }
}

// NewRayTracer creates a ray tracer for the scene
func NewRayTracer(sc scene.Scene, config Config, opts ...Option) (*RayTracer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid render config: %w", err)
	}
	rt := &RayTracer{scene: sc, config: config}
	for _, opt := range opts {
		opt(rt)
	}
	if config.Indirect == IndirectPhotons && (rt.photons == nil || !rt.photons.Indexed()) {
		return nil, ErrPhotonMapRequired
	}
	return rt, nil
}

// secondaryRay is one recursive branch and the weight applied to its result
type secondaryRay struct {
	origin    core.Vec3
	direction core.Vec3
	weight    core.Vec3
}

// faceForward flips the normal against the ray and reports whether the ray
// is leaving the object
func faceForward(normal, direction core.Vec3) (core.Vec3, bool) {
	if normal.Dot(direction) > 0 {
		return normal.Negate(), true
	}
	return normal, false
}

// RenderPixel returns the radiance arriving along direction at origin.
// Each recursive call decrements maxDepth; at 0 only direct and ambient light
// are computed.
func (rt *RayTracer) RenderPixel(origin, direction core.Vec3, lights []scene.Light, maxDepth int, sampler core.Sampler) core.Vec3 {
	hit := rt.scene.CastRay(origin, direction)
	if !hit.Hit {
		return core.Vec3{}
	}

	direction = direction.Normalize()
	normal, inside := faceForward(hit.Normal, direction)
	mat := rt.scene.MaterialOf(hit.Object)

	color := rt.directLight(hit.Location, normal, direction, mat, lights, sampler)
	if maxDepth <= 0 {
		return color
	}

	for _, ray := range rt.secondaryRays(hit.Location, normal, direction, inside, mat, sampler) {
		incoming := rt.RenderPixel(ray.origin, ray.direction, lights, maxDepth-1, sampler)
		color = color.Add(ray.weight.MultiplyVec(incoming))
	}

	if rt.config.Indirect == IndirectPhotons {
		color = color.Add(rt.gatherPhotons(hit.Location, normal, mat))
	}
	return color
}

// directLight sums Blinn-Phong contributions of every unshadowed light, or
// returns the ambient term when none contributes
func (rt *RayTracer) directLight(location, normal, direction core.Vec3, mat material.Material, lights []scene.Light, sampler core.Sampler) core.Vec3 {
	var color core.Vec3
	shadowOrigin := location.Add(normal.Multiply(rt.config.Epsilon))
	lit := false

	for _, light := range lights {
		radiance := light.Radiance()
		emit := light.Location
		if light.Kind == scene.AreaLight {
			radiance = radiance.Multiply(light.FacingFactor(location))
			emit = light.SampleEmissionPoint(sampler)
		}

		lightVec := emit.Subtract(location)
		distSq := lightVec.LengthSquared()
		if distSq == 0 {
			continue
		}
		lightDir := lightVec.Normalize()

		// A shadow hit before the light blocks it; one past the light does not
		shadow := rt.scene.CastRay(shadowOrigin, lightDir)
		if shadow.Hit && lightVec.Dot(shadow.Location.Subtract(emit)) < 0 {
			continue
		}

		falloff := radiance.Multiply(1 / distSq)
		diffuse := mat.DiffuseColor.MultiplyVec(falloff).Multiply(math.Max(0, lightDir.Dot(normal)))
		half := lightDir.Subtract(direction).Normalize()
		specular := mat.SpecularColor.MultiplyVec(falloff).Multiply(math.Pow(math.Max(0, normal.Dot(half)), mat.SpecularHardness))

		color = color.Add(diffuse).Add(specular)
		lit = true
	}

	if !lit {
		color = color.Add(mat.DiffuseColor.MultiplyVec(rt.ambient))
	}
	return color
}

// secondaryRays lists the reflection, transmission and path-traced indirect
// branches with their weights. Zero-weight branches are left out.
func (rt *RayTracer) secondaryRays(location, normal, direction core.Vec3, inside bool, mat material.Material, sampler core.Sampler) []secondaryRay {
	eps := rt.config.Epsilon
	front := location.Add(normal.Multiply(eps))
	kr := mat.Reflectivity(normal, direction)

	var rays []secondaryRay
	if kr > 0 {
		rays = append(rays, secondaryRay{
			origin:    front,
			direction: material.Reflect(direction, normal),
			weight:    core.NewVec3(kr, kr, kr),
		})
	}

	if kt := (1 - kr) * mat.Transmission; kt > 0 {
		if refracted, ok := material.Refract(direction, normal, mat.RefractionRatio(inside)); ok {
			rays = append(rays, secondaryRay{
				origin:    location.Subtract(normal.Multiply(eps)),
				direction: refracted,
				weight:    core.NewVec3(kt, kt, kt),
			})
		}
	}

	if rt.config.Indirect == IndirectPath && !mat.DiffuseColor.IsZero() {
		sample := core.SampleAroundAxis(normal, 0.5, sampler.Get2D())
		cosTheta := sample.Dot(normal)
		rays = append(rays, secondaryRay{
			origin:    front,
			direction: sample,
			weight:    mat.DiffuseColor.Multiply(cosTheta),
		})
	}
	return rays
}
