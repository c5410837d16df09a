package renderer

import (
	"github.com/df07/go-photon-mapper/pkg/core"
	"github.com/df07/go-photon-mapper/pkg/material"
)

// gatherPhotons estimates indirect diffuse light from the photons around
// location. Only photons on the normal's side of the surface that arrived
// from the front are counted.
func (rt *RayTracer) gatherPhotons(location, normal core.Vec3, mat material.Material) core.Vec3 {
	if mat.DiffuseColor.IsZero() {
		return core.Vec3{}
	}

	cfg := rt.config
	var shadowOrigin core.Vec3
	if cfg.GatherKernel == KernelVisibility {
		shadowOrigin = location.Add(normal.Multiply(cfg.Epsilon))
	}

	total := 0.0
	for _, n := range rt.photons.FindWithinRadius(location, cfg.GatherRadius) {
		p, ok := rt.photons.Get(n.ID)
		if !ok {
			continue
		}
		if cfg.GatherMinDepth > 0 && p.Depth < cfg.GatherMinDepth {
			continue
		}
		if cfg.GatherMaxDepth > 0 && p.Depth > cfg.GatherMaxDepth {
			continue
		}
		if p.Location.Subtract(location).Dot(normal) < 0 {
			continue
		}
		cosine := -normal.Dot(p.Direction)
		if cosine <= 0 {
			continue
		}

		switch cfg.GatherKernel {
		case KernelUnweighted:
			total += cosine
		case KernelVisibility:
			if !rt.visible(shadowOrigin, p.Location) {
				continue
			}
			fallthrough
		default:
			d := cfg.GatherEpsilon + n.Distance
			total += cosine / (d * d)
		}
	}

	return mat.DiffuseColor.Multiply(total * cfg.GatherScale)
}

// visible reports whether nothing blocks the segment from origin to target
func (rt *RayTracer) visible(origin, target core.Vec3) bool {
	toTarget := target.Subtract(origin)
	if toTarget.IsZero() {
		return true
	}
	// Distance is in units of toTarget, so anything before 1 is in the way
	hit := rt.scene.CastRay(origin, toTarget)
	return !hit.Hit || hit.Distance >= 1
}
