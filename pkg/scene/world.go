package scene

import (
	"fmt"
	"math"

	"go.uber.org/multierr"

	"github.com/df07/go-photon-mapper/pkg/core"
	"github.com/df07/go-photon-mapper/pkg/material"
)

// minHitDistance keeps a ray from re-hitting the surface it starts on when
// callers forget to offset the origin
const minHitDistance = 1e-9

// CameraConfig is a pinhole camera placed with Euler angles, in the style of
// Blender's camera object
type CameraConfig struct {
	Location    core.Vec3
	Rotation    core.Vec3 // XYZ Euler angles in radians; zero looks down -Z with +Y up
	FocalLength float64   // lens / sensor width, e.g. 50mm / 36mm
}

// DefaultCameraConfig returns a camera at the origin looking down -Z
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{FocalLength: 50.0 / 36.0}
}

// World is a concrete Scene backed by a BVH over its objects
type World struct {
	Name    string
	Objects []*Object
	Ambient core.Vec3
	Camera  CameraConfig

	lights []Light
	bvh    *BVH
}

// NewWorld creates an empty world
func NewWorld(name string) *World {
	return &World{Name: name, Camera: DefaultCameraConfig()}
}

// Add appends an object; call Build before casting rays
func (w *World) Add(name string, shape Shape, mat material.Material) *Object {
	obj := NewObject(name, shape, mat)
	w.Objects = append(w.Objects, obj)
	w.bvh = nil
	return obj
}

// AddLight appends a light
func (w *World) AddLight(light Light) {
	w.lights = append(w.lights, light)
}

// Build validates the world and constructs the acceleration structure
func (w *World) Build() error {
	var err error
	for _, obj := range w.Objects {
		if e := obj.Material.Validate(); e != nil {
			err = multierr.Append(err, fmt.Errorf("object %q: %w", obj.Name, e))
		}
	}
	for _, light := range w.lights {
		err = multierr.Append(err, light.Validate())
	}
	if err != nil {
		return err
	}
	w.bvh = NewBVH(w.Objects)
	return nil
}

// BVHStats reports the acceleration structure; zero before Build
func (w *World) BVHStats() BVHStats {
	if w.bvh == nil {
		return BVHStats{}
	}
	return w.bvh.Stats()
}

// CastRay returns the closest hit along the ray. A zero direction never hits.
func (w *World) CastRay(origin, direction core.Vec3) HitRecord {
	if direction.IsZero() {
		return HitRecord{}
	}
	ray := core.NewRay(origin, direction)

	var hit bvhHit
	var ok bool
	if w.bvh != nil {
		hit, ok = w.bvh.Hit(ray, minHitDistance, math.Inf(1))
	} else {
		hit, ok = w.hitLinear(ray)
	}
	if !ok {
		return HitRecord{}
	}
	return HitRecord{
		Hit:       true,
		Location:  hit.Point,
		Normal:    hit.Normal,
		Distance:  hit.T,
		Object:    hit.Object,
		FaceIndex: hit.FaceIndex,
	}
}

// hitLinear tests every object; used until Build has created the BVH
func (w *World) hitLinear(ray core.Ray) (bvhHit, bool) {
	var closest bvhHit
	found := false
	closestSoFar := math.Inf(1)
	for _, obj := range w.Objects {
		if hit, ok := obj.Shape.Hit(ray, minHitDistance, closestSoFar); ok {
			closestSoFar = hit.T
			closest = bvhHit{Intersection: hit, Object: obj}
			found = true
		}
	}
	return closest, found
}

// Lights returns the world's lights
func (w *World) Lights() []Light {
	return w.lights
}

// MaterialOf returns the material assigned to an object
func (w *World) MaterialOf(object *Object) material.Material {
	if object == nil {
		return material.Material{IOR: 1}
	}
	return object.Material
}

// TotalLightEnergy sums the energy of all lights
func (w *World) TotalLightEnergy() float64 {
	total := 0.0
	for _, l := range w.lights {
		total += l.Energy
	}
	return total
}
