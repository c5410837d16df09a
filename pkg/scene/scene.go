package scene

import (
	"github.com/df07/go-photon-mapper/pkg/core"
	"github.com/df07/go-photon-mapper/pkg/material"
)

// HitRecord describes the closest intersection of a ray with the scene.
// Normal is the geometric outward normal and may point either way relative to the ray.
type HitRecord struct {
	Hit       bool
	Location  core.Vec3
	Normal    core.Vec3
	Distance  float64 // Ray parameter at the hit, in units of the direction length
	Object    *Object
	FaceIndex int
}

// Scene is what the photon tracer and the ray tracer need from the world:
// ray casting, the light list and material lookup
type Scene interface {
	CastRay(origin, direction core.Vec3) HitRecord
	Lights() []Light
	MaterialOf(object *Object) material.Material
}

// Object is a named shape with a surface material
type Object struct {
	Name     string
	Shape    Shape
	Material material.Material
}

// NewObject creates a new scene object
func NewObject(name string, shape Shape, mat material.Material) *Object {
	return &Object{Name: name, Shape: shape, Material: mat}
}

// BoundingBox returns the bounds of the object's shape
func (o *Object) BoundingBox() core.AABB {
	return o.Shape.BoundingBox()
}

// Intersection is a single shape hit in ray-parameter space
type Intersection struct {
	T         float64
	Point     core.Vec3
	Normal    core.Vec3 // Outward normal, unit length
	FaceIndex int
}

// Shape interface for geometry that can be hit by rays
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float64) (Intersection, bool)
	BoundingBox() core.AABB
}
