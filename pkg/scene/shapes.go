package scene

import (
	"math"

	"github.com/df07/go-photon-mapper/pkg/core"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center core.Vec3
	Radius float64
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64) *Sphere {
	return &Sphere{Center: center, Radius: radius}
}

// Hit tests if a ray intersects with the sphere
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64) (Intersection, bool) {
	// Quadratic in t: a·t² + 2·halfB·t + c = 0
	oc := ray.Origin.Subtract(s.Center)
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return Intersection{}, false
	}
	sqrtD := math.Sqrt(discriminant)

	// Try the closer root first
	root := (-halfB - sqrtD) / a
	if root < tMin || root > tMax {
		root = (-halfB + sqrtD) / a
		if root < tMin || root > tMax {
			return Intersection{}, false
		}
	}

	point := ray.At(root)
	return Intersection{
		T:      root,
		Point:  point,
		Normal: point.Subtract(s.Center).Multiply(1.0 / s.Radius),
	}, true
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox() core.AABB {
	radius := core.NewVec3(s.Radius, s.Radius, s.Radius)
	return core.NewAABB(s.Center.Subtract(radius), s.Center.Add(radius))
}

// Plane represents an infinite plane defined by a point and normal
type Plane struct {
	Point  core.Vec3
	Normal core.Vec3
}

// NewPlane creates a new plane
func NewPlane(point, normal core.Vec3) *Plane {
	return &Plane{Point: point, Normal: normal.Normalize()}
}

// Hit tests if a ray intersects with the plane
func (p *Plane) Hit(ray core.Ray, tMin, tMax float64) (Intersection, bool) {
	denominator := ray.Direction.Dot(p.Normal)
	if math.Abs(denominator) < 1e-8 {
		return Intersection{}, false // parallel
	}

	t := p.Point.Subtract(ray.Origin).Dot(p.Normal) / denominator
	if t < tMin || t > tMax {
		return Intersection{}, false
	}

	return Intersection{T: t, Point: ray.At(t), Normal: p.Normal}, true
}

// BoundingBox returns a large slab around the plane
func (p *Plane) BoundingBox() core.AABB {
	const largeValue = 1e6
	const thickness = 0.001

	lo := core.NewVec3(-largeValue, -largeValue, -largeValue)
	hi := core.NewVec3(largeValue, largeValue, largeValue)

	// Axis-aligned planes get a thin box for better BVH splits
	switch {
	case math.Abs(p.Normal.X) > 0.999:
		lo.X, hi.X = p.Point.X-thickness, p.Point.X+thickness
	case math.Abs(p.Normal.Y) > 0.999:
		lo.Y, hi.Y = p.Point.Y-thickness, p.Point.Y+thickness
	case math.Abs(p.Normal.Z) > 0.999:
		lo.Z, hi.Z = p.Point.Z-thickness, p.Point.Z+thickness
	}
	return core.NewAABB(lo, hi)
}

// Quad represents a parallelogram defined by a corner and two edge vectors
type Quad struct {
	Corner core.Vec3
	U      core.Vec3
	V      core.Vec3
	Normal core.Vec3 // normalize(U × V)
	d      float64   // plane constant: normal · corner
	w      core.Vec3 // cached for the planar coordinate solve
}

// NewQuad creates a new quad from a corner point and two edge vectors
func NewQuad(corner, u, v core.Vec3) *Quad {
	cross := u.Cross(v)
	normal := cross.Normalize()
	return &Quad{
		Corner: corner,
		U:      u,
		V:      v,
		Normal: normal,
		d:      normal.Dot(corner),
		w:      cross.Multiply(1.0 / cross.Dot(cross)),
	}
}

// Hit tests if a ray intersects with the quad
func (q *Quad) Hit(ray core.Ray, tMin, tMax float64) (Intersection, bool) {
	denominator := ray.Direction.Dot(q.Normal)
	if math.Abs(denominator) < 1e-8 {
		return Intersection{}, false
	}

	t := (q.d - ray.Origin.Dot(q.Normal)) / denominator
	if t < tMin || t > tMax {
		return Intersection{}, false
	}

	point := ray.At(t)
	rel := point.Subtract(q.Corner)
	alpha := q.w.Dot(rel.Cross(q.V))
	beta := q.w.Dot(q.U.Cross(rel))
	if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
		return Intersection{}, false
	}

	return Intersection{T: t, Point: point, Normal: q.Normal}, true
}

// BoundingBox returns the bounds of the four corners, padded so flat quads
// never produce a zero-width box
func (q *Quad) BoundingBox() core.AABB {
	return core.NewAABBFromPoints(
		q.Corner,
		q.Corner.Add(q.U),
		q.Corner.Add(q.V),
		q.Corner.Add(q.U).Add(q.V),
	).Expand(1e-4)
}

// Box is a rectangular box made of six quads with an optional Euler rotation
type Box struct {
	Center   core.Vec3
	Size     core.Vec3 // Half extents along each local axis
	Rotation core.Vec3 // XYZ Euler angles in radians
	faces    [6]*Quad
	bbox     core.AABB
}

// NewBox creates a box; Size holds half extents so (1,1,1) is a 2x2x2 box
func NewBox(center, size, rotation core.Vec3) *Box {
	b := &Box{Center: center, Size: size, Rotation: rotation}
	b.generateFaces()
	return b
}

// generateFaces builds the six outward-facing quads
func (b *Box) generateFaces() {
	corners := [8]core.Vec3{
		core.NewVec3(-1, -1, -1), // 0: left-bottom-back
		core.NewVec3(1, -1, -1),  // 1: right-bottom-back
		core.NewVec3(1, 1, -1),   // 2: right-top-back
		core.NewVec3(-1, 1, -1),  // 3: left-top-back
		core.NewVec3(-1, -1, 1),  // 4: left-bottom-front
		core.NewVec3(1, -1, 1),   // 5: right-bottom-front
		core.NewVec3(1, 1, 1),    // 6: right-top-front
		core.NewVec3(-1, 1, 1),   // 7: left-top-front
	}
	for i := range corners {
		corners[i] = corners[i].MultiplyVec(b.Size).Rotate(b.Rotation).Add(b.Center)
	}

	// corner, u end, v end for each face, wound so u × v points outward
	faces := [6][3]int{
		{4, 5, 7}, // front (Z+)
		{1, 0, 2}, // back (Z-)
		{5, 1, 6}, // right (X+)
		{0, 4, 3}, // left (X-)
		{3, 7, 2}, // top (Y+)
		{4, 0, 5}, // bottom (Y-)
	}
	for i, f := range faces {
		b.faces[i] = NewQuad(
			corners[f[0]],
			corners[f[1]].Subtract(corners[f[0]]),
			corners[f[2]].Subtract(corners[f[0]]),
		)
	}

	b.bbox = core.NewAABBFromPoints(corners[:]...)
}

// Hit tests the ray against all six faces and reports which face was hit
func (b *Box) Hit(ray core.Ray, tMin, tMax float64) (Intersection, bool) {
	var closest Intersection
	found := false
	closestT := tMax

	for i, face := range b.faces {
		if hit, ok := face.Hit(ray, tMin, closestT); ok {
			closestT = hit.T
			closest = hit
			closest.FaceIndex = i
			found = true
		}
	}

	return closest, found
}

// BoundingBox returns the axis-aligned bounding box for this box
func (b *Box) BoundingBox() core.AABB {
	return b.bbox.Expand(1e-4)
}
