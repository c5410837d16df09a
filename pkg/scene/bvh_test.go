package scene

import (
	"math"
	"testing"

	"github.com/df07/go-photon-mapper/pkg/core"
	"github.com/df07/go-photon-mapper/pkg/material"
)

// mockShape for testing
type mockShape struct {
	boundingBox core.AABB
	hitFn       func(ray core.Ray, tMin, tMax float64) (Intersection, bool)
}

func (m mockShape) Hit(ray core.Ray, tMin, tMax float64) (Intersection, bool) {
	return m.hitFn(ray, tMin, tMax)
}

func (m mockShape) BoundingBox() core.AABB {
	return m.boundingBox
}

func neverHit(ray core.Ray, tMin, tMax float64) (Intersection, bool) {
	return Intersection{}, false
}

// hitAt returns a hit function reporting an intersection at tValue for rays travelling +X
func hitAt(tValue float64) func(ray core.Ray, tMin, tMax float64) (Intersection, bool) {
	return func(ray core.Ray, tMin, tMax float64) (Intersection, bool) {
		if ray.Direction.X > 0 && tValue >= tMin && tValue <= tMax {
			return Intersection{T: tValue, Point: ray.At(tValue)}, true
		}
		return Intersection{}, false
	}
}

func boxObject(x0, x1 float64, hitFn func(core.Ray, float64, float64) (Intersection, bool)) *Object {
	return NewObject("mock", mockShape{
		boundingBox: core.NewAABB(core.NewVec3(x0, 0, 0), core.NewVec3(x1, 1, 1)),
		hitFn:       hitFn,
	}, material.NewDiffuse(core.NewVec3(0.5, 0.5, 0.5)))
}

func TestBVH_LeafThresholdBoundary(t *testing.T) {
	objects := make([]*Object, 8)
	for i := range objects {
		objects[i] = boxObject(float64(i), float64(i)+1, neverHit)
	}

	stats := NewBVH(objects).Stats()
	if stats.TotalNodes != 1 || stats.LeafNodes != 1 {
		t.Errorf("Expected a single leaf for %d objects, got %d nodes / %d leaves",
			len(objects), stats.TotalNodes, stats.LeafNodes)
	}

	objects = append(objects, boxObject(8, 9, neverHit))
	stats = NewBVH(objects).Stats()
	if stats.TotalNodes == 1 {
		t.Errorf("Expected split for %d objects, but got single node", len(objects))
	}
	if stats.LeafNodes < 2 {
		t.Errorf("Expected at least 2 leaf nodes after split, got %d", stats.LeafNodes)
	}
}

func TestBVH_Empty(t *testing.T) {
	bvh := NewBVH(nil)
	if bvh.Root != nil {
		t.Error("Expected nil root for empty BVH")
	}
	if _, ok := bvh.Hit(core.NewRay(core.Vec3{}, core.NewVec3(1, 0, 0)), 0.001, 1000); ok {
		t.Error("Expected no hit for empty BVH")
	}
}

func TestBVH_ClosestHitWins(t *testing.T) {
	objects := []*Object{
		boxObject(0, 1, hitAt(2.0)),
		boxObject(0.5, 1.5, hitAt(1.0)),
		boxObject(1.0, 2.0, hitAt(3.0)),
	}
	// Enough far-away filler to force internal nodes
	for i := 0; i < 20; i++ {
		objects = append(objects, boxObject(float64(10+i), float64(11+i), neverHit))
	}

	bvh := NewBVH(objects)
	hit, ok := bvh.Hit(core.NewRay(core.NewVec3(-1, 0.5, 0.5), core.NewVec3(1, 0, 0)), 0.001, 1000.0)
	if !ok {
		t.Fatal("Expected hit")
	}
	if math.Abs(hit.T-1.0) > 1e-9 {
		t.Errorf("Expected closest hit at t=1.0, got t=%f", hit.T)
	}
	if hit.Object != objects[1] {
		t.Error("Expected the hit to report the object that produced it")
	}
}

func TestBVH_RayHitsBoundingBoxButMissesShapes(t *testing.T) {
	bvh := NewBVH([]*Object{boxObject(0, 2, neverHit)})
	if _, ok := bvh.Hit(core.NewRay(core.NewVec3(-1, 0.5, 0.5), core.NewVec3(1, 0, 0)), 0.001, 1000.0); ok {
		t.Error("Expected miss when ray hits bounding box but misses shape")
	}
}

func TestBVH_StatsCollection(t *testing.T) {
	objects := make([]*Object, 20)
	for i := range objects {
		objects[i] = boxObject(float64(i), float64(i)+1, neverHit)
	}

	stats := NewBVH(objects).Stats()
	if stats.TotalObjects != 20 {
		t.Errorf("Expected 20 total objects, got %d", stats.TotalObjects)
	}
	if stats.TotalNodes < stats.LeafNodes {
		t.Error("Total nodes should be >= leaf nodes")
	}
	if stats.MaxDepth == 0 {
		t.Error("Expected max depth > 0 for 20 objects")
	}
}
