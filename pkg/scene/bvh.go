package scene

import (
	"sort"

	"github.com/df07/go-photon-mapper/pkg/core"
)

// BVHNode represents a node in the Bounding Volume Hierarchy
type BVHNode struct {
	BoundingBox core.AABB
	Left        *BVHNode
	Right       *BVHNode
	Objects     []*Object // Leaf contents (nil for internal nodes)
}

// BVH is a bounding volume hierarchy over scene objects
type BVH struct {
	Root *BVHNode
}

// Leaf threshold: if we have this many or fewer objects, store them in a leaf node
const leafThreshold = 8

// NewBVH constructs a BVH from a slice of objects
func NewBVH(objects []*Object) *BVH {
	if len(objects) == 0 {
		return &BVH{Root: nil}
	}

	// Sorting happens in place, keep the caller's order intact
	objectsCopy := make([]*Object, len(objects))
	copy(objectsCopy, objects)

	return &BVH{Root: buildBVH(objectsCopy)}
}

// buildBVH recursively splits at the median along the longest axis
func buildBVH(objects []*Object) *BVHNode {
	boundingBox := objects[0].BoundingBox()
	for _, obj := range objects[1:] {
		boundingBox = boundingBox.Union(obj.BoundingBox())
	}

	if len(objects) <= leafThreshold {
		return &BVHNode{BoundingBox: boundingBox, Objects: objects}
	}

	axis := boundingBox.LongestAxis()
	sort.Slice(objects, func(i, j int) bool {
		return objects[i].BoundingBox().Center().Axis(axis) < objects[j].BoundingBox().Center().Axis(axis)
	})

	mid := len(objects) / 2
	return &BVHNode{
		BoundingBox: boundingBox,
		Left:        buildBVH(objects[:mid]),
		Right:       buildBVH(objects[mid:]),
	}
}

// bvhHit pairs a shape intersection with the object that produced it
type bvhHit struct {
	Intersection
	Object *Object
}

// Hit returns the closest intersection in [tMin, tMax]
func (bvh *BVH) Hit(ray core.Ray, tMin, tMax float64) (bvhHit, bool) {
	if bvh.Root == nil {
		return bvhHit{}, false
	}
	return bvh.hitNode(bvh.Root, ray, tMin, tMax)
}

func (bvh *BVH) hitNode(node *BVHNode, ray core.Ray, tMin, tMax float64) (bvhHit, bool) {
	if !node.BoundingBox.Hit(ray, tMin, tMax) {
		return bvhHit{}, false
	}

	var closest bvhHit
	hitAnything := false
	closestSoFar := tMax

	if node.Objects != nil {
		for _, obj := range node.Objects {
			if hit, ok := obj.Shape.Hit(ray, tMin, closestSoFar); ok {
				hitAnything = true
				closestSoFar = hit.T
				closest = bvhHit{Intersection: hit, Object: obj}
			}
		}
		return closest, hitAnything
	}

	for _, child := range []*BVHNode{node.Left, node.Right} {
		if child == nil {
			continue
		}
		if hit, ok := bvh.hitNode(child, ray, tMin, closestSoFar); ok {
			hitAnything = true
			closestSoFar = hit.T
			closest = hit
		}
	}

	return closest, hitAnything
}

// BVHStats describes the shape of a built BVH
type BVHStats struct {
	TotalNodes   int
	LeafNodes    int
	MaxDepth     int
	TotalObjects int
}

// Stats walks the tree and counts its nodes
func (bvh *BVH) Stats() BVHStats {
	stats := BVHStats{}
	if bvh.Root != nil {
		bvh.collectStats(bvh.Root, 0, &stats)
	}
	return stats
}

func (bvh *BVH) collectStats(node *BVHNode, depth int, stats *BVHStats) {
	stats.TotalNodes++
	stats.MaxDepth = max(stats.MaxDepth, depth)

	if node.Objects != nil {
		stats.LeafNodes++
		stats.TotalObjects += len(node.Objects)
		return
	}
	if node.Left != nil {
		bvh.collectStats(node.Left, depth+1, stats)
	}
	if node.Right != nil {
		bvh.collectStats(node.Right, depth+1, stats)
	}
}
