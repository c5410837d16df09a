package photonmap

import (
	"math"

	"github.com/dhconnelly/rtreego"

	"github.com/df07/go-photon-mapper/pkg/core"
)

const (
	rtreeMinChildren = 25
	rtreeMaxChildren = 50
	rtreePointTol    = 1e-9
)

// rtreeEntry adapts a photon location to rtreego.Spatial
type rtreeEntry struct {
	id   int
	pos  core.Vec3
	rect rtreego.Rect
}

func (e *rtreeEntry) Bounds() rtreego.Rect {
	return e.rect
}

func toPoint(v core.Vec3) rtreego.Point {
	return rtreego.Point{v.X, v.Y, v.Z}
}

// rtreeIndex answers queries with an R-tree. rtreego ranks by distance to the
// padded point rectangles, so its answers are treated as candidates and
// re-ranked with exact distances.
type rtreeIndex struct {
	tree *rtreego.Rtree
	n    int
}

func newRTreeIndex(photons []Photon) *rtreeIndex {
	objs := make([]rtreego.Spatial, len(photons))
	for i, p := range photons {
		objs[i] = &rtreeEntry{
			id:   p.ID,
			pos:  p.Location,
			rect: toPoint(p.Location).ToRect(rtreePointTol),
		}
	}
	return &rtreeIndex{
		tree: rtreego.NewTree(3, rtreeMinChildren, rtreeMaxChildren, objs...),
		n:    len(photons),
	}
}

func (r *rtreeIndex) size() int {
	return r.n
}

func (r *rtreeIndex) nearest(q core.Vec3, k int) []Neighbor {
	if r.n == 0 {
		return nil
	}
	if k > r.n {
		k = r.n
	}

	// The k approximate nearest give an upper bound on the true k-th distance
	worst := 0.0
	for _, s := range r.tree.NearestNeighbors(k, toPoint(q)) {
		if s == nil {
			continue
		}
		if d2 := q.DistanceSquared(s.(*rtreeEntry).pos); d2 > worst {
			worst = d2
		}
	}

	cs := r.searchBall(q, worst)
	found := toNeighbors(cs)
	if len(found) > k {
		found = found[:k]
	}
	return found
}

func (r *rtreeIndex) withinRadius(q core.Vec3, radius float64) []Neighbor {
	if r.n == 0 {
		return nil
	}
	return toNeighbors(r.searchBall(q, radius*radius))
}

// searchBall returns every entry within squared distance r2 of q
func (r *rtreeIndex) searchBall(q core.Vec3, r2 float64) []candidate {
	half := math.Sqrt(r2) + rtreePointTol
	corner := rtreego.Point{q.X - half, q.Y - half, q.Z - half}
	box, err := rtreego.NewRect(corner, []float64{2 * half, 2 * half, 2 * half})
	if err != nil {
		return nil
	}

	var cs []candidate
	for _, s := range r.tree.SearchIntersect(box) {
		e := s.(*rtreeEntry)
		if d2 := q.DistanceSquared(e.pos); d2 <= r2 {
			cs = append(cs, candidate{id: e.id, dist2: d2})
		}
	}
	return cs
}
