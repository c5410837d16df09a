package photonmap

import (
	"github.com/df07/go-photon-mapper/pkg/core"
)

// kdTree is a balanced k-d tree stored implicitly in a slice: the node for a
// range [lo, hi) sits at its midpoint, with the left subtree in [lo, mid) and
// the right in [mid+1, hi). Each node splits on the longest axis of its
// range's bounding box.
type kdTree struct {
	points []kdPoint
	axes   []uint8
}

type kdPoint struct {
	pos core.Vec3
	id  int
}

// before is the total order used for splitting: coordinate, then id
func (p kdPoint) before(o kdPoint, axis int) bool {
	a, b := p.pos.Axis(axis), o.pos.Axis(axis)
	if a != b {
		return a < b
	}
	return p.id < o.id
}

func newKDTree(photons []Photon) *kdTree {
	t := &kdTree{
		points: make([]kdPoint, len(photons)),
		axes:   make([]uint8, len(photons)),
	}
	for i, p := range photons {
		t.points[i] = kdPoint{pos: p.Location, id: p.ID}
	}
	t.build(0, len(t.points))
	return t
}

func (t *kdTree) size() int {
	return len(t.points)
}

func (t *kdTree) build(lo, hi int) {
	if hi-lo <= 1 {
		return
	}

	box := core.NewAABBFromPoints(t.positions(lo, hi)...)
	axis := box.LongestAxis()

	mid := lo + (hi-lo)/2
	t.axes[mid] = uint8(axis)
	selectNth(t.points[lo:hi], mid-lo, axis)

	t.build(lo, mid)
	t.build(mid+1, hi)
}

func (t *kdTree) positions(lo, hi int) []core.Vec3 {
	out := make([]core.Vec3, hi-lo)
	for i := range out {
		out[i] = t.points[lo+i].pos
	}
	return out
}

// selectNth partially sorts pts so that pts[n] is the element that would be
// there if fully sorted, everything before it is not after it, and everything
// after it is not before it
func selectNth(pts []kdPoint, n, axis int) {
	lo, hi := 0, len(pts)-1
	for lo < hi {
		p := partition(pts, lo, hi, medianOfThree(pts, lo, hi, axis), axis)
		switch {
		case n == p:
			return
		case n < p:
			hi = p - 1
		default:
			lo = p + 1
		}
	}
}

func medianOfThree(pts []kdPoint, lo, hi, axis int) int {
	mid := lo + (hi-lo)/2
	a, b, c := pts[lo], pts[mid], pts[hi]
	switch {
	case a.before(b, axis) == b.before(c, axis):
		return mid
	case a.before(b, axis) == c.before(a, axis):
		return lo
	default:
		return hi
	}
}

func partition(pts []kdPoint, lo, hi, pivot, axis int) int {
	pts[pivot], pts[hi] = pts[hi], pts[pivot]
	store := lo
	for i := lo; i < hi; i++ {
		if pts[i].before(pts[hi], axis) {
			pts[i], pts[store] = pts[store], pts[i]
			store++
		}
	}
	pts[store], pts[hi] = pts[hi], pts[store]
	return store
}

func (t *kdTree) nearest(q core.Vec3, k int) []Neighbor {
	h := make(worstHeap, 0, k)
	t.searchNearest(0, len(t.points), q, k, &h)
	return toNeighbors(h)
}

func (t *kdTree) searchNearest(lo, hi int, q core.Vec3, k int, h *worstHeap) {
	if lo >= hi {
		return
	}
	mid := lo + (hi-lo)/2
	node := t.points[mid]
	h.offer(candidate{id: node.id, dist2: q.DistanceSquared(node.pos)}, k)
	if hi-lo == 1 {
		return
	}

	axis := int(t.axes[mid])
	diff := q.Axis(axis) - node.pos.Axis(axis)
	nearLo, nearHi, farLo, farHi := mid+1, hi, lo, mid
	if diff < 0 {
		nearLo, nearHi, farLo, farHi = lo, mid, mid+1, hi
	}

	t.searchNearest(nearLo, nearHi, q, k, h)
	// equal distance still has to be explored for the id tie-break
	if !h.full(k) || diff*diff <= h.worst() {
		t.searchNearest(farLo, farHi, q, k, h)
	}
}

func (t *kdTree) withinRadius(q core.Vec3, r float64) []Neighbor {
	var found []candidate
	t.searchRadius(0, len(t.points), q, r*r, &found)
	return toNeighbors(found)
}

func (t *kdTree) searchRadius(lo, hi int, q core.Vec3, r2 float64, found *[]candidate) {
	if lo >= hi {
		return
	}
	mid := lo + (hi-lo)/2
	node := t.points[mid]
	if d2 := q.DistanceSquared(node.pos); d2 <= r2 {
		*found = append(*found, candidate{id: node.id, dist2: d2})
	}
	if hi-lo == 1 {
		return
	}

	axis := int(t.axes[mid])
	diff := q.Axis(axis) - node.pos.Axis(axis)
	if diff <= 0 || diff*diff <= r2 {
		t.searchRadius(lo, mid, q, r2, found)
	}
	if diff >= 0 || diff*diff <= r2 {
		t.searchRadius(mid+1, hi, q, r2, found)
	}
}
