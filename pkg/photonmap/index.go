package photonmap

import (
	"container/heap"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/df07/go-photon-mapper/pkg/core"
)

// IndexKind selects the spatial index behind a PhotonMap
type IndexKind int

const (
	// IndexKDTree is a balanced k-d tree split on the longest axis
	IndexKDTree IndexKind = iota
	// IndexRTree is an R-tree bulk loaded from all photons
	IndexRTree
)

func (k IndexKind) String() string {
	switch k {
	case IndexKDTree:
		return "kdtree"
	case IndexRTree:
		return "rtree"
	default:
		return fmt.Sprintf("IndexKind(%d)", int(k))
	}
}

// ParseIndexKind accepts "kdtree" or "rtree"
func ParseIndexKind(s string) (IndexKind, error) {
	switch strings.ToLower(s) {
	case "kdtree", "kd", "":
		return IndexKDTree, nil
	case "rtree", "r":
		return IndexRTree, nil
	default:
		return 0, fmt.Errorf("unknown index kind %q (want kdtree or rtree)", s)
	}
}

// spatialIndex answers neighbor queries over an immutable photon set.
// Results are sorted by (distance, id).
type spatialIndex interface {
	nearest(q core.Vec3, k int) []Neighbor
	withinRadius(q core.Vec3, r float64) []Neighbor
	size() int
}

func newIndex(kind IndexKind, photons []Photon) spatialIndex {
	switch kind {
	case IndexRTree:
		return newRTreeIndex(photons)
	default:
		return newKDTree(photons)
	}
}

// candidate is a neighbor with its squared distance, used during search
type candidate struct {
	id    int
	dist2 float64
}

// closer orders candidates by squared distance, then id
func (c candidate) closer(o candidate) bool {
	if c.dist2 != o.dist2 {
		return c.dist2 < o.dist2
	}
	return c.id < o.id
}

// worstHeap is a max-heap of the best k candidates seen so far; the root is
// the worst of them
type worstHeap []candidate

func (h worstHeap) Len() int           { return len(h) }
func (h worstHeap) Less(i, j int) bool { return h[j].closer(h[i]) }
func (h worstHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *worstHeap) Push(x any)        { *h = append(*h, x.(candidate)) }
func (h *worstHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}

// offer keeps c if it is among the k closest seen so far
func (h *worstHeap) offer(c candidate, k int) {
	if h.Len() < k {
		heap.Push(h, c)
		return
	}
	if c.closer((*h)[0]) {
		(*h)[0] = c
		heap.Fix(h, 0)
	}
}

// full reports whether k candidates are held
func (h worstHeap) full(k int) bool {
	return len(h) >= k
}

// worst returns the squared distance of the farthest kept candidate
func (h worstHeap) worst() float64 {
	return h[0].dist2
}

// toNeighbors sorts candidates by (distance, id) and converts them
func toNeighbors(cs []candidate) []Neighbor {
	sort.Slice(cs, func(i, j int) bool { return cs[i].closer(cs[j]) })
	out := make([]Neighbor, len(cs))
	for i, c := range cs {
		out[i] = Neighbor{ID: c.id, Distance: math.Sqrt(c.dist2)}
	}
	return out
}
