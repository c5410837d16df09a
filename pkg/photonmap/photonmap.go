package photonmap

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/df07/go-photon-mapper/pkg/core"
)

var (
	// ErrIndexNotBuilt is the panic value for queries issued before BuildIndex
	ErrIndexNotBuilt = errors.New("photon map index not built")
	// ErrIDMismatch is returned when a photon's id is not the next free id
	ErrIDMismatch = errors.New("photon id does not match next id")
	// ErrSealed is returned when adding to a map whose index has been built
	ErrSealed = errors.New("photon map is sealed after BuildIndex")
	// ErrInconsistentIndex is returned by CheckConsistency
	ErrInconsistentIndex = errors.New("photon map index inconsistent")
)

// PhotonMap is an append-only table of photons keyed by dense ids, plus a
// spatial index for neighbor queries.
//
// Photons are added while the map is being built (Add and Record are safe for
// concurrent use). BuildIndex seals the map; after that the index is
// immutable and queries need no locking.
type PhotonMap struct {
	mu      sync.Mutex
	photons []Photon
	depth   int
	kind    IndexKind

	index atomic.Pointer[indexSnapshot]
}

// indexSnapshot is an immutable view published by BuildIndex
type indexSnapshot struct {
	idx     spatialIndex
	photons []Photon
}

// Option configures a new PhotonMap
type Option func(*PhotonMap)

// WithIndex selects the spatial index built by BuildIndex
func WithIndex(kind IndexKind) Option {
	return func(m *PhotonMap) { m.kind = kind }
}

// WithDepth sets the maximum photon depth recorded as map metadata
func WithDepth(depth int) Option {
	return func(m *PhotonMap) { m.depth = depth }
}

// WithCapacity preallocates room for n photons
func WithCapacity(n int) Option {
	return func(m *PhotonMap) { m.photons = make([]Photon, 0, n) }
}

// New creates an empty photon map
func New(opts ...Option) *PhotonMap {
	m := &PhotonMap{kind: IndexKDTree}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NextID returns the id the next photon must carry: the current size
func (m *PhotonMap) NextID() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.photons)
}

// Len returns the number of photons in the map
func (m *PhotonMap) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.photons)
}

// Add inserts a photon whose ID must equal NextID()
func (m *PhotonMap) Add(p Photon) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.index.Load() != nil {
		return ErrSealed
	}
	if p.ID != len(m.photons) {
		return fmt.Errorf("%w: got %d, expected %d", ErrIDMismatch, p.ID, len(m.photons))
	}
	m.photons = append(m.photons, p)
	return nil
}

// Record allocates the next id and inserts a photon in one step
func (m *PhotonMap) Record(location, direction core.Vec3, depth int) (Photon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.index.Load() != nil {
		return Photon{}, ErrSealed
	}
	p := Photon{ID: len(m.photons), Location: location, Direction: direction, Depth: depth}
	m.photons = append(m.photons, p)
	return p, nil
}

// Get returns the photon with the given id. Once the map is sealed it reads
// the published snapshot without locking.
func (m *PhotonMap) Get(id int) (Photon, bool) {
	if snap := m.index.Load(); snap != nil {
		if id < 0 || id >= len(snap.photons) {
			return Photon{}, false
		}
		return snap.photons[id], true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id < 0 || id >= len(m.photons) {
		return Photon{}, false
	}
	return m.photons[id], true
}

// Photons returns a copy of all photons in id order
func (m *PhotonMap) Photons() []Photon {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Photon, len(m.photons))
	copy(out, m.photons)
	return out
}

// Locations returns every photon location in id order
func (m *PhotonMap) Locations() []core.Vec3 {
	m.mu.Lock()
	defer m.mu.Unlock()

	locs := make([]core.Vec3, len(m.photons))
	for i, p := range m.photons {
		locs[i] = p.Location
	}
	return locs
}

// Depth returns the maximum photon depth the map was traced with
func (m *PhotonMap) Depth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.depth
}

// SetDepth records the maximum photon depth the map was traced with
func (m *PhotonMap) SetDepth(depth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.depth = depth
}

// IndexKind returns the spatial index BuildIndex uses
func (m *PhotonMap) IndexKind() IndexKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.kind
}

// BuildIndex constructs the balanced spatial index over all photons and seals
// the map. Calling it again rebuilds the index from the same photons.
func (m *PhotonMap) BuildIndex() {
	m.mu.Lock()
	defer m.mu.Unlock()

	photons := m.photons[:len(m.photons):len(m.photons)]
	m.index.Store(&indexSnapshot{idx: newIndex(m.kind, photons), photons: photons})
}

// Indexed reports whether BuildIndex has been called
func (m *PhotonMap) Indexed() bool {
	return m.index.Load() != nil
}

func (m *PhotonMap) snapshot() *indexSnapshot {
	snap := m.index.Load()
	if snap == nil {
		panic(ErrIndexNotBuilt)
	}
	return snap
}

// FindNearest returns the k photons closest to location, ordered by ascending
// distance with ties broken by lower id. Fewer are returned when the map
// holds fewer than k photons. Panics if the index has not been built.
func (m *PhotonMap) FindNearest(location core.Vec3, k int) []Neighbor {
	snap := m.snapshot()
	if k <= 0 {
		return nil
	}
	return snap.idx.nearest(location, k)
}

// FindWithinRadius returns every photon within distance r of location
// (inclusive), ordered by ascending distance then id. Panics if the index has
// not been built.
func (m *PhotonMap) FindWithinRadius(location core.Vec3, r float64) []Neighbor {
	snap := m.snapshot()
	if !(r >= 0) {
		return nil
	}
	return snap.idx.withinRadius(location, r)
}

// CheckConsistency verifies that every photon is found by a nearest-neighbor
// query at its own location. When several photons share a location the
// lowest id wins the query, so the photon only has to be among the
// zero-distance results.
func (m *PhotonMap) CheckConsistency() error {
	snap := m.index.Load()
	if snap == nil {
		return ErrIndexNotBuilt
	}

	photons := m.Photons()
	if snap.idx.size() != len(photons) {
		return fmt.Errorf("%w: index holds %d photons, map holds %d", ErrInconsistentIndex, snap.idx.size(), len(photons))
	}

	for _, p := range photons {
		nearest := snap.idx.nearest(p.Location, 1)
		if len(nearest) == 1 && nearest[0].ID == p.ID {
			continue
		}
		if len(nearest) == 1 && nearest[0].Distance == 0 && containsID(snap.idx.withinRadius(p.Location, 0), p.ID) {
			continue
		}
		return fmt.Errorf("%w: photon %d not found at its own location %v", ErrInconsistentIndex, p.ID, p.Location)
	}
	return nil
}

func containsID(neighbors []Neighbor, id int) bool {
	for _, n := range neighbors {
		if n.ID == id {
			return true
		}
	}
	return false
}
