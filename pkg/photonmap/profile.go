package photonmap

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/df07/go-photon-mapper/pkg/core"
)

// ProfileConfig describes a synthetic benchmark: MapSize photons uniformly
// placed in the unit cube, then NumQueries radius queries at random points
type ProfileConfig struct {
	MapSize     int
	NumQueries  int
	QueryRadius float64
	Index       IndexKind
	Seed        int64
}

// ProfileResult holds the timings of each phase
type ProfileResult struct {
	Config        ProfileConfig
	Insert        time.Duration
	Build         time.Duration
	Query         time.Duration
	Check         time.Duration
	MeanNeighbors float64
	Map           *PhotonMap
}

// Profile builds a random map, times insertion, index construction and
// queries, then verifies index consistency
func Profile(cfg ProfileConfig, logger *zap.Logger) (ProfileResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MapSize < 0 || cfg.NumQueries < 0 {
		return ProfileResult{}, fmt.Errorf("map size and query count must be non-negative")
	}

	random := rand.New(rand.NewSource(cfg.Seed))
	randomVec := func() core.Vec3 {
		return core.NewVec3(random.Float64(), random.Float64(), random.Float64())
	}

	result := ProfileResult{Config: cfg}
	m := New(WithIndex(cfg.Index), WithCapacity(cfg.MapSize))

	start := time.Now()
	for i := 0; i < cfg.MapSize; i++ {
		p := Photon{ID: m.NextID(), Location: randomVec(), Direction: randomVec()}
		if err := m.Add(p); err != nil {
			return result, err
		}
	}
	result.Insert = time.Since(start)

	start = time.Now()
	m.BuildIndex()
	result.Build = time.Since(start)

	start = time.Now()
	found := 0
	for i := 0; i < cfg.NumQueries; i++ {
		found += len(m.FindWithinRadius(randomVec(), cfg.QueryRadius))
	}
	result.Query = time.Since(start)
	if cfg.NumQueries > 0 {
		result.MeanNeighbors = float64(found) / float64(cfg.NumQueries)
	}

	start = time.Now()
	err := m.CheckConsistency()
	result.Check = time.Since(start)
	result.Map = m

	logger.Info("Profiled photon map",
		zap.Int("map_size", cfg.MapSize),
		zap.Int("num_queries", cfg.NumQueries),
		zap.Float64("query_radius", cfg.QueryRadius),
		zap.Stringer("index", cfg.Index),
		zap.Duration("insert", result.Insert),
		zap.Duration("build", result.Build),
		zap.Duration("query", result.Query),
		zap.Duration("check", result.Check))

	return result, err
}
