// Package tracer emits photons from scene lights and records their surface
// interactions into a photon map.
package tracer

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/df07/go-photon-mapper/pkg/core"
	"github.com/df07/go-photon-mapper/pkg/material"
	"github.com/df07/go-photon-mapper/pkg/photonmap"
	"github.com/df07/go-photon-mapper/pkg/scene"
	"github.com/df07/go-photon-mapper/pkg/workpool"
)

// PhotonTracer populates photon maps from a scene
type PhotonTracer struct {
	scene  scene.Scene
	config Config
	logger *zap.Logger
}

// New creates a photon tracer. A nil logger discards output.
func New(sc scene.Scene, config Config, logger *zap.Logger) (*PhotonTracer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tracer config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PhotonTracer{scene: sc, config: config, logger: logger}, nil
}

// batch is one work unit: count photons from a single light
type batch struct {
	light scene.Light
	count int
	seed  int64
}

// tracedPhoton is a photon awaiting id assignment
type tracedPhoton struct {
	location  core.Vec3
	direction core.Vec3
	depth     int
}

type batchResult struct {
	photons []tracedPhoton
	stats   Stats
}

// branch is a pending walk segment
type branch struct {
	origin    core.Vec3
	direction core.Vec3
	depth     int
}

// Budget returns ⌊energy × EmissionIntensity⌋, the photons emitted by a light
func (pt *PhotonTracer) Budget(light scene.Light) int {
	return int(math.Floor(light.Energy * pt.config.EmissionIntensity))
}

// plan splits every light's budget into batches. Batch ids, and so seeds,
// follow light order.
func (pt *PhotonTracer) plan() []batch {
	var batches []batch
	for _, light := range pt.scene.Lights() {
		for remaining := pt.Budget(light); remaining > 0; remaining -= pt.config.BatchSize {
			batches = append(batches, batch{
				light: light,
				count: min(remaining, pt.config.BatchSize),
				seed:  pt.config.Seed + int64(len(batches)),
			})
		}
	}
	return batches
}

// Trace emits every light's photon budget and records all hits into pm.
// Batches run in parallel but are recorded in batch order, so a given seed
// produces the same map for any worker count.
func (pt *PhotonTracer) Trace(ctx context.Context, pm *photonmap.PhotonMap) (Stats, error) {
	batches := pt.plan()
	pool := workpool.New(pt.config.NumWorkers, 0, func(task workpool.Task[batch]) (batchResult, error) {
		return pt.traceBatch(task.Payload)
	})

	pt.logger.Info("Tracing photons",
		zap.Int("lights", len(pt.scene.Lights())),
		zap.Int("batches", len(batches)),
		zap.Int("workers", pool.NumWorkers()),
		zap.Stringer("mode", pt.config.Mode),
		zap.Int("max_depth", pt.config.MaxDepth))

	start := time.Now()
	var stats Stats
	err := pool.Run(ctx, batches, func(id int, result batchResult) error {
		for _, p := range result.photons {
			if _, err := pm.Record(p.location, p.direction, p.depth); err != nil {
				return err
			}
		}
		stats.Add(result.stats)
		pt.logger.Debug("Batch traced",
			zap.Int("batch", id),
			zap.Int("emitted", result.stats.Emitted),
			zap.Int("recorded", result.stats.Recorded))
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("photon tracing failed: %w", err)
	}

	pt.logger.Info("Photon tracing complete",
		append(stats.Fields(), zap.Duration("elapsed", time.Since(start)))...)
	return stats, nil
}

// Build traces a fresh map, records the max depth, builds the index and
// verifies it
func (pt *PhotonTracer) Build(ctx context.Context, opts ...photonmap.Option) (*photonmap.PhotonMap, Stats, error) {
	pm := photonmap.New(opts...)
	pm.SetDepth(pt.config.MaxDepth)

	stats, err := pt.Trace(ctx, pm)
	if err != nil {
		return nil, stats, err
	}

	start := time.Now()
	pm.BuildIndex()
	if err := pm.CheckConsistency(); err != nil {
		return nil, stats, err
	}
	pt.logger.Info("Photon map indexed",
		zap.Int("photons", pm.Len()),
		zap.Stringer("index", pm.IndexKind()),
		zap.Duration("elapsed", time.Since(start)))

	return pm, stats, nil
}

func (pt *PhotonTracer) traceBatch(b batch) (batchResult, error) {
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(b.seed)))
	result := batchResult{stats: Stats{Batches: 1}}

	axis, ratio := b.light.EmissionAxis()
	for i := 0; i < b.count; i++ {
		origin := b.light.SampleEmissionPoint(sampler)
		direction := core.SampleAroundAxis(axis, ratio, sampler.Get2D())
		result.stats.Emitted++
		if err := pt.walk(origin, direction, sampler, &result); err != nil {
			return result, err
		}
	}
	return result, nil
}

// walk follows one emitted photon and every diffuse child it spawns, using an
// explicit stack instead of recursion
func (pt *PhotonTracer) walk(origin, direction core.Vec3, sampler core.Sampler, out *batchResult) error {
	stack := []branch{{origin: origin, direction: direction}}
	eps := pt.config.Epsilon

	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		hit := pt.scene.CastRay(b.origin, b.direction)
		if !hit.Hit {
			out.stats.Escaped++
			continue
		}

		normal := hit.Normal
		inside := false
		if normal.Dot(b.direction) > 0 {
			normal = normal.Negate()
			inside = true
		}

		depth := b.depth + 1
		location := hit.Location.Add(normal.Multiply(eps))
		out.photons = append(out.photons, tracedPhoton{location: location, direction: b.direction, depth: depth})
		out.stats.Recorded++

		mat := pt.scene.MaterialOf(hit.Object)
		var next []branch
		var err error
		if pt.config.Mode == ModeMirror {
			next, err = pt.scatterMirror(mat, b.direction, normal, location, depth, sampler, &out.stats)
		} else {
			next, err = pt.scatterFull(mat, b.direction, normal, inside, hit.Location, depth, sampler, &out.stats)
		}
		if err != nil {
			return err
		}
		stack = append(stack, next...)
	}
	return nil
}

// scatterFull applies absorption, the depth limit, the diffuse branch and
// then either reflection or refraction. Refraction is skipped on total
// internal reflection, or by the transmission gate when it is enabled.
func (pt *PhotonTracer) scatterFull(mat material.Material, direction, normal core.Vec3, inside bool, hitLocation core.Vec3, depth int, sampler core.Sampler, stats *Stats) ([]branch, error) {
	eps := pt.config.Epsilon
	front := hitLocation.Add(normal.Multiply(eps))

	absorbed, err := core.SampleBernoulli(pt.config.AbsorptionProbability, sampler)
	if err != nil {
		return nil, err
	}
	if absorbed {
		stats.Absorbed++
		return nil, nil
	}
	if depth >= pt.config.MaxDepth {
		stats.DepthLimited++
		return nil, nil
	}

	var next []branch

	diffuse, err := core.SampleBernoulli(mat.DiffuseProbability(), sampler)
	if err != nil {
		return nil, err
	}
	if diffuse {
		stats.DiffuseBranches++
		next = append(next, branch{
			origin:    front,
			direction: core.SampleAroundAxis(normal, 0.5, sampler.Get2D()),
			depth:     depth,
		})
	}

	reflected, err := core.SampleBernoulli(mat.Reflectivity(normal, direction), sampler)
	if err != nil {
		return nil, err
	}
	if reflected {
		stats.Reflected++
		return append(next, branch{origin: front, direction: material.Reflect(direction, normal), depth: depth}), nil
	}

	if pt.config.TransmissionGate {
		transmitted, err := core.SampleBernoulli(mat.Transmission, sampler)
		if err != nil {
			return nil, err
		}
		if !transmitted {
			stats.Terminated++
			return next, nil
		}
	}

	refracted, ok := material.Refract(direction, normal, mat.RefractionRatio(inside))
	if !ok {
		stats.TotalInternal++
		return next, nil
	}
	stats.Transmitted++
	back := hitLocation.Subtract(normal.Multiply(eps))
	return append(next, branch{origin: back, direction: refracted, depth: depth}), nil
}

// scatterMirror is the quick-map variant: one reflectivity-weighted bounce
func (pt *PhotonTracer) scatterMirror(mat material.Material, direction, normal, location core.Vec3, depth int, sampler core.Sampler, stats *Stats) ([]branch, error) {
	if depth >= pt.config.MaxDepth {
		stats.DepthLimited++
		return nil, nil
	}
	reflected, err := core.SampleBernoulli(mat.MirrorReflectivity, sampler)
	if err != nil {
		return nil, err
	}
	if !reflected {
		stats.Absorbed++
		return nil, nil
	}
	stats.Reflected++
	return []branch{{origin: location, direction: material.Reflect(direction, normal), depth: depth}}, nil
}
