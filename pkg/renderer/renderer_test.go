package renderer

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/df07/go-photon-mapper/pkg/core"
	"github.com/df07/go-photon-mapper/pkg/material"
	"github.com/df07/go-photon-mapper/pkg/photonmap"
	"github.com/df07/go-photon-mapper/pkg/scene"
)

const tolerance = 1e-9

func vecNear(a, b core.Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol
}

// floorScene is a grey 2x2 floor quad at z=0 lit by a point light at
// (0,0,2) whose radiance is exactly (1,1,1). A mirror-free ceiling at z=3
// sits behind the light.
func floorScene(t *testing.T, floor material.Material, extra func(w *scene.World)) *scene.World {
	t.Helper()
	w := scene.NewWorld("floor")
	w.Add("floor", scene.NewQuad(core.NewVec3(-1, -1, 0), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0)), floor)
	w.Add("ceiling", scene.NewQuad(core.NewVec3(-1, -1, 3), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0)),
		material.NewDiffuse(core.NewVec3(0.5, 0.5, 0.5)))
	w.AddLight(scene.NewPointLight("bulb", core.NewVec3(0, 0, 2), core.NewVec3(1, 1, 1), 4*math.Pi))
	if extra != nil {
		extra(w)
	}
	if err := w.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return w
}

func directConfig() Config {
	cfg := DefaultConfig()
	cfg.Indirect = IndirectNone
	cfg.MaxDepth = 0
	return cfg
}

func newTracer(t *testing.T, w scene.Scene, cfg Config, opts ...Option) *RayTracer {
	t.Helper()
	rt, err := NewRayTracer(w, cfg, opts...)
	if err != nil {
		t.Fatalf("NewRayTracer failed: %v", err)
	}
	return rt
}

func TestRenderPixel_Miss(t *testing.T) {
	w := floorScene(t, material.NewDiffuse(core.NewVec3(0.5, 0.5, 0.5)), nil)
	rt := newTracer(t, w, directConfig(), WithAmbient(core.NewVec3(1, 1, 1)))

	got := rt.RenderPixel(core.NewVec3(5, 5, 1), core.NewVec3(1, 0, 0), w.Lights(), 3, core.NewSeededSampler(1))
	if !got.IsZero() {
		t.Errorf("a ray that hits nothing should be black, got %v", got)
	}
}

func TestRenderPixel_DirectLight(t *testing.T) {
	tests := []struct {
		name     string
		origin   core.Vec3
		blocker  bool
		ambient  core.Vec3
		expected core.Vec3
	}{
		// albedo 0.5 * radiance 1 / distance² 4 * cos 1
		{"lit", core.NewVec3(0, 0, 1), false, core.Vec3{}, core.NewVec3(0.125, 0.125, 0.125)},
		{"ceiling past the light does not shadow", core.NewVec3(0, 0, 1), false, core.NewVec3(1, 1, 1), core.NewVec3(0.125, 0.125, 0.125)},
		// blocked: falls back to albedo * ambient
		{"shadowed", core.NewVec3(0.5, 0, 1), true, core.NewVec3(0.2, 0.2, 0.2), core.NewVec3(0.1, 0.1, 0.1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := floorScene(t, material.NewDiffuse(core.NewVec3(0.5, 0.5, 0.5)), func(w *scene.World) {
				if tt.blocker {
					// Halfway between (0.5,0,0) and the light
					w.Add("blocker", scene.NewSphere(core.NewVec3(0.25, 0, 1), 0.1), material.NewDiffuse(core.Vec3{}))
				}
			})
			rt := newTracer(t, w, directConfig(), WithAmbient(tt.ambient))

			got := rt.RenderPixel(tt.origin, core.NewVec3(0, 0, -1), w.Lights(), 0, core.NewSeededSampler(1))
			if !vecNear(got, tt.expected, 1e-6) {
				t.Errorf("got %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestRenderPixel_Specular(t *testing.T) {
	mat := material.Material{SpecularColor: core.NewVec3(1, 1, 1), SpecularHardness: 10, IOR: 1}
	w := floorScene(t, mat, nil)
	rt := newTracer(t, w, directConfig())

	// Looking straight down with the light straight up, the half vector is the normal
	got := rt.RenderPixel(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1), w.Lights(), 0, core.NewSeededSampler(1))
	if !vecNear(got, core.NewVec3(0.25, 0.25, 0.25), 1e-6) {
		t.Errorf("specular highlight: got %v, expected 0.25", got)
	}
}

func TestRenderPixel_MirrorRecursion(t *testing.T) {
	w := floorScene(t, material.NewMirror(1), nil)

	tests := []struct {
		name     string
		depth    int
		expected float64
	}{
		{"depth 0 sees only the black mirror", 0, 0},
		// ceiling albedo 0.5 * radiance 1 / distance² 1
		{"depth 1 sees the lit ceiling", 1, 0.5},
		{"deeper recursion changes nothing", 4, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := directConfig()
			cfg.MaxDepth = tt.depth
			rt := newTracer(t, w, cfg)

			got := rt.RenderPixel(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1), w.Lights(), tt.depth, core.NewSeededSampler(1))
			if math.Abs(got.X-tt.expected) > 1e-6 {
				t.Errorf("got %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestRenderPixel_PathIndirectIsNonNegative(t *testing.T) {
	w := scene.NewCornellScene()
	if err := w.Build(); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.MaxDepth = 2
	rt := newTracer(t, w, cfg)
	camera := NewCamera(w.Camera, 8, 8)
	sampler := core.NewSeededSampler(3)

	for i := 0; i < 16; i++ {
		ray := camera.GetRay(i%8, i/2, i)
		got := rt.RenderPixel(ray.Origin, ray.Direction, w.Lights(), cfg.MaxDepth, sampler)
		if got.X < 0 || got.Y < 0 || got.Z < 0 || math.IsNaN(got.X) {
			t.Fatalf("sample %d: invalid radiance %v", i, got)
		}
	}
}

func TestNewRayTracer_PhotonMapRequired(t *testing.T) {
	w := floorScene(t, material.NewDiffuse(core.NewVec3(0.5, 0.5, 0.5)), nil)
	cfg := directConfig()
	cfg.Indirect = IndirectPhotons

	if _, err := NewRayTracer(w, cfg); !errors.Is(err, ErrPhotonMapRequired) {
		t.Errorf("no map: expected ErrPhotonMapRequired, got %v", err)
	}

	unbuilt := photonmap.New()
	if _, err := NewRayTracer(w, cfg, WithPhotonMap(unbuilt)); !errors.Is(err, ErrPhotonMapRequired) {
		t.Errorf("unindexed map: expected ErrPhotonMapRequired, got %v", err)
	}

	unbuilt.BuildIndex()
	if _, err := NewRayTracer(w, cfg, WithPhotonMap(unbuilt)); err != nil {
		t.Errorf("indexed map: unexpected error %v", err)
	}
}

// gatherFixture records photons around the origin of the floor
func gatherFixture(t *testing.T, photons []photonmap.Photon) *photonmap.PhotonMap {
	t.Helper()
	pm := photonmap.New()
	for _, p := range photons {
		if _, err := pm.Record(p.Location, p.Direction, p.Depth); err != nil {
			t.Fatal(err)
		}
	}
	pm.BuildIndex()
	return pm
}

func TestGatherPhotons(t *testing.T) {
	// Recorded photons sit just off the surface
	const lift = 0.001
	down := core.NewVec3(0, 0, -1)
	photons := []photonmap.Photon{
		{Location: core.NewVec3(0.1, 0, lift), Direction: down, Depth: 1},
		{Location: core.NewVec3(0, 0.2, lift), Direction: down, Depth: 2},
		{Location: core.NewVec3(0, 0, -0.1), Direction: down, Depth: 1},                     // behind the surface
		{Location: core.NewVec3(-0.1, 0, lift), Direction: core.NewVec3(0, 0, 1), Depth: 1}, // travelling away
		{Location: core.NewVec3(0.9, 0, lift), Direction: down, Depth: 1},                   // outside the radius
	}

	tests := []struct {
		name     string
		kernel   GatherKernel
		minDepth int
		maxDepth int
		expected float64
	}{
		{"unweighted counts front-facing photons", KernelUnweighted, 0, 0, 2},
		{"min depth", KernelUnweighted, 2, 0, 1},
		{"max depth", KernelUnweighted, 0, 1, 1},
		// roughly 1/0.1² + 1/0.2²
		{"inverse square", KernelInverseSquare, 0, 0, 1/(0.01+lift*lift) + 1/(0.04+lift*lift)},
		{"visibility with nothing in the way", KernelVisibility, 0, 0, 1/(0.01+lift*lift) + 1/(0.04+lift*lift)},
	}

	w := floorScene(t, material.NewDiffuse(core.NewVec3(1, 1, 1)), nil)
	pm := gatherFixture(t, photons)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := directConfig()
			cfg.Indirect = IndirectPhotons
			cfg.GatherRadius = 0.5
			cfg.GatherScale = 1
			cfg.GatherEpsilon = 0
			cfg.GatherKernel = tt.kernel
			cfg.GatherMinDepth = tt.minDepth
			cfg.GatherMaxDepth = tt.maxDepth
			rt := newTracer(t, w, cfg, WithPhotonMap(pm))

			got := rt.gatherPhotons(core.Vec3{}, core.NewVec3(0, 0, 1), material.NewDiffuse(core.NewVec3(1, 1, 1)))
			if math.Abs(got.X-tt.expected) > 1e-6*tt.expected {
				t.Errorf("got %v, expected %v", got.X, tt.expected)
			}
		})
	}
}

func TestGatherPhotons_VisibilityDropsHiddenPhotons(t *testing.T) {
	w := floorScene(t, material.NewDiffuse(core.NewVec3(1, 1, 1)), func(w *scene.World) {
		w.Add("wall", scene.NewQuad(core.NewVec3(0.2, -1, -0.5), core.NewVec3(0, 2, 0), core.NewVec3(0, 0, 1)),
			material.NewDiffuse(core.Vec3{}))
	})
	down := core.NewVec3(0, 0, -1)
	pm := gatherFixture(t, []photonmap.Photon{
		{Location: core.NewVec3(-0.1, 0, 0.01), Direction: down, Depth: 1},
		{Location: core.NewVec3(0.3, 0, 0.01), Direction: down, Depth: 1}, // behind the wall
	})

	cfg := directConfig()
	cfg.Indirect = IndirectPhotons
	cfg.GatherRadius = 0.5
	cfg.GatherScale = 1
	cfg.GatherEpsilon = 0
	cfg.GatherKernel = KernelVisibility
	rt := newTracer(t, w, cfg, WithPhotonMap(pm))

	got := rt.gatherPhotons(core.Vec3{}, core.NewVec3(0, 0, 1), material.NewDiffuse(core.NewVec3(1, 1, 1)))
	d := core.NewVec3(-0.1, 0, 0.01).Length()
	if expected := 1 / (d * d); math.Abs(got.X-expected) > 1e-6 {
		t.Errorf("got %v, expected only the visible photon's %v", got.X, expected)
	}
}

func TestGatherPhotons_BlackSurface(t *testing.T) {
	w := floorScene(t, material.NewMirror(1), nil)
	pm := gatherFixture(t, []photonmap.Photon{{Location: core.NewVec3(0.1, 0, 0), Direction: core.NewVec3(0, 0, -1)}})
	cfg := directConfig()
	cfg.Indirect = IndirectPhotons
	rt := newTracer(t, w, cfg, WithPhotonMap(pm))

	if got := rt.gatherPhotons(core.Vec3{}, core.NewVec3(0, 0, 1), material.NewMirror(1)); !got.IsZero() {
		t.Errorf("surfaces without diffuse color gather nothing, got %v", got)
	}
}

func TestCamera_GetRay(t *testing.T) {
	camera := NewCamera(scene.DefaultCameraConfig(), 4, 4)

	top := camera.GetRay(1, 0, 0)
	bottom := camera.GetRay(1, 3, 0)
	left := camera.GetRay(0, 1, 0)
	right := camera.GetRay(3, 1, 0)

	if top.Direction.Y <= bottom.Direction.Y {
		t.Errorf("row 0 should look higher than the last row: %v vs %v", top.Direction, bottom.Direction)
	}
	if left.Direction.X >= right.Direction.X {
		t.Errorf("column 0 should look further left: %v vs %v", left.Direction, right.Direction)
	}
	for _, ray := range []core.Ray{top, bottom, left, right} {
		if ray.Direction.Z >= 0 {
			t.Errorf("default camera looks down -Z, got %v", ray.Direction)
		}
		if math.Abs(ray.Direction.Length()-1) > tolerance {
			t.Errorf("direction not normalized: %v", ray.Direction)
		}
	}
}

func TestCamera_SampleOffsetStaysInPixel(t *testing.T) {
	camera := NewCamera(scene.DefaultCameraConfig(), 40, 30)
	for i := 0; i < 64; i++ {
		dx, dy := camera.SampleOffset(i)
		if math.Abs(dx) > 0.5/40+tolerance || math.Abs(dy) > 0.5*0.75/30+tolerance {
			t.Errorf("sample %d offset (%v, %v) leaves the pixel", i, dx, dy)
		}
	}
}

func TestNewTileGrid(t *testing.T) {
	tiles := NewTileGrid(100, 70, 32, 0)
	if len(tiles) != 4*3 {
		t.Fatalf("expected 12 tiles, got %d", len(tiles))
	}

	area := 0
	for i, tile := range tiles {
		if tile.ID != i {
			t.Errorf("tile %d has ID %d", i, tile.ID)
		}
		area += tile.Bounds.Dx() * tile.Bounds.Dy()
	}
	if area != 100*70 {
		t.Errorf("tiles cover %d pixels, expected %d", area, 100*70)
	}
	if last := tiles[len(tiles)-1].Bounds; last.Max.X != 100 || last.Max.Y != 70 {
		t.Errorf("last tile should stop at the image edge, got %v", last)
	}
}

func TestGetSamplesForPass(t *testing.T) {
	tests := []struct {
		name     string
		spp      int
		initial  int
		passes   int
		expected []int
	}{
		{"single pass", 8, 1, 1, []int{8}},
		{"five passes", 16, 1, 5, []int{1, 4, 7, 10, 16}},
		{"two passes", 10, 2, 2, []int{2, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr := &ProgressiveRenderer{config: Config{SamplesPerPixel: tt.spp, InitialSamples: tt.initial, MaxPasses: tt.passes}}
			for i, expected := range tt.expected {
				if got := pr.getSamplesForPass(i + 1); got != expected {
					t.Errorf("pass %d: got %d, expected %d", i+1, got, expected)
				}
			}
		})
	}
}

func renderFloor(t *testing.T, passes, workers int) ([][]core.Vec3, RenderStats) {
	t.Helper()
	w := floorScene(t, material.NewDiffuse(core.NewVec3(0.5, 0.5, 0.5)), nil)
	cfg := directConfig()
	cfg.Width, cfg.Height = 24, 18
	cfg.SamplesPerPixel = 6
	cfg.MaxPasses = passes
	cfg.TileSize = 8
	cfg.NumWorkers = workers

	camera := scene.CameraConfig{Location: core.NewVec3(0, 0, 2.5), FocalLength: 1}
	pr := NewProgressiveRenderer(newTracer(t, w, cfg), camera, nil)
	img, stats, err := pr.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if img.Bounds().Dx() != 24 || img.Bounds().Dy() != 18 {
		t.Fatalf("unexpected image size %v", img.Bounds())
	}
	return pr.Radiance(), stats
}

func TestProgressiveRenderer_PassesMatchSinglePass(t *testing.T) {
	single, stats := renderFloor(t, 1, 1)
	if stats.MinSamples != 6 || stats.TotalSamples != 24*18*6 {
		t.Errorf("unexpected stats %+v", stats)
	}

	progressive, _ := renderFloor(t, 3, 4)
	lit := false
	for y := range single {
		for x := range single[y] {
			if !vecNear(single[y][x], progressive[y][x], 1e-12) {
				t.Fatalf("pixel (%d,%d): single %v, progressive %v", x, y, single[y][x], progressive[y][x])
			}
			lit = lit || !single[y][x].IsZero()
		}
	}
	if !lit {
		t.Error("expected the floor to be visible")
	}
}

func TestProgressiveRenderer_Cancelled(t *testing.T) {
	w := floorScene(t, material.NewDiffuse(core.NewVec3(0.5, 0.5, 0.5)), nil)
	cfg := directConfig()
	cfg.Width, cfg.Height = 8, 8
	pr := NewProgressiveRenderer(newTracer(t, w, cfg), scene.DefaultCameraConfig(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := pr.Render(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"zero width", func(c *Config) { c.Width = 0 }, true},
		{"negative depth", func(c *Config) { c.MaxDepth = -1 }, true},
		{"initial above total", func(c *Config) { c.InitialSamples = c.SamplesPerPixel + 1 }, true},
		{"photon radius", func(c *Config) { c.Indirect = IndirectPhotons; c.GatherRadius = 0 }, true},
		{"empty depth window", func(c *Config) { c.Indirect = IndirectPhotons; c.GatherMinDepth = 3; c.GatherMaxDepth = 2 }, true},
		{"radius ignored without photons", func(c *Config) { c.GatherRadius = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseModes(t *testing.T) {
	if m, err := ParseIndirectMode("photons"); err != nil || m != IndirectPhotons {
		t.Errorf("ParseIndirectMode(photons) = %v, %v", m, err)
	}
	if _, err := ParseIndirectMode("radiosity"); err == nil {
		t.Error("expected an error for an unknown mode")
	}
	if k, err := ParseGatherKernel("visibility"); err != nil || k != KernelVisibility {
		t.Errorf("ParseGatherKernel(visibility) = %v, %v", k, err)
	}
	if _, err := ParseGatherKernel("gaussian"); err == nil {
		t.Error("expected an error for an unknown kernel")
	}
}
