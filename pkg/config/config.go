// Package config holds the run configuration shared by the CLI commands.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/df07/go-photon-mapper/pkg/imageio"
	"github.com/df07/go-photon-mapper/pkg/photonmap"
	"github.com/df07/go-photon-mapper/pkg/renderer"
	"github.com/df07/go-photon-mapper/pkg/tracer"
)

// Config holds all run settings.
type Config struct {
	Scene     SceneConfig     `yaml:"scene"`
	Output    OutputConfig    `yaml:"output"`
	PhotonMap PhotonMapConfig `yaml:"photon_map"`
	Logging   LoggingConfig   `yaml:"logging"`
	Tracer    TracerConfig    `yaml:"tracer"`
	Render    RenderConfig    `yaml:"render"`
	Export    ExportConfig    `yaml:"export"`
}

// SceneConfig selects the scene to trace.
type SceneConfig struct {
	Name string `yaml:"name"` // Built-in scene name or path to a YAML description
}

// OutputConfig controls where rendered images go.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Image  string `yaml:"image"`  // Explicit image path; empty means <dir>/<scene>/render_<timestamp>.<format>
	Format string `yaml:"format"` // png, tiff or bmp
}

// PhotonMapConfig locates the photon map snapshot.
type PhotonMapConfig struct {
	Path  string `yaml:"path"`  // Empty means <dir>/<scene>/photons.pmap
	Index string `yaml:"index"` // kdtree or rtree
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// TracerConfig holds photon tracing settings.
type TracerConfig struct {
	EmissionIntensity     float64 `yaml:"emission_intensity"`
	AbsorptionProbability float64 `yaml:"absorption_probability"`
	MaxDepth              int     `yaml:"max_depth"`
	Mode                  string  `yaml:"mode"`
	Epsilon               float64 `yaml:"epsilon"`
	Workers               int     `yaml:"workers"`
	BatchSize             int     `yaml:"batch_size"`
	Seed                  int64   `yaml:"seed"`
	TransmissionGate      bool    `yaml:"transmission_gate"`
}

// RenderConfig holds ray tracing settings.
type RenderConfig struct {
	Width          int     `yaml:"width"`
	Height         int     `yaml:"height"`
	Samples        int     `yaml:"samples"`
	MaxDepth       int     `yaml:"max_depth"`
	Epsilon        float64 `yaml:"epsilon"`
	Gamma          float64 `yaml:"gamma"`
	Seed           int64   `yaml:"seed"`
	Indirect       string  `yaml:"indirect"`
	GatherRadius   float64 `yaml:"gather_radius"`
	GatherKernel   string  `yaml:"gather_kernel"`
	GatherScale    float64 `yaml:"gather_scale"`
	GatherEpsilon  float64 `yaml:"gather_epsilon"`
	GatherMinDepth int     `yaml:"gather_min_depth"`
	GatherMaxDepth int     `yaml:"gather_max_depth"`
	TileSize       int     `yaml:"tile_size"`
	InitialSamples int     `yaml:"initial_samples"`
	Passes         int     `yaml:"passes"`
	Workers        int     `yaml:"workers"`
}

// ExportConfig holds PLY point-cloud export settings.
type ExportConfig struct {
	PLY         string `yaml:"ply"`          // Written after build-map when set
	DepthFilter int    `yaml:"depth_filter"` // Only photons of this depth; 0 keeps all
	Binary      bool   `yaml:"binary"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	tc := tracer.DefaultConfig()
	rc := renderer.DefaultConfig()

	return &Config{
		Scene: SceneConfig{Name: "cornell"},
		Output: OutputConfig{
			Dir:    "output",
			Format: string(imageio.FormatPNG),
		},
		PhotonMap: PhotonMapConfig{Index: photonmap.IndexKDTree.String()},
		Logging:   LoggingConfig{Level: "info"},
		Tracer: TracerConfig{
			EmissionIntensity:     tc.EmissionIntensity,
			AbsorptionProbability: tc.AbsorptionProbability,
			MaxDepth:              tc.MaxDepth,
			Mode:                  tc.Mode.String(),
			Epsilon:               tc.Epsilon,
			Workers:               tc.NumWorkers,
			BatchSize:             tc.BatchSize,
			Seed:                  tc.Seed,
			TransmissionGate:      tc.TransmissionGate,
		},
		Render: RenderConfig{
			Width:          rc.Width,
			Height:         rc.Height,
			Samples:        rc.SamplesPerPixel,
			MaxDepth:       rc.MaxDepth,
			Epsilon:        rc.Epsilon,
			Gamma:          rc.Gamma,
			Seed:           rc.Seed,
			Indirect:       rc.Indirect.String(),
			GatherRadius:   rc.GatherRadius,
			GatherKernel:   rc.GatherKernel.String(),
			GatherScale:    rc.GatherScale,
			GatherEpsilon:  rc.GatherEpsilon,
			GatherMinDepth: rc.GatherMinDepth,
			GatherMaxDepth: rc.GatherMaxDepth,
			TileSize:       rc.TileSize,
			InitialSamples: rc.InitialSamples,
			Passes:         rc.MaxPasses,
			Workers:        rc.NumWorkers,
		},
	}
}

// TracerConfig converts the tracer section.
func (c *Config) TracerConfig() (tracer.Config, error) {
	mode, err := tracer.ParseMode(c.Tracer.Mode)
	if err != nil {
		return tracer.Config{}, err
	}
	return tracer.Config{
		EmissionIntensity:     c.Tracer.EmissionIntensity,
		AbsorptionProbability: c.Tracer.AbsorptionProbability,
		MaxDepth:              c.Tracer.MaxDepth,
		Mode:                  mode,
		Epsilon:               c.Tracer.Epsilon,
		NumWorkers:            c.Tracer.Workers,
		BatchSize:             c.Tracer.BatchSize,
		Seed:                  c.Tracer.Seed,
		TransmissionGate:      c.Tracer.TransmissionGate,
	}, nil
}

// RenderConfig converts the render section.
func (c *Config) RenderConfig() (renderer.Config, error) {
	indirect, err := renderer.ParseIndirectMode(c.Render.Indirect)
	if err != nil {
		return renderer.Config{}, err
	}
	kernel, err := renderer.ParseGatherKernel(c.Render.GatherKernel)
	if err != nil {
		return renderer.Config{}, err
	}
	r := c.Render
	return renderer.Config{
		Width:           r.Width,
		Height:          r.Height,
		SamplesPerPixel: r.Samples,
		MaxDepth:        r.MaxDepth,
		Epsilon:         r.Epsilon,
		Gamma:           r.Gamma,
		Seed:            r.Seed,
		Indirect:        indirect,
		GatherRadius:    r.GatherRadius,
		GatherKernel:    kernel,
		GatherScale:     r.GatherScale,
		GatherEpsilon:   r.GatherEpsilon,
		GatherMinDepth:  r.GatherMinDepth,
		GatherMaxDepth:  r.GatherMaxDepth,
		TileSize:        r.TileSize,
		InitialSamples:  r.InitialSamples,
		MaxPasses:       r.Passes,
		NumWorkers:      r.Workers,
	}, nil
}

// IndexKind parses the photon map index selection.
func (c *Config) IndexKind() (photonmap.IndexKind, error) {
	return photonmap.ParseIndexKind(c.PhotonMap.Index)
}

// Validate reports every problem in the configuration.
func (c *Config) Validate() error {
	var err error
	if c.Scene.Name == "" {
		err = multierr.Append(err, fmt.Errorf("scene.name must be set"))
	}
	if _, e := c.IndexKind(); e != nil {
		err = multierr.Append(err, fmt.Errorf("photon_map.index: %w", e))
	}
	if _, e := imageio.FormatFromPath("image." + c.Output.Format); e != nil {
		err = multierr.Append(err, fmt.Errorf("output.format: %w", e))
	}
	if tc, e := c.TracerConfig(); e != nil {
		err = multierr.Append(err, fmt.Errorf("tracer: %w", e))
	} else if e := tc.Validate(); e != nil {
		err = multierr.Append(err, fmt.Errorf("tracer: %w", e))
	}
	if rc, e := c.RenderConfig(); e != nil {
		err = multierr.Append(err, fmt.Errorf("render: %w", e))
	} else if e := rc.Validate(); e != nil {
		err = multierr.Append(err, fmt.Errorf("render: %w", e))
	}
	if c.Export.DepthFilter < 0 {
		err = multierr.Append(err, fmt.Errorf("export.depth_filter %d must be non-negative", c.Export.DepthFilter))
	}
	return err
}

// SceneSlug names the scene for output directories: a built-in name, or a
// description file's base name without extension.
func (c *Config) SceneSlug() string {
	base := filepath.Base(c.Scene.Name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ImagePath returns where a render started at the given time is saved.
func (c *Config) ImagePath(started time.Time) string {
	if c.Output.Image != "" {
		return c.Output.Image
	}
	name := fmt.Sprintf("render_%s.%s", started.Format("20060102_150405"), c.Output.Format)
	return filepath.Join(c.Output.Dir, c.SceneSlug(), name)
}

// MapPath returns where the photon map snapshot is read and written.
func (c *Config) MapPath() string {
	if c.PhotonMap.Path != "" {
		return c.PhotonMap.Path
	}
	return filepath.Join(c.Output.Dir, c.SceneSlug(), "photons.pmap")
}
