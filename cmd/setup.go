package cmd

import (
	"fmt"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/df07/go-photon-mapper/pkg/config"
	"github.com/df07/go-photon-mapper/pkg/logger"
	"github.com/df07/go-photon-mapper/pkg/scene"
)

// resolveScene loads the configured scene and logs its acceleration structure
func resolveScene(cfg *config.Config, log *zap.Logger) (*scene.World, error) {
	world, err := scene.Resolve(cfg.Scene.Name)
	if err != nil {
		return nil, err
	}
	bs := world.BVHStats()
	log.Debug("Scene loaded",
		zap.String("scene", world.Name),
		zap.Int("objects", bs.TotalObjects),
		zap.Int("lights", len(world.Lights())),
		zap.Int("bvh_nodes", bs.TotalNodes),
		zap.Int("bvh_leaves", bs.LeafNodes),
		zap.Int("bvh_depth", bs.MaxDepth))
	return world, nil
}

// flagApplier copies command flags over the loaded configuration
type flagApplier func(ctx *cli.Context, cfg *config.Config)

// setup loads the configuration (defaults < file < flags), validates it and
// builds the logger
func setup(ctx *cli.Context, appliers ...flagApplier) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(ctx.GlobalString("config"))
	if err != nil {
		return nil, nil, err
	}

	applyGlobalFlags(ctx, cfg)
	for _, apply := range appliers {
		apply(ctx, cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := setupLogging(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func setupLogging(ctx *cli.Context, cfg *config.Config) (*zap.Logger, error) {
	level := cfg.Logging.Level
	if ctx.GlobalBool("v") {
		level = "info"
	}
	if ctx.GlobalBool("vv") {
		level = "debug"
	}

	lc := logger.Config{Level: level, Console: true}
	if cfg.Logging.LogFile != "" {
		lc.File = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	return logger.New(lc)
}

func applyGlobalFlags(ctx *cli.Context, cfg *config.Config) {
	if ctx.GlobalIsSet("scene") {
		cfg.Scene.Name = ctx.GlobalString("scene")
	}
	if ctx.GlobalIsSet("log-file") {
		cfg.Logging.LogFile = ctx.GlobalString("log-file")
	}
}

func applyMapFlags(ctx *cli.Context, cfg *config.Config) {
	if ctx.IsSet("map") {
		cfg.PhotonMap.Path = ctx.String("map")
	}
	if ctx.IsSet("index") {
		cfg.PhotonMap.Index = ctx.String("index")
	}
}

func applyTracerFlags(ctx *cli.Context, cfg *config.Config) {
	if ctx.IsSet("intensity") {
		cfg.Tracer.EmissionIntensity = ctx.Float64("intensity")
	}
	if ctx.IsSet("absorption") {
		cfg.Tracer.AbsorptionProbability = ctx.Float64("absorption")
	}
	if ctx.IsSet("max-depth") {
		cfg.Tracer.MaxDepth = ctx.Int("max-depth")
	}
	if ctx.IsSet("mode") {
		cfg.Tracer.Mode = ctx.String("mode")
	}
	if ctx.IsSet("workers") {
		cfg.Tracer.Workers = ctx.Int("workers")
	}
	if ctx.IsSet("seed") {
		cfg.Tracer.Seed = ctx.Int64("seed")
	}
	if ctx.IsSet("transmission-gate") {
		cfg.Tracer.TransmissionGate = ctx.Bool("transmission-gate")
	}
	if ctx.IsSet("ply") {
		cfg.Export.PLY = ctx.String("ply")
	}
}

func applyRenderFlags(ctx *cli.Context, cfg *config.Config) {
	r := &cfg.Render
	if ctx.IsSet("width") {
		r.Width = ctx.Int("width")
	}
	if ctx.IsSet("height") {
		r.Height = ctx.Int("height")
	}
	if ctx.IsSet("spp") {
		r.Samples = ctx.Int("spp")
		// A preview pass larger than the whole budget is never valid
		r.InitialSamples = min(r.InitialSamples, r.Samples)
	}
	if ctx.IsSet("max-depth") {
		r.MaxDepth = ctx.Int("max-depth")
	}
	if ctx.IsSet("indirect") {
		r.Indirect = ctx.String("indirect")
	}
	if ctx.IsSet("radius") {
		r.GatherRadius = ctx.Float64("radius")
	}
	if ctx.IsSet("kernel") {
		r.GatherKernel = ctx.String("kernel")
	}
	if ctx.IsSet("gather-scale") {
		r.GatherScale = ctx.Float64("gather-scale")
	}
	if ctx.IsSet("passes") {
		r.Passes = ctx.Int("passes")
	}
	if ctx.IsSet("workers") {
		r.Workers = ctx.Int("workers")
	}
	if ctx.IsSet("seed") {
		r.Seed = ctx.Int64("seed")
	}
	if ctx.IsSet("out") {
		cfg.Output.Image = ctx.String("out")
	}
}

func applyExportFlags(ctx *cli.Context, cfg *config.Config) {
	if ctx.IsSet("out") {
		cfg.Export.PLY = ctx.String("out")
	}
	if ctx.IsSet("depth") {
		cfg.Export.DepthFilter = ctx.Int("depth")
	}
	if ctx.IsSet("binary") {
		cfg.Export.Binary = ctx.Bool("binary")
	}
}
