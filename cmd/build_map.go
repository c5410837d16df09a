package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/df07/go-photon-mapper/pkg/photonmap"
	"github.com/df07/go-photon-mapper/pkg/tracer"
)

// BuildMap traces photons through the configured scene and saves the map.
func BuildMap(ctx *cli.Context) error {
	cfg, log, err := setup(ctx, applyMapFlags, applyTracerFlags)
	if err != nil {
		return err
	}
	defer log.Sync()

	world, err := resolveScene(cfg, log)
	if err != nil {
		return err
	}
	tc, err := cfg.TracerConfig()
	if err != nil {
		return err
	}
	kind, err := cfg.IndexKind()
	if err != nil {
		return err
	}

	pt, err := tracer.New(world, tc, log)
	if err != nil {
		return err
	}

	planned := 0
	for _, light := range world.Lights() {
		planned += pt.Budget(light)
	}
	logHostInfo(log, planned)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	pm, stats, err := pt.Build(runCtx, photonmap.WithIndex(kind), photonmap.WithCapacity(planned))
	if err != nil {
		return err
	}
	displayTraceStats(ctx.App.Writer, stats, time.Since(start))

	mapPath := cfg.MapPath()
	if err := os.MkdirAll(filepath.Dir(mapPath), 0755); err != nil {
		return err
	}
	if err := pm.SaveFile(mapPath); err != nil {
		return err
	}
	log.Info("Photon map saved", zap.String("path", mapPath), zap.Int("photons", pm.Len()))

	if cfg.Export.PLY != "" {
		return exportPLY(log, pm, cfg.Export.PLY, photonmap.PLYOptions{
			DepthFilter: cfg.Export.DepthFilter,
			Binary:      cfg.Export.Binary,
		})
	}
	return nil
}

func exportPLY(log *zap.Logger, pm *photonmap.PhotonMap, path string, opts photonmap.PLYOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	n, err := pm.ExportPLYFile(path, opts)
	if err != nil {
		return fmt.Errorf("exporting %s: %w", path, err)
	}
	log.Info("Point cloud written",
		zap.String("path", path),
		zap.Int("points", n),
		zap.Int("depth_filter", opts.DepthFilter))
	return nil
}
