package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/df07/go-photon-mapper/pkg/imageio"
	"github.com/df07/go-photon-mapper/pkg/photonmap"
	"github.com/df07/go-photon-mapper/pkg/renderer"
)

// Render renders the configured scene and saves the image.
func Render(ctx *cli.Context) error {
	cfg, log, err := setup(ctx, applyMapFlags, applyRenderFlags)
	if err != nil {
		return err
	}
	defer log.Sync()

	world, err := resolveScene(cfg, log)
	if err != nil {
		return err
	}
	rc, err := cfg.RenderConfig()
	if err != nil {
		return err
	}

	opts := []renderer.Option{renderer.WithAmbient(world.Ambient)}
	if rc.Indirect == renderer.IndirectPhotons {
		mapPath := cfg.MapPath()
		pm, err := photonmap.LoadFile(mapPath)
		if err != nil {
			return fmt.Errorf("loading photon map (run build-map first): %w", err)
		}
		log.Info("Photon map loaded",
			zap.String("path", mapPath),
			zap.Int("photons", pm.Len()),
			zap.Int("depth", pm.Depth()))
		opts = append(opts, renderer.WithPhotonMap(pm))
	}

	rt, err := renderer.NewRayTracer(world, rc, opts...)
	if err != nil {
		return err
	}
	pr := renderer.NewProgressiveRenderer(rt, world.Camera, log)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	started := time.Now()
	out := cfg.ImagePath(started)
	passes, errs := pr.RenderProgressive(runCtx)

	var last renderer.PassResult
	for pass := range passes {
		last = pass
		if ctx.Bool("save-passes") && !pass.IsLast {
			if err := imageio.Save(out, pass.Image); err != nil {
				return err
			}
		}
	}
	if err := <-errs; err != nil {
		return err
	}
	if last.Image == nil {
		return fmt.Errorf("no passes rendered")
	}

	if err := imageio.Save(out, last.Image); err != nil {
		return err
	}
	displayRenderStats(ctx.App.Writer, last.Stats, last.PassNumber, time.Since(started))
	log.Info("Render saved", zap.String("path", out))
	return nil
}
