package cmd

import (
	"time"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/df07/go-photon-mapper/pkg/config"
	"github.com/df07/go-photon-mapper/pkg/photonmap"
)

// snapshotPath is the first argument, or the configured map path
func snapshotPath(ctx *cli.Context, cfg *config.Config) string {
	if ctx.NArg() > 0 {
		return ctx.Args().First()
	}
	return cfg.MapPath()
}

// Check reloads a snapshot, rebuilds its index and verifies that every
// photon is found at its own location.
func Check(ctx *cli.Context) error {
	cfg, log, err := setup(ctx)
	if err != nil {
		return err
	}
	defer log.Sync()

	path := snapshotPath(ctx, cfg)
	start := time.Now()
	pm, err := photonmap.LoadFile(path)
	if err != nil {
		return err
	}
	loaded := time.Since(start)

	start = time.Now()
	checkErr := pm.CheckConsistency()
	checked := time.Since(start)

	displayMapInfo(ctx.App.Writer, path, pm, loaded, checked, checkErr)
	if checkErr != nil {
		log.Error("Photon map is inconsistent", zap.String("path", path), zap.Error(checkErr))
		return checkErr
	}
	log.Info("Photon map is consistent", zap.String("path", path), zap.Int("photons", pm.Len()))
	return nil
}
