package cmd

import (
	"path/filepath"
	"strings"

	"github.com/urfave/cli"

	"github.com/df07/go-photon-mapper/pkg/photonmap"
)

// ExportPLY writes a snapshot's photons as a PLY point cloud.
func ExportPLY(ctx *cli.Context) error {
	cfg, log, err := setup(ctx, applyExportFlags)
	if err != nil {
		return err
	}
	defer log.Sync()

	path := snapshotPath(ctx, cfg)
	pm, err := photonmap.LoadFile(path)
	if err != nil {
		return err
	}

	out := cfg.Export.PLY
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".ply"
	}
	return exportPLY(log, pm, out, photonmap.PLYOptions{
		DepthFilter: cfg.Export.DepthFilter,
		Binary:      cfg.Export.Binary,
	})
}
