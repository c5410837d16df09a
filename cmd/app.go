package cmd

import (
	"github.com/urfave/cli"
)

// NewApp assembles the command line interface.
func NewApp() *cli.App {
	// -v is taken by verbose logging
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "photon-mapper"
	app.Usage = "build photon maps and render scenes with distributed ray tracing"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "YAML configuration file",
		},
		cli.StringFlag{
			Name:  "scene, s",
			Usage: "built-in scene name or path to a YAML scene description",
		},
		cli.StringFlag{
			Name:  "log-file",
			Usage: "also write logs to this file, rotated by size",
		},
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "build-map",
			Usage: "trace photons from every light and save the photon map",
			Description: `
Emit floor(energy * intensity) photons from each light, follow them through the
scene recording one photon per surface hit, build the spatial index and write a
snapshot that the render command can load.`,
			Flags: append(mapFlags(),
				cli.Float64Flag{Name: "intensity", Usage: "photons emitted per unit of light energy"},
				cli.Float64Flag{Name: "absorption", Usage: "russian roulette absorption probability"},
				cli.IntFlag{Name: "max-depth", Usage: "maximum photon bounce depth"},
				cli.StringFlag{Name: "mode", Usage: "scattering model: full or mirror"},
				cli.IntFlag{Name: "workers", Usage: "parallel workers (0 = CPU count)"},
				cli.Int64Flag{Name: "seed", Usage: "random seed"},
				cli.BoolFlag{Name: "transmission-gate", Usage: "only refract with probability equal to the material transmission"},
				cli.StringFlag{Name: "ply", Usage: "also export the photons as a PLY point cloud"},
			),
			Action: BuildMap,
		},
		{
			Name:  "render",
			Usage: "render the scene progressively",
			Flags: append(mapFlags(),
				cli.IntFlag{Name: "width", Usage: "image width"},
				cli.IntFlag{Name: "height", Usage: "image height"},
				cli.IntFlag{Name: "spp", Usage: "samples per pixel"},
				cli.IntFlag{Name: "max-depth", Usage: "ray recursion depth"},
				cli.StringFlag{Name: "indirect", Usage: "indirect light: path, photons or none"},
				cli.Float64Flag{Name: "radius", Usage: "photon gather radius"},
				cli.StringFlag{Name: "kernel", Usage: "gather kernel: inverse-square, unweighted or visibility"},
				cli.Float64Flag{Name: "gather-scale", Usage: "multiplier for the photon density estimate"},
				cli.IntFlag{Name: "passes", Usage: "progressive passes"},
				cli.IntFlag{Name: "workers", Usage: "parallel workers (0 = CPU count)"},
				cli.Int64Flag{Name: "seed", Usage: "random seed"},
				cli.StringFlag{Name: "out, o", Usage: "output image (.png, .tiff or .bmp)"},
				cli.BoolFlag{Name: "save-passes", Usage: "rewrite the output image after every pass"},
			),
			Action: Render,
		},
		{
			Name:      "check",
			Usage:     "load a photon map snapshot and verify its index",
			ArgsUsage: "[snapshot]",
			Action:    Check,
		},
		{
			Name:      "export-ply",
			Usage:     "export a photon map snapshot as a PLY point cloud",
			ArgsUsage: "[snapshot]",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "out, o", Usage: "output PLY file"},
				cli.IntFlag{Name: "depth", Usage: "only export photons of this depth (0 = all)"},
				cli.BoolFlag{Name: "binary", Usage: "write binary_little_endian instead of ascii"},
			},
			Action: ExportPLY,
		},
		{
			Name:  "profile",
			Usage: "time photon map construction and queries on random data",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "size", Value: 100000, Usage: "photons in the map"},
				cli.IntFlag{Name: "queries", Value: 10000, Usage: "radius queries to run"},
				cli.Float64Flag{Name: "radius", Value: 0.05, Usage: "query radius in the unit cube"},
				cli.StringFlag{Name: "index", Value: "all", Usage: "kdtree, rtree or all"},
				cli.Int64Flag{Name: "seed", Value: 42, Usage: "random seed"},
			},
			Action: Profile,
		},
		{
			Name:      "combine",
			Usage:     "blend images with geometrically decaying weights",
			ArgsUsage: "image1 image2 ...",
			Flags: []cli.Flag{
				cli.Float64Flag{Name: "decay", Value: 0.5, Usage: "weight ratio between consecutive images"},
				cli.StringFlag{Name: "out, o", Value: "combined.png", Usage: "output image"},
			},
			Action: Combine,
		},
	}
	return app
}

// mapFlags are shared by commands that read or write a photon map
func mapFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{Name: "map", Usage: "photon map snapshot path"},
		cli.StringFlag{Name: "index", Usage: "spatial index: kdtree or rtree"},
	}
}
