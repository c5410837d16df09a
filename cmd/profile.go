package cmd

import (
	"github.com/urfave/cli"

	"github.com/df07/go-photon-mapper/pkg/photonmap"
)

// Profile times photon map insertion, indexing and radius queries on a
// random point set, for one index or both.
func Profile(ctx *cli.Context) error {
	_, log, err := setup(ctx)
	if err != nil {
		return err
	}
	defer log.Sync()

	kinds := []photonmap.IndexKind{photonmap.IndexKDTree, photonmap.IndexRTree}
	if name := ctx.String("index"); name != "all" {
		kind, err := photonmap.ParseIndexKind(name)
		if err != nil {
			return err
		}
		kinds = []photonmap.IndexKind{kind}
	}

	var results []photonmap.ProfileResult
	for _, kind := range kinds {
		result, err := photonmap.Profile(photonmap.ProfileConfig{
			MapSize:     ctx.Int("size"),
			NumQueries:  ctx.Int("queries"),
			QueryRadius: ctx.Float64("radius"),
			Index:       kind,
			Seed:        ctx.Int64("seed"),
		}, log)
		if err != nil {
			return err
		}
		result.Map = nil
		results = append(results, result)
	}

	displayProfile(ctx.App.Writer, results)
	return nil
}
