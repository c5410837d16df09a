package cmd

import (
	"errors"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/df07/go-photon-mapper/pkg/imageio"
)

// Combine blends images with weights 1, decay, decay², ... and saves the result.
func Combine(ctx *cli.Context) error {
	_, log, err := setup(ctx)
	if err != nil {
		return err
	}
	defer log.Sync()

	if ctx.NArg() == 0 {
		return errors.New("missing image arguments")
	}

	paths := []string(ctx.Args())
	img, err := imageio.CombineFiles(paths, ctx.Float64("decay"))
	if err != nil {
		return err
	}

	out := ctx.String("out")
	if err := imageio.Save(out, img); err != nil {
		return err
	}
	log.Info("Combined image saved",
		zap.String("path", out),
		zap.Int("inputs", len(paths)),
		zap.Float64("decay", ctx.Float64("decay")))
	return nil
}
