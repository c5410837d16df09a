package renderer

import (
	"context"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/df07/go-photon-mapper/pkg/core"
	"github.com/df07/go-photon-mapper/pkg/imageio"
	"github.com/df07/go-photon-mapper/pkg/scene"
	"github.com/df07/go-photon-mapper/pkg/workpool"
)

// tileTask asks a worker to bring one tile up to a sample count
type tileTask struct {
	tile          *Tile
	targetSamples int
}

// ProgressiveRenderer renders an image in passes of increasing sample
// counts, each pass spreading tiles over a worker pool
type ProgressiveRenderer struct {
	tracer     *RayTracer
	camera     *Camera
	lights     []scene.Light
	config     Config
	tiles      []*Tile
	pixelStats [][]PixelStats // Shared pixel statistics array (image coordinates)
	pool       *workpool.Pool[tileTask, RenderStats]
	logger     *zap.Logger
}

// NewProgressiveRenderer creates a renderer for the tracer's scene viewed
// from camera. A nil logger discards output.
func NewProgressiveRenderer(tracer *RayTracer, camera scene.CameraConfig, logger *zap.Logger) *ProgressiveRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := tracer.config

	pixelStats := make([][]PixelStats, cfg.Height)
	for y := range pixelStats {
		pixelStats[y] = make([]PixelStats, cfg.Width)
	}

	pr := &ProgressiveRenderer{
		tracer:     tracer,
		camera:     NewCamera(camera, cfg.Width, cfg.Height),
		lights:     tracer.scene.Lights(),
		config:     cfg,
		tiles:      NewTileGrid(cfg.Width, cfg.Height, cfg.TileSize, cfg.Seed),
		pixelStats: pixelStats,
		logger:     logger,
	}
	pr.pool = workpool.New(cfg.NumWorkers, len(pr.tiles), func(task workpool.Task[tileTask]) (RenderStats, error) {
		return pr.renderTile(task.Payload.tile, task.Payload.targetSamples), nil
	})
	return pr
}

// getSamplesForPass calculates the target total samples for a given pass
func (pr *ProgressiveRenderer) getSamplesForPass(passNumber int) int {
	// Special case: if only 1 pass, use all samples
	if pr.config.MaxPasses == 1 {
		return pr.config.SamplesPerPixel
	}

	// First pass is a quick preview
	if passNumber == 1 {
		return pr.config.InitialSamples
	}

	// Divide remaining samples evenly across remaining passes
	remainingSamples := pr.config.SamplesPerPixel - pr.config.InitialSamples
	remainingPasses := pr.config.MaxPasses - 1
	samplesPerPass := remainingSamples / remainingPasses

	targetSamples := pr.config.InitialSamples + (passNumber-1)*samplesPerPass

	// For the final pass, use all remaining samples
	if passNumber == pr.config.MaxPasses {
		targetSamples = pr.config.SamplesPerPixel
	}

	return targetSamples
}

// RenderPass renders a single progressive pass using parallel processing
func (pr *ProgressiveRenderer) RenderPass(passNumber int) (*image.RGBA, RenderStats, error) {
	targetSamples := pr.getSamplesForPass(passNumber)
	start := time.Now()

	pr.logger.Debug("Starting pass",
		zap.Int("pass", passNumber),
		zap.Int("target_samples", targetSamples),
		zap.Int("workers", pr.pool.NumWorkers()))

	pr.pool.Start()
	for i, tile := range pr.tiles {
		pr.pool.SubmitTask(workpool.Task[tileTask]{ID: i, Payload: tileTask{tile: tile, targetSamples: targetSamples}})
	}

	for range pr.tiles {
		result, ok := pr.pool.GetResult()
		if !ok {
			return nil, RenderStats{}, fmt.Errorf("worker pool closed unexpectedly")
		}
		if result.Err != nil {
			return nil, RenderStats{}, result.Err
		}
		pr.tiles[result.TaskID].PassesCompleted++
	}

	img, stats := pr.assembleCurrentImage(targetSamples)
	stats.Elapsed = time.Since(start)
	return img, stats, nil
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber int
	Image      *image.RGBA
	Stats      RenderStats
	IsLast     bool
}

// RenderProgressive renders passes on a background goroutine and sends each
// finished pass on the returned channel. Both channels are closed when
// rendering ends; the error channel receives at most one error.
func (pr *ProgressiveRenderer) RenderProgressive(ctx context.Context) (<-chan PassResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(passChan)
		defer close(errChan)
		defer pr.pool.Stop()

		pr.logger.Info("Starting progressive rendering",
			zap.Int("passes", pr.config.MaxPasses),
			zap.Int("width", pr.config.Width),
			zap.Int("height", pr.config.Height),
			zap.Stringer("indirect", pr.config.Indirect))

		for pass := 1; pass <= pr.config.MaxPasses; pass++ {
			// Check for cancellation before starting this pass
			select {
			case <-ctx.Done():
				pr.logger.Info("Rendering cancelled", zap.Int("pass", pass))
				errChan <- ctx.Err()
				return
			default:
			}

			img, stats, err := pr.RenderPass(pass)
			if err != nil {
				errChan <- err
				return
			}

			pr.logger.Info("Pass completed",
				zap.Int("pass", pass),
				zap.Duration("elapsed", stats.Elapsed),
				zap.Float64("samples_per_pixel", stats.AverageSamples))

			done := pass == pr.config.MaxPasses || stats.MinSamples >= pr.config.SamplesPerPixel
			select {
			case passChan <- PassResult{PassNumber: pass, Image: img, Stats: stats, IsLast: done}:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
			if done {
				return
			}
		}
	}()

	return passChan, errChan
}

// Render runs every pass and returns the final image
func (pr *ProgressiveRenderer) Render(ctx context.Context) (*image.RGBA, RenderStats, error) {
	passes, errs := pr.RenderProgressive(ctx)

	var last PassResult
	for result := range passes {
		last = result
	}
	if err := <-errs; err != nil {
		return nil, RenderStats{}, err
	}
	if last.Image == nil {
		return nil, RenderStats{}, fmt.Errorf("no passes rendered")
	}
	return last.Image, last.Stats, nil
}

// Radiance returns the current averaged radiance of every pixel, row 0 at the top
func (pr *ProgressiveRenderer) Radiance() [][]core.Vec3 {
	out := make([][]core.Vec3, len(pr.pixelStats))
	for y, row := range pr.pixelStats {
		out[y] = make([]core.Vec3, len(row))
		for x := range row {
			out[y][x] = row[x].GetColor()
		}
	}
	return out
}

// assembleCurrentImage creates an image from the shared pixel stats and
// calculates render statistics in a single pass
func (pr *ProgressiveRenderer) assembleCurrentImage(targetSamples int) (*image.RGBA, RenderStats) {
	width, height := pr.config.Width, pr.config.Height
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	stats := RenderStats{
		TotalPixels: width * height,
		MaxSamples:  targetSamples,
		MinSamples:  pr.config.SamplesPerPixel, // Start high, will be reduced
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixel := &pr.pixelStats[y][x]
			img.SetRGBA(x, y, imageio.ColorFromVec3(pixel.GetColor(), pr.config.Gamma))

			stats.TotalSamples += pixel.SampleCount
			stats.MinSamples = min(stats.MinSamples, pixel.SampleCount)
			stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, pixel.SampleCount)
		}
	}

	stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	return img, stats
}
