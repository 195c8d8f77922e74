// Package renderer renders an activated scene by distributing tiles across
// a pool of workers.
package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/achilleasa/lux/film"
	"github.com/achilleasa/lux/filter"
	"github.com/achilleasa/lux/log"
	"github.com/achilleasa/lux/scene"
	"github.com/achilleasa/lux/tracer"
	"github.com/achilleasa/lux/types"
)

// A callback invoked in the coordinating goroutine each time a tile is
// merged into the frame, in the order tiles finish.
type ProgressFunc func(tile tracer.Tile, done, total int)

// A tile based CPU renderer.
type Renderer struct {
	logger log.Logger

	scene     *scene.Scene
	options   Options
	filter    filter.Filter
	scheduler *tracer.TileScheduler

	// The accumulated frame shared by all workers.
	frame *film.Block

	samplesPerPixel int
	numWorkers      int
	stats           FrameStats
}

// Create a renderer for an activated scene.
func New(sc *scene.Scene, opts Options) (*Renderer, error) {
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	if !sc.IsActive() {
		return nil, ErrSceneNotActive
	}

	f, err := filter.New(opts.Filter, opts.FilterRadius)
	if err != nil {
		return nil, err
	}

	frameSize := sc.Camera.OutputSize()
	scheduler, err := tracer.NewTileScheduler(frameSize.X, frameSize.Y, int(opts.TileSize))
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		logger:          log.New("renderer"),
		scene:           sc,
		options:         opts,
		filter:          f,
		scheduler:       scheduler,
		frame:           film.NewBlock(frameSize, f, opts.NonFinitePolicy),
		samplesPerPixel: int(opts.SamplesPerPixel),
		numWorkers:      int(opts.Workers),
	}
	if r.samplesPerPixel == 0 {
		r.samplesPerPixel = sc.Sampler.SampleCount()
	}
	if r.numWorkers == 0 {
		r.numWorkers = DetectWorkers()
	}

	return r, nil
}

// Get the accumulated frame.
func (r *Renderer) Frame() *film.Block {
	return r.frame
}

// Tonemap the accumulated frame into an sRGB image.
func (r *Renderer) Image() *image.NRGBA64 {
	return r.frame.Develop(r.options.Exposure)
}

// Get statistics for the last rendered frame.
func (r *Renderer) Stats() FrameStats {
	return r.stats
}

// Render a frame. On the first tile failure outstanding tasks are cancelled
// and a *TileError is returned; the failed tile is not merged. Cancelling ctx
// aborts the render with ErrInterrupted.
func (r *Renderer) Render(ctx context.Context, progress ProgressFunc) error {
	start := time.Now()
	r.scheduler.Reset()
	r.frame.Clear()

	total := r.scheduler.TileCount()
	r.stats = FrameStats{Workers: make([]WorkerStat, r.numWorkers)}
	for id := range r.stats.Workers {
		r.stats.Workers[id].Id = id
	}

	renderCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool := newWorkerPool(r.numWorkers, total)
	pool.start(renderCtx, r.runTask)
	pool.submit(total)

	var (
		firstErr   error
		framePixel = float32(max(r.frame.Size().X*r.frame.Size().Y, 1))
	)
	for res := range pool.results() {
		stat := &r.stats.Workers[res.worker]
		stat.BusyTime += res.elapsed
		stat.Dropped += res.dropped

		if res.err != nil {
			if firstErr == nil && !isCancellation(res.err) {
				firstErr = res.err
				r.logger.Errorf("%v; cancelling remaining tiles", res.err)
				cancel()
			}
			continue
		}
		if !res.rendered {
			continue
		}

		stat.Tiles++
		stat.Samples += res.samples
		stat.FramePercent += 100 * float32(res.pixels) / framePixel
		r.stats.Tiles++
		if progress != nil {
			progress(res.tile, r.stats.Tiles, total)
		}
	}
	r.stats.RenderTime = time.Since(start)

	if firstErr != nil {
		return firstErr
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrInterrupted, err)
	}

	r.logger.Noticef("rendered %d tiles using %d workers in %d ms", r.stats.Tiles, r.numWorkers, r.stats.RenderTime.Nanoseconds()/1e6)
	return nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Pull the next tile, render it into a private block and merge the block
// into the frame.
func (r *Renderer) runTask(ctx context.Context, workerID int) (res tileResult) {
	res.worker = workerID
	if err := ctx.Err(); err != nil {
		res.err = err
		return res
	}

	var tile tracer.Tile
	if !r.scheduler.Next(&tile) {
		return res
	}
	res.tile = tile

	start := time.Now()
	defer func() {
		res.elapsed = time.Since(start)
		if p := recover(); p != nil {
			res.rendered = false
			res.err = &TileError{Tile: tile, Worker: workerID, Err: fmt.Errorf("%w: %v", ErrTilePanic, p)}
		}
	}()

	block := film.NewBlock(tile.Size, r.filter, r.options.NonFinitePolicy)
	block.SetOffset(tile.Offset)
	sampler := r.scene.Sampler.Clone()
	sampler.Prepare(tile.Offset)

	if err := r.renderTile(ctx, tile, block, sampler); err != nil {
		res.dropped = block.Dropped()
		if isCancellation(err) {
			res.err = err
		} else {
			res.err = &TileError{Tile: tile, Worker: workerID, Err: err}
		}
		return res
	}

	r.frame.Merge(block)
	res.rendered = true
	res.pixels = tile.Pixels()
	res.samples = uint64(tile.Pixels()) * uint64(r.samplesPerPixel)
	res.dropped = block.Dropped()
	r.logger.Debugf("worker %d rendered %v", workerID, tile)
	return res
}

func (r *Renderer) renderTile(ctx context.Context, tile tracer.Tile, block *film.Block, sampler scene.Sampler) error {
	camera := r.scene.Camera
	integrator := r.scene.Integrator

	for y := 0; y < tile.Size.Y; y++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for x := 0; x < tile.Size.X; x++ {
			pixel := types.Vec2{float32(tile.Offset.X + x), float32(tile.Offset.Y + y)}
			for i := 0; i < r.samplesPerPixel; i++ {
				pixelSample := pixel.Add(sampler.Next2D())
				apertureSample := sampler.Next2D()

				ray, weight := camera.SampleRay(pixelSample, apertureSample)
				value := weight.Mul(integrator.Li(r.scene, sampler, ray))
				if err := block.Put(pixelSample, value); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
