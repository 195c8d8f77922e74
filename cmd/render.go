package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/achilleasa/lux/asset"
	"github.com/achilleasa/lux/film"
	"github.com/achilleasa/lux/renderer"
	"github.com/achilleasa/lux/tracer"
	"github.com/urfave/cli"
)

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	policy, err := film.ParsePolicy(ctx.String("non-finite"))
	if err != nil {
		return err
	}

	var frameW, frameH uint32
	opts := renderer.DefaultOptions()
	for _, flag := range []struct {
		name string
		dst  *uint32
	}{
		{"width", &frameW},
		{"height", &frameH},
		{"spp", &opts.SamplesPerPixel},
		{"tile-size", &opts.TileSize},
		{"workers", &opts.Workers},
	} {
		if *flag.dst, err = uintFlag(ctx, flag.name); err != nil {
			return err
		}
	}
	opts.NonFinitePolicy = policy
	opts.Filter = ctx.String("filter")
	opts.FilterRadius = float32(ctx.Float64("filter-radius"))
	opts.Exposure = float32(ctx.Float64("exposure"))

	sc, err := setupScene(ctx, int(frameW), int(frameH))
	if err != nil {
		return err
	}

	r, err := renderer.New(sc, opts)
	if err != nil {
		return err
	}

	// Abort the render on SIGINT
	renderCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Noticef("rendering %dx%d frame with %d spp", frameW, frameH, opts.SamplesPerPixel)
	lastReport := -1
	err = r.Render(renderCtx, func(tile tracer.Tile, done, total int) {
		logger.Debugf("finished %s", tile)
		if percent := 100 * done / total; percent/10 != lastReport {
			lastReport = percent / 10
			logger.Infof("progress: %d%% (%d/%d tiles)", percent, done, total)
		}
	})

	// Display stats even for aborted frames
	logger.Noticef("frame statistics\n%s", r.Stats().Table())
	if err != nil {
		return err
	}

	dropped := 0
	for _, stat := range r.Stats().Workers {
		dropped += stat.Dropped
	}
	if dropped > 0 {
		logger.Warningf("dropped %d non-finite samples", dropped)
	}

	start := time.Now()
	imgFile := ctx.String("out")
	if err = asset.WritePNG(imgFile, r.Image()); err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s in %d ms", imgFile, time.Since(start).Milliseconds())

	return nil
}
