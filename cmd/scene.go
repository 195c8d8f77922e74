package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/achilleasa/lux/asset"
	"github.com/achilleasa/lux/asset/reader"
	"github.com/achilleasa/lux/bvh"
	"github.com/achilleasa/lux/scene"
	"github.com/chewxy/math32"
	"github.com/urfave/cli"
)

// Load a model from a wavefront file (local or http) or, if the argument
// does not look like a file, from the built-in scene with that name.
func loadModel(ctx *cli.Context) (*asset.Model, error) {
	if ctx.NArg() != 1 {
		return nil, errors.New("missing scene file argument")
	}

	source := ctx.Args().First()
	if strings.Contains(source, ".") || strings.Contains(source, "/") {
		return reader.ReadModel(source)
	}

	logger.Noticef("generating built-in scene %q", source)
	return asset.Builtin(source)
}

// Create an integrator by name.
func newIntegrator(name string, aoRange float32) (scene.Integrator, error) {
	switch name {
	case "normal":
		return scene.NormalIntegrator{}, nil
	case "ao":
		return scene.AmbientOcclusionIntegrator{Range: aoRange}, nil
	}
	return nil, fmt.Errorf("unknown integrator %q; supported integrators: normal, ao", name)
}

// Collect BVH build options from the command flags.
func bvhOptions(ctx *cli.Context) bvh.Options {
	opts := bvh.DefaultOptions()
	opts.Compact = !ctx.Bool("no-compact")
	opts.VerifyRanges = ctx.Bool("verify-bvh")
	if threshold := ctx.Int("serial-threshold"); threshold > 0 {
		opts.SerialThreshold = uint32(threshold)
	}
	return opts
}

// Load the model named by the command argument, wire the render
// collaborators and activate the scene.
func setupScene(ctx *cli.Context, frameW, frameH int) (*scene.Scene, error) {
	model, err := loadModel(ctx)
	if err != nil {
		return nil, err
	}

	integrator, err := newIntegrator(ctx.String("integrator"), float32(ctx.Float64("ao-range")))
	if err != nil {
		return nil, err
	}

	spp, err := uintFlag(ctx, "spp")
	if err != nil {
		return nil, err
	}

	cam := model.NewCamera(frameW, frameH)
	cam.Yaw = float32(ctx.Float64("yaw")) * math32.Pi / 180
	cam.Pitch = float32(ctx.Float64("pitch")) * math32.Pi / 180
	cam.Update()

	sc := scene.New()
	sc.Camera = cam
	sc.Sampler = scene.NewIndependentSampler(int(spp), uint64(ctx.Int64("seed")))
	sc.Integrator = integrator
	sc.BVHOptions = bvhOptions(ctx)

	if err = model.Populate(sc); err != nil {
		return nil, err
	}
	if err = sc.Activate(); err != nil {
		return nil, err
	}

	return sc, nil
}
