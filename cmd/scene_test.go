package cmd

import (
	"errors"
	"flag"
	"testing"

	"github.com/achilleasa/lux/asset"
	"github.com/achilleasa/lux/scene"
	"github.com/urfave/cli"
)

func newTestContext(t *testing.T, integrator string, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("integrator", integrator, "")
	set.Float64("ao-range", 0, "")
	set.Int("spp", 4, "")
	set.Int64("seed", 7, "")
	set.Float64("yaw", 0, "")
	set.Float64("pitch", 0, "")
	set.Int("serial-threshold", 0, "")
	set.Bool("no-compact", false, "")
	set.Bool("verify-bvh", true, "")
	if err := set.Parse(args); err != nil {
		t.Fatal(err)
	}
	return cli.NewContext(nil, set, nil)
}

func TestSetupBuiltinScene(t *testing.T) {
	ctx := newTestContext(t, "ao", "cornell")
	sc, err := setupScene(ctx, 64, 48)
	if err != nil {
		t.Fatal(err)
	}

	if !sc.IsActive() {
		t.Fatal("expected scene to be active")
	}
	if _, isAO := sc.Integrator.(scene.AmbientOcclusionIntegrator); !isAO {
		t.Fatalf("expected an ambient occlusion integrator; got %T", sc.Integrator)
	}
	if got := sc.Sampler.SampleCount(); got != 4 {
		t.Fatalf("expected 4 spp; got %d", got)
	}

	model, _ := asset.Builtin("cornell")
	stats := sc.BVH().Stats()
	if stats.Primitives != model.TriangleCount() {
		t.Fatalf("expected BVH over %d triangles; got %d", model.TriangleCount(), stats.Primitives)
	}
	if stats.GuardedTasks == 0 {
		t.Fatal("expected range verification to be enabled")
	}
	if err = sc.BVH().Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestSetupSceneErrors(t *testing.T) {
	if _, err := setupScene(newTestContext(t, "normal", "teapot"), 8, 8); !errors.Is(err, asset.ErrUnknownScene) {
		t.Fatalf("expected ErrUnknownScene; got %v", err)
	}

	if _, err := setupScene(newTestContext(t, "normal"), 8, 8); err == nil {
		t.Fatal("expected an error for a missing scene argument")
	}

	if _, err := setupScene(newTestContext(t, "path", "quad"), 8, 8); err == nil {
		t.Fatal("expected an error for an unknown integrator")
	}
}

func TestSetupSceneRejectsNegativeSampleCount(t *testing.T) {
	if _, err := setupScene(newTestContext(t, "normal", "-spp", "-4", "quad"), 8, 8); err == nil {
		t.Fatal("expected an error for a negative sample count")
	}
}
