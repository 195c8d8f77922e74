package renderer

import (
	"context"
	"errors"
	"testing"

	"github.com/achilleasa/lux/film"
	"github.com/achilleasa/lux/geometry"
	"github.com/achilleasa/lux/scene"
	"github.com/achilleasa/lux/tracer"
	"github.com/achilleasa/lux/types"
	"github.com/chewxy/math32"
)

const (
	testFrameW = 80
	testFrameH = 48
)

// Returns NaN for rays pointing to the right half of the frame.
type poisonIntegrator struct{}

func (poisonIntegrator) Li(_ *scene.Scene, _ scene.Sampler, ray types.Ray) types.Color {
	if ray.Dir[0] > 0.2 {
		return types.Color{math32.NaN(), 0, 0}
	}
	return types.Gray(1)
}

type panicIntegrator struct{}

func (panicIntegrator) Li(_ *scene.Scene, _ scene.Sampler, ray types.Ray) types.Color {
	if ray.Dir[1] > 0.1 {
		panic("boom")
	}
	return types.Gray(1)
}

func makeScene(t *testing.T, integrator scene.Integrator) *scene.Scene {
	wall, err := geometry.NewMesh(
		"wall",
		[]types.Vec3{{-100, -100, -5}, {100, -100, -5}, {100, 100, -5}, {-100, 100, -5}},
		nil,
		nil,
		[][3]uint32{{0, 1, 2}, {0, 2, 3}},
	)
	if err != nil {
		t.Fatal(err)
	}

	sc := scene.New()
	sc.Camera = scene.NewPerspectiveCamera(testFrameW, testFrameH, 60)
	sc.Sampler = scene.NewIndependentSampler(2, 1)
	sc.Integrator = integrator
	if err = sc.AddMesh(wall); err != nil {
		t.Fatal(err)
	}
	if err = sc.Activate(); err != nil {
		t.Fatal(err)
	}
	return sc
}

func testOptions(workers uint32) Options {
	opts := DefaultOptions()
	opts.Workers = workers
	opts.TileSize = 16
	opts.Filter = "box"
	return opts
}

func TestNewValidatesScene(t *testing.T) {
	if _, err := New(nil, DefaultOptions()); !errors.Is(err, ErrSceneNotDefined) {
		t.Fatalf("expected ErrSceneNotDefined; got %v", err)
	}
	if _, err := New(scene.New(), DefaultOptions()); !errors.Is(err, ErrSceneNotActive) {
		t.Fatalf("expected ErrSceneNotActive; got %v", err)
	}

	opts := DefaultOptions()
	opts.Filter = "sinc"
	if _, err := New(makeScene(t, scene.NormalIntegrator{}), opts); err == nil {
		t.Fatal("expected an error for an unknown filter")
	}
}

func TestRender(t *testing.T) {
	r, err := New(makeScene(t, scene.NormalIntegrator{}), testOptions(4))
	if err != nil {
		t.Fatal(err)
	}

	var (
		calls    int
		seen     = make(map[int]bool)
		lastDone int
	)
	err = r.Render(context.Background(), func(tile tracer.Tile, done, total int) {
		calls++
		if seen[tile.Index] {
			t.Fatalf("progress reported tile %v twice", tile)
		}
		seen[tile.Index] = true
		if done != lastDone+1 || total != 15 {
			t.Fatalf("expected progress (%d, 15); got (%d, %d)", lastDone+1, done, total)
		}
		lastDone = done
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 15 {
		t.Fatalf("expected 15 progress callbacks; got %d", calls)
	}

	stats := r.Stats()
	if stats.Tiles != 15 || len(stats.Workers) != 4 {
		t.Fatalf("expected 15 tiles over 4 workers; got %d tiles, %d workers", stats.Tiles, len(stats.Workers))
	}
	var percent float32
	var samples uint64
	for _, w := range stats.Workers {
		percent += w.FramePercent
		samples += w.Samples
	}
	if math32.Abs(percent-100) > 1e-3 {
		t.Fatalf("expected worker frame percentages to add up to 100; got %g", percent)
	}
	if exp := uint64(testFrameW * testFrameH * 2); samples != exp {
		t.Fatalf("expected %d samples; got %d", exp, samples)
	}
	if stats.Table() == "" {
		t.Fatal("expected a non-empty stats table")
	}

	for idx, c := range r.Frame().Colors() {
		if c != (types.Color{0, 0, 1}) {
			t.Fatalf("expected pixel (%d, %d) to be %v; got %v", idx%testFrameW, idx/testFrameW, types.Color{0, 0, 1}, c)
		}
	}

	if img := r.Image(); img.Bounds().Dx() != testFrameW || img.Bounds().Dy() != testFrameH {
		t.Fatalf("expected %dx%d image; got %v", testFrameW, testFrameH, img.Bounds())
	}
}

func TestStrictPolicyReportsFailedTile(t *testing.T) {
	r, err := New(makeScene(t, poisonIntegrator{}), testOptions(4))
	if err != nil {
		t.Fatal(err)
	}

	err = r.Render(context.Background(), nil)
	var tileErr *TileError
	if !errors.As(err, &tileErr) {
		t.Fatalf("expected a *TileError; got %v", err)
	}
	if !errors.Is(err, film.ErrInvalidSample) {
		t.Fatalf("expected error to wrap film.ErrInvalidSample; got %v", err)
	}
	if tileErr.Tile.Size.X == 0 || tileErr.Worker < 0 || tileErr.Worker >= 4 {
		t.Fatalf("expected error to identify the tile and worker; got %v", tileErr)
	}

	// The failed tile must not have reached the frame
	frame := r.Frame()
	stride := frame.Size().X + 2*frame.BorderSize()
	pixels := frame.Pixels()
	bounds := tileErr.Tile.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			p := pixels[(y+frame.BorderSize())*stride+x+frame.BorderSize()]
			if p.Weight != 0 {
				t.Fatalf("expected failed tile pixel (%d, %d) to be untouched; got weight %g", x, y, p.Weight)
			}
		}
	}

	if r.Stats().Tiles >= 15 {
		t.Fatalf("expected an incomplete frame; %d tiles were merged", r.Stats().Tiles)
	}
}

func TestLenientPolicyDropsSamples(t *testing.T) {
	opts := testOptions(3)
	opts.NonFinitePolicy = film.Lenient

	r, err := New(makeScene(t, poisonIntegrator{}), opts)
	if err != nil {
		t.Fatal(err)
	}
	if err = r.Render(context.Background(), nil); err != nil {
		t.Fatalf("expected lenient render to complete; got %v", err)
	}

	dropped := 0
	for _, w := range r.Stats().Workers {
		dropped += w.Dropped
	}
	if dropped == 0 {
		t.Fatal("expected some samples to be dropped")
	}
	if r.Stats().Tiles != 15 {
		t.Fatalf("expected all 15 tiles to be merged; got %d", r.Stats().Tiles)
	}

	for _, c := range r.Frame().Colors() {
		if !c.IsValid() {
			t.Fatalf("expected frame to contain only finite values; got %v", c)
		}
	}
}

func TestPanicIsReportedAsTileError(t *testing.T) {
	r, err := New(makeScene(t, panicIntegrator{}), testOptions(2))
	if err != nil {
		t.Fatal(err)
	}

	err = r.Render(context.Background(), nil)
	var tileErr *TileError
	if !errors.As(err, &tileErr) || !errors.Is(err, ErrTilePanic) {
		t.Fatalf("expected a *TileError wrapping ErrTilePanic; got %v", err)
	}
}

func TestRenderInterrupted(t *testing.T) {
	r, err := New(makeScene(t, scene.NormalIntegrator{}), testOptions(2))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err = r.Render(ctx, nil); !errors.Is(err, ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted; got %v", err)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	sc := makeScene(t, scene.AmbientOcclusionIntegrator{})

	render := func(workers uint32) []film.Pixel {
		r, err := New(sc, testOptions(workers))
		if err != nil {
			t.Fatal(err)
		}
		if err = r.Render(context.Background(), nil); err != nil {
			t.Fatal(err)
		}
		return r.Frame().Pixels()
	}

	exp := render(4)
	for index, workers := range []uint32{4, 4, 1, 7} {
		got := render(workers)
		for i := range exp {
			if got[i] != exp[i] {
				t.Fatalf("[spec %d] expected pixel %d to be %v with %d workers; got %v", index, i, exp[i], workers, got[i])
			}
		}
	}
}
