package scene

import (
	"errors"
	"image"
	"testing"

	"github.com/achilleasa/lux/geometry"
	"github.com/achilleasa/lux/types"
	"github.com/chewxy/math32"
)

// A square of side 2*half centered at center, perpendicular to the Z axis.
func zQuad(t *testing.T, name string, center types.Vec3, half float32) *geometry.Mesh {
	m, err := geometry.NewMesh(
		name,
		[]types.Vec3{
			center.Add(types.Vec3{-half, -half, 0}),
			center.Add(types.Vec3{half, -half, 0}),
			center.Add(types.Vec3{half, half, 0}),
			center.Add(types.Vec3{-half, half, 0}),
		},
		nil,
		nil,
		[][3]uint32{{0, 1, 2}, {0, 2, 3}},
	)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestPerspectiveCamera(t *testing.T) {
	cam := NewPerspectiveCamera(200, 100, 90)

	ray, weight := cam.SampleRay(types.Vec2{100, 50}, types.Vec2{})
	if ray.Dir.Sub(types.Vec3{0, 0, -1}).Len() > 1e-5 {
		t.Fatalf("expected center ray to point down -Z; got %v", ray.Dir)
	}
	if weight != types.Gray(1) {
		t.Fatalf("expected unit importance; got %v", weight)
	}

	// With a 90 degree vertical fov the top-left corner sits at (-2, 1, -1)
	ray, _ = cam.SampleRay(types.Vec2{0, 0}, types.Vec2{})
	if exp := (types.Vec3{-2, 1, -1}).Normalize(); ray.Dir.Sub(exp).Len() > 1e-5 {
		t.Fatalf("expected top-left ray %v; got %v", exp, ray.Dir)
	}

	if cam.OutputSize() != image.Pt(200, 100) {
		t.Fatalf("expected output size 200x100; got %v", cam.OutputSize())
	}

	// Yaw by 90 degrees turns the camera towards -X
	cam.Yaw = math32.Pi / 2
	cam.Update()
	ray, _ = cam.SampleRay(types.Vec2{100, 50}, types.Vec2{})
	if ray.Dir.Sub(types.Vec3{-1, 0, 0}).Len() > 1e-5 {
		t.Fatalf("expected center ray to point down -X after yaw; got %v", ray.Dir)
	}
	if cam.Yaw != 0 {
		t.Fatal("expected Update to consume the pending yaw")
	}
}

func TestIndependentSamplerIsSeededPerTile(t *testing.T) {
	s := NewIndependentSampler(4, 7)
	clone := s.Clone()

	s.Prepare(image.Pt(32, 64))
	clone.Prepare(image.Pt(32, 64))
	for i := 0; i < 16; i++ {
		a, b := s.Next2D(), clone.Next2D()
		if a != b {
			t.Fatalf("[sample %d] expected identical sequences for the same tile; got %v and %v", i, a, b)
		}
		if a[0] < 0 || a[0] >= 1 || a[1] < 0 || a[1] >= 1 {
			t.Fatalf("[sample %d] sample %v outside [0, 1)^2", i, a)
		}
	}

	s.Prepare(image.Pt(32, 64))
	clone.Prepare(image.Pt(64, 32))
	same := 0
	for i := 0; i < 16; i++ {
		if s.Next1D() == clone.Next1D() {
			same++
		}
	}
	if same == 16 {
		t.Fatal("expected different tiles to produce different sequences")
	}

	if clone.SampleCount() != 4 {
		t.Fatalf("expected clone to keep the sample count; got %d", clone.SampleCount())
	}
}

func TestActivate(t *testing.T) {
	sc := New()
	if err := sc.Activate(); !errors.Is(err, ErrNoCamera) {
		t.Fatalf("expected ErrNoCamera; got %v", err)
	}
	sc.Camera = NewPerspectiveCamera(16, 16, 45)
	if err := sc.Activate(); !errors.Is(err, ErrNoSampler) {
		t.Fatalf("expected ErrNoSampler; got %v", err)
	}
	sc.Sampler = NewIndependentSampler(1, 0)
	if err := sc.Activate(); !errors.Is(err, ErrNoIntegrator) {
		t.Fatalf("expected ErrNoIntegrator; got %v", err)
	}
	sc.Integrator = NormalIntegrator{}

	if sc.RayIntersect(types.NewRay(types.Vec3{}, types.Vec3{0, 0, -1}), nil, true) {
		t.Fatal("expected inactive scene to report no hits")
	}

	if err := sc.AddMesh(zQuad(t, "wall", types.Vec3{0, 0, -3}, 1)); err != nil {
		t.Fatal(err)
	}
	if err := sc.Activate(); err != nil {
		t.Fatal(err)
	}
	if !sc.IsActive() || sc.BVH() == nil {
		t.Fatal("expected scene to be active")
	}
	if !sc.RayIntersect(types.NewRay(types.Vec3{}, types.Vec3{0, 0, -1}), nil, true) {
		t.Fatal("expected ray to hit the wall")
	}
}

func TestIntegrators(t *testing.T) {
	type spec struct {
		integrator Integrator
		roof       bool
		exp        types.Color
	}

	specs := []spec{
		{NormalIntegrator{}, false, types.Color{0, 0, 1}},
		{AmbientOcclusionIntegrator{}, false, types.Gray(1)},
		{AmbientOcclusionIntegrator{}, true, types.Color{}},
		// The roof lies beyond the occlusion range
		{AmbientOcclusionIntegrator{Range: 0.5}, true, types.Gray(1)},
	}

	for index, s := range specs {
		sc := New()
		sc.Camera = NewPerspectiveCamera(16, 16, 45)
		sc.Sampler = NewIndependentSampler(1, uint64(index))
		sc.Integrator = s.integrator

		if err := sc.AddMesh(zQuad(t, "floor", types.Vec3{0, 0, -3}, 1)); err != nil {
			t.Fatal(err)
		}
		// A large quad behind the camera covers the hemisphere above the floor
		if s.roof {
			if err := sc.AddMesh(zQuad(t, "roof", types.Vec3{0, 0, 1}, 1000)); err != nil {
				t.Fatal(err)
			}
		}
		if err := sc.Activate(); err != nil {
			t.Fatal(err)
		}

		for i := 0; i < 8; i++ {
			got := s.integrator.Li(sc, sc.Sampler, types.NewRay(types.Vec3{0.1, 0.2, 0}, types.Vec3{0, 0, -1}))
			for ch := 0; ch < 3; ch++ {
				if math32.Abs(got[ch]-s.exp[ch]) > 1e-5 {
					t.Fatalf("[spec %d] expected radiance %v; got %v", index, s.exp, got)
				}
			}
		}
	}
}
