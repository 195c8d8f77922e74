// Package scene ties together geometry, the acceleration structure and the
// collaborators (camera, sampler, integrator) used to render it.
package scene

import (
	"image"

	"github.com/achilleasa/lux/bvh"
	"github.com/achilleasa/lux/geometry"
	"github.com/achilleasa/lux/log"
	"github.com/achilleasa/lux/types"
)

// The Camera interface is implemented by objects that generate primary rays.
type Camera interface {
	// Generate a ray for a sample at pixel position pixel (in frame
	// coordinates). The aperture sample is in [0, 1)^2. Returns the ray
	// and an importance weight.
	SampleRay(pixel, aperture types.Vec2) (types.Ray, types.Color)

	// Get the output frame size.
	OutputSize() image.Point
}

// The Sampler interface is implemented by sample generators. A Sampler is
// not safe for concurrent use; render workers clone their own instance.
type Sampler interface {
	// Create an independent copy with the same configuration.
	Clone() Sampler

	// Seed the sampler for rendering the tile at offset.
	Prepare(offset image.Point)

	// Get the next sample component in [0, 1).
	Next1D() float32

	// Get the next 2D sample in [0, 1)^2.
	Next2D() types.Vec2

	// Get the number of samples per pixel.
	SampleCount() int
}

// The Integrator interface is implemented by light transport algorithms.
type Integrator interface {
	// Estimate the radiance arriving along ray.
	Li(sc *Scene, sampler Sampler, ray types.Ray) types.Color
}

// A renderable scene.
type Scene struct {
	Camera     Camera
	Sampler    Sampler
	Integrator Integrator

	// Options for the BVH built on activation.
	BVHOptions bvh.Options

	meshes *geometry.MeshSet
	accel  *bvh.BVH
	logger log.Logger
}

// Create an empty scene.
func New() *Scene {
	meshes, _ := geometry.NewMeshSet()
	return &Scene{
		BVHOptions: bvh.DefaultOptions(),
		meshes:     meshes,
		logger:     log.New("scene"),
	}
}

// Add a mesh to the scene. Meshes added after activation are only picked up
// by the next call to Activate.
func (sc *Scene) AddMesh(m *geometry.Mesh) error {
	return sc.meshes.Add(m)
}

// Get the scene meshes.
func (sc *Scene) Meshes() []*geometry.Mesh {
	return sc.meshes.Meshes()
}

// Activate validates the scene collaborators and builds the acceleration
// structure. It must complete before any ray queries are issued.
func (sc *Scene) Activate() error {
	switch {
	case sc.Camera == nil:
		return ErrNoCamera
	case sc.Sampler == nil:
		return ErrNoSampler
	case sc.Integrator == nil:
		return ErrNoIntegrator
	}

	accel, err := bvh.Build(sc.meshes, sc.BVHOptions)
	if err != nil {
		return err
	}
	sc.accel = accel

	sc.logger.Infof("activated scene with %d meshes and %d triangles", len(sc.meshes.Meshes()), sc.meshes.TriangleCount())
	return nil
}

// Returns true if Activate completed successfully.
func (sc *Scene) IsActive() bool {
	return sc.accel != nil
}

// Get the acceleration structure. Returns nil before activation.
func (sc *Scene) BVH() *bvh.BVH {
	return sc.accel
}

// Get the scene bounding box.
func (sc *Scene) BBox() types.BBox {
	return sc.meshes.BBox()
}

// Intersect a ray with the scene. See bvh.BVH.RayIntersect.
func (sc *Scene) RayIntersect(ray types.Ray, its *bvh.Intersection, shadow bool) bool {
	if sc.accel == nil {
		return false
	}
	return sc.accel.RayIntersect(ray, its, shadow)
}
