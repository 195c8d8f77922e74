package asset

import (
	"github.com/achilleasa/lux/geometry"
	"github.com/achilleasa/lux/scene"
	"github.com/achilleasa/lux/types"
)

// Camera placement parsed from a scene file or supplied by a built-in scene.
type CameraSetup struct {
	Eye  types.Vec3
	Look types.Vec3
	Up   types.Vec3

	// Vertical field of view in degrees.
	FOV float32
}

// Get a camera at (0, 0, 5) looking at the origin.
func DefaultCameraSetup() CameraSetup {
	return CameraSetup{
		Eye:  types.Vec3{0, 0, 5},
		Look: types.Vec3{0, 0, 0},
		Up:   types.Vec3{0, 1, 0},
		FOV:  45,
	}
}

// A Model groups the meshes and the camera setup loaded from a single source.
type Model struct {
	Name   string
	Meshes []*geometry.Mesh
	Camera CameraSetup
}

// Get the total number of triangles in the model.
func (m *Model) TriangleCount() uint32 {
	var count uint32
	for _, mesh := range m.Meshes {
		count += mesh.TriangleCount()
	}
	return count
}

// Create a perspective camera for a frameW x frameH output using the model
// camera setup.
func (m *Model) NewCamera(frameW, frameH int) *scene.PerspectiveCamera {
	cam := scene.NewPerspectiveCamera(frameW, frameH, m.Camera.FOV)
	cam.Position = m.Camera.Eye
	cam.LookAt = m.Camera.Look
	cam.Up = m.Camera.Up
	cam.Update()
	return cam
}

// Add the model meshes to sc.
func (m *Model) Populate(sc *scene.Scene) error {
	for _, mesh := range m.Meshes {
		if err := sc.AddMesh(mesh); err != nil {
			return err
		}
	}
	return nil
}
