package asset

import (
	"errors"
	"fmt"
	"slices"

	"github.com/achilleasa/lux/geometry"
	"github.com/achilleasa/lux/types"
	"github.com/chewxy/math32"
)

// ErrUnknownScene is returned by Builtin for unregistered scene names.
var ErrUnknownScene = errors.New("asset: unknown built-in scene")

type builtinFn func() (*Model, error)

var builtins = map[string]builtinFn{
	"quad":    quadScene,
	"cornell": cornellScene,
	"spheres": spheresScene,
}

// Get the names of the built-in scenes in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Generate the built-in scene with the given name.
func Builtin(name string) (*Model, error) {
	fn, exists := builtins[name]
	if !exists {
		return nil, fmt.Errorf("%w %q; available scenes: %v", ErrUnknownScene, name, BuiltinNames())
	}
	return fn()
}

// A unit quad facing +Z.
func quadScene() (*Model, error) {
	quad, err := quadMesh("quad",
		types.Vec3{-1, -1, 0},
		types.Vec3{1, -1, 0},
		types.Vec3{1, 1, 0},
		types.Vec3{-1, 1, 0},
	)
	if err != nil {
		return nil, err
	}

	return &Model{
		Name:   "quad",
		Meshes: []*geometry.Mesh{quad},
		Camera: CameraSetup{
			Eye:  types.Vec3{0, 0, 3},
			Look: types.Vec3{0, 0, 0},
			Up:   types.Vec3{0, 1, 0},
			FOV:  45,
		},
	}, nil
}

// An open box with a floor, ceiling, three walls and two blocks.
func cornellScene() (*Model, error) {
	walls := []struct {
		name string
		p    [4]types.Vec3
	}{
		{"floor", [4]types.Vec3{{-1, 0, 1}, {1, 0, 1}, {1, 0, -1}, {-1, 0, -1}}},
		{"ceiling", [4]types.Vec3{{-1, 2, -1}, {1, 2, -1}, {1, 2, 1}, {-1, 2, 1}}},
		{"back", [4]types.Vec3{{-1, 0, -1}, {1, 0, -1}, {1, 2, -1}, {-1, 2, -1}}},
		{"left", [4]types.Vec3{{-1, 0, 1}, {-1, 0, -1}, {-1, 2, -1}, {-1, 2, 1}}},
		{"right", [4]types.Vec3{{1, 0, -1}, {1, 0, 1}, {1, 2, 1}, {1, 2, -1}}},
	}

	model := &Model{
		Name: "cornell",
		Camera: CameraSetup{
			Eye:  types.Vec3{0, 1, 3.9},
			Look: types.Vec3{0, 1, 0},
			Up:   types.Vec3{0, 1, 0},
			FOV:  40,
		},
	}

	for _, wall := range walls {
		mesh, err := quadMesh(wall.name, wall.p[0], wall.p[1], wall.p[2], wall.p[3])
		if err != nil {
			return nil, err
		}
		model.Meshes = append(model.Meshes, mesh)
	}

	for _, block := range []struct {
		name     string
		min, max types.Vec3
	}{
		{"short_block", types.Vec3{0.1, 0, 0}, types.Vec3{0.7, 0.6, 0.6}},
		{"tall_block", types.Vec3{-0.7, 0, -0.7}, types.Vec3{-0.1, 1.2, -0.1}},
	} {
		mesh, err := boxMesh(block.name, block.min, block.max)
		if err != nil {
			return nil, err
		}
		model.Meshes = append(model.Meshes, mesh)
	}

	return model, nil
}

// Three tessellated spheres resting on a ground plane.
func spheresScene() (*Model, error) {
	ground, err := quadMesh("ground",
		types.Vec3{-4, 0, 4},
		types.Vec3{4, 0, 4},
		types.Vec3{4, 0, -4},
		types.Vec3{-4, 0, -4},
	)
	if err != nil {
		return nil, err
	}

	model := &Model{
		Name:   "spheres",
		Meshes: []*geometry.Mesh{ground},
		Camera: CameraSetup{
			Eye:  types.Vec3{0, 1.5, 6},
			Look: types.Vec3{0, 0.75, 0},
			Up:   types.Vec3{0, 1, 0},
			FOV:  40,
		},
	}

	for _, sphere := range []struct {
		name   string
		center types.Vec3
		radius float32
	}{
		{"sphere_left", types.Vec3{-1.6, 0.6, 0}, 0.6},
		{"sphere_center", types.Vec3{0, 1, -0.5}, 1},
		{"sphere_right", types.Vec3{1.6, 0.5, 0.5}, 0.5},
	} {
		mesh, err := sphereMesh(sphere.name, sphere.center, sphere.radius, 24, 48)
		if err != nil {
			return nil, err
		}
		model.Meshes = append(model.Meshes, mesh)
	}

	return model, nil
}

// Build a two-triangle quad from four counter-clockwise corners.
func quadMesh(name string, p0, p1, p2, p3 types.Vec3) (*geometry.Mesh, error) {
	n := p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
	return geometry.NewMesh(
		name,
		[]types.Vec3{p0, p1, p2, p3},
		[]types.Vec3{n, n, n, n},
		[]types.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		[][3]uint32{{0, 1, 2}, {0, 2, 3}},
	)
}

// Build an axis-aligned box. Each side gets its own vertices so that the
// per-vertex normals stay flat.
func boxMesh(name string, min, max types.Vec3) (*geometry.Mesh, error) {
	sides := [6][4]types.Vec3{
		{{min[0], min[1], max[2]}, {max[0], min[1], max[2]}, {max[0], max[1], max[2]}, {min[0], max[1], max[2]}}, // +Z
		{{max[0], min[1], min[2]}, {min[0], min[1], min[2]}, {min[0], max[1], min[2]}, {max[0], max[1], min[2]}}, // -Z
		{{max[0], min[1], max[2]}, {max[0], min[1], min[2]}, {max[0], max[1], min[2]}, {max[0], max[1], max[2]}}, // +X
		{{min[0], min[1], min[2]}, {min[0], min[1], max[2]}, {min[0], max[1], max[2]}, {min[0], max[1], min[2]}}, // -X
		{{min[0], max[1], max[2]}, {max[0], max[1], max[2]}, {max[0], max[1], min[2]}, {min[0], max[1], min[2]}}, // +Y
		{{min[0], min[1], min[2]}, {max[0], min[1], min[2]}, {max[0], min[1], max[2]}, {min[0], min[1], max[2]}}, // -Y
	}

	positions := make([]types.Vec3, 0, 24)
	normals := make([]types.Vec3, 0, 24)
	uvs := make([]types.Vec2, 0, 24)
	faces := make([][3]uint32, 0, 12)
	for _, side := range sides {
		base := uint32(len(positions))
		n := side[1].Sub(side[0]).Cross(side[2].Sub(side[0])).Normalize()
		positions = append(positions, side[:]...)
		normals = append(normals, n, n, n, n)
		uvs = append(uvs, types.Vec2{0, 0}, types.Vec2{1, 0}, types.Vec2{1, 1}, types.Vec2{0, 1})
		faces = append(faces, [3]uint32{base, base + 1, base + 2}, [3]uint32{base, base + 2, base + 3})
	}

	return geometry.NewMesh(name, positions, normals, uvs, faces)
}

// Tessellate a UV sphere. The pole rows emit a single triangle per segment
// so the mesh contains no degenerate faces.
func sphereMesh(name string, center types.Vec3, radius float32, rings, segments int) (*geometry.Mesh, error) {
	if rings < 2 || segments < 3 {
		return nil, fmt.Errorf("sphere %q: need at least 2 rings and 3 segments; got %d and %d", name, rings, segments)
	}

	vertCount := (rings + 1) * (segments + 1)
	positions := make([]types.Vec3, 0, vertCount)
	normals := make([]types.Vec3, 0, vertCount)
	uvs := make([]types.Vec2, 0, vertCount)
	for i := 0; i <= rings; i++ {
		v := float32(i) / float32(rings)
		theta := v * math32.Pi
		sinTheta, cosTheta := math32.Sin(theta), math32.Cos(theta)
		for j := 0; j <= segments; j++ {
			u := float32(j) / float32(segments)
			phi := u * 2 * math32.Pi
			n := types.Vec3{sinTheta * math32.Cos(phi), cosTheta, sinTheta * math32.Sin(phi)}
			positions = append(positions, center.Add(n.Mul(radius)))
			normals = append(normals, n)
			uvs = append(uvs, types.Vec2{u, v})
		}
	}

	index := func(i, j int) uint32 { return uint32(i*(segments+1) + j) }
	faces := make([][3]uint32, 0, 2*rings*segments)
	for i := 0; i < rings; i++ {
		for j := 0; j < segments; j++ {
			a, b, c, d := index(i, j), index(i+1, j), index(i+1, j+1), index(i, j+1)
			if i != rings-1 {
				faces = append(faces, [3]uint32{a, c, b})
			}
			if i != 0 {
				faces = append(faces, [3]uint32{a, d, c})
			}
		}
	}

	return geometry.NewMesh(name, positions, normals, uvs, faces)
}
