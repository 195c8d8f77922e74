package scene

import (
	"fmt"
	"image"

	"github.com/achilleasa/lux/types"
	"github.com/chewxy/math32"
)

// Stores the ray directions at the four corners of the camera frustum. Per
// pixel rays are generated by interpolating the corner rays.
type Frustum [4]types.Vec3

func (fr Frustum) String() string {
	return fmt.Sprintf(
		"Frustum Rays:\nTL : (%3.3f, %3.3f, %3.3f)\nTR : (%3.3f, %3.3f, %3.3f)\nBL : (%3.3f, %3.3f, %3.3f)\nBR : (%3.3f, %3.3f, %3.3f)",
		fr[0][0], fr[0][1], fr[0][2],
		fr[1][0], fr[1][1], fr[1][2],
		fr[2][0], fr[2][1], fr[2][2],
		fr[3][0], fr[3][1], fr[3][2],
	)
}

// A pinhole perspective camera.
type PerspectiveCamera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3

	// Rotation (in radians) applied to the viewing direction by the next
	// call to Update.
	Pitch float32
	Yaw   float32

	// Vertical field of view in degrees.
	FOV float32

	Frustum Frustum

	frameW, frameH int
}

// Create a camera looking down the -Z axis.
func NewPerspectiveCamera(frameW, frameH int, fov float32) *PerspectiveCamera {
	c := &PerspectiveCamera{
		Position: types.Vec3{0, 0, 0},
		LookAt:   types.Vec3{0, 0, -1},
		Up:       types.Vec3{0, 1, 0},
		FOV:      fov,
		frameW:   frameW,
		frameH:   frameH,
	}
	c.Update()
	return c
}

// Apply any pending pitch/yaw rotation and recalculate the frustum.
func (c *PerspectiveCamera) Update() {
	dir := c.LookAt.Sub(c.Position).Normalize()
	if c.Pitch != 0 || c.Yaw != 0 {
		pitchAxis := dir.Cross(c.Up)
		pitchQuat := types.QuatFromAxisAngle(pitchAxis, c.Pitch)
		yawQuat := types.QuatFromAxisAngle(c.Up, c.Yaw)

		orientQuat := pitchQuat.Mul(yawQuat).Normalize()
		dir = orientQuat.Rotate(dir)
		c.LookAt = c.Position.Add(dir)
		c.Pitch, c.Yaw = 0, 0
	}

	c.updateFrustum(dir)
}

func (c *PerspectiveCamera) updateFrustum(dir types.Vec3) {
	right := dir.Cross(c.Up).Normalize()
	up := right.Cross(dir)

	halfH := math32.Tan(c.FOV * math32.Pi / 360)
	halfW := halfH * float32(c.frameW) / float32(max(c.frameH, 1))

	right = right.Mul(halfW)
	up = up.Mul(halfH)

	c.Frustum[0] = dir.Sub(right).Add(up)
	c.Frustum[1] = dir.Add(right).Add(up)
	c.Frustum[2] = dir.Sub(right).Sub(up)
	c.Frustum[3] = dir.Add(right).Sub(up)
}

// Get the output frame size.
func (c *PerspectiveCamera) OutputSize() image.Point {
	return image.Pt(c.frameW, c.frameH)
}

// Generate a ray through pixel position pixel. Pixel (0, 0) is the top-left
// corner of the frame. The aperture sample is ignored by a pinhole camera.
func (c *PerspectiveCamera) SampleRay(pixel, _ types.Vec2) (types.Ray, types.Color) {
	u := pixel[0] / float32(c.frameW)
	v := pixel[1] / float32(c.frameH)

	top := c.Frustum[0].Add(c.Frustum[1].Sub(c.Frustum[0]).Mul(u))
	bottom := c.Frustum[2].Add(c.Frustum[3].Sub(c.Frustum[2]).Mul(u))
	dir := top.Add(bottom.Sub(top).Mul(v)).Normalize()

	return types.NewRay(c.Position, dir), types.Gray(1)
}
