package renderer

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-photon-mapper/pkg/core"
	"github.com/df07/go-photon-mapper/pkg/scene"
)

// Camera generates primary rays the way Blender's pinhole camera does: the
// image plane spans [-0.5, 0.5) horizontally at distance FocalLength (in
// sensor widths) down the local -Z axis, and the camera is oriented by XYZ
// Euler angles
type Camera struct {
	origin      core.Vec3
	orientation mgl64.Quat
	focalLength float64
	width       int
	height      int
	aspect      float64 // height / width
}

// NewCamera creates a camera for a width x height image
func NewCamera(config scene.CameraConfig, width, height int) *Camera {
	return &Camera{
		origin:      config.Location,
		orientation: core.EulerQuat(config.Rotation),
		focalLength: config.FocalLength,
		width:       width,
		height:      height,
		aspect:      float64(height) / float64(width),
	}
}

// ScreenCoords maps pixel (x, y), with y counted up from the bottom row, to
// image-plane coordinates
func (c *Camera) ScreenCoords(x, y int) (float64, float64) {
	w, h := float64(c.width), float64(c.height)
	sx := (float64(x) - w/2) / w
	sy := ((float64(y) - h/2) / h) * c.aspect
	return sx, sy
}

// SampleOffset is the antialiasing offset of sample i: van der Corput
// sequences in bases 2 and 3 scaled to one pixel
func (c *Camera) SampleOffset(i int) (float64, float64) {
	dx := 1 / float64(c.width)
	dy := c.aspect / float64(c.height)
	return core.VanDerCorput(i, 2) * dx, core.VanDerCorput(i, 3) * dy
}

// GetRay returns sample i's ray through image pixel (col, row), row 0 at the top
func (c *Camera) GetRay(col, row, i int) core.Ray {
	sx, sy := c.ScreenCoords(col, c.height-1-row)
	ox, oy := c.SampleOffset(i)
	local := core.NewVec3(sx+ox, sy+oy, -c.focalLength)
	direction := core.RotateByQuat(c.orientation, local).Normalize()
	return core.NewRay(c.origin, direction)
}
