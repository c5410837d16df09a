package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// EulerQuat returns the quaternion for an XYZ Euler rotation given in radians.
// X is applied first, then Y, then Z, each about the fixed world axes.
func EulerQuat(rotation Vec3) mgl64.Quat {
	qx := mgl64.QuatRotate(rotation.X, mgl64.Vec3{1, 0, 0})
	qy := mgl64.QuatRotate(rotation.Y, mgl64.Vec3{0, 1, 0})
	qz := mgl64.QuatRotate(rotation.Z, mgl64.Vec3{0, 0, 1})
	return qz.Mul(qy).Mul(qx)
}

// RotateByQuat rotates v by the unit quaternion q
func RotateByQuat(q mgl64.Quat, v Vec3) Vec3 {
	r := q.Rotate(mgl64.Vec3{v.X, v.Y, v.Z})
	return Vec3{X: r[0], Y: r[1], Z: r[2]}
}

// Rotate returns the vector rotated by XYZ Euler angles in radians
func (v Vec3) Rotate(rotation Vec3) Vec3 {
	if rotation.IsZero() {
		return v
	}
	return RotateByQuat(EulerQuat(rotation), v)
}

// DegreesToRadians converts each component from degrees to radians
func DegreesToRadians(degrees Vec3) Vec3 {
	return degrees.Multiply(math.Pi / 180.0)
}
