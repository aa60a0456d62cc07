// Package spatialmath provides the rigid-body math used by the IK solvers:
// quaternion-based poses, twists, and pose differencing.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose represents the position and orientation of a rigid body in 3D space.
// Orientation is a unit quaternion.
type Pose struct {
	Point       r3.Vector
	Orientation quat.Number
}

// NewZeroPose returns the identity pose.
func NewZeroPose() Pose {
	return Pose{Orientation: quat.Number{Real: 1}}
}

// NewPose returns a pose at the given point with the given orientation.
func NewPose(pt r3.Vector, o quat.Number) Pose {
	return Pose{Point: pt, Orientation: Normalize(o)}
}

// NewPoseFromPoint returns a pose at the given point with identity orientation.
func NewPoseFromPoint(pt r3.Vector) Pose {
	return Pose{Point: pt, Orientation: quat.Number{Real: 1}}
}

// NewPoseFromAxisAngle returns a pose at the given point, rotated by theta
// radians about the given axis. A zero axis yields identity orientation.
func NewPoseFromAxisAngle(pt, axis r3.Vector, theta float64) Pose {
	norm := axis.Norm()
	if norm == 0 {
		return NewPoseFromPoint(pt)
	}
	u := axis.Mul(1 / norm)
	s, c := math.Sincos(theta / 2)
	return Pose{Point: pt, Orientation: quat.Number{Real: c, Imag: s * u.X, Jmag: s * u.Y, Kmag: s * u.Z}}
}

// NewPoseFromRPY returns a pose at the given point with orientation given by
// fixed-axis roll, pitch, yaw angles (the URDF convention).
func NewPoseFromRPY(pt r3.Vector, roll, pitch, yaw float64) Pose {
	sr, cr := math.Sincos(roll / 2)
	sp, cp := math.Sincos(pitch / 2)
	sy, cy := math.Sincos(yaw / 2)
	return Pose{Point: pt, Orientation: quat.Number{
		Real: cr*cp*cy + sr*sp*sy,
		Imag: sr*cp*cy - cr*sp*sy,
		Jmag: cr*sp*cy + sr*cp*sy,
		Kmag: cr*cp*sy - sr*sp*cy,
	}}
}

// Compose returns the pose of b expressed in the frame that a is expressed
// in, where b is relative to a.
func Compose(a, b Pose) Pose {
	return Pose{
		Point:       a.Point.Add(QuatRotate(a.Orientation, b.Point)),
		Orientation: quat.Mul(a.Orientation, b.Orientation),
	}
}

// QuatRotate rotates vector v by unit quaternion q.
func QuatRotate(q quat.Number, v r3.Vector) r3.Vector {
	qv := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, qv), quat.Conj(q))
	return r3.Vector{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// Normalize scales q to unit length. A zero quaternion normalizes to identity.
func Normalize(q quat.Number) quat.Number {
	n := math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if n == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/n, q)
}

// RotationVector returns the rotation vector (axis scaled by angle, radians)
// equivalent to unit quaternion q, choosing the short way around.
func RotationVector(q quat.Number) r3.Vector {
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	v := r3.Vector{X: q.Imag, Y: q.Jmag, Z: q.Kmag}
	n := v.Norm()
	if n == 0 {
		return r3.Vector{}
	}
	angle := 2 * math.Atan2(n, q.Real)
	return v.Mul(angle / n)
}
