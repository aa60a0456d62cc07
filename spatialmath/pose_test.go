package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestQuatRotate(t *testing.T) {
	p := NewPoseFromAxisAngle(r3.Vector{}, r3.Vector{Z: 1}, math.Pi/2)
	v := QuatRotate(p.Orientation, r3.Vector{X: 1})
	test.That(t, v.X, test.ShouldAlmostEqual, 0)
	test.That(t, v.Y, test.ShouldAlmostEqual, 1)
	test.That(t, v.Z, test.ShouldAlmostEqual, 0)
}

func TestCompose(t *testing.T) {
	rot := NewPoseFromAxisAngle(r3.Vector{}, r3.Vector{Z: 1}, math.Pi/2)
	trans := NewPoseFromPoint(r3.Vector{X: 1})
	p := Compose(rot, trans)
	test.That(t, p.Point.X, test.ShouldAlmostEqual, 0)
	test.That(t, p.Point.Y, test.ShouldAlmostEqual, 1)

	// identity composes to the same pose
	q := Compose(NewZeroPose(), p)
	test.That(t, q.Point.Y, test.ShouldAlmostEqual, p.Point.Y)
	test.That(t, q.Orientation.Real, test.ShouldAlmostEqual, p.Orientation.Real)
}

func TestRPY(t *testing.T) {
	yawed := NewPoseFromRPY(r3.Vector{}, 0, 0, math.Pi/2)
	axisAngle := NewPoseFromAxisAngle(r3.Vector{}, r3.Vector{Z: 1}, math.Pi/2)
	test.That(t, yawed.Orientation.Real, test.ShouldAlmostEqual, axisAngle.Orientation.Real)
	test.That(t, yawed.Orientation.Kmag, test.ShouldAlmostEqual, axisAngle.Orientation.Kmag)
	test.That(t, yawed.Orientation.Imag, test.ShouldAlmostEqual, 0)
	test.That(t, yawed.Orientation.Jmag, test.ShouldAlmostEqual, 0)
}

func TestPoseDelta(t *testing.T) {
	from := NewZeroPose()
	to := NewPoseFromAxisAngle(r3.Vector{X: 1, Y: 2, Z: 3}, r3.Vector{Z: 1}, math.Pi/2)
	delta := PoseDelta(from, to)
	test.That(t, delta.Linear.X, test.ShouldAlmostEqual, 1)
	test.That(t, delta.Linear.Y, test.ShouldAlmostEqual, 2)
	test.That(t, delta.Linear.Z, test.ShouldAlmostEqual, 3)
	test.That(t, delta.Angular.X, test.ShouldAlmostEqual, 0)
	test.That(t, delta.Angular.Y, test.ShouldAlmostEqual, 0)
	test.That(t, delta.Angular.Z, test.ShouldAlmostEqual, math.Pi/2)

	// delta of a pose with itself is zero
	zero := PoseDelta(to, to)
	test.That(t, zero.Linear.Norm(), test.ShouldAlmostEqual, 0)
	test.That(t, zero.Angular.Norm(), test.ShouldAlmostEqual, 0)
}

func TestTwistWithin(t *testing.T) {
	tw := NewTwist(r3.Vector{X: 0.001}, r3.Vector{Z: 0.002})
	test.That(t, tw.Within(NewTwist(r3.Vector{X: 0.01, Y: 0.01, Z: 0.01}, r3.Vector{X: 0.01, Y: 0.01, Z: 0.01})), test.ShouldBeTrue)
	test.That(t, tw.Within(NewTwist(r3.Vector{X: 0.01, Y: 0.01, Z: 0.01}, r3.Vector{X: 0.01, Y: 0.01, Z: 0.001})), test.ShouldBeFalse)
}
