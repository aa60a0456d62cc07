package chain

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/viam-labs/sns-ik/spatialmath"
)

// twoLink is a planar 2R arm with unit link lengths and a fixed tool segment.
func twoLink() *Chain {
	return &Chain{Segments: []Segment{
		{Joint: Joint{Name: "j1", Kind: KindRotAxis, Axis: r3.Vector{Z: 1}}},
		{
			Joint:  Joint{Name: "j2", Kind: KindRotAxis, Axis: r3.Vector{Z: 1}},
			Origin: spatialmath.NewPoseFromPoint(r3.Vector{X: 1}),
		},
		{
			Joint:  Joint{Name: "tool", Kind: KindFixed},
			Origin: spatialmath.NewPoseFromPoint(r3.Vector{X: 1}),
		},
	}}
}

func TestNumJoints(t *testing.T) {
	c := twoLink()
	test.That(t, c.NumJoints(), test.ShouldEqual, 2)
	test.That(t, c.JointNames(), test.ShouldResemble, []string{"j1", "j2"})
}

func TestForwardKinematics(t *testing.T) {
	c := twoLink()

	pose, err := c.ForwardKinematics([]float64{0, 0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose.Point.X, test.ShouldAlmostEqual, 2)
	test.That(t, pose.Point.Y, test.ShouldAlmostEqual, 0)

	pose, err = c.ForwardKinematics([]float64{math.Pi / 2, 0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose.Point.X, test.ShouldAlmostEqual, 0)
	test.That(t, pose.Point.Y, test.ShouldAlmostEqual, 2)

	pose, err = c.ForwardKinematics([]float64{0, math.Pi / 2})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose.Point.X, test.ShouldAlmostEqual, 1)
	test.That(t, pose.Point.Y, test.ShouldAlmostEqual, 1)

	_, err = c.ForwardKinematics([]float64{0})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestJacobianMatchesFiniteDifference(t *testing.T) {
	c := twoLink()
	solver := NewJacobianSolver(c)
	q := []float64{0.3, 0.7}

	jac, st := solver.JntToJac(q)
	test.That(t, st, test.ShouldEqual, 0)

	const h = 1e-7
	base, err := c.ForwardKinematics(q)
	test.That(t, err, test.ShouldBeNil)
	for i := range q {
		qh := append([]float64(nil), q...)
		qh[i] += h
		bumped, err := c.ForwardKinematics(qh)
		test.That(t, err, test.ShouldBeNil)
		diff := bumped.Point.Sub(base.Point).Mul(1 / h)
		test.That(t, jac.At(0, i), test.ShouldAlmostEqual, diff.X, 1e-5)
		test.That(t, jac.At(1, i), test.ShouldAlmostEqual, diff.Y, 1e-5)
		test.That(t, jac.At(2, i), test.ShouldAlmostEqual, diff.Z, 1e-5)
	}

	// planar revolute joints spin about world Z
	for i := range q {
		test.That(t, jac.At(3, i), test.ShouldAlmostEqual, 0)
		test.That(t, jac.At(4, i), test.ShouldAlmostEqual, 0)
		test.That(t, jac.At(5, i), test.ShouldAlmostEqual, 1)
	}

	_, st = solver.JntToJac([]float64{0.3})
	test.That(t, st, test.ShouldBeLessThan, 0)
}

func TestJointKindMarkers(t *testing.T) {
	test.That(t, Rotational(KindRotAxis), test.ShouldBeTrue)
	test.That(t, Translational(KindTransAxis), test.ShouldBeTrue)
	test.That(t, Rotational(KindTransAxis), test.ShouldBeFalse)
	test.That(t, Joint{Kind: KindFixed}.Movable(), test.ShouldBeFalse)
	test.That(t, Joint{Kind: KindNone}.Movable(), test.ShouldBeFalse)
	test.That(t, Joint{Kind: KindRotAxis}.Movable(), test.ShouldBeTrue)
}
