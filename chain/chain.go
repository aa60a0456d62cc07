// Package chain models serial kinematic chains and computes forward
// kinematics and geometric Jacobians for them.
package chain

import (
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/viam-labs/sns-ik/spatialmath"
)

// Joint kind strings follow the convention used by robot description
// toolchains: rotational kinds contain the marker "Rot", translational kinds
// the marker "Trans".
const (
	KindRotAxis   = "RotAxis"
	KindTransAxis = "TransAxis"
	KindFixed     = "Fixed"
	KindNone      = "None"
)

// Rotational reports whether a joint kind string denotes a rotational joint.
func Rotational(kind string) bool {
	return strings.Contains(kind, "Rot")
}

// Translational reports whether a joint kind string denotes a translational joint.
func Translational(kind string) bool {
	return strings.Contains(kind, "Trans")
}

// Joint is a named axis of motion within a segment. Axis is expressed in the
// joint frame.
type Joint struct {
	Name string
	Kind string
	Axis r3.Vector
}

// Movable reports whether the joint contributes a degree of freedom.
func (j Joint) Movable() bool {
	return j.Kind != KindFixed && j.Kind != KindNone && j.Kind != ""
}

// motion returns the pose displacement produced by the joint at value v.
func (j Joint) motion(v float64) spatialmath.Pose {
	switch {
	case Rotational(j.Kind):
		return spatialmath.NewPoseFromAxisAngle(r3.Vector{}, j.Axis, v)
	case Translational(j.Kind):
		return spatialmath.NewPoseFromPoint(j.Axis.Mul(v))
	}
	return spatialmath.NewZeroPose()
}

// Segment couples a joint with the fixed transform from the parent segment's
// tip to the joint frame. The segment tip coincides with the joint frame
// after the joint motion is applied.
type Segment struct {
	Joint  Joint
	Origin spatialmath.Pose
}

// Chain is an ordered serial chain of segments running from base to tip.
type Chain struct {
	Segments []Segment
}

// NumJoints returns the number of movable joints in the chain.
func (c *Chain) NumJoints() int {
	n := 0
	for _, s := range c.Segments {
		if s.Joint.Movable() {
			n++
		}
	}
	return n
}

// JointNames returns the names of the movable joints in chain order.
func (c *Chain) JointNames() []string {
	names := make([]string, 0, c.NumJoints())
	for _, s := range c.Segments {
		if s.Joint.Movable() {
			names = append(names, s.Joint.Name)
		}
	}
	return names
}

// ForwardKinematics returns the pose of the chain tip at the given joint
// positions.
func (c *Chain) ForwardKinematics(q []float64) (spatialmath.Pose, error) {
	if len(q) != c.NumJoints() {
		return spatialmath.Pose{}, errors.Errorf("got %d joint positions for a chain with %d movable joints", len(q), c.NumJoints())
	}
	pose := spatialmath.NewZeroPose()
	idx := 0
	for _, s := range c.Segments {
		pose = spatialmath.Compose(pose, s.Origin)
		if s.Joint.Movable() {
			pose = spatialmath.Compose(pose, s.Joint.motion(q[idx]))
			idx++
		}
	}
	return pose, nil
}

// JointLimits carries the description-level limit data for a single joint.
type JointLimits struct {
	// Continuous marks a joint that rotates freely with no meaningful
	// position limit.
	Continuous bool

	Lower    float64
	Upper    float64
	Velocity float64

	// Soft limits from a safety controller, valid only when HasSafety is set.
	HasSafety bool
	SoftLower float64
	SoftUpper float64
}
