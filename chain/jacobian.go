package chain

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/viam-labs/sns-ik/spatialmath"
)

// JacobianSolver computes the geometric Jacobian of a chain at a given
// configuration. The Jacobian is 6xN: three linear rows followed by three
// angular rows, all in the world frame. A negative status indicates failure;
// callers pass solver statuses through unchanged.
type JacobianSolver interface {
	JntToJac(q []float64) (*mat.Dense, int)
}

// NewJacobianSolver returns a JacobianSolver for the given chain.
func NewJacobianSolver(c *Chain) JacobianSolver {
	return &geometricJacobian{chain: c}
}

type geometricJacobian struct {
	chain *Chain
}

type jointFrame struct {
	axis       r3.Vector
	origin     r3.Vector
	rotational bool
}

func (g *geometricJacobian) JntToJac(q []float64) (*mat.Dense, int) {
	n := g.chain.NumJoints()
	if len(q) != n {
		return nil, -1
	}

	// Walk the chain once, recording each movable joint's world-frame axis
	// and origin at the current configuration.
	frames := make([]jointFrame, 0, n)
	pose := spatialmath.NewZeroPose()
	idx := 0
	for _, s := range g.chain.Segments {
		pose = spatialmath.Compose(pose, s.Origin)
		if !s.Joint.Movable() {
			continue
		}
		frames = append(frames, jointFrame{
			axis:       spatialmath.QuatRotate(pose.Orientation, s.Joint.Axis),
			origin:     pose.Point,
			rotational: Rotational(s.Joint.Kind),
		})
		pose = spatialmath.Compose(pose, s.Joint.motion(q[idx]))
		idx++
	}
	tip := pose.Point

	jac := mat.NewDense(6, n, nil)
	for i, f := range frames {
		var linear, angular r3.Vector
		if f.rotational {
			linear = f.axis.Cross(tip.Sub(f.origin))
			angular = f.axis
		} else {
			linear = f.axis
		}
		jac.Set(0, i, linear.X)
		jac.Set(1, i, linear.Y)
		jac.Set(2, i, linear.Z)
		jac.Set(3, i, angular.X)
		jac.Set(4, i, angular.Y)
		jac.Set(5, i, angular.Z)
	}
	return jac, 0
}
