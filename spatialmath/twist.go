package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Twist is a 6-component spatial velocity: 3 linear components followed by 3
// angular components, expressed in the world frame.
type Twist struct {
	Linear  r3.Vector
	Angular r3.Vector
}

// NewTwist returns a twist with the given linear and angular components.
func NewTwist(linear, angular r3.Vector) Twist {
	return Twist{Linear: linear, Angular: angular}
}

// Array returns the twist components in Jacobian row order.
func (t Twist) Array() [6]float64 {
	return [6]float64{t.Linear.X, t.Linear.Y, t.Linear.Z, t.Angular.X, t.Angular.Y, t.Angular.Z}
}

// Scale returns the twist with every component multiplied by f.
func (t Twist) Scale(f float64) Twist {
	return Twist{Linear: t.Linear.Mul(f), Angular: t.Angular.Mul(f)}
}

// Within reports whether every component of t is within the corresponding
// component of tol in absolute value.
func (t Twist) Within(tol Twist) bool {
	a, b := t.Array(), tol.Array()
	for i := range a {
		if math.Abs(a[i]) > b[i] {
			return false
		}
	}
	return true
}

// PoseDelta returns the twist that carries the pose from to the pose to over
// a unit time step: a linear displacement plus a world-frame rotation vector.
func PoseDelta(from, to Pose) Twist {
	return Twist{
		Linear:  to.Point.Sub(from.Point),
		Angular: RotationVector(quat.Mul(to.Orientation, quat.Conj(from.Orientation))),
	}
}
