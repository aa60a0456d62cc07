package velocity

import "gonum.org/v1/gonum/mat"

// defaultScaleMargin is the fraction of each joint's velocity box withheld
// from lower-priority tasks.
const defaultScaleMargin = 0.1

// OptimalScaleMargin is the Optimal SNS variant that additionally withholds a
// margin of the joint velocity box from lower-priority tasks so the primary
// task retains authority near saturation.
type OptimalScaleMargin struct {
	snsCore
	margin float64
}

// NewOptimalScaleMargin returns an OptimalScaleMargin SNS solver for n joints
// running at the given loop period in seconds.
func NewOptimalScaleMargin(n int, loopPeriod float64) *OptimalScaleMargin {
	return &OptimalScaleMargin{snsCore: newCore(n, loopPeriod), margin: defaultScaleMargin}
}

// SetScaleMargin sets the withheld fraction; values outside [0,1) are ignored.
func (o *OptimalScaleMargin) SetScaleMargin(margin float64) {
	if margin >= 0 && margin < 1 {
		o.margin = margin
	}
}

// GetJointVelocity implements Solver.
func (o *OptimalScaleMargin) GetJointVelocity(tasks []Task, q *mat.VecDense) (*mat.VecDense, int) {
	return o.solveStack(tasks, q, solveOpts{optimal: true, scaleMargin: o.margin})
}
