package velocity

import "gonum.org/v1/gonum/mat"

// Optimal is the SNS solver variant that searches the explored saturation
// sets for the largest achievable task scale factor instead of settling for
// the first feasible one.
type Optimal struct {
	snsCore
}

// NewOptimal returns an Optimal SNS solver for n joints running at the given
// loop period in seconds.
func NewOptimal(n int, loopPeriod float64) *Optimal {
	return &Optimal{newCore(n, loopPeriod)}
}

// GetJointVelocity implements Solver.
func (o *Optimal) GetJointVelocity(tasks []Task, q *mat.VecDense) (*mat.VecDense, int) {
	return o.solveStack(tasks, q, solveOpts{optimal: true})
}
