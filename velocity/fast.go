package velocity

import "gonum.org/v1/gonum/mat"

// Fast is the SNS solver variant that removes saturated columns from the
// task Jacobian and factorizes the reduced system, rather than masking
// columns and re-factorizing at full size.
type Fast struct {
	snsCore
}

// NewFast returns a Fast SNS solver for n joints running at the given loop
// period in seconds.
func NewFast(n int, loopPeriod float64) *Fast {
	return &Fast{newCore(n, loopPeriod)}
}

// GetJointVelocity implements Solver.
func (f *Fast) GetJointVelocity(tasks []Task, q *mat.VecDense) (*mat.VecDense, int) {
	return f.solveStack(tasks, q, solveOpts{reduced: true})
}
