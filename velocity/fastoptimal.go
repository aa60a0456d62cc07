package velocity

import "gonum.org/v1/gonum/mat"

// FastOptimal combines the reduced-system solve of Fast with the
// largest-scale search of Optimal.
type FastOptimal struct {
	snsCore
}

// NewFastOptimal returns a FastOptimal SNS solver for n joints running at the
// given loop period in seconds.
func NewFastOptimal(n int, loopPeriod float64) *FastOptimal {
	return &FastOptimal{newCore(n, loopPeriod)}
}

// GetJointVelocity implements Solver.
func (f *FastOptimal) GetJointVelocity(tasks []Task, q *mat.VecDense) (*mat.VecDense, int) {
	return f.solveStack(tasks, q, solveOpts{optimal: true, reduced: true})
}
