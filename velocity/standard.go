package velocity

import "gonum.org/v1/gonum/mat"

// Standard is the baseline SNS solver: saturate violating joints one at a
// time, re-solve over the remaining joints, and scale the task velocity when
// no feasible saturation set remains.
type Standard struct {
	snsCore
}

// NewStandard returns a Standard SNS solver for n joints running at the given
// loop period in seconds.
func NewStandard(n int, loopPeriod float64) *Standard {
	return &Standard{newCore(n, loopPeriod)}
}

// GetJointVelocity implements Solver.
func (s *Standard) GetJointVelocity(tasks []Task, q *mat.VecDense) (*mat.VecDense, int) {
	return s.solveStack(tasks, q, solveOpts{})
}
