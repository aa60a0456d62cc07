package snsik

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/viam-labs/sns-ik/spatialmath"
	"github.com/viam-labs/sns-ik/velocity"
)

// nullspaceBiasTask builds the selection Jacobian mapping the named bias
// joints into full joint space: a k x N zero matrix with a unit entry per row
// at the matched joint column, plus the parallel column index list. An
// unknown name fails the whole request; no partial matrix is returned.
func (ik *SNSIK) nullspaceBiasTask(biasNames []string) (*mat.Dense, []int, error) {
	n := len(ik.cfg.Names)
	jacobian := mat.NewDense(len(biasNames), n, nil)
	indices := make([]int, len(biasNames))
	for i, name := range biasNames {
		idx := -1
		for col, joint := range ik.cfg.Names {
			if joint == name {
				idx = col
				break
			}
		}
		if idx < 0 {
			return nil, nil, errors.Wrap(errUnknownBiasJoint, name)
		}
		jacobian.Set(i, idx, 1)
		indices[i] = idx
	}
	return jacobian, indices, nil
}

// buildVelocityTasks assembles the prioritized stack for one velocity solve:
// the 6-dimensional Cartesian task always sits at index 0; the bias task, if
// any, follows as a strictly lower priority nullspace objective.
func buildVelocityTasks(
	q *mat.VecDense,
	desired spatialmath.Twist,
	jacobian *mat.Dense,
	biasJacobian *mat.Dense,
	biasIndices []int,
	biasTarget *mat.VecDense,
	gain, looprate float64,
) []velocity.Task {
	arr := desired.Array()
	tasks := []velocity.Task{{Jacobian: jacobian, Desired: mat.NewVecDense(6, arr[:])}}
	if biasJacobian == nil {
		return tasks
	}
	k := len(biasIndices)
	biasDesired := mat.NewVecDense(k, nil)
	for i := 0; i < k; i++ {
		// proportional pull toward the bias target, expressed as a per-cycle
		// velocity; the solver is free to scale it inside the nullspace
		biasDesired.SetVec(i, gain*(biasTarget.AtVec(i)-q.AtVec(biasIndices[i]))/looprate)
	}
	return append(tasks, velocity.Task{Jacobian: biasJacobian, Desired: biasDesired})
}
