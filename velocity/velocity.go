// Package velocity implements the family of saturation-based (SNS) velocity
// IK solvers. Each solver resolves a prioritized stack of task-space
// objectives into joint velocities: joints that would exceed their per-cycle
// velocity box are saturated at the boundary and the remaining task effort is
// redistributed among the unsaturated joints, falling back to scaling the
// task velocity when no feasible redistribution exists. Lower-priority tasks
// are satisfied only within the nullspace of higher-priority ones.
package velocity

import (
	"gonum.org/v1/gonum/mat"
)

// Solver statuses. Values at or above StatusOK are success variants; failures
// are negative and passed through to callers unchanged.
const (
	StatusOK         = 0
	StatusBadInput   = -1
	StatusNoSolution = -2
)

// Task is one objective in a prioritized stack: a task Jacobian (rows = task
// dimension, columns = joint count) and the desired task-space velocity.
// Priority is implicit in the task's position within the stack; index 0 is
// the primary task.
type Task struct {
	Jacobian *mat.Dense
	Desired  *mat.VecDense
}

// Solver is the capability interface shared by the five SNS engines.
type Solver interface {
	// SetJointsCapabilities installs the per-joint position, velocity, and
	// acceleration limits. All slices must have length equal to the solver's
	// joint count. An acceleration of 0 disables acceleration shaping for
	// that joint. Resets any per-cycle solver state.
	SetJointsCapabilities(lower, upper, maxVelocity, maxAcceleration []float64) error

	// UsePositionLimits toggles enforcement of position limits inside the
	// velocity solve. Callers that clamp joint positions themselves disable
	// this to avoid saturating twice.
	UsePositionLimits(use bool)

	// GetJointVelocity resolves the task stack at the given configuration,
	// returning the joint velocities and a status.
	GetJointVelocity(tasks []Task, q *mat.VecDense) (*mat.VecDense, int)
}
