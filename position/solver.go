// Package position implements a Newton-style position-level IK solver layered
// on top of a velocity solver: forward kinematics, pose delta, velocity
// solve, integrate, clamp, until the delta falls within tolerance.
package position

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/viam-labs/sns-ik/chain"
	"github.com/viam-labs/sns-ik/spatialmath"
	"github.com/viam-labs/sns-ik/velocity"
)

// Solver statuses. Statuses from the wrapped velocity solver are returned
// unchanged.
const (
	StatusOK          = 0
	StatusBadInput    = -1
	StatusNotConverge = -3
)

const (
	// integration step per Newton iteration, seconds
	defaultStepPeriod = 0.2
	defaultMaxIter    = 150
)

// Solver converges joint positions toward a Cartesian goal pose by repeated
// velocity solves. It holds a non-owning reference to the velocity solver;
// the facade reconstructs both together whenever the active strategy changes
// so the reference can never dangle.
type Solver struct {
	kc       *chain.Chain
	jacobian chain.JacobianSolver
	vel      velocity.Solver

	lower, upper []float64

	eps     float64
	dt      float64
	maxIter int
}

// NewSolver returns a position solver for the chain, wrapping the given
// velocity solver. The position bound arrays are clamped against after every
// integration step; the velocity solver is expected to run with its own
// position limit handling disabled. eps is the convergence tolerance applied
// to pose delta components not covered by a caller tolerance.
func NewSolver(kc *chain.Chain, vel velocity.Solver, lower, upper []float64, eps float64) *Solver {
	return &Solver{
		kc:       kc,
		jacobian: chain.NewJacobianSolver(kc),
		vel:      vel,
		lower:    append([]float64(nil), lower...),
		upper:    append([]float64(nil), upper...),
		eps:      eps,
		dt:       defaultStepPeriod,
		maxIter:  defaultMaxIter,
	}
}

// SetMaxIterations overrides the iteration budget.
func (s *Solver) SetMaxIterations(iter int) {
	if iter > 0 {
		s.maxIter = iter
	}
}

// CartToJnt solves for joint angles reaching the goal pose from the initial
// guess. tolerance components widen the convergence test per twist component;
// a zero component falls back to the solver eps.
func (s *Solver) CartToJnt(qInit *mat.VecDense, goal spatialmath.Pose, tolerance spatialmath.Twist) (*mat.VecDense, int) {
	return s.solve(qInit, goal, nil, nil, nil, 0, tolerance)
}

// CartToJntBias additionally drives the indexed joints toward biasTarget
// within the nullspace of the pose task. biasJacobian is the selection matrix
// mapping bias rows into full joint space and biasIndices the matched column
// per row; both come pre-validated from the caller.
func (s *Solver) CartToJntBias(
	qInit *mat.VecDense,
	goal spatialmath.Pose,
	biasTarget *mat.VecDense,
	biasJacobian *mat.Dense,
	biasIndices []int,
	gain float64,
	tolerance spatialmath.Twist,
) (*mat.VecDense, int) {
	return s.solve(qInit, goal, biasTarget, biasJacobian, biasIndices, gain, tolerance)
}

func (s *Solver) solve(
	qInit *mat.VecDense,
	goal spatialmath.Pose,
	biasTarget *mat.VecDense,
	biasJacobian *mat.Dense,
	biasIndices []int,
	gain float64,
	tolerance spatialmath.Twist,
) (*mat.VecDense, int) {
	n := s.kc.NumJoints()
	if qInit == nil || qInit.Len() != n {
		return nil, StatusBadInput
	}

	q := mat.VecDenseCopyOf(qInit)
	raw := make([]float64, n)
	for iter := 0; iter < s.maxIter; iter++ {
		for i := 0; i < n; i++ {
			raw[i] = q.AtVec(i)
		}
		cur, err := s.kc.ForwardKinematics(raw)
		if err != nil {
			return nil, StatusBadInput
		}
		delta := spatialmath.PoseDelta(cur, goal)
		if s.converged(delta, tolerance) {
			return q, StatusOK
		}

		jac, st := s.jacobian.JntToJac(raw)
		if st < 0 {
			return nil, st
		}

		// ask for the full remaining displacement over one step
		arr := delta.Scale(1 / s.dt).Array()
		tasks := []velocity.Task{{Jacobian: jac, Desired: mat.NewVecDense(6, arr[:])}}
		if biasJacobian != nil {
			k := len(biasIndices)
			desired := mat.NewVecDense(k, nil)
			for i := 0; i < k; i++ {
				desired.SetVec(i, gain*(biasTarget.AtVec(i)-q.AtVec(biasIndices[i]))/s.dt)
			}
			tasks = append(tasks, velocity.Task{Jacobian: biasJacobian, Desired: desired})
		}

		qdot, st := s.vel.GetJointVelocity(tasks, q)
		if st < 0 {
			return nil, st
		}
		for i := 0; i < n; i++ {
			v := q.AtVec(i) + qdot.AtVec(i)*s.dt
			if len(s.upper) == n && s.upper[i] > s.lower[i] {
				v = math.Min(math.Max(v, s.lower[i]), s.upper[i])
			}
			q.SetVec(i, v)
		}
	}
	return q, StatusNotConverge
}

func (s *Solver) converged(delta spatialmath.Twist, tolerance spatialmath.Twist) bool {
	d, tol := delta.Array(), tolerance.Array()
	for i := range d {
		if math.Abs(d[i]) > math.Max(tol[i], s.eps) {
			return false
		}
	}
	return true
}
