// Package snsik solves inverse kinematics for kinematically redundant serial
// manipulators using the saturation-based (SNS) family of velocity solvers.
// The facade resolves per-joint limits from layered sources, owns the active
// velocity/position solver pair, and assembles the prioritized task stack
// (Cartesian task plus optional nullspace posture bias) for every solve.
//
// A facade instance is a single logically-owned resource: one control-loop
// thread owns one instance, and solve calls are never interleaved with
// strategy switches.
package snsik

import (
	"github.com/edaniels/golog"
	"gonum.org/v1/gonum/mat"

	"github.com/viam-labs/sns-ik/chain"
	"github.com/viam-labs/sns-ik/params"
	"github.com/viam-labs/sns-ik/spatialmath"
)

// StatusError is returned when the facade cannot attempt a solve: it was
// never initialized, its inputs are inconsistent, or a collaborator failed
// during setup. Every other status comes from the active solvers unchanged.
const StatusError = -1

const defaultNullspaceGain = 1.0

// ChainModel is a description model that can also extract kinematic chains,
// e.g. *urdf.Model.
type ChainModel interface {
	DescriptionModel
	Chain(base, tip string) (*chain.Chain, error)
}

// SNSIK is the public entry point. Construction failures are logged and
// leave the instance permanently unusable; check Initialized before solving.
type SNSIK struct {
	logger golog.Logger

	chain    *chain.Chain
	cfg      *ChainConfig
	jacobian chain.JacobianSolver

	active activeSolver

	looprate      float64
	eps           float64
	nullspaceGain float64
}

// NewFromModel constructs a solver by extracting the chain between the base
// and tip links of a description model and resolving its joint limits,
// tightened by any overrides found in lookup under the key convention
// "<sourceKey>_planning/joint_limits/<joint>/...". lookup may be nil.
func NewFromModel(
	model ChainModel,
	baseLink, tipLink, sourceKey string,
	lookup params.Lookup,
	looprate, eps float64,
	kind SolveStrategy,
	logger golog.Logger,
) *SNSIK {
	ik := &SNSIK{logger: logger, looprate: looprate, eps: eps, nullspaceGain: defaultNullspaceGain}
	kc, err := model.Chain(baseLink, tipLink)
	if err != nil {
		logger.Errorw("could not find chain between links", "base", baseLink, "tip", tipLink, "error", err)
		return ik
	}
	cfg, err := resolveChainConfig(kc, model, lookup, sourceKey, logger)
	if err != nil {
		logger.Errorw("failed to resolve joint limits for chain", "error", err)
		return ik
	}
	ik.chain = kc
	ik.cfg = cfg
	ik.finishInit(kind)
	return ik
}

// New constructs a solver from an explicit chain and bound arrays. All five
// arrays must cover exactly the chain's movable joints in chain order.
func New(
	kc *chain.Chain,
	lower, upper, maxVelocity, maxAcceleration []float64,
	jointNames []string,
	looprate, eps float64,
	kind SolveStrategy,
	logger golog.Logger,
) *SNSIK {
	ik := &SNSIK{logger: logger, looprate: looprate, eps: eps, nullspaceGain: defaultNullspaceGain}
	cfg := &ChainConfig{
		Lower:        append([]float64(nil), lower...),
		Upper:        append([]float64(nil), upper...),
		Velocity:     append([]float64(nil), maxVelocity...),
		Acceleration: append([]float64(nil), maxAcceleration...),
		Names:        append([]string(nil), jointNames...),
	}
	if err := cfg.validate(kc); err != nil {
		logger.Errorw("failed to initialize solver from chain and limits", "error", err)
		return ik
	}
	ik.chain = kc
	ik.cfg = cfg
	ik.finishInit(kind)
	return ik
}

func (ik *SNSIK) finishInit(kind SolveStrategy) {
	ik.jacobian = chain.NewJacobianSolver(ik.chain)
	if !ik.selectStrategy(kind) {
		ik.logger.Errorf("failed to create the %s velocity and position solvers", kind)
	}
}

// Initialized reports whether construction fully succeeded. Until it has,
// every solve operation returns StatusError without side effects.
func (ik *SNSIK) Initialized() bool {
	return ik.active.initialized
}

// SetVelocitySolveType swaps the active velocity engine and rebuilds the
// position solver around it. Returns false when kind is unrecognized or
// equals the currently active kind; the same-kind refusal is deliberate and
// matches selectStrategy.
func (ik *SNSIK) SetVelocitySolveType(kind SolveStrategy) bool {
	return ik.selectStrategy(kind)
}

// NullspaceGain returns the proportional gain applied to bias tasks.
func (ik *SNSIK) NullspaceGain() float64 {
	return ik.nullspaceGain
}

// SetNullspaceGain adjusts the proportional gain applied to bias tasks.
// Defaults to 1.0.
func (ik *SNSIK) SetNullspaceGain(gain float64) {
	ik.nullspaceGain = gain
}

// JointNames returns the resolved movable joint names in chain order, or nil
// when uninitialized.
func (ik *SNSIK) JointNames() []string {
	if ik.cfg == nil {
		return nil
	}
	return append([]string(nil), ik.cfg.Names...)
}

// CartToJntVel solves for joint velocities realizing the desired twist at
// the given joint configuration. biasTarget and biasNames, when non-empty,
// request a lower-priority nullspace task pulling the named joints toward
// the target values. Statuses below zero are failures; solver statuses pass
// through unchanged.
func (ik *SNSIK) CartToJntVel(
	qIn *mat.VecDense,
	desired spatialmath.Twist,
	biasTarget *mat.VecDense,
	biasNames []string,
) (*mat.VecDense, int) {
	if !ik.Initialized() {
		ik.logger.Error("solver was not properly initialized with a valid chain or limits")
		return nil, StatusError
	}
	jacobian, st := ik.jacobian.JntToJac(vecData(qIn))
	if st < 0 {
		ik.logger.Errorf("jacobian computation failed with status %d", st)
		return nil, StatusError
	}

	var biasJacobian *mat.Dense
	var biasIndices []int
	if biasTarget != nil && biasTarget.Len() > 0 {
		if biasTarget.Len() != len(biasNames) {
			ik.logger.Error(errBiasCount.Error())
			return nil, StatusError
		}
		var err error
		biasJacobian, biasIndices, err = ik.nullspaceBiasTask(biasNames)
		if err != nil {
			ik.logger.Errorw("could not create nullspace bias task", "error", err)
			return nil, StatusError
		}
	}

	tasks := buildVelocityTasks(qIn, desired, jacobian, biasJacobian, biasIndices, biasTarget, ik.nullspaceGain, ik.looprate)
	return ik.active.vel.GetJointVelocity(tasks, qIn)
}

// CartToJnt solves for joint angles reaching the goal pose from the initial
// guess, within the per-component pose tolerance. The optional bias request
// is validated and mapped once, then handed to the position solver for every
// internal iteration.
func (ik *SNSIK) CartToJnt(
	qInit *mat.VecDense,
	goal spatialmath.Pose,
	biasTarget *mat.VecDense,
	biasNames []string,
	tolerance spatialmath.Twist,
) (*mat.VecDense, int) {
	if !ik.Initialized() {
		ik.logger.Error("solver was not properly initialized with a valid chain or limits")
		return nil, StatusError
	}
	if biasTarget != nil && biasTarget.Len() > 0 {
		if biasTarget.Len() != len(biasNames) {
			ik.logger.Error(errBiasCount.Error())
			return nil, StatusError
		}
		biasJacobian, biasIndices, err := ik.nullspaceBiasTask(biasNames)
		if err != nil {
			ik.logger.Errorw("could not create nullspace bias task", "error", err)
			return nil, StatusError
		}
		return ik.active.pos.CartToJntBias(qInit, goal, biasTarget, biasJacobian, biasIndices, ik.nullspaceGain, tolerance)
	}
	return ik.active.pos.CartToJnt(qInit, goal, tolerance)
}

func vecData(v *mat.VecDense) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}
