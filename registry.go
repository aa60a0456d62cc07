package snsik

import (
	"github.com/viam-labs/sns-ik/position"
	"github.com/viam-labs/sns-ik/velocity"
)

// SolveStrategy selects which SNS velocity engine the facade runs. Exactly
// one strategy is active at a time.
type SolveStrategy int

// The five interchangeable velocity engines.
const (
	StrategyStandard SolveStrategy = iota
	StrategyOptimal
	StrategyOptimalScaleMargin
	StrategyFast
	StrategyFastOptimal
)

func (s SolveStrategy) String() string {
	switch s {
	case StrategyStandard:
		return "SNS"
	case StrategyOptimal:
		return "optimal SNS"
	case StrategyOptimalScaleMargin:
		return "optimal scale margin SNS"
	case StrategyFast:
		return "fast SNS"
	case StrategyFastOptimal:
		return "fast optimal SNS"
	}
	return "unknown"
}

// activeSolver bundles the velocity engine with the position solver built on
// top of it. The position solver holds a non-owning reference to the engine,
// so the pair is always replaced together; selectStrategy is the sole
// mutator and swaps the whole struct at once.
type activeSolver struct {
	kind        SolveStrategy
	vel         velocity.Solver
	pos         *position.Solver
	initialized bool
}

// selectStrategy instantiates and installs the engine for kind. It refuses
// to reselect the kind that is already active, returning false with no
// mutation; repeated selection of an unchanged kind is a caller error rather
// than a no-op.
func (ik *SNSIK) selectStrategy(kind SolveStrategy) bool {
	if ik.chain == nil || ik.cfg == nil {
		ik.logger.Error("cannot select a velocity solver without a resolved chain")
		return false
	}
	if ik.active.initialized && ik.active.kind == kind {
		return false
	}
	n := ik.chain.NumJoints()

	var vel velocity.Solver
	switch kind {
	case StrategyStandard:
		vel = velocity.NewStandard(n, ik.looprate)
	case StrategyOptimal:
		vel = velocity.NewOptimal(n, ik.looprate)
	case StrategyOptimalScaleMargin:
		vel = velocity.NewOptimalScaleMargin(n, ik.looprate)
	case StrategyFast:
		vel = velocity.NewFast(n, ik.looprate)
	case StrategyFastOptimal:
		vel = velocity.NewFastOptimal(n, ik.looprate)
	default:
		ik.logger.Errorf("unknown velocity solver type requested: %d", kind)
		return false
	}

	if err := vel.SetJointsCapabilities(ik.cfg.Lower, ik.cfg.Upper, ik.cfg.Velocity, ik.cfg.Acceleration); err != nil {
		ik.logger.Errorw("failed to set joint capabilities on velocity solver", "error", err)
		return false
	}
	// position limits are enforced solely by the position solver; leaving
	// them on here would saturate twice
	vel.UsePositionLimits(false)

	ik.active = activeSolver{
		kind:        kind,
		vel:         vel,
		pos:         position.NewSolver(ik.chain, vel, ik.cfg.Lower, ik.cfg.Upper, ik.eps),
		initialized: true,
	}
	ik.logger.Infof("set velocity solver to the %s solver", kind)
	return true
}
