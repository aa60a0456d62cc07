package snsik

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/viam-labs/sns-ik/chain"
	"github.com/viam-labs/sns-ik/params"
)

// JointType classifies a movable joint after limit resolution.
type JointType int

// The three movable joint classes. Continuous joints rotate freely with no
// meaningful position limit.
const (
	JointTypeRevolute JointType = iota
	JointTypeContinuous
	JointTypePrismatic
)

// Continuous joints carry sentinel position bounds spanning the float32
// range. A joint whose final bounds still span the sentinels is continuous
// regardless of how the source model tagged it.
const (
	sentinelLower = -math.MaxFloat32
	sentinelUpper = math.MaxFloat32
)

// ChainConfig is the resolved dense per-joint limit set for a chain. All
// slices run over the movable joints in chain order and share one length.
type ChainConfig struct {
	Lower        []float64
	Upper        []float64
	Velocity     []float64
	Acceleration []float64
	Names        []string
	Types        []JointType
}

// DescriptionModel supplies description-level joint limit data, e.g. from a
// parsed URDF.
type DescriptionModel interface {
	JointLimits(name string) (chain.JointLimits, bool)
}

// resolveChainConfig folds the layered limit sources into one bound set per
// movable joint: description model, then safety soft limits, then parameter
// overrides. Every layer only tightens position bounds, never loosens them.
func resolveChainConfig(
	kc *chain.Chain,
	model DescriptionModel,
	lookup params.Lookup,
	sourceKey string,
	logger golog.Logger,
) (*ChainConfig, error) {
	cfg := &ChainConfig{}
	for _, seg := range kc.Segments {
		j := seg.Joint
		if !j.Movable() {
			continue
		}
		limits, ok := model.JointLimits(j.Name)
		if !ok {
			return nil, errors.Wrap(errMissingJoint, j.Name)
		}

		var lower, upper, vel, accel float64
		if limits.Continuous {
			lower, upper = sentinelLower, sentinelUpper
		} else {
			lower, upper = limits.Lower, limits.Upper
			if limits.HasSafety {
				lower = math.Max(limits.Lower, limits.SoftLower)
				upper = math.Min(limits.Upper, limits.SoftUpper)
			}
			vel = math.Abs(limits.Velocity)
		}

		if lookup != nil {
			prefix := sourceKey + "_planning/joint_limits/" + j.Name + "/"
			if v, ok := lookup.Float64(prefix + "max_position"); ok {
				upper = math.Min(upper, v)
			}
			if v, ok := lookup.Float64(prefix + "min_position"); ok {
				lower = math.Max(lower, v)
			}
			if v, ok := lookup.Float64(prefix + "max_velocity"); ok {
				if vel > 0 {
					vel = math.Min(vel, math.Abs(v))
				} else {
					vel = math.Abs(v)
				}
			}
			if v, ok := lookup.Float64(prefix + "max_acceleration"); ok {
				accel = math.Abs(v)
			}
		}

		cfg.Lower = append(cfg.Lower, lower)
		cfg.Upper = append(cfg.Upper, upper)
		cfg.Velocity = append(cfg.Velocity, vel)
		cfg.Acceleration = append(cfg.Acceleration, accel)
		cfg.Names = append(cfg.Names, j.Name)
		logger.Debugf("using joint %s lb: %.3f, ub: %.3f, v: %.3f, a: %.3f", j.Name, lower, upper, vel, accel)
	}
	if err := cfg.validate(kc); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks the bound arrays against the chain and classifies every
// movable joint, in the order: per-array count mismatch, zero movable joints,
// unresolved classification. It fills cfg.Types as a side effect.
func (cfg *ChainConfig) validate(kc *chain.Chain) error {
	n := kc.NumJoints()
	var mismatches error
	for _, c := range []struct {
		name string
		got  int
	}{
		{"lower position", len(cfg.Lower)},
		{"upper position", len(cfg.Upper)},
		{"max velocity", len(cfg.Velocity)},
		{"max acceleration", len(cfg.Acceleration)},
		{"name", len(cfg.Names)},
	} {
		if c.got != n {
			mismatches = multierr.Append(mismatches,
				errors.Wrapf(errBoundsMismatch, "%s bounds: %d for %d joints", c.name, c.got, n))
		}
	}
	if mismatches != nil {
		return mismatches
	}
	if n == 0 {
		return errNoJoints
	}

	cfg.Types = cfg.Types[:0]
	for _, seg := range kc.Segments {
		if !seg.Joint.Movable() {
			continue
		}
		k := len(cfg.Types)
		switch {
		case chain.Rotational(seg.Joint.Kind):
			// reclassify as continuous when the final bounds still span the
			// sentinels, whatever the source model said
			if cfg.Upper[k] >= sentinelUpper && cfg.Lower[k] <= sentinelLower {
				cfg.Types = append(cfg.Types, JointTypeContinuous)
			} else {
				cfg.Types = append(cfg.Types, JointTypeRevolute)
			}
		case chain.Translational(seg.Joint.Kind):
			cfg.Types = append(cfg.Types, JointTypePrismatic)
		}
	}
	if len(cfg.Types) != len(cfg.Lower) {
		return errUnclassified
	}
	return nil
}
