package snsik

import (
	"math"
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/viam-labs/sns-ik/chain"
	"github.com/viam-labs/sns-ik/params"
	"github.com/viam-labs/sns-ik/spatialmath"
)

type fakeModel map[string]chain.JointLimits

func (m fakeModel) JointLimits(name string) (chain.JointLimits, bool) {
	limits, ok := m[name]
	return limits, ok
}

// planarChain is an nR arm about Z with unit links and a fixed tool segment.
func planarChain(names ...string) *chain.Chain {
	kc := &chain.Chain{}
	for i, name := range names {
		seg := chain.Segment{Joint: chain.Joint{Name: name, Kind: chain.KindRotAxis, Axis: r3.Vector{Z: 1}}}
		if i > 0 {
			seg.Origin = spatialmath.NewPoseFromPoint(r3.Vector{X: 1})
		}
		kc.Segments = append(kc.Segments, seg)
	}
	kc.Segments = append(kc.Segments, chain.Segment{
		Joint:  chain.Joint{Name: "tool", Kind: chain.KindFixed},
		Origin: spatialmath.NewPoseFromPoint(r3.Vector{X: 1}),
	})
	return kc
}

func TestResolveBasicLimits(t *testing.T) {
	logger := golog.NewTestLogger(t)
	kc := planarChain("j1", "j2")
	model := fakeModel{
		"j1": {Lower: -1.5, Upper: 1.5, Velocity: 2},
		"j2": {Lower: -2, Upper: 2, Velocity: 3},
	}

	cfg, err := resolveChainConfig(kc, model, nil, "robot_description", logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Names, test.ShouldResemble, []string{"j1", "j2"})
	test.That(t, cfg.Lower, test.ShouldResemble, []float64{-1.5, -2})
	test.That(t, cfg.Upper, test.ShouldResemble, []float64{1.5, 2})
	test.That(t, cfg.Velocity, test.ShouldResemble, []float64{2, 3})
	// no acceleration data anywhere: defaults to unlimited (zero)
	test.That(t, cfg.Acceleration, test.ShouldResemble, []float64{0, 0})
	test.That(t, cfg.Types, test.ShouldResemble, []JointType{JointTypeRevolute, JointTypeRevolute})
}

func TestResolveSafetyTightens(t *testing.T) {
	logger := golog.NewTestLogger(t)
	kc := planarChain("j1")
	model := fakeModel{
		"j1": {Lower: -1.5, Upper: 1.5, Velocity: 2, HasSafety: true, SoftLower: -1.2, SoftUpper: 1.2},
	}

	cfg, err := resolveChainConfig(kc, model, nil, "robot_description", logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Lower[0], test.ShouldEqual, -1.2)
	test.That(t, cfg.Upper[0], test.ShouldEqual, 1.2)
}

func TestResolveOverridesOnlyTightenPositions(t *testing.T) {
	logger := golog.NewTestLogger(t)
	kc := planarChain("j1")
	model := fakeModel{"j1": {Lower: -1.5, Upper: 1.5, Velocity: 2}}

	// looser position overrides are ignored, tighter ones win
	lookup := params.MapLookup{
		"robot_description_planning/joint_limits/j1/max_position": 3.0,
		"robot_description_planning/joint_limits/j1/min_position": -0.5,
	}
	cfg, err := resolveChainConfig(kc, model, lookup, "robot_description", logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Upper[0], test.ShouldEqual, 1.5)
	test.That(t, cfg.Lower[0], test.ShouldEqual, -0.5)
}

func TestResolveVelocityAndAccelerationOverrides(t *testing.T) {
	logger := golog.NewTestLogger(t)
	kc := planarChain("j1", "j2")
	model := fakeModel{
		"j1": {Lower: -1, Upper: 1, Velocity: 2},
		"j2": {Lower: -1, Upper: 1, Velocity: 2},
	}

	lookup := params.MapLookup{
		// looser than the model: the model bound stands
		"robot_description_planning/joint_limits/j1/max_velocity": 5.0,
		// tighter than the model: the override wins
		"robot_description_planning/joint_limits/j2/max_velocity":     1.0,
		"robot_description_planning/joint_limits/j2/max_acceleration": 4.0,
	}
	cfg, err := resolveChainConfig(kc, model, lookup, "robot_description", logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Velocity, test.ShouldResemble, []float64{2, 1})
	test.That(t, cfg.Acceleration, test.ShouldResemble, []float64{0, 4})
}

func TestResolveContinuousJoint(t *testing.T) {
	logger := golog.NewTestLogger(t)
	kc := planarChain("j1")
	model := fakeModel{"j1": {Continuous: true}}

	cfg, err := resolveChainConfig(kc, model, nil, "robot_description", logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Lower[0], test.ShouldEqual, -math.MaxFloat32)
	test.That(t, cfg.Upper[0], test.ShouldEqual, math.MaxFloat32)
	// no velocity limit in the model: zero means unlimited downstream
	test.That(t, cfg.Velocity[0], test.ShouldEqual, 0)
	test.That(t, cfg.Types[0], test.ShouldEqual, JointTypeContinuous)

	// a position override on a continuous joint pulls the bounds off the
	// sentinels and reclassifies it as revolute
	lookup := params.MapLookup{
		"robot_description_planning/joint_limits/j1/max_position": 3.0,
		"robot_description_planning/joint_limits/j1/min_position": -3.0,
	}
	cfg, err = resolveChainConfig(kc, model, lookup, "robot_description", logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Types[0], test.ShouldEqual, JointTypeRevolute)
}

func TestResolveMissingJoint(t *testing.T) {
	logger := golog.NewTestLogger(t)
	kc := planarChain("j1", "j2")
	model := fakeModel{"j1": {Lower: -1, Upper: 1, Velocity: 1}}

	_, err := resolveChainConfig(kc, model, nil, "robot_description", logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, errMissingJoint), test.ShouldBeTrue)
}

func TestValidateCounts(t *testing.T) {
	kc := planarChain("j1", "j2")

	cfg := &ChainConfig{
		Lower:        []float64{-1},
		Upper:        []float64{1, 1},
		Velocity:     []float64{1, 1},
		Acceleration: []float64{0, 0},
		Names:        []string{"j1", "j2"},
	}
	err := cfg.validate(kc)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, errBoundsMismatch), test.ShouldBeTrue)

	empty := &chain.Chain{Segments: []chain.Segment{{Joint: chain.Joint{Name: "tool", Kind: chain.KindFixed}}}}
	err = (&ChainConfig{}).validate(empty)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, errNoJoints), test.ShouldBeTrue)

	unknown := planarChain("j1")
	unknown.Segments[0].Joint.Kind = chain.KindNone
	err = (&ChainConfig{}).validate(unknown)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, errNoJoints), test.ShouldBeTrue)
}

func TestValidateUnclassifiedKind(t *testing.T) {
	// a movable joint whose kind is neither rotational nor translational
	// cannot be classified
	kc := planarChain("j1", "j2")
	kc.Segments[1].Joint.Kind = "BogusAxis"
	cfg := &ChainConfig{
		Lower:        []float64{-1, -1},
		Upper:        []float64{1, 1},
		Velocity:     []float64{1, 1},
		Acceleration: []float64{0, 0},
		Names:        []string{"j1", "j2"},
	}
	err := cfg.validate(kc)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, errUnclassified), test.ShouldBeTrue)
}
