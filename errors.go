package snsik

import "github.com/pkg/errors"

// Configuration errors are fatal at construction time: the facade stays
// permanently uninitialized and every solve fails fast.
var (
	errBoundsMismatch = errors.New("number of joint bounds does not equal number of joints")
	errNoJoints       = errors.New("requested chain contains zero non-fixed joints, there is no IK to solve")
	errUnclassified   = errors.New("could not determine a joint type for every movable joint")
	errMissingJoint   = errors.New("joint missing from the description model")
)

// Validation errors are recoverable per call and never mutate solver state.
var (
	errUnknownBiasJoint = errors.New("unknown joint name in nullspace bias request")
	errBiasCount        = errors.New("number of joint bias values and names differ in nullspace bias request")
)
