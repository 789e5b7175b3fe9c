package recon

import "errors"

// ErrValidation marks malformed input (empty host IP, empty username).
var ErrValidation = errors.New("invalid input")

// ErrAmbiguousSelector is returned when a relation-link selector resolves
// to more than one credential or host and fan-out was not requested.
// Linking then refuses to write rather than silently over-linking the
// full Cartesian product of matches.
var ErrAmbiguousSelector = errors.New("selector matches more than one row")
