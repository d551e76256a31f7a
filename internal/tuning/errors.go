package tuning

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the resolution failure taxonomy. All of these are
// detected at resolve time; a resolver that returned successfully can feed
// the render path without further error checks.
var (
	ErrCyclicDependency    = errors.New("cyclic dependency")
	ErrUnresolvedReference = errors.New("unresolved reference")
	ErrInvalidRatio        = errors.New("invalid ratio")
)

// CycleError reports a cycle in the variable reference graph.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic dependency: %s", strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCyclicDependency }

// UnresolvedReferenceError reports a definition naming a nonexistent variable.
type UnresolvedReferenceError struct {
	Variable string
	Ref      string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("unresolved reference: variable %q refers to unknown variable %q", e.Variable, e.Ref)
}

func (e *UnresolvedReferenceError) Unwrap() error { return ErrUnresolvedReference }

// InvalidRatioError reports a definition that cannot produce a frequency,
// such as a zero denominator or a non-positive literal.
type InvalidRatioError struct {
	Variable string
	Reason   string
}

func (e *InvalidRatioError) Error() string {
	return fmt.Sprintf("invalid ratio: variable %q: %s", e.Variable, e.Reason)
}

func (e *InvalidRatioError) Unwrap() error { return ErrInvalidRatio }
