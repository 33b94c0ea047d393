package types

import "fmt"

// IllFormedError signals that rule text could not be parsed against either
// DSL grammar.
type IllFormedError struct {
	Text string
	Err  error
}

func (e *IllFormedError) Error() string {
	return fmt.Sprintf("ill-formed rule text %q: %v", e.Text, e.Err)
}

func (e *IllFormedError) Unwrap() error { return e.Err }

// ReferenceError signals an AttributeReference that does not resolve against
// the capsule table it was resolved against.
type ReferenceError struct {
	Ref AttributeReference
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("dangling attribute reference %s", e.Ref)
}

// NotUnique is a sentinel for a flow rule that cannot be resolved uniquely.
// No function in this module returns it: ResolveFlowRule always picks by
// fixed precedence and reports a miss through its boolean result.
var NotUnique = fmt.Errorf("no unique flow rule could be resolved")

// ForceFailedError wraps a recoverable failure of a single component during
// a propagation run: the driver logs it and continues the batch.
type ForceFailedError struct {
	Component string
	Err       error
}

func (e *ForceFailedError) Error() string {
	return fmt.Sprintf("component %s force-failed: %v", e.Component, e.Err)
}

func (e *ForceFailedError) Unwrap() error { return e.Err }

// Recoverable reports whether the driver may continue past this failure.
func (e *ForceFailedError) Recoverable() bool { return true }

// IllegalCaseError signals a programming error: an invariant the model
// guarantees was violated. It is always fatal.
type IllegalCaseError struct {
	Msg string
}

func (e *IllegalCaseError) Error() string {
	return fmt.Sprintf("illegal case: %s", e.Msg)
}

// AmbiguousOntologyError signals a qualified name that could not be
// resolved to exactly one ontology term.
type AmbiguousOntologyError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguousOntologyError) Error() string {
	return fmt.Sprintf("ambiguous ontology reference %q: candidates %v", e.Name, e.Candidates)
}
