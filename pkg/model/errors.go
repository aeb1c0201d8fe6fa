package model

import "fmt"

// ValidationError reports a malformed problem description. Index is
// the offending constraint's position, or -1 when the problem itself
// is at fault.
type ValidationError struct {
	Index  int
	Kind   ConstraintKind
	Reason string
}

func (err *ValidationError) Error() string {
	if err.Index < 0 {
		return fmt.Sprintf("invalid problem: %v", err.Reason)
	}
	return fmt.Sprintf("invalid %v constraint at position %d: %v", err.Kind, err.Index, err.Reason)
}

// EncodingError reports a fault while building a formula or decoding
// a model back into an assignment.
type EncodingError struct {
	Encoder string
	Reason  string
}

func (err *EncodingError) Error() string {
	return fmt.Sprintf("%v encoder: %v", err.Encoder, err.Reason)
}

// BackendError wraps a failure of the underlying SAT backend.
type BackendError struct {
	Solver string
	Err    error
}

func (err *BackendError) Error() string {
	return fmt.Sprintf("%v backend: %v", err.Solver, err.Err)
}

func (err *BackendError) Unwrap() error {
	return err.Err
}

// MismatchError reports a decoded assignment that failed independent
// validation, which means the encoding itself is unsound.
type MismatchError struct {
	Encoder    string
	Assignment Assignment
	Violations []Violation
}

func (err *MismatchError) Error() string {
	return fmt.Sprintf(
		"%v encoder produced invalid assignment %v: %d constraint violations",
		err.Encoder, err.Assignment, len(err.Violations),
	)
}
