// Package errdefs classifies the error kinds produced across oaspec: a
// distinct, unexported error type per kind, each satisfying error and
// Cause() error, with an exported Is* predicate that unwraps through
// errors.As.
package errdefs

import (
	"errors"
	"fmt"

	ccerrdefs "github.com/containerd/errdefs"
)

type causer interface {
	Cause() error
}

// errUnsupportedVersion: the loaded or requested spec version is outside
// {1.2, 2.0, 3.0.0}. Fatal at load or migrate boundaries.
type errUnsupportedVersion struct{ err error }

func (e errUnsupportedVersion) Error() string { return e.err.Error() }
func (e errUnsupportedVersion) Cause() error  { return e.err }
func (e errUnsupportedVersion) Unwrap() error { return e.err }

// UnsupportedVersion wraps err as an unsupported-version error.
func UnsupportedVersion(err error) error {
	if err == nil {
		return nil
	}
	return errUnsupportedVersion{err}
}

// UnsupportedVersionf formats a new unsupported-version error.
func UnsupportedVersionf(format string, args ...any) error {
	return UnsupportedVersion(fmt.Errorf(format, args...))
}

// IsUnsupportedVersion reports whether err (or any error it wraps) is an
// unsupported-version error.
func IsUnsupportedVersion(err error) bool {
	var e errUnsupportedVersion
	return errors.As(err, &e)
}

// errSchema: a structural violation encountered during migration (e.g. a
// "$ref" on Items, a non-primitive Items type). Fatal to the migration
// step; surfaces up.
type errSchema struct{ err error }

func (e errSchema) Error() string { return e.err.Error() }
func (e errSchema) Cause() error  { return e.err }
func (e errSchema) Unwrap() error { return e.err }

func Schema(err error) error {
	if err == nil {
		return nil
	}
	return errSchema{err}
}

func Schemaf(format string, args ...any) error {
	return Schema(fmt.Errorf(format, args...))
}

func IsSchema(err error) bool {
	var e errSchema
	return errors.As(err, &e)
}

// ReferenceReason distinguishes the three ways a JSON Reference can be
// rejected.
type ReferenceReason int

const (
	// ReferenceEmpty: "$ref" was the empty string.
	ReferenceEmpty ReferenceReason = iota
	// ReferenceInvalid: "$ref" could not be parsed into (url, pointer).
	ReferenceInvalid
	// ReferenceUnresolved: "$ref" parsed fine but nothing was found at
	// its target.
	ReferenceUnresolved
)

func (r ReferenceReason) String() string {
	switch r {
	case ReferenceEmpty:
		return "empty"
	case ReferenceInvalid:
		return "invalid"
	case ReferenceUnresolved:
		return "unresolved"
	default:
		return "unknown"
	}
}

type errReference struct {
	reason ReferenceReason
	ref    string
	err    error
}

func (e errReference) Error() string {
	if e.err != nil {
		return fmt.Sprintf("reference error (%s) %q: %v", e.reason, e.ref, e.err)
	}
	return fmt.Sprintf("reference error (%s) %q", e.reason, e.ref)
}

func (e errReference) Cause() error  { return e.err }
func (e errReference) Unwrap() error { return e.err }

// Reference wraps err as a reference error of the given reason for ref.
func Reference(reason ReferenceReason, ref string, err error) error {
	return errReference{reason: reason, ref: ref, err: err}
}

// IsReference reports whether err is any reference error.
func IsReference(err error) bool {
	var e errReference
	return errors.As(err, &e)
}

// IsEmptyRef reports whether err is specifically an empty-"$ref" error.
func IsEmptyRef(err error) bool {
	var e errReference
	return errors.As(err, &e) && e.reason == ReferenceEmpty
}

// IsInvalidRef reports whether err is specifically a malformed-"$ref" error.
func IsInvalidRef(err error) bool {
	var e errReference
	return errors.As(err, &e) && e.reason == ReferenceInvalid
}

// IsUnresolvedReference reports whether err is specifically an
// unresolved-"$ref" error.
func IsUnresolvedReference(err error) bool {
	var e errReference
	return errors.As(err, &e) && e.reason == ReferenceUnresolved
}

// errValidation: accumulated structural/semantic findings (see
// package validate). In strict mode a non-empty accumulation is returned
// wrapped with this kind.
type errValidation struct{ err error }

func (e errValidation) Error() string { return e.err.Error() }
func (e errValidation) Cause() error  { return e.err }
func (e errValidation) Unwrap() error { return e.err }

func Validation(err error) error {
	if err == nil {
		return nil
	}
	return errValidation{err}
}

func IsValidation(err error) bool {
	var e errValidation
	return errors.As(err, &e)
}

// errCycle: a schema-inclusion cycle reported by the cycle detector,
// distinct from tolerated reference cycles.
type errCycle struct {
	pointers []string
	err      error
}

func (e errCycle) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("schema inclusion cycle: %v", e.pointers)
}

func (e errCycle) Cause() error  { return e.err }
func (e errCycle) Unwrap() error { return e.err }

// Cycle reports a schema-inclusion cycle along the given chain of pointers.
func Cycle(pointers []string) error {
	return errCycle{pointers: pointers}
}

func IsCycle(err error) bool {
	var e errCycle
	return errors.As(err, &e)
}

// CyclePointers extracts the pointer chain from a cycle error, if any.
func CyclePointers(err error) ([]string, bool) {
	var e errCycle
	if errors.As(err, &e) {
		return e.pointers, true
	}
	return nil, false
}

// errFetch: wraps I/O, network, and decode failures surfaced by package
// fetch. Not retried by the core. When the underlying failure is HTTP-
// status shaped, FromHTTPStatus also tags the error with the matching
// github.com/containerd/errdefs sentinel so callers already integrated
// with a containerd-based toolchain can classify it with their own
// IsNotFound/IsUnavailable/... helpers.
type errFetch struct {
	err    error
	status int
}

func (e errFetch) Error() string { return e.err.Error() }
func (e errFetch) Cause() error  { return e.err }
func (e errFetch) Unwrap() error { return e.err }

// Fetch wraps err as a fetch error.
func Fetch(err error) error {
	if err == nil {
		return nil
	}
	return errFetch{err: err}
}

func IsFetch(err error) bool {
	var e errFetch
	return errors.As(err, &e)
}

// FromHTTPStatus wraps err as a fetch error and additionally composes it
// with the containerd/errdefs sentinel matching status, so it satisfies
// both errdefs.IsFetch and the matching ccerrdefs.Is* predicate.
func FromHTTPStatus(err error, status int) error {
	if err == nil {
		return nil
	}
	tagged := tagWithCCErrdefs(err, status)
	return errFetch{err: tagged, status: status}
}

func tagWithCCErrdefs(err error, status int) error {
	switch {
	case status == 404:
		return fmt.Errorf("%w: %w", err, ccerrdefs.ErrNotFound)
	case status == 403:
		return fmt.Errorf("%w: %w", err, ccerrdefs.ErrPermissionDenied)
	case status == 401:
		return fmt.Errorf("%w: %w", err, ccerrdefs.ErrUnauthenticated)
	case status == 409:
		return fmt.Errorf("%w: %w", err, ccerrdefs.ErrConflict)
	case status == 501:
		return fmt.Errorf("%w: %w", err, ccerrdefs.ErrNotImplemented)
	case status >= 500:
		return fmt.Errorf("%w: %w", err, ccerrdefs.ErrUnavailable)
	case status >= 400:
		return fmt.Errorf("%w: %w", err, ccerrdefs.ErrInvalidArgument)
	default:
		return err
	}
}

// ErrWrongState is returned when an App method is called outside the
// lifecycle state it requires.
var ErrWrongState = errors.New("app: operation not valid in current lifecycle state")

var _ causer = errUnsupportedVersion{}
