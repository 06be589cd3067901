// Package dberrors defines the error taxonomy shared by every layer of the
// storage engine, from the B+Tree up through the HTTP facade.
package dberrors

import "errors"

// Sentinel errors matching the outcome kinds described for facade operations.
// Callers should compare with errors.Is; lower layers wrap these sentinels
// with %w. Filesystem failures in the snapshot layer are folded into
// ErrIOFailure without the underlying os error in the chain.
var (
	ErrNoSuchTable    = errors.New("no_such_table")
	ErrAlreadyExists  = errors.New("already_exists")
	ErrNoSuchKey      = errors.New("no_such_key")
	ErrDuplicateKey   = errors.New("duplicate_key")
	ErrInvalidValue   = errors.New("invalid_value")
	ErrIOFailure      = errors.New("io_failure")
	ErrKeyKindMismatch = errors.New("key_kind_mismatch")
)

// Kind categorizes an error into one of the abstract kinds from the error
// taxonomy, defaulting to ErrIOFailure for anything unrecognized (core
// invariant violations are never wrapped here — they panic instead, per the
// "fatal, not silently corrupt" rule).
func Kind(err error) error {
	switch {
	case errors.Is(err, ErrNoSuchTable):
		return ErrNoSuchTable
	case errors.Is(err, ErrAlreadyExists):
		return ErrAlreadyExists
	case errors.Is(err, ErrNoSuchKey):
		return ErrNoSuchKey
	case errors.Is(err, ErrDuplicateKey):
		return ErrDuplicateKey
	case errors.Is(err, ErrInvalidValue):
		return ErrInvalidValue
	case errors.Is(err, ErrKeyKindMismatch):
		return ErrKeyKindMismatch
	default:
		return ErrIOFailure
	}
}
