package rco

import "errors"

// Sentinel errors for the rco package.
// Use errors.Is to check: errors.Is(err, rco.ErrEmptySlice)
var (
	// ErrEmptySlice is returned when a rate's denominator slice matches no
	// examples. The rate is undefined in that case and the caller must
	// guarantee non-empty subsets before training.
	ErrEmptySlice = errors.New("rco: rate denominator slice is empty")

	// ErrShapeMismatch is returned when a problem's true and proxy
	// constraint vectors differ in length. It indicates a malformed custom
	// problem definition and is fatal.
	ErrShapeMismatch = errors.New("rco: true and proxy constraint vectors differ in shape")

	// ErrLengthMismatch is returned when a prediction vector or mask does
	// not have one entry per dataset example.
	ErrLengthMismatch = errors.New("rco: length does not match dataset size")
)
