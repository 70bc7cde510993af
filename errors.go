package opa

import "errors"

var (
	// ErrShapeMismatch indicates the hypothesis length does not match the
	// data column count, the data is not rectangular, or a grouping vector
	// does not match the row count.
	ErrShapeMismatch = errors.New("opa: shape mismatch")

	// ErrInvalidConfig indicates an invalid configuration value: a negative
	// threshold, a stochastic run with fewer than one replicate, a
	// hypothesis with fewer than two conditions, or a grouping with fewer
	// than two levels.
	ErrInvalidConfig = errors.New("opa: invalid configuration")

	// ErrNoChanceValues indicates a comparison was requested on a model
	// that has not been through AddChanceValues, or whose reference
	// distribution cannot be aligned replicate-by-replicate (the exact
	// method keeps no draw order, so comparisons need stochastic fits
	// with equal replicate counts).
	ErrNoChanceValues = errors.New("opa: model has no aligned replicate distribution")

	// ErrUnknownGroup indicates a group label that does not exist in a
	// grouped fit.
	ErrUnknownGroup = errors.New("opa: unknown group")
)
