package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors: reject the call outright, nothing partial is returned
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidAlpha      = fmt.Errorf("%w: alpha must be in (0, 1)", ErrInvalidInput)
	ErrInvalidPower      = fmt.Errorf("%w: power must be in (0, 1)", ErrInvalidInput)
	ErrInvalidProportion = fmt.Errorf("%w: proportion must be in [0, 1]", ErrInvalidInput)
	ErrInvalidSampleSize = fmt.Errorf("%w: sample size must be positive", ErrInvalidInput)
	ErrZeroEffect        = fmt.Errorf("%w: minimum detectable effect must be non-zero", ErrInvalidInput)

	// Data sufficiency errors: a group or segment cannot support inference
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrEmptyGroup       = fmt.Errorf("%w: group has no records", ErrInsufficientData)

	// Degeneracy errors: the statistic is undefined for this table
	ErrDegenerateVariance = errors.New("degenerate variance")
	ErrZeroMargin         = fmt.Errorf("%w: contingency table has a zero margin", ErrDegenerateVariance)
)

// Error constructors with context
func NewInvalidInputError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidInput, field, reason)
}

func NewEmptyGroupError(label string) error {
	return fmt.Errorf("%w: group %q", ErrEmptyGroup, label)
}

func NewConversionBoundsError(conversions, size int) error {
	return fmt.Errorf("%w: conversions %d outside [0, %d]", ErrInvalidInput, conversions, size)
}

func NewSegmentKeyError(key string) error {
	return fmt.Errorf("%w: segment key %q not present in dataset", ErrInvalidInput, key)
}

// Error checking helpers
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

func IsDegenerateVariance(err error) bool {
	return errors.Is(err, ErrDegenerateVariance)
}
