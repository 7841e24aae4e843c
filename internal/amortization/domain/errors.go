package amortization

import "errors"

var (
	// ErrInvalidLoanTerms is returned when principal or term is not positive, or the rate is negative.
	ErrInvalidLoanTerms = errors.New("amortization: invalid loan terms")
	// ErrRoundingInconsistency is returned when a schedule does not close at exactly zero.
	ErrRoundingInconsistency = errors.New("amortization: rounding inconsistency")
)
