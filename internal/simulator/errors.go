package simulator

import "github.com/pkg/errors"

// Sentinel errors returned by Run and Assemble. Callers classify them with errors.Is.
var (
	// ErrDataUnavailable means no endpoint produced a usable price series.
	ErrDataUnavailable = errors.New("price data unavailable")
	// ErrInsufficientHistory means the series is too short for the long moving average.
	ErrInsufficientHistory = errors.New("insufficient price history")
	// ErrInvalidPrecondition means a non-positive price or investment reached the assembler.
	ErrInvalidPrecondition = errors.New("invalid simulation precondition")
)
