package domain

import "errors"

var (
	// ErrUnprofitableRun is returned when a windowed run does not end with
	// more capital than it started with, or trades too often
	ErrUnprofitableRun = errors.New("the investment for the given period was not profitable")

	ErrInvalidInput        = errors.New("invalid input")
	ErrNoPeriodBoundary    = errors.New("no period boundary between buy and sell windows")
	ErrZeroReturnSum       = errors.New("sum of total returns must be positive")
	ErrInsufficientCapital = errors.New("insufficient capital")
)
