package forecast

import "errors"

var (
	// ErrEmptyAfterFilter means no observation survived the price floor.
	ErrEmptyAfterFilter = errors.New("no observations left after price filter")
	// ErrInsufficientDataForSmoothing means fewer than two observations remain.
	ErrInsufficientDataForSmoothing = errors.New("not enough observations for exponential smoothing")
	// ErrInsufficientDataForMovingAverage means no trailing window could be filled.
	ErrInsufficientDataForMovingAverage = errors.New("not enough observations for moving average")

	ErrInvalidHorizon = errors.New("invalid forecast horizon")
	ErrInvalidAlpha   = errors.New("invalid smoothing factor")
	ErrUnknownColumn  = errors.New("unknown price column")
)
