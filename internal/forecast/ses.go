package forecast

import "fmt"

// MinSmoothingObservations is the smallest series Smooth accepts.
const MinSmoothingObservations = 2

// Smooth applies single exponential smoothing:
//
//	s[0] = p[0]
//	s[t] = alpha*p[t] + (1-alpha)*s[t-1]
func Smooth(prices []float64, alpha float64) ([]float64, error) {
	if len(prices) < MinSmoothingObservations {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientDataForSmoothing, len(prices), MinSmoothingObservations)
	}
	if alpha <= 0 || alpha > 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAlpha, alpha)
	}

	level := prices[0]
	fitted := make([]float64, len(prices))
	fitted[0] = level
	for t := 1; t < len(prices); t++ {
		level = alpha*prices[t] + (1-alpha)*level
		fitted[t] = level
	}
	return fitted, nil
}

// ForecastSmoothing repeats the final smoothed level horizon times.
func ForecastSmoothing(fitted []float64, horizon int) []NullFloat {
	if horizon <= 0 {
		return nil
	}
	if len(fitted) == 0 {
		return missingN(horizon)
	}
	out := make([]NullFloat, horizon)
	last := fitted[len(fitted)-1]
	for i := range out {
		out[i] = Float(last)
	}
	return out
}
