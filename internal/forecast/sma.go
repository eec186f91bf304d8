package forecast

import "fmt"

// DefaultWindow is the trailing window of the moving average.
const DefaultWindow = 30

// MovingAverage returns the trailing simple moving average aligned with
// prices. Position i holds the mean of prices[i-window+1..i] and is missing
// until a full window is available.
func MovingAverage(prices []float64, window int) []NullFloat {
	fitted := missingN(len(prices))
	if window <= 0 {
		return fitted
	}
	for i := window - 1; i < len(prices); i++ {
		fitted[i] = Float(mean(prices[i-window+1 : i+1]))
	}
	return fitted
}

// ForecastMovingAverage projects the fitted moving average forward by
// horizon steps. The buffer is seeded with the last window fitted values;
// each step appends the mean of the buffer's last window values. With no
// fitted values every step is missing and ErrInsufficientDataForMovingAverage
// is returned alongside the placeholders.
func ForecastMovingAverage(fitted []NullFloat, window, horizon int) ([]NullFloat, error) {
	if horizon <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHorizon, horizon)
	}

	history := validValues(fitted)
	if len(history) == 0 || window <= 0 {
		return missingN(horizon), ErrInsufficientDataForMovingAverage
	}

	buf := make([]float64, 0, window+horizon)
	buf = append(buf, tail(history, window)...)

	out := make([]NullFloat, horizon)
	for i := range out {
		next := mean(tail(buf, window))
		buf = append(buf, next)
		out[i] = Float(next)
	}
	return out, nil
}

// tail returns the last n values, or all of them when fewer exist.
func tail(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
