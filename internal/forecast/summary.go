package forecast

import "math"

// Summary holds descriptive statistics of a cleaned series.
type Summary struct {
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// Summarize computes mean, min, max and count. It returns ErrEmptyAfterFilter
// for an empty series.
func Summarize(s Series) (Summary, error) {
	if s.Len() == 0 {
		return Summary{}, ErrEmptyAfterFilter
	}

	sum := 0.0
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, o := range s.Observations {
		sum += o.Price
		lo = math.Min(lo, o.Price)
		hi = math.Max(hi, o.Price)
	}

	return Summary{
		Mean:  sum / float64(s.Len()),
		Min:   lo,
		Max:   hi,
		Count: s.Len(),
	}, nil
}
