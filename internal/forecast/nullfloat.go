package forecast

import (
	"encoding/json"
	"math"
	"strconv"
)

// NullFloat is a float that may be missing. Missing values encode as JSON null.
type NullFloat struct {
	Value float64
	Valid bool
}

// Float returns a valid NullFloat.
func Float(v float64) NullFloat {
	return NullFloat{Value: v, Valid: true}
}

// Missing returns an invalid NullFloat.
func Missing() NullFloat {
	return NullFloat{}
}

// Format renders the value with the given precision, or "" when missing.
func (n NullFloat) Format(prec int) string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Value, 'f', prec, 64)
}

func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid || math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Float(v)
	return nil
}

// validValues returns the present values in order.
func validValues(values []NullFloat) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v.Valid {
			out = append(out, v.Value)
		}
	}
	return out
}

func missingN(n int) []NullFloat {
	return make([]NullFloat, n)
}
