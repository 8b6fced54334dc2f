package domain

import (
	"encoding/json"
	"strconv"
)

// UnlimitedMarker is how an unlimited quantity is rendered to clients.
const UnlimitedMarker = "Unlimited"

// unlimitedSentinel is the stored representation of an uncapped allowance.
const unlimitedSentinel = -1

// Quantity is a package allowance: either a nonnegative limit or Unlimited.
// Stored values <= 0 are read as Unlimited so -1 never reaches arithmetic.
type Quantity struct {
	limit     float64
	unlimited bool
}

// Limited returns a capped quantity. Negative values are clamped to zero.
func Limited(n float64) Quantity {
	if n < 0 {
		n = 0
	}
	return Quantity{limit: n}
}

// Unlimited returns an uncapped quantity.
func Unlimited() Quantity {
	return Quantity{unlimited: true}
}

// QuantityFromLimit converts a stored limit column into a Quantity.
func QuantityFromLimit(v int64) Quantity {
	if v <= 0 {
		return Unlimited()
	}
	return Limited(float64(v))
}

// IsUnlimited reports whether the quantity has no cap.
func (q Quantity) IsUnlimited() bool { return q.unlimited }

// Value returns the cap and false when unlimited.
func (q Quantity) Value() (float64, bool) {
	if q.unlimited {
		return 0, false
	}
	return q.limit, true
}

// StorageValue returns the column value, using the -1 sentinel for Unlimited.
func (q Quantity) StorageValue() int64 {
	if q.unlimited {
		return unlimitedSentinel
	}
	return int64(q.limit)
}

// Remaining returns limit-used clamped at zero, or Unlimited.
func (q Quantity) Remaining(used float64) Quantity {
	if q.unlimited {
		return q
	}
	return Limited(q.limit - used)
}

// UsedPercent returns used/limit*100, or 0 when the quantity is unlimited.
func (q Quantity) UsedPercent(used float64) Percent {
	if q.unlimited || q.limit <= 0 {
		return 0
	}
	return Percent(used / q.limit * 100)
}

// MarshalJSON renders a number or the Unlimited marker.
func (q Quantity) MarshalJSON() ([]byte, error) {
	if q.unlimited {
		return json.Marshal(UnlimitedMarker)
	}
	return json.Marshal(q.limit)
}

// UnmarshalJSON accepts a number (<= 0 meaning unlimited) or the Unlimited marker.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	var marker string
	if err := json.Unmarshal(data, &marker); err == nil {
		if marker == UnlimitedMarker {
			*q = Unlimited()
			return nil
		}
		n, err := strconv.ParseFloat(marker, 64)
		if err != nil {
			return err
		}
		*q = fromFloat(n)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*q = fromFloat(n)
	return nil
}

func fromFloat(n float64) Quantity {
	if n <= 0 {
		return Unlimited()
	}
	return Limited(n)
}

// Percent is a percentage rendered with two decimals.
type Percent float64

// String formats the percentage with two decimals.
func (p Percent) String() string {
	return strconv.FormatFloat(float64(p), 'f', 2, 64)
}

// Rounded returns the value as rendered, so comparisons agree with what clients see.
func (p Percent) Rounded() float64 {
	v, err := strconv.ParseFloat(p.String(), 64)
	if err != nil {
		return float64(p)
	}
	return v
}

// MarshalJSON renders the percentage as a fixed two-decimal string.
func (p Percent) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}
