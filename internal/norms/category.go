package norms

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Category is an ordered severity classification. Higher values are more severe.
type Category int

const (
	Typical Category = iota
	Moderate
	Severe
)

func (c Category) String() string {
	switch c {
	case Moderate:
		return "Moderate Difficulties"
	case Severe:
		return "Severe Difficulties"
	default:
		return "Typical"
	}
}

// MarshalJSON renders the display label.
func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts the display label.
func (c *Category) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	for _, candidate := range []Category{Typical, Moderate, Severe} {
		if candidate.String() == label {
			*c = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", label)
}

// TScore is a normalised score that may be unavailable when the table has no entry.
type TScore struct {
	Value     int
	Available bool
}

// Unavailable is the sentinel for a missing table entry.
var Unavailable = TScore{}

// String renders the value or "N/A".
func (t TScore) String() string {
	if !t.Available {
		return "N/A"
	}
	return fmt.Sprintf("%d", t.Value)
}

// MarshalJSON renders null when unavailable.
func (t TScore) MarshalJSON() ([]byte, error) {
	if !t.Available {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value)
}

// UnmarshalJSON accepts null or an integer.
func (t *TScore) UnmarshalJSON(data []byte) error {
	var v *int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*t = Unavailable
		return nil
	}
	*t = TScore{Value: *v, Available: true}
	return nil
}
