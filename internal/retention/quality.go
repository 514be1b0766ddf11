package retention

import (
	"encoding"
	"encoding/json"
	"fmt"
)

// Quality is the user's assessment of how well the practice went.
type Quality int

const (
	Excellent Quality = iota + 1
	Good
	Okay
	Poor
)

var (
	qualityNames = [...]string{
		Excellent: "Excellent", Good: "Good", Okay: "Okay", Poor: "Poor",
	}
	qualityByName = map[string]Quality{
		"Excellent": Excellent,
		"Good":      Good,
		"Okay":      Okay,
		"Poor":      Poor,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Quality(0)
	_ json.Marshaler           = Quality(0)
	_ json.Unmarshaler         = (*Quality)(nil)
	_ encoding.TextMarshaler   = Quality(0)
	_ encoding.TextUnmarshaler = (*Quality)(nil)
)

// IsValid reports whether q is one of the four defined qualities.
func (q Quality) IsValid() bool {
	return q >= Excellent && q <= Poor
}

// String returns the name of the quality ("Excellent" through "Poor").
// For invalid values it returns "Quality(n)".
func (q Quality) String() string {
	if q.IsValid() {
		return qualityNames[q]
	}
	return fmt.Sprintf("Quality(%d)", int(q))
}

// repMultiplier scales effective repetitions by practice quality.
func (q Quality) repMultiplier() float64 {
	switch q {
	case Excellent:
		return 1.2
	case Okay:
		return 0.85
	case Poor:
		return 0.7
	default:
		return 1.0
	}
}

// MarshalText implements encoding.TextMarshaler. Invalid values serialize
// as the neutral default rather than failing.
func (q Quality) MarshalText() ([]byte, error) {
	if !q.IsValid() {
		q = Good
	}
	return []byte(qualityNames[q]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names fall back
// to Good, the neutral default.
func (q *Quality) UnmarshalText(text []byte) error {
	v, ok := qualityByName[string(text)]
	if !ok {
		v = Good
	}
	*q = v
	return nil
}

// MarshalJSON implements json.Marshaler. Quality serializes as a JSON string.
func (q Quality) MarshalJSON() ([]byte, error) {
	text, _ := q.MarshalText()
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (q *Quality) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*q = Good
		return nil
	}
	return q.UnmarshalText([]byte(s))
}
