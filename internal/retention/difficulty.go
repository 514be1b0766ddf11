package retention

import (
	"encoding"
	"encoding/json"
	"fmt"
)

// Difficulty is the user's assessment of how hard a section felt.
type Difficulty int

const (
	VeryEasy Difficulty = iota + 1
	Easy
	Moderate
	Hard
	VeryHard
)

var (
	difficultyNames = [...]string{
		VeryEasy: "VeryEasy", Easy: "Easy", Moderate: "Moderate",
		Hard: "Hard", VeryHard: "VeryHard",
	}
	difficultyByName = map[string]Difficulty{
		"VeryEasy": VeryEasy,
		"Easy":     Easy,
		"Moderate": Moderate,
		"Hard":     Hard,
		"VeryHard": VeryHard,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Difficulty(0)
	_ json.Marshaler           = Difficulty(0)
	_ json.Unmarshaler         = (*Difficulty)(nil)
	_ encoding.TextMarshaler   = Difficulty(0)
	_ encoding.TextUnmarshaler = (*Difficulty)(nil)
)

// IsValid reports whether d is one of the five defined difficulties.
func (d Difficulty) IsValid() bool {
	return d >= VeryEasy && d <= VeryHard
}

// String returns the name of the difficulty ("VeryEasy" through "VeryHard").
// For invalid values it returns "Difficulty(n)".
func (d Difficulty) String() string {
	if d.IsValid() {
		return difficultyNames[d]
	}
	return fmt.Sprintf("Difficulty(%d)", int(d))
}

// Score maps the difficulty to its numeric score in [1, 9].
// Unmapped values score as Moderate — feedback comes from a closed set of
// choices, so anything else is treated as the neutral default.
func (d Difficulty) Score() float64 {
	switch d {
	case VeryEasy:
		return 1
	case Easy:
		return 3
	case Hard:
		return 7
	case VeryHard:
		return 9
	default:
		return 5
	}
}

// repMultiplier is the repetition-rate multiplier: harder material yields
// fewer effective repetitions per minute of practice.
func (d Difficulty) repMultiplier() float64 {
	switch d {
	case VeryEasy:
		return 1.4
	case Easy:
		return 1.2
	case Hard:
		return 0.8
	case VeryHard:
		return 0.6
	default:
		return 1.0
	}
}

// MarshalText implements encoding.TextMarshaler. Invalid values serialize
// as the neutral default rather than failing.
func (d Difficulty) MarshalText() ([]byte, error) {
	if !d.IsValid() {
		d = Moderate
	}
	return []byte(difficultyNames[d]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names fall back
// to Moderate so a stale or hand-edited document still loads.
func (d *Difficulty) UnmarshalText(text []byte) error {
	v, ok := difficultyByName[string(text)]
	if !ok {
		v = Moderate
	}
	*d = v
	return nil
}

// MarshalJSON implements json.Marshaler. Difficulty serializes as a JSON string.
func (d Difficulty) MarshalJSON() ([]byte, error) {
	text, _ := d.MarshalText()
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (d *Difficulty) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*d = Moderate
		return nil
	}
	return d.UnmarshalText([]byte(s))
}
