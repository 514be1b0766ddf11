package retention

import (
	"encoding"
	"encoding/json"
	"fmt"
	"math"
)

// Classification is the derived verdict of a practice session.
type Classification int

const (
	TargetReached Classification = iota + 1
	TargetNotReached
	Frustration
)

var (
	classificationNames = [...]string{
		TargetReached: "TargetReached", TargetNotReached: "TargetNotReached",
		Frustration: "Frustration",
	}
	classificationByName = map[string]Classification{
		"TargetReached":    TargetReached,
		"TargetNotReached": TargetNotReached,
		"Frustration":      Frustration,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Classification(0)
	_ encoding.TextMarshaler   = Classification(0)
	_ encoding.TextUnmarshaler = (*Classification)(nil)
)

// IsValid reports whether c is a defined classification.
func (c Classification) IsValid() bool {
	return c >= TargetReached && c <= Frustration
}

// String returns the name of the classification.
// For invalid values it returns "Classification(n)".
func (c Classification) String() string {
	if c.IsValid() {
		return classificationNames[c]
	}
	return fmt.Sprintf("Classification(%d)", int(c))
}

// MarshalText implements encoding.TextMarshaler. Invalid values serialize
// as TargetNotReached, the neutral default.
func (c Classification) MarshalText() ([]byte, error) {
	if !c.IsValid() {
		c = TargetNotReached
	}
	return []byte(classificationNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names fall
// back to TargetNotReached.
func (c *Classification) UnmarshalText(text []byte) error {
	v, ok := classificationByName[string(text)]
	if !ok {
		v = TargetNotReached
	}
	*c = v
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c Classification) MarshalJSON() ([]byte, error) {
	text, _ := c.MarshalText()
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Classification) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*c = TargetNotReached
		return nil
	}
	return c.UnmarshalText([]byte(s))
}

// Feedback is the raw triple collected from the user after a session.
type Feedback struct {
	Difficulty Difficulty `json:"difficulty"`
	Quality    Quality    `json:"quality"`
	Notes      string     `json:"notes,omitempty"`
}

// Outcome is a fully evaluated practice session: the raw feedback plus the
// numbers derived from it.
type Outcome struct {
	Feedback
	Score          float64        `json:"score"`           // difficulty score in [1, 9]
	Classification Classification `json:"classification"`  // derived verdict
	EstimatedReps  int            `json:"estimated_reps"`  // effective repetitions, >= 1
	Minutes        int            `json:"minutes"`         // practiced duration
}

// minutesPerRep is the assumed cost of one effective repetition at
// moderate difficulty and good quality.
const minutesPerRep = 2.0

// Evaluate derives the numeric view of a feedback triple for a session of
// the given duration: the difficulty score, the effective repetition count
// (base repetitions scaled by difficulty and quality multipliers, floored at
// one), and the outcome classification.
func Evaluate(fb Feedback, minutes int) Outcome {
	if minutes < 0 {
		minutes = 0
	}
	base := float64(minutes) / minutesPerRep
	reps := int(math.Round(base * fb.Difficulty.repMultiplier() * fb.Quality.repMultiplier()))
	if reps < 1 {
		reps = 1
	}
	return Outcome{
		Feedback:       fb,
		Score:          fb.Difficulty.Score(),
		Classification: classify(fb),
		EstimatedReps:  reps,
		Minutes:        minutes,
	}
}

// classify maps feedback to a session verdict. A poor session on hard
// material reads as frustration; a good session on manageable material
// reads as the target being reached.
func classify(fb Feedback) Classification {
	if fb.Quality == Poor && (fb.Difficulty == Hard || fb.Difficulty == VeryHard) {
		return Frustration
	}
	hardEnd := fb.Difficulty == Hard || fb.Difficulty == VeryHard
	if (fb.Quality == Excellent || fb.Quality == Good || !fb.Quality.IsValid()) && !hardEnd {
		return TargetReached
	}
	return TargetNotReached
}
