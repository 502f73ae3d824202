package corpus

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// #region confidence-level

// ConfidenceLevel is an ordinal confidence with an explicit total order.
// Comparisons use the integer rank, never the string form.
type ConfidenceLevel int

const (
	ConfidenceNone ConfidenceLevel = iota
	ConfidenceLow
	ConfidenceMedium
	ConfidenceHigh
)

var confidenceNames = map[ConfidenceLevel]string{
	ConfidenceNone:   "none",
	ConfidenceLow:    "low",
	ConfidenceMedium: "medium",
	ConfidenceHigh:   "high",
}

// String returns the lowercase name of the level.
func (c ConfidenceLevel) String() string {
	if name, ok := confidenceNames[c]; ok {
		return name
	}
	return fmt.Sprintf("confidence(%d)", int(c))
}

// AtLeast reports whether c ranks at or above floor.
func (c ConfidenceLevel) AtLeast(floor ConfidenceLevel) bool {
	return c >= floor
}

// StepDown lowers a known level by one rank. Low stays low and none stays none.
func (c ConfidenceLevel) StepDown() ConfidenceLevel {
	if c <= ConfidenceLow {
		return c
	}
	return c - 1
}

// MinConfidence returns the lowest of the given levels, or none for no input.
func MinConfidence(levels ...ConfidenceLevel) ConfidenceLevel {
	if len(levels) == 0 {
		return ConfidenceNone
	}
	lowest := levels[0]
	for _, l := range levels[1:] {
		if l < lowest {
			lowest = l
		}
	}
	return lowest
}

// ParseConfidenceLevel accepts the lowercase names, case-insensitively.
func ParseConfidenceLevel(s string) (ConfidenceLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ConfidenceNone, nil
	case "low":
		return ConfidenceLow, nil
	case "medium":
		return ConfidenceMedium, nil
	case "high":
		return ConfidenceHigh, nil
	}
	return ConfidenceNone, fmt.Errorf("unknown confidence level %q", s)
}

// MarshalJSON encodes the level as its name.
func (c ConfidenceLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a level name.
func (c *ConfidenceLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("confidence level: %w", err)
	}
	level, err := ParseConfidenceLevel(s)
	if err != nil {
		return err
	}
	*c = level
	return nil
}

// UnmarshalYAML decodes a level name from a YAML scalar.
func (c *ConfidenceLevel) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("confidence level: %w", err)
	}
	level, err := ParseConfidenceLevel(s)
	if err != nil {
		return err
	}
	*c = level
	return nil
}

// MarshalYAML encodes the level as its name.
func (c ConfidenceLevel) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

// #endregion confidence-level
