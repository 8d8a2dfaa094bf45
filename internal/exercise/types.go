package exercise

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/physio-coach/go-controller/internal/feedback"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/pose"
)

// #region side
// Side selects which arm an exercise is measured on.
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

// ParseSide accepts "left"/"right" in any case. Empty input yields fallback.
func ParseSide(s string, fallback Side) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return fallback, nil
	case string(Left):
		return Left, nil
	case string(Right):
		return Right, nil
	}
	return "", fmt.Errorf("unknown side %q", s)
}

// #endregion side

// #region category
// Category is a normalized exercise identity.
type Category string

const (
	CategoryShoulderFlexion   Category = "shoulder_flexion"
	CategoryShoulderAbduction Category = "shoulder_abduction"
	CategoryElbowFlexion      Category = "elbow_flexion"
	CategoryUnknown           Category = "unknown"
)

// #endregion category

// #region rule
// Rule is the immutable measurement definition for one category and side:
// the angle is taken at B between A and C, and Contracted/Extended are the
// working and resting extremes in degrees.
type Rule struct {
	Category   Category
	Side       Side
	A, B, C    pose.Landmark
	Contracted float64
	Extended   float64
}

// Known reports whether the rule measures anything. The null rule for
// unrecognized exercises does not.
func (r Rule) Known() bool {
	return r.Category != CategoryUnknown
}

// #endregion rule

// #region evaluation
// Evaluation is the per-frame output of the movement evaluator.
type Evaluation struct {
	Angle      float64
	Contracted float64
	Extended   float64
	Feedback   []feedback.Item
}

// #endregion evaluation
