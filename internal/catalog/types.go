package catalog

import (
	"errors"
	"strings"

	"github.com/danielpatrickdp/physio-coach/go-controller/internal/exercise"
)

// ErrPlanNotFound is returned by GetPlan for an ailment with no plan.
var ErrPlanNotFound = errors.New("exercise plan not found")

// #region plan
// Plan is a prescribed set of exercises for one ailment.
type Plan struct {
	Ailment         string     `json:"ailment"`
	Exercises       []Exercise `json:"exercises"`
	DifficultyLevel string     `json:"difficulty_level"`
	DurationWeeks   int        `json:"duration_weeks"`
}

// Exercise is one plan entry. MinAngle and MaxAngle are display hints for
// the client's range gauge; rep counting uses the exercise rule thresholds.
type Exercise struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	TargetReps  int               `json:"target_reps"`
	Sets        int               `json:"sets"`
	RestSeconds int               `json:"rest_seconds"`
	MinAngle    int               `json:"min_angle"`
	MaxAngle    int               `json:"max_angle"`
	Category    exercise.Category `json:"category"`
}

// #endregion plan

// #region rows
type planRow struct {
	ID              string `db:"id"`
	Ailment         string `db:"ailment"`
	DifficultyLevel string `db:"difficulty_level"`
	DurationWeeks   int    `db:"duration_weeks"`
}

type exerciseRow struct {
	Name        string `db:"name"`
	Description string `db:"description"`
	TargetReps  int    `db:"target_reps"`
	Sets        int    `db:"sets"`
	RestSeconds int    `db:"rest_seconds"`
}

// #endregion rows

// #region range-hints
// RangeHint returns the display range for an exercise name. Matching is by
// lowercase substring, first match wins.
func RangeHint(name string) (minAngle, maxAngle int) {
	switch n := strings.ToLower(name); {
	case strings.Contains(n, "flexion"):
		return 30, 170
	case strings.Contains(n, "abduction"):
		return 40, 170
	case strings.Contains(n, "wrist"):
		return 60, 120
	default:
		return 50, 150
	}
}

func newExercise(r exerciseRow) Exercise {
	lo, hi := RangeHint(r.Name)
	return Exercise{
		Name:        r.Name,
		Description: r.Description,
		TargetReps:  r.TargetReps,
		Sets:        r.Sets,
		RestSeconds: r.RestSeconds,
		MinAngle:    lo,
		MaxAngle:    hi,
		Category:    exercise.Classify(r.Name),
	}
}

// #endregion range-hints
