package repcount

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/physio-coach/go-controller/internal/feedback"
)

// #region constants
// HysteresisMargin is the band, in degrees, inside each threshold that must be
// crossed before the phase flips. It keeps jitter near a boundary from
// double-counting reps.
const HysteresisMargin = 15.0

// HoldMessage is emitted when the contracted phase is entered.
const HoldMessage = "Hold contracted position for 1 second..."

// fullScoreReps is the rep count at which AccuracyScore saturates.
const fullScoreReps = 10

// #endregion constants

// #region advance
// Advance applies one frame's angle to prev. The return rule is checked
// before the entry rule; the two need opposite phases so at most one fires.
// Phases other than up/down never transition.
func Advance(prev State, angle, contracted, extended float64) Transition {
	next := prev
	next.Angle = angle

	switch {
	case prev.Phase == PhaseContracted && angle > extended-HysteresisMargin:
		next.Phase = PhaseResting
		next.Reps++
		return Transition{
			Next:      next,
			Completed: true,
			Feedback: []feedback.Item{
				feedback.New(feedback.Encouragement, fmt.Sprintf("Rep %d completed! Slow down the return.", next.Reps)),
			},
		}

	case prev.Phase == PhaseResting && angle < contracted+HysteresisMargin:
		next.Phase = PhaseContracted
		return Transition{
			Next:     next,
			Entered:  true,
			Feedback: []feedback.Item{feedback.New(feedback.Instruction, HoldMessage)},
		}
	}

	return Transition{Next: next}
}

// #endregion advance

// #region accuracy
// AccuracyScore maps a rep count to a 0-100 percentage, saturating at ten
// reps. It says nothing about movement quality.
func AccuracyScore(reps int) float64 {
	if reps <= 0 {
		return 0
	}
	return math.Min(100, float64(reps)/fullScoreReps*100)
}

// #endregion accuracy

// #region smoothing
// EMASmooth blends value into prev with weight alpha. A nil prev returns value
// unchanged. Not applied to rep counting: frames from the browser arrive at
// irregular intervals.
func EMASmooth(value float64, prev *float64, alpha float64) float64 {
	if prev == nil {
		return value
	}
	return alpha*value + (1-alpha)*(*prev)
}

// #endregion smoothing
