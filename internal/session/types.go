package session

import (
	"context"

	"github.com/danielpatrickdp/physio-coach/go-controller/internal/exercise"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/feedback"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/pose"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/repcount"
)

// #region detector-interface
// Detector turns one encoded image into a skeleton. A nil skeleton with a nil
// error means no person was found. Implementations own their own
// concurrency story; see detector.Pool.
type Detector interface {
	Detect(ctx context.Context, frame []byte) (pose.Skeleton, error)
}

// #endregion detector-interface

// #region config
// Config holds analyzer policy knobs.
type Config struct {
	// GateUnknownExercises keeps unrecognized exercises out of the rep state
	// machine. When false, the null rule's zero thresholds let the counter
	// flip on every call.
	GateUnknownExercises bool
}

// DefaultConfig preserves the null-rule behavior existing clients see.
func DefaultConfig() Config {
	return Config{GateUnknownExercises: false}
}

// #endregion config

// #region request
// Request is one frame's worth of analysis input.
type Request struct {
	Exercise string
	Side     exercise.Side
	Previous *repcount.State
}

// #endregion request

// #region result
// Result is the full response of one analysis cycle.
type Result struct {
	Reps          int             `json:"reps"`
	Feedback      []feedback.Item `json:"feedback"`
	AccuracyScore float64         `json:"accuracy_score"`
	State         repcount.State  `json:"state"`

	// Not serialized: callers use these for events and logging.
	Rule         exercise.Rule `json:"-"`
	RepCompleted bool          `json:"-"`
	Detected     bool          `json:"-"`
}

// #endregion result
