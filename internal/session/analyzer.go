package session

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/danielpatrickdp/physio-coach/go-controller/internal/exercise"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/feedback"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/pose"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/repcount"
)

// #region constants
// NoPoseMessage is the warning returned when the detector finds nobody.
const NoPoseMessage = "No pose detected. Please stand in view of camera"

// ErrNoDetector is returned by Analyze on an analyzer built without one.
var ErrNoDetector = errors.New("no pose detector configured")

// #endregion constants

// #region analyzer
// Analyzer composes detection, evaluation, and rep counting into one
// request/response cycle. It keeps no per-session state.
type Analyzer struct {
	detector Detector
	config   Config
}

// NewAnalyzer creates an analyzer around an owned detector. det may be nil
// for callers that only use AnalyzeSkeleton.
func NewAnalyzer(det Detector, config Config) *Analyzer {
	return &Analyzer{detector: det, config: config}
}

// Analyze runs the detector once on frame and evaluates the result.
func (a *Analyzer) Analyze(ctx context.Context, frame []byte, req Request) (Result, error) {
	if a.detector == nil {
		return Result{}, ErrNoDetector
	}
	sk, err := a.detector.Detect(ctx, frame)
	if err != nil {
		return Result{}, fmt.Errorf("detect pose: %w", err)
	}
	return a.AnalyzeSkeleton(sk, req)
}

// AnalyzeSkeleton is the deterministic core: the same skeleton, exercise,
// side, and previous state always produce the same result.
func (a *Analyzer) AnalyzeSkeleton(sk pose.Skeleton, req Request) (Result, error) {
	if sk == nil {
		return noPose(req.Previous), nil
	}

	prev := repcount.OrInitial(req.Previous)
	rule := exercise.Resolve(req.Exercise, req.Side)

	ev, err := exercise.Evaluate(sk, rule)
	if err != nil {
		return Result{}, err
	}

	var tr repcount.Transition
	if !rule.Known() && a.config.GateUnknownExercises {
		next := prev
		next.Angle = ev.Angle
		tr = repcount.Transition{Next: next}
	} else {
		tr = repcount.Advance(prev, ev.Angle, ev.Contracted, ev.Extended)
	}

	items := append(ev.Feedback, tr.Feedback...)
	if items == nil {
		items = []feedback.Item{}
	}

	next := tr.Next
	next.Angle = round(next.Angle, 1)

	return Result{
		Reps:          next.Reps,
		Feedback:      items,
		AccuracyScore: round(repcount.AccuracyScore(next.Reps), 2),
		State:         next,
		Rule:          rule,
		RepCompleted:  tr.Completed,
		Detected:      true,
	}, nil
}

// #endregion analyzer

// #region helpers
// noPose echoes the previous state untouched. No geometry runs.
func noPose(prev *repcount.State) Result {
	state := repcount.Initial()
	if prev != nil {
		state = *prev
	}
	return Result{
		Reps:          state.Reps,
		Feedback:      []feedback.Item{feedback.New(feedback.Warning, NoPoseMessage)},
		AccuracyScore: 0,
		State:         state,
	}
}

// round uses banker's rounding so exact halves go to the even digit.
func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.RoundToEven(v*p) / p
}

// #endregion helpers
