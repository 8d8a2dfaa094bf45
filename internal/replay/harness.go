// Package replay runs recorded angle sequences through the rep state machine
// without a detector, so threshold or hysteresis changes can be checked
// against known sessions.
package replay

import (
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/exercise"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/repcount"
)

// #region types
// Frame is one recorded observation. A nil Angle means no pose was found.
type Frame struct {
	Angle *float64
}

// Config controls how a sequence is replayed.
type Config struct {
	Exercise string
	Side     exercise.Side
	// GateUnknownExercises stops unknown exercises from counting reps.
	GateUnknownExercises bool
}

// Action names what happened on one frame.
type Action string

const (
	ActionRep    Action = "rep"
	ActionEnter  Action = "enter"
	ActionHold   Action = "hold"
	ActionNoPose Action = "no_pose"
	ActionGated  Action = "gated"
)

// Result is the outcome of replaying one frame.
type Result struct {
	Index  int
	Action Action
	State  repcount.State
}

// Summary aggregates a replay run.
type Summary struct {
	TotalFrames int
	Reps        int
	Entries     int
	NoPose      int
	Final       repcount.State
}

// #endregion types

// #region replay
// Replay advances start through frames using the thresholds of the
// configured exercise. Recorded angles of unknown exercises are replaced by
// 0, matching the analyzer. It is deterministic and touches no I/O.
func Replay(start repcount.State, frames []Frame, cfg Config) []Result {
	rule := exercise.Resolve(cfg.Exercise, cfg.Side)
	gated := !rule.Known() && cfg.GateUnknownExercises

	current := start
	results := make([]Result, 0, len(frames))
	for i, f := range frames {
		if f.Angle == nil {
			results = append(results, Result{Index: i, Action: ActionNoPose, State: current})
			continue
		}
		// the null rule reads no landmarks, so the live analyzer sees 0
		angle := *f.Angle
		if !rule.Known() {
			angle = 0
		}
		if gated {
			current.Angle = angle
			results = append(results, Result{Index: i, Action: ActionGated, State: current})
			continue
		}

		tr := repcount.Advance(current, angle, rule.Contracted, rule.Extended)
		current = tr.Next

		action := ActionHold
		switch {
		case tr.Completed:
			action = ActionRep
		case tr.Entered:
			action = ActionEnter
		}
		results = append(results, Result{Index: i, Action: action, State: current})
	}
	return results
}

// Summarize computes aggregate stats from replay results.
func Summarize(start repcount.State, results []Result) Summary {
	s := Summary{TotalFrames: len(results), Final: start}
	for _, r := range results {
		switch r.Action {
		case ActionRep:
			s.Reps++
		case ActionEnter:
			s.Entries++
		case ActionNoPose:
			s.NoPose++
		}
		s.Final = r.State
	}
	return s
}

// #endregion replay
