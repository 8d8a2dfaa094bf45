package repcount

import "github.com/danielpatrickdp/physio-coach/go-controller/internal/feedback"

// #region phase
// Phase is the position in the two-phase rep cycle. The wire values match
// what clients already echo back: "down" for resting, "up" for contracted.
type Phase string

const (
	PhaseResting    Phase = "down"
	PhaseContracted Phase = "up"
)

// #endregion phase

// #region state
// State is the only continuity between frames. The service never stores it;
// the client echoes the previous response's state with the next frame.
type State struct {
	Reps  int     `json:"reps"`
	Phase Phase   `json:"stage"`
	Angle float64 `json:"angle"`
}

// Initial returns the state used when the client supplies none.
func Initial() State {
	return State{Reps: 0, Phase: PhaseResting, Angle: 0}
}

// OrInitial dereferences prev, falling back to Initial for nil. A missing
// phase is treated as resting.
func OrInitial(prev *State) State {
	if prev == nil {
		return Initial()
	}
	s := *prev
	if s.Phase == "" {
		s.Phase = PhaseResting
	}
	return s
}

// #endregion state

// #region transition
// Transition is the outcome of one Advance call.
type Transition struct {
	Next      State
	Feedback  []feedback.Item
	Completed bool // a rep was counted this cycle
	Entered   bool // the contracted phase was entered this cycle
}

// #endregion transition
