package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/physio-coach/go-controller/internal/exercise"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/repcount"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture file.
type Fixture struct {
	Description string        `json:"description"`
	Cases       []FixtureCase `json:"cases"`
}

// FixtureCase is one recorded angle sequence and its expected outcome.
// A null entry in Angles is a frame with no pose.
type FixtureCase struct {
	Name          string          `json:"name"`
	Exercise      string          `json:"exercise"`
	Side          string          `json:"side"`
	Start         *repcount.State `json:"start,omitempty"`
	GateUnknown   bool            `json:"gate_unknown,omitempty"`
	Angles        []*float64      `json:"angles"`
	ExpectedReps  int             `json:"expected_reps"`
	ExpectedPhase repcount.Phase  `json:"expected_phase"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	for i, c := range f.Cases {
		if c.Exercise == "" {
			return nil, fmt.Errorf("fixture %s: case %d has no exercise", path, i)
		}
		if _, err := exercise.ParseSide(c.Side, exercise.Left); err != nil {
			return nil, fmt.Errorf("fixture %s: case %d: %w", path, i, err)
		}
	}
	return &f, nil
}

// Config converts the case to a replay Config. Sides are validated by
// LoadFixture.
func (c *FixtureCase) Config() Config {
	side, _ := exercise.ParseSide(c.Side, exercise.Left)
	return Config{Exercise: c.Exercise, Side: side, GateUnknownExercises: c.GateUnknown}
}

// StartState returns the case's starting state, defaulting to the initial one.
func (c *FixtureCase) StartState() repcount.State {
	return repcount.OrInitial(c.Start)
}

// Frames converts the recorded angles to replay frames.
func (c *FixtureCase) Frames() []Frame {
	frames := make([]Frame, len(c.Angles))
	for i, a := range c.Angles {
		frames[i] = Frame{Angle: a}
	}
	return frames
}

// #endregion fixture-loader

// #region check

// Outcome is the result of running a fixture case.
type Outcome struct {
	Name    string
	Summary Summary
	Match   bool
}

// Run replays every case in f and compares the final state with the
// expectation.
func Run(f *Fixture) []Outcome {
	out := make([]Outcome, len(f.Cases))
	for i := range f.Cases {
		out[i] = RunCase(&f.Cases[i])
	}
	return out
}

// RunCase replays a single case.
func RunCase(c *FixtureCase) Outcome {
	start := c.StartState()
	sum := Summarize(start, Replay(start, c.Frames(), c.Config()))
	return Outcome{
		Name:    c.Name,
		Summary: sum,
		Match:   sum.Final.Reps == c.ExpectedReps && sum.Final.Phase == c.ExpectedPhase,
	}
}

// #endregion check
