package replay

import (
	"testing"

	"github.com/danielpatrickdp/physio-coach/go-controller/internal/exercise"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/pose"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/pose/posetest"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/repcount"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/session"
)

// helper: frames from literal angles.
func angles(vals ...float64) []Frame {
	frames := make([]Frame, len(vals))
	for i := range vals {
		v := vals[i]
		frames[i] = Frame{Angle: &v}
	}
	return frames
}

func flexion() Config {
	return Config{Exercise: "Shoulder Flexion", Side: exercise.Left}
}

func TestReplay_Actions(t *testing.T) {
	results := Replay(repcount.Initial(), angles(170, 30, 40, 150), flexion())

	want := []Action{ActionHold, ActionEnter, ActionHold, ActionRep}
	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(results))
	}
	for i, w := range want {
		if results[i].Action != w {
			t.Errorf("frame %d: expected %s, got %s", i, w, results[i].Action)
		}
		if results[i].Index != i {
			t.Errorf("frame %d: index %d", i, results[i].Index)
		}
	}
	last := results[3].State
	if last.Reps != 1 || last.Phase != repcount.PhaseResting || last.Angle != 150 {
		t.Errorf("unexpected final state %+v", last)
	}
}

func TestReplay_NoPoseKeepsState(t *testing.T) {
	start := repcount.State{Reps: 3, Phase: repcount.PhaseContracted, Angle: 25}
	results := Replay(start, []Frame{{}, {}}, flexion())

	for i, r := range results {
		if r.Action != ActionNoPose || r.State != start {
			t.Errorf("frame %d: expected untouched state, got %s %+v", i, r.Action, r.State)
		}
	}
}

func TestReplay_UnknownExercise(t *testing.T) {
	tests := []struct {
		name     string
		gate     bool
		wantReps int
	}{
		{"ungated counts", false, 2},
		{"gated holds", true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Exercise: "Wrist Rotation", Side: exercise.Left, GateUnknownExercises: tt.gate}
			sum := Summarize(repcount.Initial(), Replay(repcount.Initial(), angles(0, 0, 0, 0), cfg))
			if sum.Reps != tt.wantReps || sum.Final.Reps != tt.wantReps {
				t.Errorf("expected %d reps, got %+v", tt.wantReps, sum)
			}
		})
	}
}

// Replayed angles must produce the same counter the analyzer would for the
// same frames, including exercises that fall back to the null rule.
func TestReplay_MatchesAnalyzer(t *testing.T) {
	tests := []struct {
		name     string
		exercise string
		gate     bool
		degrees  []float64
	}{
		{"known exercise", "Shoulder Flexion", false, []float64{170, 30, 90, 150, 25}},
		{"unknown exercise", "Shoulder Pendulum", false, []float64{90, 90, 120}},
		{"unknown exercise gated", "Shoulder Pendulum", true, []float64{90, 90, 120}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Exercise: tt.exercise, Side: exercise.Left, GateUnknownExercises: tt.gate}
			results := Replay(repcount.Initial(), angles(tt.degrees...), cfg)

			a := session.NewAnalyzer(nil, session.Config{GateUnknownExercises: tt.gate})
			var prev *repcount.State
			for i, deg := range tt.degrees {
				sk := posetest.WithAngle(pose.LeftHip, pose.LeftShoulder, pose.LeftElbow, deg)
				res, err := a.AnalyzeSkeleton(sk, session.Request{Exercise: tt.exercise, Side: exercise.Left, Previous: prev})
				if err != nil {
					t.Fatalf("frame %d: %v", i, err)
				}
				prev = &res.State

				got := results[i].State
				got.Angle = float64(int(got.Angle*10+0.5)) / 10
				if got != res.State {
					t.Errorf("frame %d (%v deg): replay=%+v analyzer=%+v", i, deg, got, res.State)
				}
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	start := repcount.Initial()
	frames := append(angles(170, 30), Frame{})
	frames = append(frames, angles(150, 20)...)
	sum := Summarize(start, Replay(start, frames, flexion()))

	if sum.TotalFrames != 5 || sum.Reps != 1 || sum.Entries != 2 || sum.NoPose != 1 {
		t.Errorf("unexpected summary %+v", sum)
	}
	if sum.Final.Phase != repcount.PhaseContracted {
		t.Errorf("expected final phase up, got %s", sum.Final.Phase)
	}
}

func TestSummarize_Empty(t *testing.T) {
	start := repcount.State{Reps: 9, Phase: repcount.PhaseResting}
	sum := Summarize(start, nil)
	if sum.TotalFrames != 0 || sum.Final != start {
		t.Errorf("expected start echoed, got %+v", sum)
	}
}
