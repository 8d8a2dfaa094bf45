package replay

import (
	"os"
	"path/filepath"
	"testing"
)

// #region fixture-tests

// TestFixture_Sessions is the regression baseline for the rep counter: if
// thresholds or hysteresis change, the recorded sessions drift.
func TestFixture_Sessions(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "sessions.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if len(f.Cases) == 0 {
		t.Fatal("fixture has no cases")
	}

	for i, out := range Run(f) {
		c := f.Cases[i]
		t.Run(c.Name, func(t *testing.T) {
			if !out.Match {
				t.Errorf("expected reps=%d phase=%s, got reps=%d phase=%s",
					c.ExpectedReps, c.ExpectedPhase, out.Summary.Final.Reps, out.Summary.Final.Phase)
			}
			if out.Summary.TotalFrames != len(c.Angles) {
				t.Errorf("expected %d frames, got %d", len(c.Angles), out.Summary.TotalFrames)
			}
		})
	}
}

func TestFixture_Mismatch(t *testing.T) {
	c := FixtureCase{
		Exercise:      "Shoulder Flexion",
		Side:          "left",
		Angles:        []*float64{ptr(170), ptr(30), ptr(150)},
		ExpectedReps:  2,
		ExpectedPhase: "down",
	}
	if out := RunCase(&c); out.Match {
		t.Errorf("expected mismatch, got %+v", out)
	}
}

func TestLoadFixture_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{"},
		{"missing exercise", `{"cases":[{"side":"left","angles":[1]}]}`},
		{"bad side", `{"cases":[{"exercise":"Elbow Flexion","side":"middle","angles":[1]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFixture(path); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := LoadFixture(filepath.Join(dir, "absent.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func ptr(v float64) *float64 { return &v }

// #endregion fixture-tests
