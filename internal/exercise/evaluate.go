package exercise

import (
	"fmt"

	"github.com/danielpatrickdp/physio-coach/go-controller/internal/feedback"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/pose"
)

// #region bands
// band emits item when match holds for the measured angle. These quality
// bands are tuned separately from the rep transition thresholds in Rule.
type band struct {
	match func(angle float64) bool
	item  feedback.Item
}

var bands = map[Category][]band{
	CategoryShoulderFlexion: {
		{func(a float64) bool { return a > 40 && a < 140 }, feedback.New(feedback.Progress, "Good range of motion")},
		{func(a float64) bool { return a <= 40 }, feedback.New(feedback.Correction, "Try not to bend your elbow")},
	},
	CategoryShoulderAbduction: {
		{func(a float64) bool { return a > 40 && a < 160 }, feedback.New(feedback.Progress, "Maintain controlled movement")},
		{func(a float64) bool { return a <= 40 }, feedback.New(feedback.Correction, "Ensure your arm is straight, raise slightly higher")},
	},
	CategoryElbowFlexion: {
		{func(a float64) bool { return a > 150 }, feedback.New(feedback.Correction, "Bend your elbow more to hit max flexion.")},
		{func(a float64) bool { return a < 50 }, feedback.New(feedback.Encouragement, "Great bend! Now straighten slowly.")},
	},
}

// UnimplementedMessage is the warning attached to unrecognized exercises.
const UnimplementedMessage = "Exercise logic not implemented yet."

// Feedback returns the quality messages for an angle. Mid-range angles may
// produce none.
func Feedback(c Category, angle float64) []feedback.Item {
	if c == CategoryUnknown {
		return []feedback.Item{feedback.New(feedback.Warning, UnimplementedMessage)}
	}
	var out []feedback.Item
	for _, b := range bands[c] {
		if b.match(angle) {
			out = append(out, b.item)
			break
		}
	}
	return out
}

// #endregion bands

// #region evaluate
// Evaluate measures the rule's joint angle on sk and derives feedback.
// The null rule reads no landmarks and reports a fixed angle of 0.
func Evaluate(sk pose.Skeleton, rule Rule) (Evaluation, error) {
	if !rule.Known() {
		return Evaluation{Feedback: Feedback(CategoryUnknown, 0)}, nil
	}

	pts, err := sk.Triple(rule.A, rule.B, rule.C)
	if err != nil {
		return Evaluation{}, fmt.Errorf("evaluate %s/%s: %w", rule.Category, rule.Side, err)
	}

	angle := pose.AngleBetween(pts[0], pts[1], pts[2])
	return Evaluation{
		Angle:      angle,
		Contracted: rule.Contracted,
		Extended:   rule.Extended,
		Feedback:   Feedback(rule.Category, angle),
	}, nil
}

// #endregion evaluate
