package exercise

import (
	"strings"

	"github.com/danielpatrickdp/physio-coach/go-controller/internal/pose"
)

// #region matchers
// matcher maps a lowercase name fragment to a category. Order matters: the
// first matching entry wins, so "elbow flexion" must precede "flexion".
type matcher struct {
	fragment string
	category Category
}

var matchers = []matcher{
	{"elbow flexion", CategoryElbowFlexion},
	{"flexion", CategoryShoulderFlexion},
	{"abduction", CategoryShoulderAbduction},
}

// Classify resolves a free-text exercise name to its category. Matching is
// case-insensitive substring containment; unmatched names are CategoryUnknown.
func Classify(name string) Category {
	lower := strings.ToLower(name)
	for _, m := range matchers {
		if strings.Contains(lower, m.fragment) {
			return m.category
		}
	}
	return CategoryUnknown
}

// #endregion matchers

// #region table
// leftRules holds the left-side definitions. Right-side rules mirror the
// landmarks and keep the thresholds.
var leftRules = map[Category]Rule{
	CategoryShoulderFlexion: {
		Category:   CategoryShoulderFlexion,
		A:          pose.LeftHip,
		B:          pose.LeftShoulder,
		C:          pose.LeftElbow,
		Contracted: 20,
		Extended:   160,
	},
	CategoryShoulderAbduction: {
		Category:   CategoryShoulderAbduction,
		A:          pose.LeftHip,
		B:          pose.LeftShoulder,
		C:          pose.LeftElbow,
		Contracted: 30,
		Extended:   170,
	},
	CategoryElbowFlexion: {
		Category:   CategoryElbowFlexion,
		A:          pose.LeftShoulder,
		B:          pose.LeftElbow,
		C:          pose.LeftWrist,
		Contracted: 30,
		Extended:   170,
	},
}

// Categories lists the measurable categories in match priority order.
func Categories() []Category {
	out := make([]Category, len(matchers))
	for i, m := range matchers {
		out[i] = m.category
	}
	return out
}

// #endregion table

// #region resolve
// RuleFor returns the rule for an already-classified category. Unknown
// categories get the null rule: no landmarks, both thresholds zero.
func RuleFor(c Category, side Side) Rule {
	r, ok := leftRules[c]
	if !ok {
		return Rule{Category: CategoryUnknown, Side: side}
	}
	r.Side = side
	if side == Right {
		r.A, r.B, r.C = r.A.Mirror(), r.B.Mirror(), r.C.Mirror()
	}
	return r
}

// Resolve classifies name and returns the rule for side.
func Resolve(name string, side Side) Rule {
	return RuleFor(Classify(name), side)
}

// #endregion resolve
