package catalog

// Builtin returns the plans seeded into every new catalog, in display order.
func Builtin() []Plan {
	return []Plan{
		{
			Ailment: "shoulder injury",
			Exercises: []Exercise{
				{Name: "Shoulder Flexion", Description: "Raise your arm forward and up", TargetReps: 12, Sets: 3, RestSeconds: 30},
				{Name: "Shoulder Abduction", Description: "Raise your arm out to the side", TargetReps: 12, Sets: 3, RestSeconds: 30},
				{Name: "Shoulder Pendulum", Description: "Gently swing your arm in small circles", TargetReps: 10, Sets: 3, RestSeconds: 30},
			},
			DifficultyLevel: "beginner",
			DurationWeeks:   6,
		},
		{
			Ailment: "elbow injury",
			Exercises: []Exercise{
				{Name: "Elbow Flexion", Description: "Bend your elbow bringing hand toward shoulder", TargetReps: 15, Sets: 3, RestSeconds: 30},
				{Name: "Elbow Extension", Description: "Straighten your elbow completely", TargetReps: 15, Sets: 3, RestSeconds: 30},
				{Name: "Wrist Rotation", Description: "Rotate your wrist palm up and down", TargetReps: 12, Sets: 3, RestSeconds: 30},
			},
			DifficultyLevel: "beginner",
			DurationWeeks:   4,
		},
		{
			Ailment: "wrist injury",
			Exercises: []Exercise{
				{Name: "Wrist Flexion", Description: "Bend your wrist forward and back", TargetReps: 15, Sets: 3, RestSeconds: 30},
				{Name: "Wrist Extension", Description: "Extend your wrist upward", TargetReps: 15, Sets: 3, RestSeconds: 30},
				{Name: "Wrist Circles", Description: "Make circular motions with your wrist", TargetReps: 10, Sets: 3, RestSeconds: 30},
			},
			DifficultyLevel: "beginner",
			DurationWeeks:   3,
		},
	}
}
