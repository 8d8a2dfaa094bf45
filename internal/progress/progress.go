// Package progress serves per-user progress statistics. Sessions are not
// persisted yet, so the numbers are fixed sample data.
package progress

// Day is one bar of the weekly chart.
type Day struct {
	Day      string `json:"day"`
	Reps     int    `json:"reps"`
	Accuracy int    `json:"accuracy"`
}

// Session summarizes one past workout.
type Session struct {
	Date     string `json:"date"`
	Exercise string `json:"exercise"`
	Reps     int    `json:"reps"`
	Accuracy int    `json:"accuracy"`
}

// Report is the progress payload for one user.
type Report struct {
	UserID          string    `json:"user_id"`
	TotalSessions   int       `json:"total_sessions"`
	TotalReps       int       `json:"total_reps"`
	AverageAccuracy float64   `json:"average_accuracy"`
	StreakDays      int       `json:"streak_days"`
	WeeklyData      []Day     `json:"weekly_data"`
	RecentSessions  []Session `json:"recent_sessions"`
}

// Mock returns the sample report for userID.
func Mock(userID string) Report {
	return Report{
		UserID:          userID,
		TotalSessions:   12,
		TotalReps:       450,
		AverageAccuracy: 87.5,
		StreakDays:      5,
		WeeklyData: []Day{
			{"Mon", 60, 85},
			{"Tue", 70, 88},
			{"Wed", 65, 86},
			{"Thu", 75, 90},
			{"Fri", 80, 89},
			{"Sat", 55, 84},
			{"Sun", 45, 82},
		},
		RecentSessions: []Session{
			{Date: "2025-10-01", Exercise: "Shoulder Flexion", Reps: 12, Accuracy: 89},
			{Date: "2025-09-30", Exercise: "Elbow Flexion", Reps: 15, Accuracy: 92},
		},
	}
}
