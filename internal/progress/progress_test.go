package progress

import "testing"

func TestMock(t *testing.T) {
	r := Mock("patient-42")
	if r.UserID != "patient-42" {
		t.Errorf("expected user id echoed, got %q", r.UserID)
	}
	if r.TotalSessions != 12 || r.TotalReps != 450 || r.AverageAccuracy != 87.5 || r.StreakDays != 5 {
		t.Errorf("unexpected totals %+v", r)
	}
	if len(r.WeeklyData) != 7 || r.WeeklyData[0].Day != "Mon" || r.WeeklyData[6].Day != "Sun" {
		t.Errorf("expected Mon..Sun weekly data, got %+v", r.WeeklyData)
	}
	sum := 0
	for _, d := range r.WeeklyData {
		sum += d.Reps
	}
	if sum != 450 {
		t.Errorf("weekly reps should add up to total, got %d", sum)
	}
	if len(r.RecentSessions) != 2 || r.RecentSessions[0].Exercise != "Shoulder Flexion" {
		t.Errorf("unexpected recent sessions %+v", r.RecentSessions)
	}
}
