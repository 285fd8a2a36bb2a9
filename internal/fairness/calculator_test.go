package fairness

import (
	"math"
	"testing"
	"time"

	"github.com/evenly-app/evenly/internal/model"
)

func adult(id int64, budget int) model.Person {
	return model.Person{ID: id, Role: model.RoleAdult, WeeklyTimeBudget: budget}
}

// Monday 2026-03-02.
var monday = time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

func TestAssignmentPoints(t *testing.T) {
	cases := []struct {
		name     string
		duration int
		diff     int
		coopRole string
		want     int
	}{
		{"light", 30, 1, "", 30},
		{"medium", 30, 2, "", 39},
		{"hard", 30, 3, "", 48},
		{"assist halves", 30, 2, model.CoopRoleAssist, 20},
		{"unknown difficulty falls back to light", 30, 0, "", 30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := Assignment{DurationMinutes: tc.duration, Difficulty: tc.diff, CoopRole: tc.coopRole}
			if got := a.Points(); got != tc.want {
				t.Errorf("points = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestBuckets(t *testing.T) {
	people := []model.Person{adult(1, 100)}
	assignments := []Assignment{
		{OccurrenceID: 1, PersonID: 1, Status: model.StatusScheduled, Date: monday, DurationMinutes: 30, Difficulty: 3}, // 48 pts, hard
		{OccurrenceID: 2, PersonID: 1, Status: model.StatusScheduled, Date: monday, DurationMinutes: 20, Difficulty: 1}, // 20 pts, medium
		{OccurrenceID: 3, PersonID: 1, Status: model.StatusScheduled, Date: monday, DurationMinutes: 10, Difficulty: 1}, // 10 pts, light
		{OccurrenceID: 4, PersonID: 1, Status: model.StatusScheduled, Date: monday, DurationMinutes: 35, Difficulty: 1}, // 35 pts, medium (boundary)
	}

	stats := ComputeSplit(assignments, people)
	st := stats[1]
	if st.Hard != 1 {
		t.Errorf("hard = %d, want 1", st.Hard)
	}
	if st.Medium != 2 {
		t.Errorf("medium = %d, want 2", st.Medium)
	}
	if st.Light != 1 {
		t.Errorf("light = %d, want 1", st.Light)
	}
	if st.Minutes != 95 {
		t.Errorf("minutes = %d, want 95", st.Minutes)
	}
}

func TestOnlyScheduledCounts(t *testing.T) {
	people := []model.Person{adult(1, 100)}
	assignments := []Assignment{
		{OccurrenceID: 1, PersonID: 1, Status: model.StatusScheduled, Date: monday, DurationMinutes: 30, Difficulty: 1},
		{OccurrenceID: 2, PersonID: 1, Status: model.StatusDone, Date: monday, DurationMinutes: 30, Difficulty: 1},
		{OccurrenceID: 3, PersonID: 1, Status: model.StatusBacklog, Date: monday, DurationMinutes: 30, Difficulty: 1},
	}

	stats := ComputeSplit(assignments, people)
	if stats[1].Points != 30 {
		t.Errorf("points = %d, want 30", stats[1].Points)
	}
}

func TestChildrenExcluded(t *testing.T) {
	people := []model.Person{
		adult(1, 100),
		{ID: 2, Role: model.RoleChild},
	}
	assignments := []Assignment{
		{OccurrenceID: 1, PersonID: 2, Status: model.StatusScheduled, Date: monday, DurationMinutes: 30, Difficulty: 1},
	}

	stats := ComputeSplit(assignments, people)
	if _, ok := stats[2]; ok {
		t.Error("child should not accumulate stats")
	}
	res := ComputeFairness(stats, people, DefaultConfig())
	if _, ok := res.Shares[2]; ok {
		t.Error("child should not appear in shares")
	}
}

func TestTargetSharesSumToOne(t *testing.T) {
	people := []model.Person{adult(1, 300), adult(2, 200), adult(3, 100)}
	res := ComputeFairness(ComputeSplit(nil, people), people, DefaultConfig())

	sum := 0.0
	for _, share := range res.Shares {
		sum += share.TargetShare
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("sum of target shares = %f, want 1", sum)
	}
	if got := res.Shares[1].TargetShare; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("target share = %f, want 0.5", got)
	}
}

func TestZeroBudgetsEqualSplit(t *testing.T) {
	people := []model.Person{adult(1, 0), adult(2, 0)}
	res := ComputeFairness(ComputeSplit(nil, people), people, DefaultConfig())

	for id, share := range res.Shares {
		if math.Abs(share.TargetShare-0.5) > 1e-9 {
			t.Errorf("person %d target share = %f, want 0.5", id, share.TargetShare)
		}
	}
}

func TestZeroAssignments(t *testing.T) {
	people := []model.Person{adult(1, 300), adult(2, 200)}
	res := ComputeFairness(ComputeSplit(nil, people), people, DefaultConfig())

	if res.Score != 100 {
		t.Errorf("score = %f, want 100", res.Score)
	}
	for id, share := range res.Shares {
		if share.ActualShare != 0 || share.DeltaShare != 0 {
			t.Errorf("person %d: actual=%f delta=%f, want zeros", id, share.ActualShare, share.DeltaShare)
		}
	}
	for id, n := range res.EveningsOverCap {
		if n != 0 {
			t.Errorf("evenings_over_cap[%d] = %d, want 0", id, n)
		}
	}
	for id, n := range res.StackingViolations {
		if n != 0 {
			t.Errorf("stacking_violations[%d] = %d, want 0", id, n)
		}
	}
	for id, n := range res.DislikedAssignments {
		if n != 0 {
			t.Errorf("disliked_assignments[%d] = %d, want 0", id, n)
		}
	}
}

func TestNoAdults(t *testing.T) {
	people := []model.Person{{ID: 1, Role: model.RoleChild}}
	res := ComputeFairness(ComputeSplit(nil, people), people, DefaultConfig())
	if res.Score != 100 {
		t.Errorf("score = %f, want 100", res.Score)
	}
	if len(res.Shares) != 0 {
		t.Errorf("shares = %d entries, want 0", len(res.Shares))
	}
}

func TestBalancedScore(t *testing.T) {
	people := []model.Person{adult(1, 200), adult(2, 200)}
	assignments := []Assignment{
		{OccurrenceID: 1, PersonID: 1, Status: model.StatusScheduled, Date: monday, DurationMinutes: 60, Difficulty: 1},
		{OccurrenceID: 2, PersonID: 2, Status: model.StatusScheduled, Date: monday, DurationMinutes: 60, Difficulty: 1},
	}
	res := ComputeFairness(ComputeSplit(assignments, people), people, DefaultConfig())
	if math.Abs(res.Score-100) > 1e-9 {
		t.Errorf("score = %f, want 100", res.Score)
	}
}

func TestImbalancedScore(t *testing.T) {
	people := []model.Person{adult(1, 200), adult(2, 200)}
	assignments := []Assignment{
		{OccurrenceID: 1, PersonID: 1, Status: model.StatusScheduled, Date: monday, DurationMinutes: 80, Difficulty: 1},
		{OccurrenceID: 2, PersonID: 2, Status: model.StatusScheduled, Date: monday, DurationMinutes: 20, Difficulty: 1},
	}
	res := ComputeFairness(ComputeSplit(assignments, people), people, DefaultConfig())
	// Actual shares 0.8/0.2 vs targets 0.5/0.5 => score 100 - 100*0.6 = 40.
	if math.Abs(res.Score-40) > 1e-9 {
		t.Errorf("score = %f, want 40", res.Score)
	}
	if delta := res.Shares[1].DeltaShare; math.Abs(delta-0.3) > 1e-9 {
		t.Errorf("delta share = %f, want 0.3", delta)
	}
}

func TestScoreFloor(t *testing.T) {
	if got := ScoreFromDeltas(1.5); got != 0 {
		t.Errorf("score = %f, want 0", got)
	}
	if got := ScoreFromDeltas(-0.1); got != 100 {
		t.Errorf("score = %f, want 100", got)
	}
}

func TestWeekendExcludedFromEvenings(t *testing.T) {
	people := []model.Person{adult(1, 100)}
	saturday := time.Date(2026, 3, 7, 18, 0, 0, 0, time.UTC)
	assignments := []Assignment{
		{OccurrenceID: 1, PersonID: 1, Status: model.StatusScheduled, Date: saturday, DurationMinutes: 60, Difficulty: 1},
	}

	stats := ComputeSplit(assignments, people)
	st := stats[1]
	if st.Points != 60 {
		t.Errorf("points = %d, want 60 (weekend still counts toward totals)", st.Points)
	}
	for slot, pts := range st.EveningPoints {
		if pts != 0 {
			t.Errorf("evening slot %d = %d, want 0", slot, pts)
		}
	}
}

func TestEveningsOverCapAndStacking(t *testing.T) {
	people := []model.Person{adult(1, 100)}
	tuesday := time.Date(2026, 3, 3, 18, 0, 0, 0, time.UTC)
	assignments := []Assignment{
		// Three Monday assignments: 3x15 = 45 points > cap of 25, and a stacking violation.
		{OccurrenceID: 1, PersonID: 1, Status: model.StatusScheduled, Date: monday, DurationMinutes: 15, Difficulty: 1},
		{OccurrenceID: 2, PersonID: 1, Status: model.StatusScheduled, Date: monday, DurationMinutes: 15, Difficulty: 1},
		{OccurrenceID: 3, PersonID: 1, Status: model.StatusScheduled, Date: monday, DurationMinutes: 15, Difficulty: 1},
		// A quiet Tuesday.
		{OccurrenceID: 4, PersonID: 1, Status: model.StatusScheduled, Date: tuesday, DurationMinutes: 10, Difficulty: 1},
	}

	res := ComputeFairness(ComputeSplit(assignments, people), people, DefaultConfig())
	if res.EveningsOverCap[1] != 1 {
		t.Errorf("evenings_over_cap = %d, want 1", res.EveningsOverCap[1])
	}
	if res.StackingViolations[1] != 1 {
		t.Errorf("stacking_violations = %d, want 1", res.StackingViolations[1])
	}
}

func TestDislikedCounter(t *testing.T) {
	people := []model.Person{adult(1, 100)}
	assignments := []Assignment{
		{OccurrenceID: 1, PersonID: 1, Status: model.StatusScheduled, Date: monday, DurationMinutes: 15, Difficulty: 1, Disliked: true},
		{OccurrenceID: 2, PersonID: 1, Status: model.StatusScheduled, Date: monday, DurationMinutes: 15, Difficulty: 1},
	}
	res := ComputeFairness(ComputeSplit(assignments, people), people, DefaultConfig())
	if res.DislikedAssignments[1] != 1 {
		t.Errorf("disliked_assignments = %d, want 1", res.DislikedAssignments[1])
	}
}
