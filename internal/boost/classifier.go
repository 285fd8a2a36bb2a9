package boost

import (
	"time"

	"github.com/evenly-app/evenly/internal/model"
)

// Tier is a reminder tier. Its numeric value is the reminder level an
// occurrence is promoted to once the tier has fired, which is what makes
// re-classification under the same clock idempotent.
type Tier int

const (
	TierNone    Tier = 0
	Tier24h     Tier = 1
	Tier2h      Tier = 2
	TierOverdue Tier = 3
)

func (t Tier) String() string {
	switch t {
	case Tier24h:
		return "t24h"
	case Tier2h:
		return "t2h"
	case TierOverdue:
		return "overdue"
	}
	return "none"
}

// Classification groups occurrences newly eligible for each tier.
type Classification struct {
	T24h    []model.Occurrence
	T2h     []model.Occurrence
	Overdue []model.Occurrence
}

// ClassifyOne returns the tier the occurrence is newly eligible for, or
// TierNone. Windows (inclusive on both ends):
//
//	t24h:    reminder_level == 0, due in [now+24h, now+26h]
//	t2h:     reminder_level < 2,  due in [now+2h, now+3h]
//	overdue: reminder_level < 3,  due before now-24h
//
// The reminder-level guards prevent double-processing across repeated runs
// with the same due_at and a stale level.
func ClassifyOne(o model.Occurrence, now time.Time) Tier {
	if o.DueAt == nil {
		return TierNone
	}
	due := *o.DueAt

	if o.ReminderLevel == 0 && within(due, now.Add(24*time.Hour), now.Add(26*time.Hour)) {
		return Tier24h
	}
	if o.ReminderLevel < 2 && within(due, now.Add(2*time.Hour), now.Add(3*time.Hour)) {
		return Tier2h
	}
	if o.ReminderLevel < 3 && due.Before(now.Add(-24*time.Hour)) {
		return TierOverdue
	}
	return TierNone
}

// Classify buckets occurrences by the tier each is newly eligible for.
func Classify(occurrences []model.Occurrence, now time.Time) Classification {
	var c Classification
	for _, o := range occurrences {
		switch ClassifyOne(o, now) {
		case Tier24h:
			c.T24h = append(c.T24h, o)
		case Tier2h:
			c.T2h = append(c.T2h, o)
		case TierOverdue:
			c.Overdue = append(c.Overdue, o)
		}
	}
	return c
}

func within(t, lo, hi time.Time) bool {
	return !t.Before(lo) && !t.After(hi)
}
