// Package override resolves which of several overlapping manual overrides
// governs a task on a given date.
package override

import (
	"time"

	"github.com/evenly-app/evenly/internal/model"
)

// Resolve returns the single governing override for the task/date, or nil
// when none applies. Candidates are filtered to the task and to windows
// containing the date (a missing effective_to means open-ended, which only
// "always" overrides may use). Among matches the highest-precedence scope
// wins: once > week > month > snooze > always. Same-scope ties break to the
// most recently created override.
func Resolve(overrides []model.TaskOverride, taskID int64, date time.Time) *model.TaskOverride {
	day := startOfDay(date)

	var winner *model.TaskOverride
	for i := range overrides {
		o := &overrides[i]
		if o.TaskID != taskID || !covers(o, day) {
			continue
		}
		if winner == nil || beats(o, winner) {
			winner = o
		}
	}
	return winner
}

// Excluded reports whether the governing override for the task/date (if
// any) excludes the occurrence.
func Excluded(overrides []model.TaskOverride, taskID int64, date time.Time) bool {
	o := Resolve(overrides, taskID, date)
	return o != nil && o.Action == model.ActionExclude
}

// EffectiveFrequency returns the task's recurrence rule with any governing
// frequency_change override applied for the date.
func EffectiveFrequency(task model.Task, overrides []model.TaskOverride, date time.Time) string {
	o := Resolve(overrides, task.ID, date)
	if o != nil && o.Action == model.ActionFrequencyChange && o.NewFrequency != "" {
		return o.NewFrequency
	}
	return task.Frequency
}

func covers(o *model.TaskOverride, day time.Time) bool {
	if day.Before(startOfDay(o.EffectiveFrom)) {
		return false
	}
	if o.EffectiveTo == nil {
		// Open-ended windows are only valid for "always".
		return o.Scope == model.ScopeAlways
	}
	return !day.After(startOfDay(*o.EffectiveTo))
}

func beats(a, b *model.TaskOverride) bool {
	pa, pb := a.Scope.Precedence(), b.Scope.Precedence()
	if pa != pb {
		return pa > pb
	}
	// Same scope: latest created wins. Fall back to the higher id when the
	// timestamps collide, so resolution stays deterministic.
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
