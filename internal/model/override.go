package model

import "time"

type OverrideScope string

const (
	ScopeOnce   OverrideScope = "once"
	ScopeWeek   OverrideScope = "week"
	ScopeMonth  OverrideScope = "month"
	ScopeSnooze OverrideScope = "snooze"
	ScopeAlways OverrideScope = "always"
)

type OverrideAction string

const (
	ActionInclude         OverrideAction = "include"
	ActionExclude         OverrideAction = "exclude"
	ActionFrequencyChange OverrideAction = "frequency_change"
)

// Precedence returns the rank used to pick the governing override when
// several overlap: once > week > month > snooze > always.
func (s OverrideScope) Precedence() int {
	switch s {
	case ScopeOnce:
		return 5
	case ScopeWeek:
		return 4
	case ScopeMonth:
		return 3
	case ScopeSnooze:
		return 2
	case ScopeAlways:
		return 1
	}
	return 0
}

func ValidScope(s OverrideScope) bool {
	return s.Precedence() > 0
}

func ValidAction(a OverrideAction) bool {
	switch a {
	case ActionInclude, ActionExclude, ActionFrequencyChange:
		return true
	}
	return false
}

// TaskOverride suppresses, forces, or reschedules a task for a window of
// dates. Exclusion is represented here rather than by deleting occurrence
// rows, so the history stays auditable.
type TaskOverride struct {
	ID            int64          `json:"id"`
	HouseholdID   int64          `json:"household_id"`
	TaskID        int64          `json:"task_id"`
	Scope         OverrideScope  `json:"scope"`
	EffectiveFrom time.Time      `json:"effective_from"`
	EffectiveTo   *time.Time     `json:"effective_to"` // nil = open-ended, only valid for "always"
	Action        OverrideAction `json:"action"`
	NewFrequency  string         `json:"new_frequency,omitempty"` // set when action is frequency_change
	CreatedAt     time.Time      `json:"created_at"`
}
