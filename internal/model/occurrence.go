package model

import "time"

type OccurrenceStatus string

const (
	StatusScheduled OccurrenceStatus = "scheduled"
	StatusDone      OccurrenceStatus = "done"
	StatusMoved     OccurrenceStatus = "moved"
	StatusBacklog   OccurrenceStatus = "backlog"
	StatusMissed    OccurrenceStatus = "missed"
)

// Coop role on a shared task. An "assist" assignment counts at half weight
// in fairness scoring.
const CoopRoleAssist = "assist"

// Occurrence is one scheduled instance of a task on a specific date.
// ReminderLevel is monotonically non-decreasing; it resets to 0 only through
// an explicit administrative reset, never automatically.
type Occurrence struct {
	ID              int64            `json:"id"`
	TaskID          int64            `json:"task_id"`
	HouseholdID     int64            `json:"household_id"`
	Date            time.Time        `json:"date"`
	AssignedPerson  *int64           `json:"assigned_person"`
	Status          OccurrenceStatus `json:"status"`
	CoopRole        string           `json:"coop_role"`
	IsCritical      bool             `json:"is_critical"`
	BoostEnabled    bool             `json:"boost_enabled"`
	BackupRequested bool             `json:"backup_requested"`
	DueAt           *time.Time       `json:"due_at"`
	ReminderLevel   int              `json:"reminder_level"` // 0..3
	LastRemindedAt  *time.Time       `json:"last_reminded_at"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func ValidStatus(s OccurrenceStatus) bool {
	switch s {
	case StatusScheduled, StatusDone, StatusMoved, StatusBacklog, StatusMissed:
		return true
	}
	return false
}
