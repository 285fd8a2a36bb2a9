package model

import "time"

// Delivery attempt states. An attempt row is written before dispatch, so a
// crash mid-dispatch still leaves an auditable partial record.
const (
	AttemptLogged = "logged"
	AttemptSent   = "sent"
	AttemptFailed = "failed"
)

type BoostDeliveryAttempt struct {
	ID           string    `json:"id"`
	OccurrenceID int64     `json:"occurrence_id"`
	HouseholdID  int64     `json:"household_id"`
	Channel      string    `json:"channel"`
	Tier         int       `json:"tier"` // 1..3
	Status       string    `json:"status"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Boost response interaction types.
const (
	InteractionAcknowledged    = "acknowledged"
	InteractionCompleted       = "completed"
	InteractionRescheduled     = "rescheduled"
	InteractionSwapped         = "swapped"
	InteractionBackupRequested = "backup_requested"
	InteractionMissed          = "missed"
)

func ValidInteraction(t string) bool {
	switch t {
	case InteractionAcknowledged, InteractionCompleted, InteractionRescheduled,
		InteractionSwapped, InteractionBackupRequested, InteractionMissed:
		return true
	}
	return false
}

type BoostInteraction struct {
	ID              int64     `json:"id"`
	OccurrenceID    int64     `json:"occurrence_id"`
	HouseholdID     int64     `json:"household_id"`
	PersonID        *int64    `json:"person_id"`
	InteractionType string    `json:"interaction_type"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
