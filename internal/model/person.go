package model

import "time"

type PersonRole string

const (
	RoleAdult PersonRole = "adult"
	RoleChild PersonRole = "child"
)

// Person is a household member who can be assigned task occurrences.
// Only adults participate in fairness scoring.
type Person struct {
	ID               int64      `json:"id"`
	HouseholdID      int64      `json:"household_id"`
	Name             string     `json:"name"`
	Role             PersonRole `json:"role"`
	WeeklyTimeBudget int        `json:"weekly_time_budget"` // minutes
	DislikedTags     []string   `json:"disliked_tags"`
	NoGoTaskIDs      []int64    `json:"no_go_task_ids"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (p Person) IsAdult() bool {
	return p.Role == RoleAdult
}
