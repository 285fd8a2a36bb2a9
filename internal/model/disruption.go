package model

import "time"

// Disruption is a consented, time-boxed exceptional event (illness,
// overtime, a bad week with a sick kid) that can soften fairness penalties
// for the people it affected. It only alters the score when both partners
// have consented.
type Disruption struct {
	ID                int64     `json:"id"`
	HouseholdID       int64     `json:"household_id"`
	WeekStart         time.Time `json:"week_start"`
	Type              string    `json:"type"`
	AffectedPersonIDs []int64   `json:"affected_person_ids"`
	NightsImpacted    int       `json:"nights_impacted"` // 0..7
	ConsentA          bool      `json:"consent_a"`
	ConsentB          bool      `json:"consent_b"`
	CreatedAt         time.Time `json:"created_at"`
}

func (d Disruption) Consented() bool {
	return d.ConsentA && d.ConsentB
}
