package model

import "time"

type Task struct {
	ID              int64     `json:"id"`
	HouseholdID     int64     `json:"household_id"`
	Title           string    `json:"title"`
	Category        string    `json:"category"`
	DefaultDuration int       `json:"default_duration"` // minutes
	Difficulty      int       `json:"difficulty"`       // 1..3
	Frequency       string    `json:"frequency"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
