package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Boost delivery channels.
const (
	ChannelPush     = "push"
	ChannelEmail    = "email"
	ChannelWhatsApp = "whatsapp"
	ChannelSMS      = "sms"
)

// DefaultTimezone is the household timezone used when none is configured.
const DefaultTimezone = "Europe/Amsterdam"

// QuietHours is a local-time suppression window. Start and End are "HH:mm"
// wall-clock strings; Start > End means the window crosses midnight.
type QuietHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// BoostSettings is the validated form of a household's boost_settings blob.
// Malformed blobs are rejected at the persistence boundary before any of
// this reaches the engine.
type BoostSettings struct {
	Enabled     bool            `json:"enabled"`
	Channels    []string        `json:"channels"`
	QuietHours  QuietHours      `json:"quiet_hours"`
	AutoSuggest map[string]bool `json:"auto_suggest"`
}

// DefaultBoostSettings returns the settings applied to a household that has
// never configured boosts.
func DefaultBoostSettings() BoostSettings {
	return BoostSettings{
		Enabled:     false,
		Channels:    []string{ChannelPush},
		QuietHours:  QuietHours{Start: "21:30", End: "07:00"},
		AutoSuggest: map[string]bool{},
	}
}

func validChannel(c string) bool {
	switch c {
	case ChannelPush, ChannelEmail, ChannelWhatsApp, ChannelSMS:
		return true
	}
	return false
}

// Validate checks channel names and quiet-hour formats.
func (b BoostSettings) Validate() error {
	if len(b.Channels) == 0 {
		return fmt.Errorf("boost settings: channels must not be empty")
	}
	for _, c := range b.Channels {
		if !validChannel(c) {
			return fmt.Errorf("boost settings: unknown channel %q", c)
		}
	}
	if _, err := ParseClock(b.QuietHours.Start); err != nil {
		return fmt.Errorf("boost settings: quiet_hours.start: %w", err)
	}
	if _, err := ParseClock(b.QuietHours.End); err != nil {
		return fmt.Errorf("boost settings: quiet_hours.end: %w", err)
	}
	return nil
}

// ParseClock parses an "HH:mm" wall-clock string into minutes since
// midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:mm", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour*60 + minute, nil
}

// LoadTimezone resolves a household timezone name, falling back to the
// default when empty.
func LoadTimezone(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	return time.LoadLocation(name)
}
