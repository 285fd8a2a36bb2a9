package boost

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/evenly-app/evenly/internal/model"
)

// OccurrenceSource is the slice of the persistence layer the engine needs.
// PromoteReminder is a conditional update keyed on the previously observed
// reminder level, so two overlapping sweeps cannot both promote the same
// occurrence past a tier.
type OccurrenceSource interface {
	ListBoostCandidates(householdID int64) ([]Item, error)
	PromoteReminder(id int64, fromLevel, toLevel int, at time.Time) (bool, error)
}

// SettingsSource yields validated boost settings per household.
type SettingsSource interface {
	ListBoostHouseholdIDs() ([]int64, error)
	BoostSettings(householdID int64) (model.BoostSettings, *time.Location, error)
}

// AttemptLog records delivery attempts. Record is called before any
// external dispatch so a crash mid-dispatch still leaves a partial record.
type AttemptLog interface {
	Record(attempt model.BoostDeliveryAttempt) error
	MarkResult(id, status, errMsg string) error
}

// Decision is the outcome of evaluating one occurrence.
type Decision struct {
	ShouldSend bool     `json:"should_send"`
	Tier       Tier     `json:"tier"`
	Channels   []string `json:"channels,omitempty"`
	Reason     string   `json:"reason,omitempty"`
}

// SendResult is one occurrence's entry in a sweep or trigger response.
type SendResult struct {
	OccurrenceID int64    `json:"occurrence_id"`
	Sent         bool     `json:"sent"`
	Tier         string   `json:"tier,omitempty"`
	Channels     []string `json:"channels,omitempty"`
	Reason       string   `json:"reason,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// SweepSummary is the aggregate result of one batch run. QuietHours is true
// when every processed household was inside its quiet window, meaning the
// whole run was suppressed.
type SweepSummary struct {
	TotalSent           int          `json:"total_sent"`
	HouseholdsProcessed int          `json:"households_processed"`
	QuietHouseholds     int          `json:"quiet_households"`
	QuietHours          bool         `json:"quiet_hours"`
	ActiveStatuses      []string     `json:"active_statuses"`
	Results             []SendResult `json:"results"`
}

// Engine decides whether a boost should fire for an occurrence and records
// that it did. Stateless between runs; all persisted state lives behind the
// source interfaces.
type Engine struct {
	occurrences OccurrenceSource
	settings    SettingsSource
	attempts    AttemptLog
	channels    map[string]Channel
	logger      *slog.Logger
}

func NewEngine(occ OccurrenceSource, settings SettingsSource, attempts AttemptLog, channels []Channel, logger *slog.Logger) *Engine {
	byName := make(map[string]Channel, len(channels))
	for _, c := range channels {
		byName[c.Name()] = c
	}
	return &Engine{
		occurrences: occ,
		settings:    settings,
		attempts:    attempts,
		channels:    byName,
		logger:      logger,
	}
}

// Evaluate decides whether a boost should fire for the occurrence at now.
// It requires a scheduled, boost-enabled occurrence that has just entered a
// reminder tier, outside quiet hours.
func (e *Engine) Evaluate(item Item, settings model.BoostSettings, loc *time.Location, now time.Time) Decision {
	if !settings.Enabled {
		return Decision{Reason: "boosts disabled"}
	}
	if item.Status != model.StatusScheduled {
		return Decision{Reason: "not scheduled"}
	}
	if !item.BoostEnabled {
		return Decision{Reason: "boost not enabled"}
	}
	tier := ClassifyOne(item.Occurrence, now)
	if tier == TierNone {
		return Decision{Reason: "no reminder tier"}
	}
	if IsQuiet(now, settings.QuietHours, loc) {
		return Decision{Tier: tier, Reason: "quiet hours"}
	}
	return Decision{ShouldSend: true, Tier: tier, Channels: settings.Channels}
}

// Process evaluates one occurrence and, when eligible, claims the tier via
// the conditional reminder promotion and dispatches every configured
// channel. The promotion happens before dispatch: losing the swap means
// another sweep already owns this tier, and a crash after the swap leaves
// the attempt log as the audit trail rather than risking duplicate sends.
func (e *Engine) Process(item Item, settings model.BoostSettings, loc *time.Location, now time.Time) SendResult {
	decision := e.Evaluate(item, settings, loc, now)
	if !decision.ShouldSend {
		return SendResult{OccurrenceID: item.ID, Reason: decision.Reason}
	}

	promoted, err := e.occurrences.PromoteReminder(item.ID, item.ReminderLevel, int(decision.Tier), now)
	if err != nil {
		return SendResult{OccurrenceID: item.ID, Error: fmt.Sprintf("promote reminder: %v", err)}
	}
	if !promoted {
		return SendResult{OccurrenceID: item.ID, Reason: "already claimed by concurrent run"}
	}

	result := SendResult{OccurrenceID: item.ID, Sent: true, Tier: decision.Tier.String()}
	for _, name := range decision.Channels {
		if err := e.dispatch(item, decision.Tier, name); err != nil {
			e.logger.Warn("boost channel failed",
				"occurrence_id", item.ID, "channel", name, "error", err)
			continue
		}
		result.Channels = append(result.Channels, name)
	}
	return result
}

func (e *Engine) dispatch(item Item, tier Tier, channelName string) error {
	attempt := model.BoostDeliveryAttempt{
		ID:           uuid.NewString(),
		OccurrenceID: item.ID,
		HouseholdID:  item.HouseholdID,
		Channel:      channelName,
		Tier:         int(tier),
		Status:       model.AttemptLogged,
	}
	// The attempt row goes in before anything leaves the process.
	if err := e.attempts.Record(attempt); err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}

	ch, ok := e.channels[channelName]
	if !ok {
		e.markFailed(attempt.ID, "channel not configured")
		return fmt.Errorf("channel %q not configured", channelName)
	}

	if err := ch.Send(item, tier); err != nil {
		e.markFailed(attempt.ID, err.Error())
		return fmt.Errorf("send %s: %w", channelName, err)
	}
	return e.attempts.MarkResult(attempt.ID, model.AttemptSent, "")
}

func (e *Engine) markFailed(attemptID, detail string) {
	if err := e.attempts.MarkResult(attemptID, model.AttemptFailed, detail); err != nil {
		e.logger.Warn("mark attempt failed", "attempt_id", attemptID, "error", err)
	}
}

// Sweep runs one batch pass over every household with boosts configured.
// Failures are isolated per occurrence: an error lands in that occurrence's
// result entry and the rest of the batch continues.
func (e *Engine) Sweep(now time.Time) SweepSummary {
	summary := SweepSummary{ActiveStatuses: []string{string(model.StatusScheduled)}}

	householdIDs, err := e.settings.ListBoostHouseholdIDs()
	if err != nil {
		e.logger.Error("sweep: list households", "error", err)
		return summary
	}

	for _, hid := range householdIDs {
		settings, loc, err := e.settings.BoostSettings(hid)
		if err != nil {
			e.logger.Error("sweep: load boost settings", "household_id", hid, "error", err)
			continue
		}
		summary.HouseholdsProcessed++
		if IsQuiet(now, settings.QuietHours, loc) {
			summary.QuietHouseholds++
		}

		items, err := e.occurrences.ListBoostCandidates(hid)
		if err != nil {
			e.logger.Error("sweep: list candidates", "household_id", hid, "error", err)
			continue
		}

		for _, item := range items {
			result := e.Process(item, settings, loc, now)
			if result.Sent {
				summary.TotalSent++
			}
			summary.Results = append(summary.Results, result)
		}
	}
	summary.QuietHours = summary.HouseholdsProcessed > 0 &&
		summary.QuietHouseholds == summary.HouseholdsProcessed
	return summary
}
