package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/evenly-app/evenly/internal/apperr"
	"github.com/evenly-app/evenly/internal/boost"
	"github.com/evenly-app/evenly/internal/model"
	"github.com/evenly-app/evenly/internal/store"
)

type BoostHandler struct {
	engine      *boost.Engine
	occurrences *store.OccurrenceStore
	households  *store.HouseholdStore
	boostLog    *store.BoostLogStore
	logger      *slog.Logger
}

func NewBoostHandler(engine *boost.Engine, os *store.OccurrenceStore, hs *store.HouseholdStore, bl *store.BoostLogStore, logger *slog.Logger) *BoostHandler {
	return &BoostHandler{
		engine:      engine,
		occurrences: os,
		households:  hs,
		boostLog:    bl,
		logger:      logger.With("component", "boost_handler"),
	}
}

type sweepRequest struct {
	Origin string `json:"origin"`
}

// Sweep runs a full boost pass over every configured household.
func (h *BoostHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	var req sweepRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req) // origin is optional
	}
	origin := req.Origin
	if origin == "" {
		origin = "manual"
	}

	summary := h.engine.Sweep(time.Now().UTC())
	h.logger.Info("boost sweep finished",
		"origin", origin,
		"total_sent", summary.TotalSent,
		"households_processed", summary.HouseholdsProcessed,
		"quiet_households", summary.QuietHouseholds)

	writeJSON(w, http.StatusOK, summary)
}

type triggerRequest struct {
	HouseholdID  string `json:"household_id"`
	OccurrenceID *int64 `json:"occurrence_id"`
	CheckAll     bool   `json:"check_all"`
}

type triggerResponse struct {
	Processed int                `json:"processed"`
	Results   []boost.SendResult `json:"results"`
}

// Trigger evaluates and sends boosts for one occurrence or for all of a
// household's candidates.
func (h *BoostHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	var req triggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, apperr.Validation("invalid JSON"))
		return
	}
	if req.OccurrenceID == nil && !req.CheckAll {
		writeAppError(w, apperr.Validation("occurrence_id or check_all is required"))
		return
	}

	householdID, appErr := parseHouseholdID(req.HouseholdID)
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}

	settings, loc, err := h.households.BoostSettings(householdID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeAppError(w, apperr.NotFound("household %d", householdID))
			return
		}
		h.logger.Error("load boost settings", "household_id", householdID, "error", err)
		writeAppError(w, apperr.Persistence(err))
		return
	}

	items, err := h.occurrences.ListBoostCandidates(householdID)
	if err != nil {
		h.logger.Error("list boost candidates", "household_id", householdID, "error", err)
		writeAppError(w, apperr.Persistence(err))
		return
	}

	if req.OccurrenceID != nil {
		var target *boost.Item
		for i := range items {
			if items[i].ID == *req.OccurrenceID {
				target = &items[i]
				break
			}
		}
		if target == nil {
			writeAppError(w, apperr.NotFound("occurrence %d is not a boost candidate", *req.OccurrenceID))
			return
		}
		items = []boost.Item{*target}
	}

	now := time.Now().UTC()
	resp := triggerResponse{Results: []boost.SendResult{}}
	for _, item := range items {
		resp.Results = append(resp.Results, h.engine.Process(item, settings, loc, now))
		resp.Processed++
	}
	writeJSON(w, http.StatusOK, resp)
}

type respondRequest struct {
	HouseholdID       string `json:"household_id"`
	PersonID          *int64 `json:"person_id"`
	InteractionType   string `json:"interaction_type"`
	NewDate           string `json:"new_date"` // YYYY-MM-DD, rescheduled only
	NewTime           string `json:"new_time"` // HH:mm, rescheduled only
	NewAssignedPerson *int64 `json:"new_assigned_person"`
	Notes             string `json:"notes"`
}

// Respond records how a person reacted to a boost and applies the matching
// state transition: completed/missed change the status, rescheduled moves
// the occurrence to the new date, swapped hands it to the new assignee, and
// backup_requested raises the backup flag. The interaction is logged before
// any mutation so the audit trail survives a partial failure.
func (h *BoostHandler) Respond(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeAppError(w, apperr.Validation("invalid occurrence id"))
		return
	}

	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, apperr.Validation("invalid JSON"))
		return
	}
	if !model.ValidInteraction(req.InteractionType) {
		writeAppError(w, apperr.Validation("unknown interaction type %q", req.InteractionType))
		return
	}

	householdID, appErr := parseHouseholdID(req.HouseholdID)
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}

	occ, err := h.occurrences.GetByID(id)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	if occ == nil || occ.HouseholdID != householdID {
		writeAppError(w, apperr.NotFound("occurrence %d", id))
		return
	}

	// Validate the transition inputs before the interaction is logged, so
	// a rejected request leaves no trace.
	var newDate time.Time
	var newDue *time.Time
	switch req.InteractionType {
	case model.InteractionRescheduled:
		newDate, newDue, err = rescheduleTarget(occ, req.NewDate, req.NewTime)
		if err != nil {
			writeAppError(w, apperr.Validation("%v", err))
			return
		}
	case model.InteractionSwapped:
		if req.NewAssignedPerson == nil {
			writeAppError(w, apperr.Validation("new_assigned_person is required for a swap"))
			return
		}
	}

	interaction, err := h.boostLog.CreateInteraction(occ.ID, householdID, req.PersonID, req.InteractionType, req.Notes)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}

	switch req.InteractionType {
	case model.InteractionCompleted:
		occ, err = h.occurrences.UpdateStatus(occ.ID, model.StatusDone)
	case model.InteractionMissed:
		occ, err = h.occurrences.UpdateStatus(occ.ID, model.StatusMissed)
	case model.InteractionRescheduled:
		occ, err = h.occurrences.Reschedule(occ.ID, newDate, newDue)
	case model.InteractionSwapped:
		occ, err = h.occurrences.Reassign(occ.ID, req.NewAssignedPerson)
	case model.InteractionBackupRequested:
		occ, err = h.occurrences.SetBackupRequested(occ.ID, true)
	}
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       fmt.Sprintf("interaction %s recorded", req.InteractionType),
		"occurrence_id": occ.ID,
		"interaction":   interaction,
		"occurrence":    occ,
	})
}

// rescheduleTarget resolves the new date and due time for a rescheduled
// interaction. The date is required; without an explicit new time the
// occurrence keeps its old due wall-clock time on the new date.
func rescheduleTarget(occ *model.Occurrence, dateStr, timeStr string) (time.Time, *time.Time, error) {
	if dateStr == "" {
		return time.Time{}, nil, fmt.Errorf("new_date is required to reschedule (YYYY-MM-DD)")
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("invalid new_date %q, want YYYY-MM-DD", dateStr)
	}

	if timeStr != "" {
		minutes, err := model.ParseClock(timeStr)
		if err != nil {
			return time.Time{}, nil, fmt.Errorf("invalid new_time: %w", err)
		}
		due := date.Add(time.Duration(minutes) * time.Minute)
		return date, &due, nil
	}
	if occ.DueAt != nil {
		old := occ.DueAt.UTC()
		due := date.Add(time.Duration(old.Hour())*time.Hour + time.Duration(old.Minute())*time.Minute)
		return date, &due, nil
	}
	return date, nil, nil
}

// ResetReminder is the administrative path that returns an occurrence's
// reminder level to zero.
func (h *BoostHandler) ResetReminder(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeAppError(w, apperr.Validation("invalid occurrence id"))
		return
	}
	occ, err := h.occurrences.GetByID(id)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	if occ == nil {
		writeAppError(w, apperr.NotFound("occurrence %d", id))
		return
	}
	if err := h.occurrences.ResetReminder(id); err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// GetSettings returns the household's boost configuration.
func (h *BoostHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	householdID, appErr := parseHouseholdID(r.PathValue("id"))
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}
	settings, _, err := h.households.BoostSettings(householdID)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// PutSettings validates and stores the household's boost configuration.
func (h *BoostHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	householdID, appErr := parseHouseholdID(r.PathValue("id"))
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}
	var settings model.BoostSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeAppError(w, apperr.Validation("invalid JSON"))
		return
	}
	if err := settings.Validate(); err != nil {
		writeAppError(w, apperr.Validation("%v", err))
		return
	}
	if err := h.households.SetBoostSettings(householdID, settings); err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// Attempts lists the delivery log for an occurrence.
func (h *BoostHandler) Attempts(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeAppError(w, apperr.Validation("invalid occurrence id"))
		return
	}
	attempts, err := h.boostLog.ListAttemptsByOccurrence(id)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	if attempts == nil {
		attempts = []*model.BoostDeliveryAttempt{}
	}
	writeJSON(w, http.StatusOK, attempts)
}
