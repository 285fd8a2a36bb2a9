package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/evenly-app/evenly/internal/apperr"
	"github.com/evenly-app/evenly/internal/model"
	"github.com/evenly-app/evenly/internal/store"
)

type DisruptionHandler struct {
	disruptions *store.DisruptionStore
	logger      *slog.Logger
}

func NewDisruptionHandler(ds *store.DisruptionStore, logger *slog.Logger) *DisruptionHandler {
	return &DisruptionHandler{disruptions: ds, logger: logger.With("component", "disruption_handler")}
}

type disruptionRequest struct {
	HouseholdID       string    `json:"household_id"`
	WeekStart         time.Time `json:"week_start"`
	Type              string    `json:"type"`
	AffectedPersonIDs []int64   `json:"affected_person_ids"`
	NightsImpacted    int       `json:"nights_impacted"`
}

func (h *DisruptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req disruptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, apperr.Validation("invalid JSON"))
		return
	}
	householdID, appErr := parseHouseholdID(req.HouseholdID)
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}
	if req.WeekStart.IsZero() {
		writeAppError(w, apperr.Validation("week_start is required"))
		return
	}
	if req.Type == "" {
		writeAppError(w, apperr.Validation("type is required"))
		return
	}

	d, err := h.disruptions.Create(householdID, req.WeekStart, req.Type, req.AffectedPersonIDs, req.NightsImpacted)
	if err != nil {
		writeAppError(w, apperr.Validation("%v", err))
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *DisruptionHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID, appErr := parseHouseholdID(r.URL.Query().Get("household_id"))
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}

	var (
		list []*model.Disruption
		err  error
	)
	if weekStr := r.URL.Query().Get("week"); weekStr != "" {
		week, parseErr := time.Parse("2006-01-02", weekStr)
		if parseErr != nil {
			writeAppError(w, apperr.Validation("invalid week %q, want YYYY-MM-DD", weekStr))
			return
		}
		list, err = h.disruptions.ListByWeek(householdID, week)
	} else {
		list, err = h.disruptions.ListByHousehold(householdID)
	}
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	if list == nil {
		list = []*model.Disruption{}
	}
	writeJSON(w, http.StatusOK, list)
}

type consentRequest struct {
	ConsentA bool `json:"consent_a"`
	ConsentB bool `json:"consent_b"`
}

func (h *DisruptionHandler) SetConsent(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeAppError(w, apperr.Validation("invalid disruption id"))
		return
	}
	var req consentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, apperr.Validation("invalid JSON"))
		return
	}
	existing, err := h.disruptions.GetByID(id)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	if existing == nil {
		writeAppError(w, apperr.NotFound("disruption %d", id))
		return
	}

	d, err := h.disruptions.SetConsent(id, req.ConsentA, req.ConsentB)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DisruptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeAppError(w, apperr.Validation("invalid disruption id"))
		return
	}
	existing, err := h.disruptions.GetByID(id)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	if existing == nil {
		writeAppError(w, apperr.NotFound("disruption %d", id))
		return
	}
	if err := h.disruptions.Delete(id); err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
