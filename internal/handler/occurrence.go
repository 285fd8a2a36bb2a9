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

type OccurrenceHandler struct {
	occurrences *store.OccurrenceStore
	tasks       *store.TaskStore
	logger      *slog.Logger
}

func NewOccurrenceHandler(os *store.OccurrenceStore, ts *store.TaskStore, logger *slog.Logger) *OccurrenceHandler {
	return &OccurrenceHandler{
		occurrences: os,
		tasks:       ts,
		logger:      logger.With("component", "occurrence_handler"),
	}
}

type occurrenceRequest struct {
	HouseholdID    string     `json:"household_id"`
	TaskID         int64      `json:"task_id"`
	Date           time.Time  `json:"date"`
	AssignedPerson *int64     `json:"assigned_person"`
	CoopRole       string     `json:"coop_role"`
	IsCritical     bool       `json:"is_critical"`
	BoostEnabled   bool       `json:"boost_enabled"`
	DueAt          *time.Time `json:"due_at"`
}

func (h *OccurrenceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req occurrenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, apperr.Validation("invalid JSON"))
		return
	}
	householdID, appErr := parseHouseholdID(req.HouseholdID)
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}
	if req.Date.IsZero() {
		writeAppError(w, apperr.Validation("date is required"))
		return
	}

	task, err := h.tasks.GetByID(req.TaskID)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	if task == nil || task.HouseholdID != householdID {
		writeAppError(w, apperr.NotFound("task %d", req.TaskID))
		return
	}

	occ, err := h.occurrences.Create(req.TaskID, householdID, req.Date, req.AssignedPerson, req.CoopRole, req.IsCritical, req.BoostEnabled, req.DueAt)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	writeJSON(w, http.StatusCreated, occ)
}

func (h *OccurrenceHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID, appErr := parseHouseholdID(r.URL.Query().Get("household_id"))
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}

	q := r.URL.Query()
	var (
		occs []*model.Occurrence
		err  error
	)
	switch {
	case q.Get("from") != "" && q.Get("to") != "":
		var from, to time.Time
		if from, err = time.Parse("2006-01-02", q.Get("from")); err != nil {
			writeAppError(w, apperr.Validation("invalid from date"))
			return
		}
		if to, err = time.Parse("2006-01-02", q.Get("to")); err != nil {
			writeAppError(w, apperr.Validation("invalid to date"))
			return
		}
		occs, err = h.occurrences.ListByDateRange(householdID, from, to)
	case q.Get("status") != "":
		status := model.OccurrenceStatus(q.Get("status"))
		if !model.ValidStatus(status) {
			writeAppError(w, apperr.Validation("unknown status %q", q.Get("status")))
			return
		}
		occs, err = h.occurrences.ListByStatus(householdID, status)
	case q.Get("critical") == "true":
		occs, err = h.occurrences.ListCritical(householdID)
	default:
		occs, err = h.occurrences.ListByHousehold(householdID)
	}
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	if occs == nil {
		occs = []*model.Occurrence{}
	}
	writeJSON(w, http.StatusOK, occs)
}

func (h *OccurrenceHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, occ)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *OccurrenceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeAppError(w, apperr.Validation("invalid occurrence id"))
		return
	}
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, apperr.Validation("invalid JSON"))
		return
	}
	status := model.OccurrenceStatus(req.Status)
	if !model.ValidStatus(status) {
		writeAppError(w, apperr.Validation("unknown status %q", req.Status))
		return
	}

	existing, err := h.occurrences.GetByID(id)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	if existing == nil {
		writeAppError(w, apperr.NotFound("occurrence %d", id))
		return
	}

	occ, err := h.occurrences.UpdateStatus(id, status)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	writeJSON(w, http.StatusOK, occ)
}

type reassignRequest struct {
	AssignedPerson *int64 `json:"assigned_person"`
}

func (h *OccurrenceHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeAppError(w, apperr.Validation("invalid occurrence id"))
		return
	}
	var req reassignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, apperr.Validation("invalid JSON"))
		return
	}
	existing, err := h.occurrences.GetByID(id)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	if existing == nil {
		writeAppError(w, apperr.NotFound("occurrence %d", id))
		return
	}
	occ, err := h.occurrences.Reassign(id, req.AssignedPerson)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	writeJSON(w, http.StatusOK, occ)
}

type rescheduleRequest struct {
	Date  time.Time  `json:"date"`
	DueAt *time.Time `json:"due_at"`
}

func (h *OccurrenceHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeAppError(w, apperr.Validation("invalid occurrence id"))
		return
	}
	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, apperr.Validation("invalid JSON"))
		return
	}
	if req.Date.IsZero() {
		writeAppError(w, apperr.Validation("date is required"))
		return
	}
	existing, err := h.occurrences.GetByID(id)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	if existing == nil {
		writeAppError(w, apperr.NotFound("occurrence %d", id))
		return
	}
	occ, err := h.occurrences.Reschedule(id, req.Date, req.DueAt)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	writeJSON(w, http.StatusOK, occ)
}
