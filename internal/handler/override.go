package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/evenly-app/evenly/internal/apperr"
	"github.com/evenly-app/evenly/internal/model"
	"github.com/evenly-app/evenly/internal/override"
	"github.com/evenly-app/evenly/internal/store"
)

type OverrideHandler struct {
	overrides *store.OverrideStore
	tasks     *store.TaskStore
	logger    *slog.Logger
}

func NewOverrideHandler(ovs *store.OverrideStore, ts *store.TaskStore, logger *slog.Logger) *OverrideHandler {
	return &OverrideHandler{
		overrides: ovs,
		tasks:     ts,
		logger:    logger.With("component", "override_handler"),
	}
}

type overrideRequest struct {
	HouseholdID   string     `json:"household_id"`
	Scope         string     `json:"scope"`
	Action        string     `json:"action"`
	EffectiveFrom time.Time  `json:"effective_from"`
	EffectiveTo   *time.Time `json:"effective_to"`
	NewFrequency  string     `json:"new_frequency"`
}

func (h *OverrideHandler) Create(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseIDParam(r)
	if err != nil {
		writeAppError(w, apperr.Validation("invalid task id"))
		return
	}

	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, apperr.Validation("invalid JSON"))
		return
	}

	householdID, appErr := parseHouseholdID(req.HouseholdID)
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}

	task, err := h.tasks.GetByID(taskID)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	if task == nil || task.HouseholdID != householdID {
		writeAppError(w, apperr.NotFound("task %d", taskID))
		return
	}

	scope := model.OverrideScope(req.Scope)
	action := model.OverrideAction(req.Action)
	if !model.ValidScope(scope) {
		writeAppError(w, apperr.Validation("unknown scope %q", req.Scope))
		return
	}
	if !model.ValidAction(action) {
		writeAppError(w, apperr.Validation("unknown action %q", req.Action))
		return
	}
	if req.EffectiveFrom.IsZero() {
		writeAppError(w, apperr.Validation("effective_from is required"))
		return
	}

	ov, err := h.overrides.Create(householdID, taskID, scope, req.EffectiveFrom, req.EffectiveTo, action, req.NewFrequency)
	if err != nil {
		// Window validation happens at the store boundary.
		writeAppError(w, apperr.Validation("%v", err))
		return
	}

	h.logger.Info("override created", "task_id", taskID, "scope", scope, "action", action)
	writeJSON(w, http.StatusCreated, ov)
}

func (h *OverrideHandler) List(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseIDParam(r)
	if err != nil {
		writeAppError(w, apperr.Validation("invalid task id"))
		return
	}
	householdID, appErr := parseHouseholdID(r.URL.Query().Get("household_id"))
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}
	list, err := h.overrides.ListByTask(householdID, taskID)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	if list == nil {
		list = []*model.TaskOverride{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OverrideHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeAppError(w, apperr.Validation("invalid override id"))
		return
	}
	existing, err := h.overrides.GetByID(id)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	if existing == nil {
		writeAppError(w, apperr.NotFound("override %d", id))
		return
	}
	if err := h.overrides.Delete(id); err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type effectiveResponse struct {
	TaskID    int64               `json:"task_id"`
	Date      string              `json:"date"`
	Excluded  bool                `json:"excluded"`
	Frequency string              `json:"frequency"`
	Governing *model.TaskOverride `json:"governing"`
}

// Effective reports the override outcome for a task on a given date: the
// single governing override, whether the task is excluded, and the
// effective frequency.
func (h *OverrideHandler) Effective(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseIDParam(r)
	if err != nil {
		writeAppError(w, apperr.Validation("invalid task id"))
		return
	}
	householdID, appErr := parseHouseholdID(r.URL.Query().Get("household_id"))
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		writeAppError(w, apperr.Validation("date query parameter is required (YYYY-MM-DD)"))
		return
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		writeAppError(w, apperr.Validation("invalid date %q, want YYYY-MM-DD", dateStr))
		return
	}

	task, err := h.tasks.GetByID(taskID)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	if task == nil || task.HouseholdID != householdID {
		writeAppError(w, apperr.NotFound("task %d", taskID))
		return
	}

	list, err := h.overrides.ListByTask(householdID, taskID)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	overrides := make([]model.TaskOverride, 0, len(list))
	for _, o := range list {
		overrides = append(overrides, *o)
	}

	writeJSON(w, http.StatusOK, effectiveResponse{
		TaskID:    taskID,
		Date:      date.Format("2006-01-02"),
		Excluded:  override.Excluded(overrides, taskID, date),
		Frequency: override.EffectiveFrequency(*task, overrides, date),
		Governing: override.Resolve(overrides, taskID, date),
	})
}
