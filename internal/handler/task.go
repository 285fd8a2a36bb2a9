package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/evenly-app/evenly/internal/apperr"
	"github.com/evenly-app/evenly/internal/model"
	"github.com/evenly-app/evenly/internal/store"
)

type TaskHandler struct {
	tasks  *store.TaskStore
	logger *slog.Logger
}

func NewTaskHandler(ts *store.TaskStore, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: ts, logger: logger.With("component", "task_handler")}
}

type taskRequest struct {
	HouseholdID     string `json:"household_id"`
	Title           string `json:"title"`
	Category        string `json:"category"`
	DefaultDuration int    `json:"default_duration"`
	Difficulty      int    `json:"difficulty"`
	Frequency       string `json:"frequency"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, apperr.Validation("invalid JSON"))
		return
	}
	householdID, appErr := parseHouseholdID(req.HouseholdID)
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeAppError(w, apperr.Validation("title is required"))
		return
	}
	if req.DefaultDuration == 0 {
		req.DefaultDuration = 15
	}
	if req.Difficulty == 0 {
		req.Difficulty = 1
	}

	task, err := h.tasks.Create(householdID, req.Title, req.Category, req.DefaultDuration, req.Difficulty, req.Frequency)
	if err != nil {
		writeAppError(w, apperr.Validation("%v", err))
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID, appErr := parseHouseholdID(r.URL.Query().Get("household_id"))
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}
	tasks, err := h.tasks.ListByHousehold(householdID)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	if tasks == nil {
		tasks = []*model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeAppError(w, apperr.Validation("invalid task id"))
		return
	}
	existing, err := h.tasks.GetByID(id)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	if existing == nil {
		writeAppError(w, apperr.NotFound("task %d", id))
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, apperr.Validation("invalid JSON"))
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeAppError(w, apperr.Validation("title is required"))
		return
	}

	task, err := h.tasks.Update(id, req.Title, req.Category, req.DefaultDuration, req.Difficulty, req.Frequency)
	if err != nil {
		writeAppError(w, apperr.Validation("%v", err))
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeAppError(w, apperr.Validation("invalid task id"))
		return
	}
	existing, err := h.tasks.GetByID(id)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	if existing == nil {
		writeAppError(w, apperr.NotFound("task %d", id))
		return
	}
	if err := h.tasks.Delete(id); err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
