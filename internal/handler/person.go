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

type PersonHandler struct {
	people *store.PersonStore
	logger *slog.Logger
}

func NewPersonHandler(ps *store.PersonStore, logger *slog.Logger) *PersonHandler {
	return &PersonHandler{people: ps, logger: logger.With("component", "person_handler")}
}

type personRequest struct {
	HouseholdID      string   `json:"household_id"`
	Name             string   `json:"name"`
	Role             string   `json:"role"`
	WeeklyTimeBudget int      `json:"weekly_time_budget"`
	DislikedTags     []string `json:"disliked_tags"`
	NoGoTaskIDs      []int64  `json:"no_go_task_ids"`
}

func (h *PersonHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req personRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, apperr.Validation("invalid JSON"))
		return
	}
	householdID, appErr := parseHouseholdID(req.HouseholdID)
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeAppError(w, apperr.Validation("name is required"))
		return
	}
	if req.Role == "" {
		req.Role = string(model.RoleAdult)
	}

	p, err := h.people.Create(householdID, req.Name, model.PersonRole(req.Role), req.WeeklyTimeBudget, req.DislikedTags, req.NoGoTaskIDs)
	if err != nil {
		writeAppError(w, apperr.Validation("%v", err))
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PersonHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID, appErr := parseHouseholdID(r.URL.Query().Get("household_id"))
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}
	people, err := h.people.ListByHousehold(householdID)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	if people == nil {
		people = []*model.Person{}
	}
	writeJSON(w, http.StatusOK, people)
}

func (h *PersonHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeAppError(w, apperr.Validation("invalid person id"))
		return
	}
	existing, err := h.people.GetByID(id)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	if existing == nil {
		writeAppError(w, apperr.NotFound("person %d", id))
		return
	}

	var req personRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, apperr.Validation("invalid JSON"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeAppError(w, apperr.Validation("name is required"))
		return
	}

	p, err := h.people.Update(id, req.Name, req.WeeklyTimeBudget, req.DislikedTags, req.NoGoTaskIDs)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PersonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeAppError(w, apperr.Validation("invalid person id"))
		return
	}
	existing, err := h.people.GetByID(id)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	if existing == nil {
		writeAppError(w, apperr.NotFound("person %d", id))
		return
	}
	if err := h.people.Delete(id); err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
