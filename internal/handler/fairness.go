package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/evenly-app/evenly/internal/apperr"
	"github.com/evenly-app/evenly/internal/fairness"
	"github.com/evenly-app/evenly/internal/model"
	"github.com/evenly-app/evenly/internal/override"
	"github.com/evenly-app/evenly/internal/store"
)

type FairnessHandler struct {
	occurrences *store.OccurrenceStore
	tasks       *store.TaskStore
	people      *store.PersonStore
	disruptions *store.DisruptionStore
	overrides   *store.OverrideStore
	cfg         fairness.Config
	logger      *slog.Logger
}

func NewFairnessHandler(os *store.OccurrenceStore, ts *store.TaskStore, ps *store.PersonStore, ds *store.DisruptionStore, ovs *store.OverrideStore, cfg fairness.Config, logger *slog.Logger) *FairnessHandler {
	return &FairnessHandler{
		occurrences: os,
		tasks:       ts,
		people:      ps,
		disruptions: ds,
		overrides:   ovs,
		cfg:         cfg,
		logger:      logger.With("component", "fairness_handler"),
	}
}

type fairnessResponse struct {
	WeekStart   string                    `json:"week_start"`
	Raw         *fairness.Result          `json:"raw"`
	Adjusted    *fairness.Result          `json:"adjusted"`
	Adjustments []fairness.Adjustment     `json:"adjustments"`
	Suggestions []fairness.SwapSuggestion `json:"suggestions"`
}

// Week computes the fairness picture for one week: the raw score, the
// disruption-adjusted score, and swap suggestions.
func (h *FairnessHandler) Week(w http.ResponseWriter, r *http.Request) {
	householdID, appErr := parseHouseholdID(r.PathValue("id"))
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}

	weekStart, appErr := parseWeekParam(r)
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}
	weekEnd := weekStart.AddDate(0, 0, 7)

	assignments, people, err := h.loadAssignments(householdID, weekStart, weekEnd)
	if err != nil {
		h.logger.Error("load week assignments", "household_id", householdID, "error", err)
		writeAppError(w, apperr.Persistence(err))
		return
	}

	raw := fairness.ComputeFairness(fairness.ComputeSplit(assignments, people), people, h.cfg)

	disruptions, err := h.disruptions.ListByWeek(householdID, weekStart)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	ds := make([]model.Disruption, 0, len(disruptions))
	for _, d := range disruptions {
		ds = append(ds, *d)
	}
	adjusted, adjustments := fairness.Adjust(raw, ds)

	suggestions := fairness.SuggestSwaps(assignments, people, h.cfg)
	if suggestions == nil {
		suggestions = []fairness.SwapSuggestion{}
	}
	if adjustments == nil {
		adjustments = []fairness.Adjustment{}
	}

	writeJSON(w, http.StatusOK, fairnessResponse{
		WeekStart:   weekStart.Format("2006-01-02"),
		Raw:         raw,
		Adjusted:    adjusted,
		Adjustments: adjustments,
		Suggestions: suggestions,
	})
}

// loadAssignments joins the week's occurrences with task and person data
// into the shape the fairness calculator consumes. Occurrences whose task
// is excluded by an override for that day are left out.
func (h *FairnessHandler) loadAssignments(householdID int64, start, end time.Time) ([]fairness.Assignment, []model.Person, error) {
	occs, err := h.occurrences.ListByDateRange(householdID, start, end)
	if err != nil {
		return nil, nil, err
	}
	taskList, err := h.tasks.ListByHousehold(householdID)
	if err != nil {
		return nil, nil, err
	}
	peopleList, err := h.people.ListByHousehold(householdID)
	if err != nil {
		return nil, nil, err
	}
	overrideList, err := h.overrides.ListByHousehold(householdID)
	if err != nil {
		return nil, nil, err
	}

	tasks := make(map[int64]*model.Task, len(taskList))
	for _, t := range taskList {
		tasks[t.ID] = t
	}
	dislikes := make(map[int64]map[string]bool, len(peopleList))
	people := make([]model.Person, 0, len(peopleList))
	for _, p := range peopleList {
		people = append(people, *p)
		tags := make(map[string]bool, len(p.DislikedTags))
		for _, tag := range p.DislikedTags {
			tags[tag] = true
		}
		dislikes[p.ID] = tags
	}
	overrides := make([]model.TaskOverride, 0, len(overrideList))
	for _, o := range overrideList {
		overrides = append(overrides, *o)
	}

	var assignments []fairness.Assignment
	for _, occ := range occs {
		if occ.AssignedPerson == nil {
			continue
		}
		task, ok := tasks[occ.TaskID]
		if !ok {
			continue
		}
		if override.Excluded(overrides, task.ID, occ.Date) {
			continue
		}
		assignments = append(assignments, fairness.Assignment{
			OccurrenceID:    occ.ID,
			TaskID:          task.ID,
			PersonID:        *occ.AssignedPerson,
			Status:          occ.Status,
			Date:            occ.Date,
			DurationMinutes: task.DefaultDuration,
			Difficulty:      task.Difficulty,
			CoopRole:        occ.CoopRole,
			Disliked:        dislikes[*occ.AssignedPerson][task.Category],
		})
	}
	return assignments, people, nil
}

func parseWeekParam(r *http.Request) (time.Time, *apperr.Error) {
	week := r.URL.Query().Get("week")
	if week == "" {
		return time.Time{}, apperr.Validation("week query parameter is required (YYYY-MM-DD)")
	}
	t, err := time.Parse("2006-01-02", week)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid week %q, want YYYY-MM-DD", week)
	}
	return t, nil
}
