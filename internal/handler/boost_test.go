package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/evenly-app/evenly/internal/boost"
	"github.com/evenly-app/evenly/internal/database"
	"github.com/evenly-app/evenly/internal/model"
	"github.com/evenly-app/evenly/internal/store"
)

// recordingChannel stands in for a real delivery channel and remembers
// every send.
type recordingChannel struct {
	name  string
	sends []boost.Item
	fail  bool
}

func (c *recordingChannel) Name() string { return c.name }

func (c *recordingChannel) Send(item boost.Item, tier boost.Tier) error {
	if c.fail {
		return fmt.Errorf("gateway unreachable")
	}
	c.sends = append(c.sends, item)
	return nil
}

type boostFixture struct {
	handler     *BoostHandler
	occurrences *store.OccurrenceStore
	tasks       *store.TaskStore
	households  *store.HouseholdStore
	persons     *store.PersonStore
	boostLog    *store.BoostLogStore
	channel     *recordingChannel
}

func setupBoostHandler(t *testing.T) *boostFixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &boostFixture{
		occurrences: store.NewOccurrenceStore(db),
		tasks:       store.NewTaskStore(db),
		households:  store.NewHouseholdStore(db),
		persons:     store.NewPersonStore(db),
		boostLog:    store.NewBoostLogStore(db),
		channel:     &recordingChannel{name: model.ChannelPush},
	}
	engine := boost.NewEngine(f.occurrences, f.households, f.boostLog, []boost.Channel{f.channel}, logger)
	f.handler = NewBoostHandler(engine, f.occurrences, f.households, f.boostLog, logger)
	return f
}

// seedBoostCandidate creates a household with boosts enabled on the push
// channel and one scheduled occurrence due at the given offset from now.
// The quiet window is zero-length so the wall clock never suppresses sends.
func (f *boostFixture) seedBoostCandidate(t *testing.T, dueIn time.Duration) (*model.Household, *model.Occurrence) {
	t.Helper()
	h, err := f.households.Create("The Does", "")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	settings := model.BoostSettings{
		Enabled:    true,
		Channels:   []string{model.ChannelPush},
		QuietHours: model.QuietHours{Start: "00:00", End: "00:00"},
	}
	if err := f.households.SetBoostSettings(h.ID, settings); err != nil {
		t.Fatalf("set boost settings: %v", err)
	}
	task, err := f.tasks.Create(h.ID, "Dishes", "kitchen", 20, 1, "daily")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	due := time.Now().UTC().Add(dueIn)
	occ, err := f.occurrences.Create(task.ID, h.ID, time.Now().UTC(), nil, "", false, true, &due)
	if err != nil {
		t.Fatalf("create occurrence: %v", err)
	}
	return h, occ
}

func postJSON(t *testing.T, h http.HandlerFunc, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestTriggerSendsDueBoost(t *testing.T) {
	f := setupBoostHandler(t)
	h, occ := f.seedBoostCandidate(t, 25*time.Hour)

	rec := postJSON(t, f.handler.Trigger, "/api/boosts/trigger", map[string]any{
		"household_id":  fmt.Sprint(h.ID),
		"occurrence_id": occ.ID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	var resp triggerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Processed != 1 {
		t.Fatalf("processed = %d, want 1", resp.Processed)
	}
	if !resp.Results[0].Sent {
		t.Fatalf("result not sent: %+v", resp.Results[0])
	}
	if resp.Results[0].Tier != "t24h" {
		t.Errorf("tier = %q, want t24h", resp.Results[0].Tier)
	}
	if len(f.channel.sends) != 1 {
		t.Fatalf("channel sends = %d, want 1", len(f.channel.sends))
	}

	// The reminder level must have been claimed before dispatch.
	got, err := f.occurrences.GetByID(occ.ID)
	if err != nil {
		t.Fatalf("get occurrence: %v", err)
	}
	if got.ReminderLevel != 1 {
		t.Errorf("reminder level = %d, want 1", got.ReminderLevel)
	}

	attempts, err := f.boostLog.ListAttemptsByOccurrence(occ.ID)
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("attempts = %d, want 1", len(attempts))
	}
	if attempts[0].Status != model.AttemptSent {
		t.Errorf("attempt status = %q, want %q", attempts[0].Status, model.AttemptSent)
	}
}

func TestTriggerSecondRunIsSilent(t *testing.T) {
	f := setupBoostHandler(t)
	h, occ := f.seedBoostCandidate(t, 25*time.Hour)

	body := map[string]any{"household_id": fmt.Sprint(h.ID), "occurrence_id": occ.ID}
	postJSON(t, f.handler.Trigger, "/api/boosts/trigger", body)
	rec := postJSON(t, f.handler.Trigger, "/api/boosts/trigger", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp triggerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Results[0].Sent {
		t.Errorf("second run re-sent the same tier: %+v", resp.Results[0])
	}
	if len(f.channel.sends) != 1 {
		t.Errorf("channel sends = %d, want 1", len(f.channel.sends))
	}
}

func TestTriggerFailedDispatchIsRecorded(t *testing.T) {
	f := setupBoostHandler(t)
	h, occ := f.seedBoostCandidate(t, 25*time.Hour)
	f.channel.fail = true

	rec := postJSON(t, f.handler.Trigger, "/api/boosts/trigger", map[string]any{
		"household_id":  fmt.Sprint(h.ID),
		"occurrence_id": occ.ID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	attempts, err := f.boostLog.ListAttemptsByOccurrence(occ.ID)
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("attempts = %d, want 1", len(attempts))
	}
	if attempts[0].Status != model.AttemptFailed {
		t.Errorf("attempt status = %q, want %q", attempts[0].Status, model.AttemptFailed)
	}
	if attempts[0].Error == "" {
		t.Error("failed attempt has no error message")
	}
}

func TestTriggerDemoHouseholdRefused(t *testing.T) {
	f := setupBoostHandler(t)

	for _, id := range []string{"demo-42", "local-1", "not-a-number"} {
		rec := postJSON(t, f.handler.Trigger, "/api/boosts/trigger", map[string]any{
			"household_id": id,
			"check_all":    true,
		})
		if rec.Code != http.StatusForbidden {
			t.Errorf("household %q: status = %d, want 403", id, rec.Code)
		}
		var resp struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Error.Code != "DEMO_MODE" {
			t.Errorf("household %q: code = %q, want DEMO_MODE", id, resp.Error.Code)
		}
	}
}

func TestTriggerRequiresTarget(t *testing.T) {
	f := setupBoostHandler(t)
	h, _ := f.seedBoostCandidate(t, 25*time.Hour)

	rec := postJSON(t, f.handler.Trigger, "/api/boosts/trigger", map[string]any{
		"household_id": fmt.Sprint(h.ID),
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSweepProcessesConfiguredHouseholds(t *testing.T) {
	f := setupBoostHandler(t)
	f.seedBoostCandidate(t, 25*time.Hour)

	rec := postJSON(t, f.handler.Sweep, "/api/boosts/sweep", map[string]any{"origin": "test"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var summary boost.SweepSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.HouseholdsProcessed != 1 {
		t.Errorf("households processed = %d, want 1", summary.HouseholdsProcessed)
	}
	if summary.TotalSent != 1 {
		t.Errorf("total sent = %d, want 1", summary.TotalSent)
	}
	if summary.QuietHours {
		t.Error("quiet_hours should be false when the household has no quiet window")
	}
	if len(summary.ActiveStatuses) != 1 || summary.ActiveStatuses[0] != string(model.StatusScheduled) {
		t.Errorf("active statuses = %v, want [scheduled]", summary.ActiveStatuses)
	}
}

func TestRespondCompletedMarksDone(t *testing.T) {
	f := setupBoostHandler(t)
	h, occ := f.seedBoostCandidate(t, 25*time.Hour)

	buf, _ := json.Marshal(map[string]any{
		"household_id":     fmt.Sprint(h.ID),
		"interaction_type": model.InteractionCompleted,
	})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/boosts/respond?id=%d", occ.ID), bytes.NewReader(buf))
	req.SetPathValue("id", fmt.Sprint(occ.ID))
	rec := httptest.NewRecorder()
	f.handler.Respond(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	got, err := f.occurrences.GetByID(occ.ID)
	if err != nil {
		t.Fatalf("get occurrence: %v", err)
	}
	if got.Status != model.StatusDone {
		t.Errorf("status = %q, want %q", got.Status, model.StatusDone)
	}

	interactions, err := f.boostLog.ListInteractionsByOccurrence(occ.ID)
	if err != nil {
		t.Fatalf("list interactions: %v", err)
	}
	if len(interactions) != 1 {
		t.Fatalf("interactions = %d, want 1", len(interactions))
	}
	if interactions[0].InteractionType != model.InteractionCompleted {
		t.Errorf("interaction type = %q", interactions[0].InteractionType)
	}
}

func TestRespondAcknowledgedLeavesStatus(t *testing.T) {
	f := setupBoostHandler(t)
	h, occ := f.seedBoostCandidate(t, 25*time.Hour)

	buf, _ := json.Marshal(map[string]any{
		"household_id":     fmt.Sprint(h.ID),
		"interaction_type": model.InteractionAcknowledged,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/boosts/respond", bytes.NewReader(buf))
	req.SetPathValue("id", fmt.Sprint(occ.ID))
	rec := httptest.NewRecorder()
	f.handler.Respond(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	got, err := f.occurrences.GetByID(occ.ID)
	if err != nil {
		t.Fatalf("get occurrence: %v", err)
	}
	if got.Status != model.StatusScheduled {
		t.Errorf("status = %q, want %q", got.Status, model.StatusScheduled)
	}
}

func TestRespondUnknownInteractionRejected(t *testing.T) {
	f := setupBoostHandler(t)
	h, occ := f.seedBoostCandidate(t, 25*time.Hour)

	buf, _ := json.Marshal(map[string]any{
		"household_id":     fmt.Sprint(h.ID),
		"interaction_type": "applauded",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/boosts/respond", bytes.NewReader(buf))
	req.SetPathValue("id", fmt.Sprint(occ.ID))
	rec := httptest.NewRecorder()
	f.handler.Respond(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRespondRescheduledMovesOccurrence(t *testing.T) {
	f := setupBoostHandler(t)
	h, occ := f.seedBoostCandidate(t, 25*time.Hour)

	buf, _ := json.Marshal(map[string]any{
		"household_id":     fmt.Sprint(h.ID),
		"interaction_type": model.InteractionRescheduled,
		"new_date":         "2026-09-03",
		"new_time":         "18:30",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/occurrences/respond", bytes.NewReader(buf))
	req.SetPathValue("id", fmt.Sprint(occ.ID))
	rec := httptest.NewRecorder()
	f.handler.Respond(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	got, err := f.occurrences.GetByID(occ.ID)
	if err != nil {
		t.Fatalf("get occurrence: %v", err)
	}
	if got.Date.Format("2006-01-02") != "2026-09-03" {
		t.Errorf("date = %s, want 2026-09-03", got.Date.Format("2006-01-02"))
	}
	if got.DueAt == nil {
		t.Fatal("due_at should be set from new_time")
	}
	if hh, mm, _ := got.DueAt.Clock(); hh != 18 || mm != 30 {
		t.Errorf("due_at clock = %02d:%02d, want 18:30", hh, mm)
	}
	if got.Status != model.StatusScheduled {
		t.Errorf("status = %q, want %q", got.Status, model.StatusScheduled)
	}
}

func TestRespondRescheduledRequiresDate(t *testing.T) {
	f := setupBoostHandler(t)
	h, occ := f.seedBoostCandidate(t, 25*time.Hour)
	before := occ.Date

	buf, _ := json.Marshal(map[string]any{
		"household_id":     fmt.Sprint(h.ID),
		"interaction_type": model.InteractionRescheduled,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/occurrences/respond", bytes.NewReader(buf))
	req.SetPathValue("id", fmt.Sprint(occ.ID))
	rec := httptest.NewRecorder()
	f.handler.Respond(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	// A rejected reschedule leaves no interaction behind.
	interactions, err := f.boostLog.ListInteractionsByOccurrence(occ.ID)
	if err != nil {
		t.Fatalf("list interactions: %v", err)
	}
	if len(interactions) != 0 {
		t.Errorf("interactions = %d, want 0", len(interactions))
	}
	got, err := f.occurrences.GetByID(occ.ID)
	if err != nil {
		t.Fatalf("get occurrence: %v", err)
	}
	if !got.Date.Equal(before) {
		t.Errorf("date changed to %s on a rejected request", got.Date)
	}
}

func TestRespondSwappedReassigns(t *testing.T) {
	f := setupBoostHandler(t)
	h, occ := f.seedBoostCandidate(t, 25*time.Hour)
	person, err := f.persons.Create(h.ID, "Jamie", model.RoleAdult, 200, nil, nil)
	if err != nil {
		t.Fatalf("create person: %v", err)
	}

	buf, _ := json.Marshal(map[string]any{
		"household_id":        fmt.Sprint(h.ID),
		"interaction_type":    model.InteractionSwapped,
		"new_assigned_person": person.ID,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/occurrences/respond", bytes.NewReader(buf))
	req.SetPathValue("id", fmt.Sprint(occ.ID))
	rec := httptest.NewRecorder()
	f.handler.Respond(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	got, err := f.occurrences.GetByID(occ.ID)
	if err != nil {
		t.Fatalf("get occurrence: %v", err)
	}
	if got.AssignedPerson == nil || *got.AssignedPerson != person.ID {
		t.Errorf("assigned person = %v, want %d", got.AssignedPerson, person.ID)
	}
}

func TestRespondSwappedRequiresPerson(t *testing.T) {
	f := setupBoostHandler(t)
	h, occ := f.seedBoostCandidate(t, 25*time.Hour)

	buf, _ := json.Marshal(map[string]any{
		"household_id":     fmt.Sprint(h.ID),
		"interaction_type": model.InteractionSwapped,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/occurrences/respond", bytes.NewReader(buf))
	req.SetPathValue("id", fmt.Sprint(occ.ID))
	rec := httptest.NewRecorder()
	f.handler.Respond(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRespondBackupRequestedSetsFlag(t *testing.T) {
	f := setupBoostHandler(t)
	h, occ := f.seedBoostCandidate(t, 25*time.Hour)

	buf, _ := json.Marshal(map[string]any{
		"household_id":     fmt.Sprint(h.ID),
		"interaction_type": model.InteractionBackupRequested,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/occurrences/respond", bytes.NewReader(buf))
	req.SetPathValue("id", fmt.Sprint(occ.ID))
	rec := httptest.NewRecorder()
	f.handler.Respond(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	got, err := f.occurrences.GetByID(occ.ID)
	if err != nil {
		t.Fatalf("get occurrence: %v", err)
	}
	if !got.BackupRequested {
		t.Error("backup_requested should be set")
	}
	if got.Status != model.StatusScheduled {
		t.Errorf("status = %q, a backup request must not change it", got.Status)
	}
}

func TestPutSettingsRejectsUnknownChannel(t *testing.T) {
	f := setupBoostHandler(t)
	h, _ := f.seedBoostCandidate(t, 25*time.Hour)

	buf, _ := json.Marshal(model.BoostSettings{
		Enabled:    true,
		Channels:   []string{"pigeon"},
		QuietHours: model.QuietHours{Start: "21:30", End: "07:00"},
	})
	req := httptest.NewRequest(http.MethodPut, "/api/households/1/boost-settings", bytes.NewReader(buf))
	req.SetPathValue("id", fmt.Sprint(h.ID))
	rec := httptest.NewRecorder()
	f.handler.PutSettings(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	f := setupBoostHandler(t)
	h, _ := f.seedBoostCandidate(t, 25*time.Hour)

	want := model.BoostSettings{
		Enabled:    true,
		Channels:   []string{model.ChannelEmail, model.ChannelSMS},
		QuietHours: model.QuietHours{Start: "22:00", End: "06:30"},
	}
	buf, _ := json.Marshal(want)
	req := httptest.NewRequest(http.MethodPut, "/api/households/1/boost-settings", bytes.NewReader(buf))
	req.SetPathValue("id", fmt.Sprint(h.ID))
	rec := httptest.NewRecorder()
	f.handler.PutSettings(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d, body %s", rec.Code, rec.Body.String())
	}

	getReq := httptest.NewRequest(http.MethodGet, "/api/households/1/boost-settings", nil)
	getReq.SetPathValue("id", fmt.Sprint(h.ID))
	getRec := httptest.NewRecorder()
	f.handler.GetSettings(getRec, getReq)
	if getRec.Code != http.StatusOK {
		t.Fatalf("get status = %d", getRec.Code)
	}
	var got model.BoostSettings
	if err := json.Unmarshal(getRec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if !got.Enabled || len(got.Channels) != 2 || got.QuietHours.Start != "22:00" {
		t.Errorf("settings round trip = %+v", got)
	}
}
