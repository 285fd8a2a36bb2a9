package store

import (
	"testing"

	"github.com/evenly-app/evenly/internal/database"
	"github.com/evenly-app/evenly/internal/model"
)

func setupHouseholdTestDB(t *testing.T) *HouseholdStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewHouseholdStore(db)
}

func TestHouseholdCreateDefaultsTimezone(t *testing.T) {
	hs := setupHouseholdTestDB(t)

	h, err := hs.Create("The Does", "")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	if h.Timezone != model.DefaultTimezone {
		t.Errorf("timezone = %q, want %q", h.Timezone, model.DefaultTimezone)
	}
}

func TestHouseholdCreateRejectsBadTimezone(t *testing.T) {
	hs := setupHouseholdTestDB(t)

	if _, err := hs.Create("The Does", "Mars/Olympus"); err == nil {
		t.Error("expected error for unknown timezone")
	}
}

func TestBoostSettingsDefaultWhenUnset(t *testing.T) {
	hs := setupHouseholdTestDB(t)

	h, err := hs.Create("The Does", "")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}

	settings, loc, err := hs.BoostSettings(h.ID)
	if err != nil {
		t.Fatalf("boost settings: %v", err)
	}
	if settings.Enabled {
		t.Error("expected boosts disabled by default")
	}
	if settings.QuietHours.Start != "21:30" || settings.QuietHours.End != "07:00" {
		t.Errorf("quiet hours = %+v, want 21:30-07:00", settings.QuietHours)
	}
	if loc.String() != model.DefaultTimezone {
		t.Errorf("location = %q, want %q", loc.String(), model.DefaultTimezone)
	}
}

func TestBoostSettingsRoundTrip(t *testing.T) {
	hs := setupHouseholdTestDB(t)

	h, err := hs.Create("The Does", "Europe/Berlin")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}

	want := model.BoostSettings{
		Enabled:     true,
		Channels:    []string{model.ChannelPush, model.ChannelEmail},
		QuietHours:  model.QuietHours{Start: "22:00", End: "06:30"},
		AutoSuggest: map[string]bool{"swap": true},
	}
	if err := hs.SetBoostSettings(h.ID, want); err != nil {
		t.Fatalf("set boost settings: %v", err)
	}

	got, loc, err := hs.BoostSettings(h.ID)
	if err != nil {
		t.Fatalf("boost settings: %v", err)
	}
	if !got.Enabled {
		t.Error("expected boosts enabled")
	}
	if len(got.Channels) != 2 {
		t.Errorf("channels = %v, want two", got.Channels)
	}
	if got.QuietHours.Start != "22:00" {
		t.Errorf("quiet start = %q, want 22:00", got.QuietHours.Start)
	}
	if loc.String() != "Europe/Berlin" {
		t.Errorf("location = %q, want Europe/Berlin", loc.String())
	}
}

func TestSetBoostSettingsRejectsInvalid(t *testing.T) {
	hs := setupHouseholdTestDB(t)

	h, err := hs.Create("The Does", "")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}

	bad := model.BoostSettings{
		Enabled:    true,
		Channels:   []string{"pigeon"},
		QuietHours: model.QuietHours{Start: "21:30", End: "07:00"},
	}
	if err := hs.SetBoostSettings(h.ID, bad); err == nil {
		t.Error("expected error for unknown channel")
	}

	bad = model.BoostSettings{
		Enabled:    true,
		Channels:   []string{model.ChannelPush},
		QuietHours: model.QuietHours{Start: "9pm", End: "07:00"},
	}
	if err := hs.SetBoostSettings(h.ID, bad); err == nil {
		t.Error("expected error for malformed quiet hours")
	}
}

func TestListBoostHouseholdIDs(t *testing.T) {
	hs := setupHouseholdTestDB(t)

	configured, err := hs.Create("Configured", "")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	if _, err := hs.Create("Unconfigured", ""); err != nil {
		t.Fatalf("create household: %v", err)
	}

	settings := model.DefaultBoostSettings()
	settings.Enabled = true
	if err := hs.SetBoostSettings(configured.ID, settings); err != nil {
		t.Fatalf("set boost settings: %v", err)
	}

	ids, err := hs.ListBoostHouseholdIDs()
	if err != nil {
		t.Fatalf("list boost households: %v", err)
	}
	if len(ids) != 1 || ids[0] != configured.ID {
		t.Errorf("ids = %v, want [%d]", ids, configured.ID)
	}
}
