package store

import (
	"testing"

	"github.com/evenly-app/evenly/internal/database"
	"github.com/evenly-app/evenly/internal/model"
)

func setupPersonTestDB(t *testing.T) (*PersonStore, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	hs := NewHouseholdStore(db)
	h, err := hs.Create("The Does", "")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	return NewPersonStore(db), h.ID
}

func TestPersonRoundTripsPreferences(t *testing.T) {
	ps, hid := setupPersonTestDB(t)

	p, err := ps.Create(hid, "Alex", model.RoleAdult, 300, []string{"bathroom", "ironing"}, []int64{7})
	if err != nil {
		t.Fatalf("create person: %v", err)
	}

	got, err := ps.GetByID(p.ID)
	if err != nil {
		t.Fatalf("get person: %v", err)
	}
	if len(got.DislikedTags) != 2 || got.DislikedTags[0] != "bathroom" {
		t.Errorf("disliked tags = %v, want [bathroom ironing]", got.DislikedTags)
	}
	if len(got.NoGoTaskIDs) != 1 || got.NoGoTaskIDs[0] != 7 {
		t.Errorf("no-go task ids = %v, want [7]", got.NoGoTaskIDs)
	}
	if !got.IsAdult() {
		t.Error("expected adult")
	}
}

func TestPersonNilPreferencesBecomeEmpty(t *testing.T) {
	ps, hid := setupPersonTestDB(t)

	p, err := ps.Create(hid, "Kim", model.RoleChild, 0, nil, nil)
	if err != nil {
		t.Fatalf("create person: %v", err)
	}
	got, err := ps.GetByID(p.ID)
	if err != nil {
		t.Fatalf("get person: %v", err)
	}
	if got.DislikedTags == nil || len(got.DislikedTags) != 0 {
		t.Errorf("disliked tags = %v, want empty slice", got.DislikedTags)
	}
	if got.IsAdult() {
		t.Error("expected child")
	}
}

func TestPersonRejectsUnknownRole(t *testing.T) {
	ps, hid := setupPersonTestDB(t)

	if _, err := ps.Create(hid, "Pat", "robot", 0, nil, nil); err == nil {
		t.Error("expected error for unknown role")
	}
}
