package auth

import (
	"context"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	ac := AuthContext{UserID: 1, HouseholdID: 2, Role: "admin", SessionID: 3}

	got, ok := FromContext(WithAuth(context.Background(), ac))
	if !ok {
		t.Fatal("expected identity in context")
	}
	if got != ac {
		t.Errorf("got %+v, want %+v", got, ac)
	}
}

func TestMissingContext(t *testing.T) {
	bg := context.Background()

	if _, ok := FromContext(bg); ok {
		t.Error("FromContext on a bare context should report false")
	}
	if HouseholdID(bg) != 0 || UserID(bg) != 0 {
		t.Error("id helpers should return 0 outside a request")
	}
	if IsAdmin(bg) {
		t.Error("IsAdmin should be false outside a request")
	}
}

func TestIsAdmin(t *testing.T) {
	admin := WithAuth(context.Background(), AuthContext{Role: "admin"})
	member := WithAuth(context.Background(), AuthContext{Role: "member"})

	if !IsAdmin(admin) {
		t.Error("admin role should pass IsAdmin")
	}
	if IsAdmin(member) {
		t.Error("member role should fail IsAdmin")
	}
}

func TestHelperAccessors(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{UserID: 7, HouseholdID: 42})

	if got := UserID(ctx); got != 7 {
		t.Errorf("UserID = %d, want 7", got)
	}
	if got := HouseholdID(ctx); got != 42 {
		t.Errorf("HouseholdID = %d, want 42", got)
	}
}
