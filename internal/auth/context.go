// Package auth carries the authenticated caller through a request's
// context: who they are, which household the session is scoped to, and
// their role in it.
package auth

import "context"

type ctxKey struct{}

// AuthContext is the identity RequireAuth resolves from a session cookie.
type AuthContext struct {
	UserID      int64
	HouseholdID int64
	Role        string
	SessionID   int64
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(ctxKey{}).(AuthContext)
	return ac, ok
}

// HouseholdID returns the session's household, or 0 outside a request.
func HouseholdID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.HouseholdID
}

// UserID returns the authenticated user, or 0 outside a request.
func UserID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.UserID
}

// IsAdmin reports whether the caller holds the admin role in the session's
// household.
func IsAdmin(ctx context.Context) bool {
	ac, ok := FromContext(ctx)
	return ok && ac.Role == "admin"
}
