package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/evenly-app/evenly/internal/apperr"
	"github.com/evenly-app/evenly/internal/auth"
	"github.com/evenly-app/evenly/internal/store"
)

const sessionCookieName = "evenly_session"

type AuthHandler struct {
	users      *store.UserStore
	households *store.HouseholdStore
	sessions   *store.SessionStore
	logger     *slog.Logger
}

func NewAuthHandler(us *store.UserStore, hs *store.HouseholdStore, ss *store.SessionStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:      us,
		households: hs,
		sessions:   ss,
		logger:     logger.With("component", "auth"),
	}
}

type registerRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	HouseholdName string `json:"household_name"`
	Timezone      string `json:"timezone"`
}

// Register creates a user, their household, and a session in one step.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, apperr.Validation("invalid JSON"))
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeAppError(w, apperr.Validation("a valid email is required"))
		return
	}
	if len(req.Password) < 8 {
		writeAppError(w, apperr.Validation("password must be at least 8 characters"))
		return
	}
	if strings.TrimSpace(req.HouseholdName) == "" {
		writeAppError(w, apperr.Validation("household_name is required"))
		return
	}

	existing, err := h.users.GetByEmail(req.Email)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	if existing != nil {
		writeAppError(w, apperr.Validation("email is already registered"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}

	user, err := h.users.Create(req.Email, string(hash))
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	household, err := h.households.Create(strings.TrimSpace(req.HouseholdName), req.Timezone)
	if err != nil {
		writeAppError(w, apperr.Validation("%v", err))
		return
	}
	if _, err := h.households.AddMember(household.ID, user.ID, "admin"); err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}

	sess, err := h.sessions.Create(user.ID, household.ID)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	setSessionCookie(w, r, sess.Token)

	h.logger.Info("user registered", "user_id", user.ID, "household_id", household.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"user":      user,
		"household": household,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, apperr.Validation("invalid JSON"))
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.users.GetByEmail(req.Email)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		// Same response for unknown email and wrong password.
		writeAppError(w, apperr.Auth("invalid email or password"))
		return
	}

	householdID, err := h.households.FirstHouseholdForUser(user.ID)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	if householdID == 0 {
		writeAppError(w, apperr.Auth("user has no household"))
		return
	}

	sess, err := h.sessions.Create(user.ID, householdID)
	if err != nil {
		writeAppError(w, apperr.Persistence(err))
		return
	}
	setSessionCookie(w, r, sess.Token)

	writeJSON(w, http.StatusOK, map[string]any{
		"user":         user,
		"household_id": householdID,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if ac, ok := auth.FromContext(r.Context()); ok {
		if err := h.sessions.Delete(ac.SessionID); err != nil {
			h.logger.Warn("delete session", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   90 * 24 * 60 * 60, // 90 days
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
}
