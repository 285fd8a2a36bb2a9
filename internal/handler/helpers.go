package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/evenly-app/evenly/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeAppError renders a typed error as JSON. The wrapped cause never
// reaches the client; persistence errors carry a correlation id instead.
func writeAppError(w http.ResponseWriter, err *apperr.Error) {
	writeJSON(w, err.Status(), map[string]any{"error": err})
}

func parseIDParam(r *http.Request) (int64, error) {
	idStr := r.PathValue("id")
	return strconv.ParseInt(idStr, 10, 64)
}

// parseHouseholdID resolves a client-supplied household identifier. Demo
// and local-only households are identified by prefix or by a non-numeric
// id; writes against them are refused rather than silently dropped.
func parseHouseholdID(s string) (int64, *apperr.Error) {
	if s == "" {
		return 0, apperr.Validation("household id is required")
	}
	if strings.HasPrefix(s, "demo-") || strings.HasPrefix(s, "local-") {
		return 0, apperr.DemoMode(s)
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, apperr.DemoMode(s)
	}
	return id, nil
}
