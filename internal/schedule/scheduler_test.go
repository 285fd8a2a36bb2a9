package schedule

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/evenly-app/evenly/internal/middleware"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStartRejectsNonPositiveInterval(t *testing.T) {
	s := New(nil, nil, nil, middleware.NewRateLimiter(), testLogger())
	if err := s.Start(0); err == nil {
		t.Fatal("expected error for zero sweep interval")
	}
	if err := s.Start(-time.Minute); err == nil {
		t.Fatal("expected error for negative sweep interval")
	}
}

func TestStartRegistersAllJobs(t *testing.T) {
	s := New(nil, nil, nil, middleware.NewRateLimiter(), testLogger())
	if err := s.Start(time.Hour); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	// sweep, session cleanup, attempt prune, rate limiter prune
	if got := len(s.cron.Entries()); got != 4 {
		t.Errorf("registered jobs = %d, want 4", got)
	}
}
