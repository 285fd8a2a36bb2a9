package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/evenly-app/evenly/internal/boost"
	"github.com/evenly-app/evenly/internal/email"
	"github.com/evenly-app/evenly/internal/fairness"
	"github.com/evenly-app/evenly/internal/handler"
	"github.com/evenly-app/evenly/internal/middleware"
	"github.com/evenly-app/evenly/internal/push"
	"github.com/evenly-app/evenly/internal/store"
)

type Server struct {
	db             *sql.DB
	taskH          *handler.TaskHandler
	personH        *handler.PersonHandler
	occurrenceH    *handler.OccurrenceHandler
	overrideH      *handler.OverrideHandler
	disruptionH    *handler.DisruptionHandler
	fairnessH      *handler.FairnessHandler
	boostH         *handler.BoostHandler
	authH          *handler.AuthHandler
	pushH          *handler.PushHandler
	sessionStore   *store.SessionStore
	householdStore *store.HouseholdStore
	boostLogStore  *store.BoostLogStore
	engine         *boost.Engine
	rateLimiter    *middleware.RateLimiter
	logger         *slog.Logger
}

func New(db *sql.DB, emailClient *email.Client, pushCfg push.Config, fairnessCfg fairness.Config, logger *slog.Logger) *Server {
	taskStore := store.NewTaskStore(db)
	personStore := store.NewPersonStore(db)
	occurrenceStore := store.NewOccurrenceStore(db)
	overrideStore := store.NewOverrideStore(db)
	disruptionStore := store.NewDisruptionStore(db)
	boostLogStore := store.NewBoostLogStore(db)
	pushStore := store.NewPushStore(db)

	// Auth stores
	userStore := store.NewUserStore(db)
	householdStore := store.NewHouseholdStore(db)
	sessionStore := store.NewSessionStore(db)

	// Delivery channels. Push and email only come up when their
	// credentials are present; whatsapp and sms hand off at the
	// delivery-attempt row and log the payload.
	channelLogger := logger.With("component", "channel")
	var channels []boost.Channel
	var pushSvc *push.Service
	var pushH *handler.PushHandler
	if pushCfg.VAPIDPublicKey != "" && pushCfg.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(pushCfg.VAPIDPublicKey, pushCfg.VAPIDPrivateKey)
		notifier := push.NewNotifier(pushSvc, pushStore, logger)
		channels = append(channels, boost.NewPushChannel(notifier))
		pushH = handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push_handler"))
	}
	if emailClient.Configured() {
		channels = append(channels, boost.NewEmailChannel(emailClient, userStore))
	}
	channels = append(channels,
		boost.NewLogChannel("whatsapp", channelLogger),
		boost.NewLogChannel("sms", channelLogger),
	)

	engine := boost.NewEngine(occurrenceStore, householdStore, boostLogStore, channels, logger.With("component", "boost"))

	return &Server{
		db:             db,
		taskH:          handler.NewTaskHandler(taskStore, logger.With("component", "task")),
		personH:        handler.NewPersonHandler(personStore, logger.With("component", "person")),
		occurrenceH:    handler.NewOccurrenceHandler(occurrenceStore, taskStore, logger.With("component", "occurrence")),
		overrideH:      handler.NewOverrideHandler(overrideStore, taskStore, logger.With("component", "override")),
		disruptionH:    handler.NewDisruptionHandler(disruptionStore, logger.With("component", "disruption")),
		fairnessH:      handler.NewFairnessHandler(occurrenceStore, taskStore, personStore, disruptionStore, overrideStore, fairnessCfg, logger.With("component", "fairness")),
		boostH:         handler.NewBoostHandler(engine, occurrenceStore, householdStore, boostLogStore, logger.With("component", "boost_handler")),
		authH:          handler.NewAuthHandler(userStore, householdStore, sessionStore, logger.With("component", "auth")),
		pushH:          pushH,
		sessionStore:   sessionStore,
		householdStore: householdStore,
		boostLogStore:  boostLogStore,
		engine:         engine,
		rateLimiter:    middleware.NewRateLimiter(),
		logger:         logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// Engine returns the boost engine for the background sweeper.
func (s *Server) Engine() *boost.Engine {
	return s.engine
}

// BoostLogStore returns the delivery log store for cleanup tasks.
func (s *Server) BoostLogStore() *store.BoostLogStore {
	return s.boostLogStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.householdStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	// Apply request logging middleware
	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /logout", s.authH.Logout)

	// Task API routes
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("PUT /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)

	// Person API routes
	mux.HandleFunc("POST /api/people", s.personH.Create)
	mux.HandleFunc("GET /api/people", s.personH.List)
	mux.HandleFunc("PUT /api/people/{id}", s.personH.Update)
	mux.HandleFunc("DELETE /api/people/{id}", s.personH.Delete)

	// Occurrence API routes
	mux.HandleFunc("POST /api/occurrences", s.occurrenceH.Create)
	mux.HandleFunc("GET /api/occurrences", s.occurrenceH.List)
	mux.HandleFunc("GET /api/occurrences/{id}", s.occurrenceH.Get)
	mux.HandleFunc("PUT /api/occurrences/{id}/status", s.occurrenceH.UpdateStatus)
	mux.HandleFunc("PUT /api/occurrences/{id}/assignee", s.occurrenceH.Reassign)
	mux.HandleFunc("PUT /api/occurrences/{id}/due", s.occurrenceH.Reschedule)

	// Override API routes
	mux.HandleFunc("POST /api/tasks/{id}/overrides", s.overrideH.Create)
	mux.HandleFunc("GET /api/tasks/{id}/overrides", s.overrideH.List)
	mux.HandleFunc("GET /api/tasks/{id}/overrides/effective", s.overrideH.Effective)
	mux.HandleFunc("DELETE /api/overrides/{id}", s.overrideH.Delete)

	// Disruption API routes
	mux.HandleFunc("POST /api/disruptions", s.disruptionH.Create)
	mux.HandleFunc("GET /api/disruptions", s.disruptionH.List)
	mux.HandleFunc("PUT /api/disruptions/{id}/consent", s.disruptionH.SetConsent)
	mux.HandleFunc("DELETE /api/disruptions/{id}", s.disruptionH.Delete)

	// Fairness API routes
	mux.HandleFunc("GET /api/households/{id}/fairness/week", s.fairnessH.Week)

	// Boost API routes. Manual sweep and trigger are rate limited; they
	// fan out to external delivery channels.
	mux.HandleFunc("POST /api/boosts/sweep", s.rateLimitedHandler(s.boostH.Sweep))
	mux.HandleFunc("POST /api/boosts/trigger", s.rateLimitedHandler(s.boostH.Trigger))
	mux.HandleFunc("POST /api/occurrences/{id}/respond", s.boostH.Respond)
	// Reminder reset is administrative; levels never go down on their own.
	mux.Handle("POST /api/occurrences/{id}/reset-reminder", middleware.RequireAdmin(http.HandlerFunc(s.boostH.ResetReminder)))
	mux.HandleFunc("GET /api/occurrences/{id}/attempts", s.boostH.Attempts)
	mux.HandleFunc("GET /api/households/{id}/boost-settings", s.boostH.GetSettings)
	mux.HandleFunc("PUT /api/households/{id}/boost-settings", s.boostH.PutSettings)

	// Push notification API routes
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
	}
}
