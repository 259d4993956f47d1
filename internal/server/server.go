package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/calebwray/theotime/internal/ai"
	"github.com/calebwray/theotime/internal/auth"
	"github.com/calebwray/theotime/internal/handler"
	"github.com/calebwray/theotime/internal/maintenance"
	"github.com/calebwray/theotime/internal/middleware"
	"github.com/calebwray/theotime/internal/notify"
	"github.com/calebwray/theotime/internal/store"
	ws "github.com/calebwray/theotime/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	issuer        *auth.TokenIssuer
	authH         *handler.AuthHandler
	userH         *handler.UserHandler
	eventH        *handler.EventHandler
	worshipH      *handler.WorshipHandler
	homeworkH     *handler.HomeworkHandler
	childrenH     *handler.ChildrenHandler
	notificationH *handler.NotificationHandler
	settingsH     *handler.SettingsHandler
	searchH       *handler.SearchHandler
	analyticsH    *handler.AnalyticsHandler
	exportH       *handler.ExportHandler
	aiH           *handler.AIHandler
	scheduler     *notify.Scheduler
	maintenance   *maintenance.Runner
	rateLimiter   *middleware.RateLimiter
	logger        *slog.Logger
}

func New(db *sql.DB, jwtSecret string, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger)
	issuer := auth.NewTokenIssuer(jwtSecret)

	userStore := store.NewUserStore(db)
	eventStore := store.NewEventStore(db)
	worshipStore := store.NewWorshipStore(db)
	homeworkStore := store.NewHomeworkStore(db)
	goalStore := store.NewGoalStore(db)
	profileStore := store.NewChildProfileStore(db)
	notificationStore := store.NewNotificationStore(db)
	settingStore := store.NewSettingStore(db)
	searchStore := store.NewSearchStore(db)
	analyticsStore := store.NewAnalyticsStore(db)

	planner := ai.NewPlanner(settingStore, logger)
	scheduler := notify.NewScheduler(eventStore, homeworkStore, notificationStore, settingStore, hub, logger)
	runner := maintenance.NewRunner(notificationStore, logger)

	return &Server{
		db:            db,
		hub:           hub,
		issuer:        issuer,
		authH:         handler.NewAuthHandler(userStore, issuer, logger),
		userH:         handler.NewUserHandler(userStore, logger),
		eventH:        handler.NewEventHandler(eventStore, worshipStore, hub, logger),
		worshipH:      handler.NewWorshipHandler(worshipStore, eventStore, hub, logger),
		homeworkH:     handler.NewHomeworkHandler(homeworkStore, settingStore, hub, logger),
		childrenH:     handler.NewChildrenHandler(profileStore, goalStore, userStore, logger),
		notificationH: handler.NewNotificationHandler(notificationStore, logger),
		settingsH:     handler.NewSettingsHandler(settingStore, logger),
		searchH:       handler.NewSearchHandler(searchStore, logger),
		analyticsH:    handler.NewAnalyticsHandler(analyticsStore, logger),
		exportH:       handler.NewExportHandler(userStore, eventStore, worshipStore, homeworkStore, goalStore, profileStore, settingStore, logger),
		aiH:           handler.NewAIHandler(planner, profileStore, logger),
		scheduler:     scheduler,
		maintenance:   runner,
		rateLimiter:   middleware.NewRateLimiter(),
		logger:        logger,
	}
}

// Scheduler returns the reminder scheduler so main can manage its lifecycle.
func (s *Server) Scheduler() *notify.Scheduler {
	return s.scheduler
}

// Maintenance returns the maintenance runner so main can manage its lifecycle.
func (s *Server) Maintenance() *maintenance.Runner {
	return s.maintenance
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Public routes (no auth required)
	mux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	mux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	mux.HandleFunc("GET /health", s.healthHandler)

	// WebSocket authenticates via token query parameter inside the handler.
	mux.HandleFunc("GET /ws", ws.Handle(s.hub, s.issuer))

	// Everything else under /api requires a valid token.
	api := http.NewServeMux()
	s.registerAPIRoutes(api)
	mux.Handle("/api/", middleware.RequireAuth(s.issuer)(api))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
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

// parentOnly wraps a handler so only parent accounts reach it.
func parentOnly(h http.HandlerFunc) http.Handler {
	return middleware.RequireParent(h)
}

func (s *Server) registerAPIRoutes(mux *http.ServeMux) {
	// Auth routes that require authentication
	mux.HandleFunc("GET /api/auth/me", s.authH.Me)
	mux.HandleFunc("PUT /api/auth/password", s.authH.ChangePassword)

	// User management
	mux.Handle("GET /api/users", parentOnly(s.userH.List))
	mux.HandleFunc("PUT /api/users/{id}", s.userH.UpdateProfile)
	mux.Handle("PUT /api/users/{id}/role", parentOnly(s.userH.UpdateRole))
	mux.Handle("DELETE /api/users/{id}", parentOnly(s.userH.Delete))

	// Calendar events
	mux.HandleFunc("POST /api/events", s.eventH.Create)
	mux.HandleFunc("GET /api/events", s.eventH.List)
	mux.HandleFunc("GET /api/events/{id}", s.eventH.Get)
	mux.HandleFunc("PUT /api/events/{id}", s.eventH.Update)
	mux.HandleFunc("DELETE /api/events/{id}", s.eventH.Delete)
	mux.HandleFunc("POST /api/events/{id}/complete", s.eventH.Complete)
	mux.HandleFunc("DELETE /api/events/{id}/complete", s.eventH.Reopen)
	mux.HandleFunc("GET /api/events/{id}/log", s.eventH.Log)

	// Worship planning
	mux.HandleFunc("POST /api/worship/plans", s.worshipH.CreatePlan)
	mux.HandleFunc("GET /api/worship/plans", s.worshipH.ListPlans)
	mux.HandleFunc("GET /api/worship/plans/{id}", s.worshipH.GetPlan)
	mux.HandleFunc("PUT /api/worship/plans/{id}", s.worshipH.UpdatePlan)
	mux.HandleFunc("DELETE /api/worship/plans/{id}", s.worshipH.DeletePlan)
	mux.HandleFunc("POST /api/worship/templates", s.worshipH.CreateTemplate)
	mux.HandleFunc("GET /api/worship/templates", s.worshipH.ListTemplates)
	mux.HandleFunc("DELETE /api/worship/templates/{id}", s.worshipH.DeleteTemplate)
	mux.HandleFunc("POST /api/worship/logs", s.worshipH.CreateLog)
	mux.HandleFunc("GET /api/worship/logs", s.worshipH.ListLogs)
	mux.HandleFunc("GET /api/worship/logs/{id}", s.worshipH.GetLog)
	mux.Handle("DELETE /api/worship/logs/{id}", parentOnly(s.worshipH.DeleteLog))

	// Homework
	mux.Handle("POST /api/homework", parentOnly(s.homeworkH.Create))
	mux.HandleFunc("GET /api/homework", s.homeworkH.List)
	mux.HandleFunc("GET /api/homework/{id}", s.homeworkH.Get)
	mux.Handle("PUT /api/homework/{id}", parentOnly(s.homeworkH.Update))
	mux.HandleFunc("POST /api/homework/{id}/complete", s.homeworkH.Complete)
	mux.Handle("POST /api/homework/{id}/review", parentOnly(s.homeworkH.Review))
	mux.Handle("DELETE /api/homework/{id}", parentOnly(s.homeworkH.Delete))

	// Child profiles and spiritual goals
	mux.Handle("GET /api/children/profiles", parentOnly(s.childrenH.ListProfiles))
	mux.HandleFunc("GET /api/children/{id}/profile", s.childrenH.GetProfile)
	mux.Handle("PUT /api/children/{id}/profile", parentOnly(s.childrenH.UpsertProfile))
	mux.Handle("DELETE /api/children/{id}/profile", parentOnly(s.childrenH.DeleteProfile))
	mux.HandleFunc("GET /api/children/{id}/goals", s.childrenH.ListGoals)
	mux.HandleFunc("POST /api/children/{id}/goals", s.childrenH.CreateGoal)
	mux.HandleFunc("PUT /api/children/{id}/goals/{goalID}", s.childrenH.UpdateGoal)
	mux.HandleFunc("POST /api/children/{id}/goals/{goalID}/complete", s.childrenH.CompleteGoal)
	mux.HandleFunc("DELETE /api/children/{id}/goals/{goalID}", s.childrenH.DeleteGoal)

	// Notifications (always self-scoped)
	mux.HandleFunc("GET /api/notifications", s.notificationH.List)
	mux.HandleFunc("GET /api/notifications/unread-count", s.notificationH.UnreadCount)
	mux.HandleFunc("POST /api/notifications/{id}/read", s.notificationH.MarkRead)
	mux.HandleFunc("POST /api/notifications/read-all", s.notificationH.MarkAllRead)
	mux.HandleFunc("DELETE /api/notifications/{id}", s.notificationH.Delete)
	mux.HandleFunc("GET /api/notifications/preferences", s.notificationH.ListPreferences)
	mux.HandleFunc("PUT /api/notifications/preferences", s.notificationH.SetPreference)

	// Settings
	mux.HandleFunc("GET /api/settings", s.settingsH.List)
	mux.HandleFunc("GET /api/settings/{key}", s.settingsH.Get)
	mux.HandleFunc("PUT /api/settings/{key}", s.settingsH.Set)
	mux.Handle("DELETE /api/settings/{key}", parentOnly(s.settingsH.Delete))

	// Search, analytics, and data export
	mux.HandleFunc("GET /api/search", s.searchH.Search)
	mux.Handle("GET /api/analytics", parentOnly(s.analyticsH.Summary))
	mux.Handle("GET /api/export", parentOnly(s.exportH.Export))

	// AI worship suggestions
	mux.HandleFunc("POST /api/ai/suggestions", s.aiH.Suggest)
}
