package router

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	_ "zoonica-gateway/docs"
	"zoonica-gateway/internal/adapters/geo/feed"
	mem "zoonica-gateway/internal/adapters/storage/memory"
	pg "zoonica-gateway/internal/adapters/storage/postgres"
	"zoonica-gateway/internal/domain/events"
	"zoonica-gateway/internal/domain/history"
	"zoonica-gateway/internal/domain/lostpets"
	"zoonica-gateway/internal/domain/notifications"
	"zoonica-gateway/internal/domain/pets"
	"zoonica-gateway/internal/domain/records"
	"zoonica-gateway/internal/domain/session"
	"zoonica-gateway/internal/domain/tracking"
	"zoonica-gateway/internal/middleware"
	"zoonica-gateway/internal/platform/logger"
	"zoonica-gateway/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Upstream es el backend Zoónica visto desde los módulos
// (en producción, *zoonica.Client).
type Upstream interface {
	pets.Source
	records.Source
	events.Source
	notifications.Source
	lostpets.Source
	session.Authenticator
}

type Options struct {
	Upstream Upstream

	Logger  logger.Logger    // nil => Nop
	Metrics *metrics.Metrics // nil => /metrics responde 404

	// Opcional: si viene, las sesiones van a Postgres. Si no, in-memory.
	DB *sql.DB

	SessionTTL time.Duration

	// DebugAuth acepta X-Debug-User-ID sin sesión (modo dev).
	DebugAuth bool

	WatchOptions tracking.WatchOptions
	// FeedFactory opcional; por defecto feed.Factory().
	FeedFactory tracking.FeedFactory

	// PhotoBaseURL es la base de las fotos (normalmente la misma del backend).
	PhotoBaseURL string
}

// Router es el handler HTTP del gateway más lo que hay que cerrar al apagar.
type Router struct {
	http.Handler

	Sessions *session.Service
	Tracking *tracking.Sessions
}

// Close libera las sesiones de ubicación en vivo.
func (rt *Router) Close() {
	rt.Tracking.CloseAll()
}

func NewRouter(ctx context.Context, opts Options) (*Router, error) {
	if opts.Upstream == nil {
		return nil, fmt.Errorf("router: upstream is required")
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	if opts.WatchOptions == (tracking.WatchOptions{}) {
		opts.WatchOptions = tracking.DefaultWatchOptions()
	}
	if opts.FeedFactory == nil {
		opts.FeedFactory = feed.Factory()
	}
	photoBase := strings.TrimRight(opts.PhotoBaseURL, "/")

	var sessionsRepo session.Repository
	if opts.DB != nil {
		repo := pg.NewSessionsRepo(opts.DB)
		if err := repo.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("router: migrate sessions: %w", err)
		}
		sessionsRepo = repo
	} else {
		sessionsRepo = mem.NewSessionRepo()
	}

	// Services por módulo
	sessionSvc := session.NewService(sessionsRepo, opts.Upstream, opts.SessionTTL, log)
	petsSvc := pets.NewService(opts.Upstream)
	recordsSvc := records.NewService(opts.Upstream)
	historySvc := history.NewService(opts.Upstream, log, opts.Metrics)
	eventsSvc := events.NewService(opts.Upstream)
	notificationsSvc := notifications.NewService(opts.Upstream)
	lostPetsSvc := lostpets.NewService(opts.Upstream)
	trackingSessions := tracking.NewSessions(opts.FeedFactory, opts.WatchOptions, log, opts.Metrics)
	sessionSvc.OnLogout(func(userID string) { trackingSessions.CloseOwner(userID) })

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(log))
	r.Use(middleware.RequestLog(log))

	r.Use(middleware.AuthContext(sessionSvc, opts.DebugAuth))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Rutas por módulo
	session.RegisterRoutes(r, sessionSvc)
	pets.RegisterRoutes(r, petsSvc, photoBase)
	records.RegisterRoutes(r, recordsSvc)
	history.RegisterRoutes(r, historySvc, photoBase)
	events.RegisterRoutes(r, eventsSvc)
	notifications.RegisterRoutes(r, notificationsSvc)
	lostpets.RegisterRoutes(r, lostPetsSvc, photoBase)
	tracking.RegisterRoutes(r, trackingSessions)

	return &Router{Handler: r, Sessions: sessionSvc, Tracking: trackingSessions}, nil
}
