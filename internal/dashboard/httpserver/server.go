// Package httpserver assembles the dashboard router: middleware stack,
// embedded assets, health and metrics endpoints, and the UI routes.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	custommw "finitefield.org/artist-dashboard/internal/dashboard/httpserver/middleware"
	"finitefield.org/artist-dashboard/internal/dashboard/httpserver/ui"
	"finitefield.org/artist-dashboard/internal/dashboard/observability"
	"finitefield.org/artist-dashboard/internal/dashboard/session"
	"finitefield.org/artist-dashboard/internal/dashboard/storage"
	"finitefield.org/artist-dashboard/internal/dashboard/workspace"
	"finitefield.org/artist-dashboard/public"
)

// Config holds runtime options for the dashboard HTTP server.
type Config struct {
	Address        string
	BasePath       string
	Environment    string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration

	CSRFCookieName   string
	CSRFCookieSecure bool
	CSRFHeaderName   string
	CSRFFieldName    string

	// MaxAvatarBytes bounds request bodies; a margin is added for the
	// multipart envelope.
	MaxAvatarBytes int

	Logger     *zap.Logger
	Sessions   *session.Manager
	Workspaces *workspace.Manager
	// Registry receives the HTTP and storage collectors; nil builds a
	// private registry.
	Registry *prometheus.Registry
	Now      func() time.Time
}

const uploadEnvelopeBytes = 1 << 20

// New constructs the HTTP server with middleware stack and embedded assets.
func New(cfg Config) (*http.Server, error) {
	handler, err := NewHandler(cfg)
	if err != nil {
		return nil, err
	}
	return &http.Server{
		Addr:         cfg.Address,
		Handler:      handler,
		ReadTimeout:  orDefault(cfg.ReadTimeout, 10*time.Second),
		WriteTimeout: orDefault(cfg.WriteTimeout, 30*time.Second),
		IdleTimeout:  orDefault(cfg.IdleTimeout, 60*time.Second),
	}, nil
}

// NewHandler builds the router without a listener, for tests and embedding.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("httpserver: session manager is required")
	}
	if cfg.Workspaces == nil {
		return nil, errors.New("httpserver: workspace manager is required")
	}
	reg := cfg.Registry
	if reg == nil {
		var err error
		reg, err = observability.NewRegistry(storage.Collectors()...)
		if err != nil {
			return nil, fmt.Errorf("httpserver: metrics registry: %w", err)
		}
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.InjectLogger(cfg.Logger))
	router.Use(observability.RequestLogger())
	router.Use(observability.Recoverer())
	router.Use(chimw.Timeout(orDefault(cfg.RequestTimeout, 60*time.Second)))

	staticContent, err := public.StaticFS()
	if err != nil {
		return nil, fmt.Errorf("embed static: %w", err)
	}
	router.Handle("/public/static/*", http.StripPrefix("/public/static/", http.FileServer(http.FS(staticContent))))
	router.Get("/healthz", healthHandler(cfg.Workspaces.Backend()))
	router.Handle("/metrics", observability.MetricsHandler(reg))

	basePath := custommw.NormalizeBase(cfg.BasePath)
	handlers := ui.NewHandlers(ui.Dependencies{
		CSRFHeaderName: cfg.CSRFHeaderName,
		CSRFFieldName:  cfg.CSRFFieldName,
		Now:            cfg.Now,
	})

	mountDashboardRoutes(router, basePath, routeOptions{
		Handlers:    handlers,
		Sessions:    cfg.Sessions,
		Workspaces:  cfg.Workspaces,
		Environment: cfg.Environment,
		BodyLimit:   int64(maxAvatar(cfg.MaxAvatarBytes)) + uploadEnvelopeBytes,
		CSRF: custommw.CSRFConfig{
			CookieName: cfg.CSRFCookieName,
			CookiePath: basePath,
			HeaderName: cfg.CSRFHeaderName,
			FieldName:  cfg.CSRFFieldName,
			Secure:     cfg.CSRFCookieSecure,
		},
	})
	return router, nil
}

type routeOptions struct {
	Handlers    *ui.Handlers
	Sessions    *session.Manager
	Workspaces  *workspace.Manager
	Environment string
	BodyLimit   int64
	CSRF        custommw.CSRFConfig
}

func mountDashboardRoutes(router chi.Router, base string, opts routeOptions) {
	h := opts.Handlers
	router.Route(base, func(r chi.Router) {
		r.Use(chimw.RequestSize(opts.BodyLimit))
		r.Use(custommw.RequestInfoMiddleware(base))
		r.Use(custommw.Environment(opts.Environment))
		r.Use(custommw.HTMX())
		r.Use(custommw.NoStore())
		r.Use(custommw.Session(opts.Sessions))
		r.Use(custommw.CSRF(opts.CSRF))
		r.Use(custommw.Workspace(opts.Workspaces))

		r.Get("/", h.Dashboard)
		r.Get("/panels/{panel}", h.Panel)

		r.Get("/profile/edit", h.ProfileEdit)
		r.Get("/profile/view", h.ProfileView)
		r.Post("/profile", h.ProfileSave)
		r.Post("/profile/avatar", h.AvatarUpload)

		r.Post("/checklist/tasks", h.TaskAdd)
		r.Post("/checklist/tasks/{taskID}/toggle", h.TaskToggle)
		r.Delete("/checklist/tasks/{taskID}", h.TaskRemove)

		r.Post("/portfolio/{kind}", h.ItemAdd)
		r.Delete("/portfolio/{kind}/{itemID}", h.ItemRemove)

		r.Post("/booking", h.BookingSubmit)
	})
}

func healthHandler(backend storage.Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if _, _, err := backend.Get(ctx, "_health", "ping"); err != nil {
			observability.FromContext(ctx).Error("health check failed", zap.Error(err))
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	}
}

func maxAvatar(n int) int {
	if n <= 0 {
		return 2 << 20
	}
	return n
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
