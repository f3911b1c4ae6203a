package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"

	"hesapvitrini.com/vitrine/internal/auth"
	"hesapvitrini.com/vitrine/internal/backend"
	"hesapvitrini.com/vitrine/internal/catalog"
	"hesapvitrini.com/vitrine/internal/gate"
	custommw "hesapvitrini.com/vitrine/internal/httpserver/middleware"
	"hesapvitrini.com/vitrine/internal/httpserver/ui"
	"hesapvitrini.com/vitrine/internal/i18n"
	"hesapvitrini.com/vitrine/internal/media"
	"hesapvitrini.com/vitrine/internal/observability"
	"hesapvitrini.com/vitrine/internal/views"
	"hesapvitrini.com/vitrine/public"
)

const (
	defaultLoginRate      = "10-M"
	defaultFormBodyBytes  = 1 << 20
	defaultUploadBodySize = 256 << 20
)

// Config holds runtime options for the storefront HTTP server.
type Config struct {
	Address string
	Logger  *zap.Logger

	Backend  backend.Service
	Auth     *auth.Context
	Bundle   *i18n.Bundle
	Renderer *views.Renderer
	Sessions custommw.SessionStore
	Lists    *catalog.Registry

	// PublicURL is where visitors reach this site.
	PublicURL string
	// BackendOrigin is where uploaded media and the payment callback live.
	BackendOrigin string

	SecureCookies  bool
	CSRFHeaderName string
	// LoginRate limits sign-in and sign-up attempts per IP, e.g. "10-M".
	LoginRate      string
	MaxUploadBytes int64
}

// New constructs the HTTP server with middleware stack and embedded assets.
func New(cfg Config) (*http.Server, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("httpserver: session store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	bundle := cfg.Bundle
	if bundle == nil {
		var err error
		if bundle, err = i18n.Default("tr"); err != nil {
			return nil, fmt.Errorf("httpserver: load messages: %w", err)
		}
	}
	renderer := cfg.Renderer
	if renderer == nil {
		var err error
		if renderer, err = views.New(bundle); err != nil {
			return nil, fmt.Errorf("httpserver: parse templates: %w", err)
		}
	}
	service := cfg.Backend
	if service == nil {
		service = backend.NewStaticService()
	}
	authCtx := cfg.Auth
	if authCtx == nil {
		authCtx = auth.New(service, auth.WithLogger(logger))
	}
	resolver, err := media.NewResolver(cfg.BackendOrigin)
	if err != nil {
		return nil, fmt.Errorf("httpserver: backend origin: %w", err)
	}
	rate, err := limiter.NewRateFromFormatted(firstNonEmpty(cfg.LoginRate, defaultLoginRate))
	if err != nil {
		return nil, fmt.Errorf("httpserver: login rate: %w", err)
	}
	staticContent, err := public.StaticFS()
	if err != nil {
		return nil, fmt.Errorf("httpserver: embed static: %w", err)
	}

	handlers := ui.NewHandlers(ui.Dependencies{
		Backend:       service,
		Auth:          authCtx,
		Renderer:      renderer,
		Bundle:        bundle,
		Media:         resolver,
		Lists:         cfg.Lists,
		PublicURL:     cfg.PublicURL,
		BackendOrigin: cfg.BackendOrigin,
	})

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.InjectLoggerMiddleware(logger))
	router.Use(observability.RequestLoggerMiddleware())
	router.Use(observability.RecoveryMiddleware(logger))
	router.Use(chimw.Compress(5))
	router.Use(chimw.Timeout(60 * time.Second))

	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticContent))))
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	router.NotFound(handlers.NotFound)

	mountRoutes(router, handlers, routeOptions{
		Sessions:       cfg.Sessions,
		Auth:           authCtx,
		Bundle:         bundle,
		SecureCookies:  cfg.SecureCookies,
		CSRF:           custommw.CSRFConfig{HeaderName: cfg.CSRFHeaderName},
		LoginLimiter:   limiter.New(memory.NewStore(), rate),
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	return &http.Server{
		Addr:              cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}, nil
}

type routeOptions struct {
	Sessions       custommw.SessionStore
	Auth           *auth.Context
	Bundle         *i18n.Bundle
	SecureCookies  bool
	CSRF           custommw.CSRFConfig
	LoginLimiter   *limiter.Limiter
	MaxUploadBytes int64
}

func mountRoutes(router chi.Router, h *ui.Handlers, opts routeOptions) {
	uploadLimit := opts.MaxUploadBytes
	if uploadLimit <= 0 {
		uploadLimit = defaultUploadBodySize
	}
	throttle := custommw.RateLimit(opts.LoginLimiter, http.HandlerFunc(h.TooManyAttempts))
	formBody := custommw.MaxBody(defaultFormBodyBytes)

	router.Group(func(r chi.Router) {
		r.Use(custommw.Session(opts.Sessions))
		r.Use(custommw.HTMX())
		r.Use(custommw.NoStore())
		r.Use(custommw.Locale(opts.Bundle, opts.SecureCookies))
		r.Use(custommw.Auth(opts.Auth))

		r.Group(func(r chi.Router) {
			r.Use(formBody)
			r.Use(custommw.CSRF(opts.CSRF))

			r.Get("/", h.Home)
			r.Post("/logout", h.Logout)

			r.Group(func(r chi.Router) {
				r.Use(custommw.Require(gate.GuestOnly))
				r.Get("/login", h.LoginForm)
				r.With(throttle).Post("/login", h.Login)
				r.Get("/register", h.RegisterForm)
				r.With(throttle).Post("/register", h.Register)
			})

			r.Group(func(r chi.Router) {
				r.Use(custommw.RequireWithNotice(gate.Authenticated, gate.NoticeDetailRequired))
				r.Get("/account/{id}", h.AccountDetail)
				r.Post("/account/{id}/checkout/contact", h.CheckoutContact)
				r.Post("/account/{id}/checkout/bank", h.CheckoutBank)
				r.Post("/account/{id}/checkout/card", h.CheckoutCard)
			})

			r.With(custommw.Require(gate.Authenticated)).Get("/orders", h.MyOrders)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(custommw.Require(gate.Admin))

			// The body cap has to be in place before CSRF reads the form.
			r.Group(func(r chi.Router) {
				r.Use(custommw.MaxBody(uploadLimit))
				r.Use(custommw.CSRF(opts.CSRF))
				r.Post("/accounts", h.CreateAccount)
				r.Post("/accounts/{id}", h.UpdateAccount)
			})

			r.Group(func(r chi.Router) {
				r.Use(formBody)
				r.Use(custommw.CSRF(opts.CSRF))
				r.Get("/", h.Dashboard)
				r.Get("/accounts", h.Accounts)
				r.Post("/accounts/{id}/delete", h.DeleteAccount)
				r.Get("/categories", h.Categories)
				r.Post("/categories", h.CreateCategory)
				r.Post("/categories/{id}/delete", h.DeleteCategory)
				r.Get("/settings", h.Settings)
				r.Post("/settings", h.UpdateSettings)
				r.Get("/orders", h.AdminOrders)
			})
		})
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
