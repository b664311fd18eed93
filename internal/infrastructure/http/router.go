package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/dagbjork/verimod/internal/infrastructure/http/handlers"
	"github.com/dagbjork/verimod/internal/infrastructure/http/middleware"
)

type RouterConfig struct {
	AuthHandler     *handlers.AuthHandler
	UsersHandler    *handlers.UsersHandler
	ProjectsHandler *handlers.ProjectsHandler
	AccessHandler   *handlers.AccessHandler
	QueriesHandler  *handlers.QueriesHandler
	EngineHandler   *handlers.EngineHandler
	HealthHandler   *handlers.HealthHandler
	RequireAuth     func(http.Handler) http.Handler
	Log             zerolog.Logger
	Secure          func(http.Handler) http.Handler
	CORS            func(http.Handler) http.Handler
	IPRateLimit     func(http.Handler) http.Handler
	Metrics         bool // expose /metrics
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(loggerMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(middleware.PrometheusMiddleware)
	}
	if cfg.Secure != nil {
		r.Use(cfg.Secure)
	}
	if cfg.CORS != nil {
		r.Use(cfg.CORS)
	}
	if cfg.IPRateLimit != nil {
		r.Use(cfg.IPRateLimit)
	}

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.ServeHTTP)
	} else {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/refresh", cfg.AuthHandler.Refresh)
		// Logout takes expired access tokens for cleanup, so it stays
		// outside the gate and validates the token itself.
		r.Post("/logout", cfg.AuthHandler.Logout)
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", cfg.UsersHandler.Signup)
		r.Group(func(r chi.Router) {
			r.Use(cfg.RequireAuth)
			r.Get("/", cfg.UsersHandler.List)
			r.Patch("/me", cfg.UsersHandler.UpdateMe)
			r.Delete("/me", cfg.UsersHandler.DeleteMe)
		})
	})

	r.Route("/projects", func(r chi.Router) {
		r.Use(cfg.RequireAuth)
		r.Get("/", cfg.ProjectsHandler.List)
		r.Post("/", cfg.ProjectsHandler.Create)
		r.Get("/{id}", cfg.ProjectsHandler.Get)
		r.Put("/{id}", cfg.ProjectsHandler.Update)
		r.Delete("/{id}", cfg.ProjectsHandler.Delete)
		r.Get("/{id}/access", cfg.AccessHandler.List)
		r.Post("/{id}/access", cfg.AccessHandler.Grant)
	})

	r.Route("/access", func(r chi.Router) {
		r.Use(cfg.RequireAuth)
		r.Patch("/{id}", cfg.AccessHandler.Update)
		r.Delete("/{id}", cfg.AccessHandler.Revoke)
	})

	r.Route("/queries", func(r chi.Router) {
		r.Use(cfg.RequireAuth)
		r.Post("/", cfg.QueriesHandler.Create)
		r.Patch("/{id}", cfg.QueriesHandler.Update)
		r.Delete("/{id}", cfg.QueriesHandler.Delete)
		r.Post("/{id}/run", cfg.QueriesHandler.Run)
	})

	r.Route("/engine", func(r chi.Router) {
		r.Use(cfg.RequireAuth)
		r.Post("/token", cfg.EngineHandler.UserToken)
		r.Post("/query", cfg.EngineHandler.SendQuery)
		r.Post("/simulation/start", cfg.EngineHandler.StartSimulation)
		r.Post("/simulation/step", cfg.EngineHandler.StepSimulation)
	})

	return r
}

func loggerMiddleware(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := chimid.GetReqID(r.Context())
			log.Info().
				Str("request_id", reqID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("request")
			next.ServeHTTP(w, r)
		})
	}
}
