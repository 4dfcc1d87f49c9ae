package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/delordemm1/psych-api/internal/config"
	"github.com/delordemm1/psych-api/internal/httpx"
	"github.com/delordemm1/psych-api/internal/middleware"
)

// Module is a feature package that exposes routes on the API.
type Module interface {
	RegisterRoutes(api huma.API)
}

// HealthCheck reports whether one backing service is reachable.
type HealthCheck func(ctx context.Context) error

const healthTimeout = 2 * time.Second

// New creates the router with the middleware stack, the module routes,
// /health and /metrics.
func New(cfg *config.Config, log *slog.Logger, checks map[string]HealthCheck, modules ...Module) chi.Router {
	httpx.InstallErrorModel()

	router := chi.NewMux()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(60 * time.Second))
	router.Use(chimw.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.WithMetrics)

	apiConfig := huma.DefaultConfig("Psych API", "1.0.0")
	apiConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookie": {
			Type: "apiKey",
			In:   "cookie",
			Name: "accessToken",
		},
	}
	api := humachi.New(router, apiConfig)

	for _, m := range modules {
		m.RegisterRoutes(api)
	}

	registerHealth(api, log, checks)
	router.Handle("/metrics", promhttp.Handler())

	return router
}

type HealthResponse struct {
	Body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks,omitempty"`
	}
}

func registerHealth(api huma.API, log *slog.Logger, checks map[string]HealthCheck) {
	huma.Register(api, huma.Operation{
		OperationID: "get-health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health Check",
		Description: "Responds with the server's health status and the state of each backing service.",
		Tags:        []string{"Ops"},
	}, func(ctx context.Context, _ *struct{}) (*HealthResponse, error) {
		ctx, cancel := context.WithTimeout(ctx, healthTimeout)
		defer cancel()

		results := make(map[string]string, len(checks))
		healthy := true
		for name, check := range checks {
			if err := check(ctx); err != nil {
				log.Warn("health check failed", "check", name, "error", err)
				results[name] = "unavailable"
				healthy = false
				continue
			}
			results[name] = "ok"
		}

		if !healthy {
			p := huma.Error503ServiceUnavailable("Service unavailable")
			if prob, ok := p.(*httpx.Problem); ok {
				prob.Context = results
			}
			return nil, p
		}

		resp := &HealthResponse{}
		resp.Body.Status = "ok"
		resp.Body.Checks = results
		return resp, nil
	})
}
