package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/ecomagent-backend/api/controllers"
	"github.com/angelmondragon/ecomagent-backend/api/middleware"
	"github.com/angelmondragon/ecomagent-backend/pkg/config"
	"github.com/angelmondragon/ecomagent-backend/pkg/db"
	"github.com/angelmondragon/ecomagent-backend/pkg/logger"
	"github.com/angelmondragon/ecomagent-backend/pkg/metrics"
	"github.com/angelmondragon/ecomagent-backend/pkg/redis"
)

// NewRouter wires the HTTP surface. redisClient, registry and httpMetrics are
// optional; without redis the ask endpoint is not rate limited.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	counter controllers.SalesCounter,
	askService controllers.AskService,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.HTTP.AllowedOrigins),
	)
	if httpMetrics != nil {
		r.Use(middleware.Metrics(httpMetrics))
	}

	var redisPinger controllers.Pinger
	if redisClient != nil {
		redisPinger = redisClient
	}

	r.Get("/", controllers.Index(counter, cfg.Ask.MaxQuestionLen, logg))

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		if redisClient != nil {
			askPolicy := middleware.NewRateLimitPolicy("ask", cfg.Ask.RateLimitWindow, cfg.Ask.RateLimitPerIP)
			r.Use(middleware.RateLimit(askPolicy, redisClient, logg))
		}
		r.Post("/ask", controllers.Ask(askService, logg))
	})

	return r
}
