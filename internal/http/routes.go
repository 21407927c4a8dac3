package http

import (
	"time"

	"rps_webapp/internal/config"
	"rps_webapp/internal/http/handlers"
	"rps_webapp/internal/http/middleware"
	"rps_webapp/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
)

// RouteOptions carries the knobs the router needs from config.
type RouteOptions struct {
	Version        string
	Redis          *redis.Client // nil selects the in-memory limiter
	PlayRateLimit  int
	PlayRateWindow time.Duration
	AllowOrigins   []string
}

// OptionsFromConfig builds route options; redis may be nil.
func OptionsFromConfig(cfg *config.Config, version string, rdb *redis.Client) RouteOptions {
	return RouteOptions{
		Version:        version,
		Redis:          rdb,
		PlayRateLimit:  cfg.PlayRateLimit,
		PlayRateWindow: cfg.PlayRateWindow,
		AllowOrigins:   cfg.CORSAllowOrigin,
	}
}

func RegisterRoutes(r *gin.Engine, game *service.GameService, opts RouteOptions) {
	h := handlers.NewHandler(game)
	healthHandler := handlers.NewHealthHandler(game, opts.Version)

	if opts.PlayRateLimit <= 0 {
		opts.PlayRateLimit = 120
	}
	if opts.PlayRateWindow <= 0 {
		opts.PlayRateWindow = time.Minute
	}

	r.Use(middleware.RequestID(), middleware.Metrics(), corsMiddleware(opts.AllowOrigins))

	// Health checks (no rate limiting)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/health", healthHandler.Health)
	api.POST("/play", middleware.RateLimit(opts.Redis, opts.PlayRateLimit, opts.PlayRateWindow), h.Play)
	api.GET("/stats", h.Stats)
	api.POST("/reset", h.Reset)
	api.GET("/history", h.History)
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
