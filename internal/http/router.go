// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, CORS,
// security headers, and rate limiting.
//
// Design goals:
//   - Observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tbourn/go-blog-backend/internal/auth"
	"github.com/tbourn/go-blog-backend/internal/config"
	"github.com/tbourn/go-blog-backend/internal/domain"
	"github.com/tbourn/go-blog-backend/internal/http/handlers"
	"github.com/tbourn/go-blog-backend/internal/http/middleware"
	"github.com/tbourn/go-blog-backend/internal/repo"
	"github.com/tbourn/go-blog-backend/internal/services"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), rate limiting,
// CORS and security headers, health endpoints, and then mounts the public
// API under the configured base path.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per user/IP)
//  8. CORS and security headers
func RegisterRoutes(r *gin.Engine, m *repo.Manager, tokens *auth.TokenManager, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per bearer token (hashed) or client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByBearerOrIP())
	r.Use(rl.Handler())

	// 8) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, "pong") })
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← repos ← manager
	userSvc := services.NewUserService(repo.NewUserRepo(m), tokens, cfg.MinPasswordLen)
	postSvc := services.NewPostService(repo.NewPostRepo(m))
	analyticsSvc := services.NewAnalyticsService(repo.NewAnalyticsRepo(m), repo.NewUserRepo(m))

	uh := handlers.NewUserHandlers(userSvc)
	ph := handlers.NewPostHandlers(postSvc)
	ah := handlers.NewAnalyticsHandlers(analyticsSvc)

	requireUser := middleware.RequireUser(userSvc)
	requireAdmin := middleware.RequireAdmin(func(ctx context.Context, u *domain.User) (bool, error) {
		return userSvc.IsAdmin(ctx, u.ID)
	})

	api := groupWithPrefix(r, cfg.APIBasePath) // e.g. "/api"

	users := api.Group("/users")
	{
		users.POST("/register", uh.Register)
		users.POST("/login", uh.Login)
		users.GET("/refresh", uh.Refresh)
		users.GET("/", requireUser, uh.List)
		users.GET("/:username", requireUser, uh.Get)
		users.DELETE("/:username", requireUser, uh.Delete)
	}

	posts := api.Group("/posts", requireUser)
	{
		posts.GET("/", ph.List)
		posts.POST("/", ph.Create)
		posts.GET("/:id", ph.Get)
		posts.PUT("/:id", ph.Update)
		posts.DELETE("/:id", ph.Delete)
		posts.POST("/:id/like", ph.Like)
		posts.POST("/:id/unlike", ph.Unlike)
	}

	// Two admin strategies, deliberately side by side: the likes aggregate
	// re-validates the role against the store, while user-activity trusts
	// the token claim.
	analytic := api.Group("/analytic")
	{
		analytic.GET("/likes", requireUser, requireAdmin, ah.Likes)
		analytic.GET("/user-activity/:username", middleware.RequireAdminClaim(tokens), ah.UserActivity)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the
// cap will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
