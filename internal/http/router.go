// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// identity, idempotency, rate limiting, CORS, and security headers.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/ghostgear-presence/internal/config"
	"github.com/tbourn/ghostgear-presence/internal/http/handlers"
	"github.com/tbourn/ghostgear-presence/internal/http/middleware"
	"github.com/tbourn/ghostgear-presence/internal/services"
)

// maxBodyBytes caps every request body. Heartbeats and messages are small.
const maxBodyBytes = 64 << 10

// newDeps builds the service graph over db from cfg. The message service is
// also returned for the idempotency lookup.
func newDeps(db *gorm.DB, cfg config.Config) (handlers.Deps, *services.MessageService) {
	p := cfg.Presence
	settings := &services.SettingsService{DB: db}
	msgs := &services.MessageService{
		DB:              db,
		MaxContentRunes: cfg.MaxMessageRunes,
		PrivateWindow:   p.UnreadWindow,
		IdempotencyTTL:  cfg.IdempotencyTTL,
	}
	return handlers.Deps{
		Presence: &services.PresenceService{
			DB:       db,
			Override: services.SettingsOverride{Settings: settings},
			Window:   p.OnlineWindow,
		},
		Activity: &services.ActivityService{DB: db, Window: p.UnreadWindow},
		Messages: msgs,
		Settings: settings,
		Users:    &services.UserService{DB: db},
		Admin: &services.AdminService{
			DB:           db,
			Settings:     settings,
			OnlineWindow: p.OnlineWindow,
		},
	}, msgs
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. rdb may be nil, in which case rate limits are kept in process.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger (or the verbose Logger when LOG_REDACT=false)
//  4. Recovery: capture panics after logger
//  5. Body size limiter and gzip
//  6. Metrics
//  7. Identity: resolve the caller (JWT or X-User-ID)
//  8. Idempotency validator (needs the caller; before rate limiter for bypass)
//  9. Rate limiter (per user/IP, bypass on replay)
//  10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, rdb redis.Cmdable, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	deps, msgSvc := newDeps(db, cfg)

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	if cfg.LogRedact {
		r.Use(middleware.RedactingLogger(middleware.RedactOptions{
			MaskHeaders: []string{"Authorization", middleware.HeaderUserID},
		}))
	} else {
		r.Use(middleware.Logger())
	}
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(middleware.Identity(middleware.IdentityOptions{JWTSecret: cfg.JWTSecret}))
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200, Scope: handlers.IdempotencyScope},
		msgSvc.HasReplay,
	))

	if rdb != nil {
		limit := cfg.RateBurst
		if rps := int(cfg.RateRPS); rps > limit {
			limit = rps
		}
		r.Use(middleware.RateLimit(middleware.NewRedisLimiter(rdb, limit, time.Second), middleware.KeyByUserOrIP()))
	} else {
		r.Use(middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP()).Handler())
	}

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
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

	r.GET("/health", health(db))
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(deps)
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Presence
		api.POST("/presence/heartbeat", h.Heartbeat)
		api.GET("/presence/online", h.OnlineCount)
		api.GET("/presence/users/:id", h.UserPresence)

		// Users
		api.POST("/users", h.RegisterUser)
		api.PUT("/users/me/settings", h.UpdateMySettings)

		// Messages and unread activity
		api.GET("/messages/unread", h.UnreadCount)
		api.POST("/messages/read", h.MarkRead)
		api.POST("/messages", h.SendMessage)
		api.GET("/messages", h.ListThread)

		// Settings
		api.GET("/settings/notifications", h.GetNotifications)
		api.GET("/settings/:key", h.GetSetting)
		master := api.Group("", h.RequireMaster)
		master.PUT("/settings/notifications", h.PutNotifications)
		master.PUT("/settings/:key", h.PutSetting)

		// Admin
		admin := api.Group("/admin", h.RequireMaster)
		admin.GET("/users/unread", h.UsersWithUnread)
		admin.PUT("/presence/override", h.SetOnlineOverride)
		admin.DELETE("/presence/override", h.ClearOnlineOverride)
		admin.POST("/support/:id/messages", h.ExpertReply)
		admin.POST("/support/:id/read", h.MarkSupportRead)
		admin.POST("/support/:id/end", h.EndSupportChat)
	}
}

// corsMiddleware returns the CORS chain: allow-all when no origins are
// configured, otherwise an allowlist that echoes the matching Origin.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderUserID, middleware.HeaderIdempotencyKey, "If-None-Match"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag", "Idempotency-Replayed"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if len(origins) == 0 {
		base.AllowAllOrigins = true
		return []gin.HandlerFunc{
			// ACAO even without an Origin header, for probes and simple clients.
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	base.AllowOrigins = origins
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(base),
	}
}

// health reports liveness plus a database ping. A failed ping answers 503 so
// load balancers drain the instance.
func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("health: database ping failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "up"})
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
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
