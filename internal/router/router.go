package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/archiapp/ticket-reservation/internal/cache"
	"github.com/archiapp/ticket-reservation/internal/config"
	"github.com/archiapp/ticket-reservation/internal/handler"
	"github.com/archiapp/ticket-reservation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated browse endpoints: show
// listing, show detail and keyword search.  Reads are cached under the
// shows namespace; mutations elsewhere invalidate it.  The limiter
// runs without a verified identity here, so its buckets are keyed by
// client IP.
func RegisterPublic(e *echo.Echo, s *handler.ShowHandler, cacheCfg config.CacheConfig, rdb *redis.Client, limiter echo.MiddlewareFunc) {
	showCache := middleware.ResponseCache(cacheCfg, rdb, cache.NSShows)
	e.GET("/v1/shows", s.List, limiter, showCache)
	e.GET("/v1/shows/:id", s.Get, limiter, showCache)
	e.GET("/v1/search/shows", s.Search, limiter, showCache)
}

// RegisterReservations registers the authenticated reservation
// endpoints under /v1.  Every route runs JWTAuth; the per-user identity
// comes out of the verified token, so no further role is required.
// The limiter runs after JWTAuth so each user gets their own buckets.
func RegisterReservations(e *echo.Echo, r *handler.ReservationHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(limiter)
	g.POST("/reservations", r.Create)
	g.GET("/reservations", r.List)
	g.GET("/reservations/:id", r.Get)
	g.DELETE("/reservations/:id", r.Cancel)
}

// RegisterAdmin registers the operator endpoints behind JWTAuth plus
// the ADMIN role: catalog mutations on /v1/shows, and the statistics
// rollup (cached under its own namespace) and manual cache management
// under /v1/admin.  As on the reservation routes, the limiter follows
// JWTAuth and throttles per operator.
func RegisterAdmin(e *echo.Echo, s *handler.ShowHandler, a *handler.AdminHandler, jwtSecret string, cacheCfg config.CacheConfig, rdb *redis.Client, limiter echo.MiddlewareFunc) {
	auth := middleware.JWTAuth(jwtSecret)
	admin := middleware.RequireRole("ADMIN")

	// Catalog mutations share the public path but require the ADMIN role.
	e.POST("/v1/shows", s.Create, auth, admin, limiter)
	e.PUT("/v1/shows/:id", s.Update, auth, admin, limiter)
	e.DELETE("/v1/shows/:id", s.Delete, auth, admin, limiter)

	g := e.Group("/v1/admin")
	g.Use(auth)
	g.Use(admin)
	g.Use(limiter)

	g.GET("/stats", a.Stats, middleware.ResponseCache(cacheCfg, rdb, cache.NSStatistics))

	g.GET("/cache", a.CacheNamespaces)
	g.DELETE("/cache", a.CacheFlushAll)
	g.DELETE("/cache/:name", a.CacheFlush)
}
