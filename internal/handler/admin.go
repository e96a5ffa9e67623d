package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/archiapp/ticket-reservation/internal/cache"
	"github.com/archiapp/ticket-reservation/internal/service"
)

// AdminHandler groups the operator surface: sales statistics and manual
// cache management.  Every route sits behind JWTAuth plus the ADMIN
// role check.
type AdminHandler struct {
	Reservations *service.ReservationService
	Cache        *cache.Invalidator
}

// NewAdminHandler constructs the handler.  The reservation service must
// be non-nil; the invalidator may be nil when Redis is absent.
func NewAdminHandler(svc *service.ReservationService, inv *cache.Invalidator) *AdminHandler {
	if svc == nil {
		panic("nil service passed to NewAdminHandler")
	}
	return &AdminHandler{Reservations: svc, Cache: inv}
}

// Stats handles GET /v1/admin/stats: total revenue, reservation count
// and the per-show sales breakdown.
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.Reservations.Statistics(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute statistics"})
	}
	return c.JSON(http.StatusOK, stats)
}

// CacheNamespaces handles GET /v1/admin/cache.
func (h *AdminHandler) CacheNamespaces(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"namespaces": cache.Namespaces()})
}

// CacheFlushAll handles DELETE /v1/admin/cache, dropping every cached
// namespace.
func (h *AdminHandler) CacheFlushAll(c echo.Context) error {
	if h.Cache == nil {
		return c.JSON(http.StatusOK, echo.Map{"deleted": 0})
	}
	deleted, err := h.Cache.ClearAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to flush cache"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": deleted})
}

// CacheFlush handles DELETE /v1/admin/cache/:name for one namespace.
// Unknown namespaces reply 404 so operator typos surface immediately.
func (h *AdminHandler) CacheFlush(c echo.Context) error {
	name := c.Param("name")
	known := false
	for _, ns := range cache.Namespaces() {
		if ns == name {
			known = true
			break
		}
	}
	if !known {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown cache namespace"})
	}
	if h.Cache == nil {
		return c.JSON(http.StatusOK, echo.Map{"deleted": 0})
	}
	deleted, err := h.Cache.Clear(c.Request().Context(), name)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to flush cache"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": deleted})
}
