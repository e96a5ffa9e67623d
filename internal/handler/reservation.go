package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/archiapp/ticket-reservation/internal/middleware"
	"github.com/archiapp/ticket-reservation/internal/repository"
	"github.com/archiapp/ticket-reservation/internal/service"
)

// ReservationHandler exposes the reservation engine over HTTP.  All
// routes assume JWTAuth ran; the user identity comes from the token's
// claim chain, never from the request body.  The handler only maps
// typed service failures to status codes; every business rule lives in
// the engine.
type ReservationHandler struct {
	Reservations *service.ReservationService
}

// NewReservationHandler constructs the handler.  The service must be non-nil.
func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	if svc == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: svc}
}

// Create handles POST /v1/reservations.  Body: {"show_id": n,
// "quantity": n}.  Replies 201 with the reservation, 404 when the show
// does not exist, 409 when capacity is insufficient (carrying available
// and requested counts) or the show already started, 400 on malformed
// input.
func (h *ReservationHandler) Create(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		ShowID   uint64 `json:"show_id"`
		Quantity int    `json:"quantity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ShowID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "show_id is required"})
	}

	res, err := h.Reservations.Create(c.Request().Context(), userID, body.ShowID, body.Quantity)
	if err != nil {
		var insufficient *service.InsufficientTicketsError
		switch {
		case errors.Is(err, service.ErrInvalidQuantity):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrShowNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		case errors.As(err, &insufficient):
			return c.JSON(http.StatusConflict, echo.Map{
				"error":     "not enough tickets available",
				"available": insufficient.Available,
				"requested": insufficient.Requested,
			})
		case errors.Is(err, service.ErrShowExpired):
			return c.JSON(http.StatusConflict, echo.Map{"error": "show has already taken place"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reservation"})
	}
	return c.JSON(http.StatusCreated, res)
}

// List handles GET /v1/reservations.  Returns the caller's reservations
// newest first with pagination metadata.
func (h *ReservationHandler) List(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	page, size, limit, offset := pageParams(c)
	items, total, err := h.Reservations.List(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
	})
}

// Get handles GET /v1/reservations/:id.  A reservation belonging to a
// different user replies 403 without revealing anything about it.
func (h *ReservationHandler) Get(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Reservations.Get(c.Request().Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrReservationNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		case errors.Is(err, service.ErrNotOwner):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch reservation"})
	}
	return c.JSON(http.StatusOK, res)
}

// Cancel handles DELETE /v1/reservations/:id.  Replies 204 on success,
// 404 when the reservation does not exist, 403 when it belongs to
// another user, 409 when the show already took place.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	if err := h.Reservations.Cancel(c.Request().Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, repository.ErrReservationNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		case errors.Is(err, service.ErrNotOwner):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, service.ErrShowAlreadyStarted):
			return c.JSON(http.StatusConflict, echo.Map{"error": "show has already taken place"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel reservation"})
	}
	return c.NoContent(http.StatusNoContent)
}
