package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/archiapp/ticket-reservation/internal/repository"
	"github.com/archiapp/ticket-reservation/internal/service"
)

// ShowHandler exposes the show catalog: public browsing plus the
// admin-only CRUD surface.  Catalog reads use the non-locking path and
// are therefore never blocked by in-flight reservations.
type ShowHandler struct {
	Catalog *service.CatalogService
}

// NewShowHandler constructs the handler.  The service must be non-nil.
func NewShowHandler(svc *service.CatalogService) *ShowHandler {
	if svc == nil {
		panic("nil service passed to NewShowHandler")
	}
	return &ShowHandler{Catalog: svc}
}

// showBody is the JSON payload for create and update.
type showBody struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ScheduledAt string  `json:"scheduled_at"` // RFC3339
	Price       string  `json:"price"`        // decimal, e.g. "19.90"
	Tickets     int     `json:"tickets"`
	ImageURL    *string `json:"image_url"`
}

// validate parses and checks the payload, returning a ShowInput or a
// human-readable problem.
func (b showBody) validate() (service.ShowInput, string) {
	var in service.ShowInput
	if strings.TrimSpace(b.Title) == "" {
		return in, "title is required"
	}
	scheduledAt, err := time.Parse(time.RFC3339, b.ScheduledAt)
	if err != nil {
		return in, "scheduled_at must be an RFC3339 timestamp"
	}
	price, err := decimal.NewFromString(b.Price)
	if err != nil || !price.IsPositive() {
		return in, "price must be a positive decimal"
	}
	if b.Tickets < 0 {
		return in, "tickets must not be negative"
	}
	in = service.ShowInput{
		Title:        strings.TrimSpace(b.Title),
		Description:  b.Description,
		ScheduledAt:  scheduledAt.UTC(),
		Price:        price.Round(2),
		TotalTickets: b.Tickets,
		ImageURL:     b.ImageURL,
	}
	return in, ""
}

// List handles GET /v1/shows.  ?upcoming=true restricts the page to
// shows that have not taken place yet.
func (h *ShowHandler) List(c echo.Context) error {
	_, _, limit, offset := pageParams(c)
	upcoming := c.QueryParam("upcoming") == "true"
	shows, err := h.Catalog.List(c.Request().Context(), upcoming, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load shows"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": shows})
}

// Get handles GET /v1/shows/:id.
func (h *ShowHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	show, err := h.Catalog.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load show"})
	}
	return c.JSON(http.StatusOK, show)
}

// Search handles GET /v1/search/shows?q=keyword over title and description.
func (h *ShowHandler) Search(c echo.Context) error {
	keyword := strings.TrimSpace(c.QueryParam("q"))
	if keyword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "q is required"})
	}
	_, _, limit, offset := pageParams(c)
	shows, err := h.Catalog.Search(c.Request().Context(), keyword, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to search shows"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": shows})
}

// Create handles POST /v1/shows (ADMIN).
func (h *ShowHandler) Create(c echo.Context) error {
	var body showBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	in, problem := body.validate()
	if problem != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": problem})
	}
	show, err := h.Catalog.Create(c.Request().Context(), in)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create show"})
	}
	return c.JSON(http.StatusCreated, show)
}

// Update handles PUT /v1/shows/:id (ADMIN).
func (h *ShowHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var body showBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	in, problem := body.validate()
	if problem != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": problem})
	}
	show, err := h.Catalog.Update(c.Request().Context(), id, in)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update show"})
	}
	return c.JSON(http.StatusOK, show)
}

// Delete handles DELETE /v1/shows/:id (ADMIN).  Dependent reservations
// are removed in the same transaction as the show itself.
func (h *ShowHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	if err := h.Catalog.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete show"})
	}
	return c.NoContent(http.StatusNoContent)
}
