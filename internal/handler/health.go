package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health replies with a plain liveness payload.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
