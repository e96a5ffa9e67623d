package handler // handler defines the HTTP handlers for the API

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// Pagination defaults and cap.  The cap keeps a single request from
// dragging an unbounded result set through the ledger.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// pageParams reads ?page and ?size, applying defaults and the cap, and
// returns the page/size pair along with the derived LIMIT/OFFSET.
func pageParams(c echo.Context) (page, size, limit, offset int) {
	page = 1
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	size = defaultPageSize
	if v, err := strconv.Atoi(c.QueryParam("size")); err == nil && v > 0 {
		size = v
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size, size, (page - 1) * size
}
