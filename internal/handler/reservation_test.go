package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archiapp/ticket-reservation/internal/handler"
	"github.com/archiapp/ticket-reservation/internal/model"
	"github.com/archiapp/ticket-reservation/internal/service"
	"github.com/archiapp/ticket-reservation/internal/service/servicetest"
)

var showTime = time.Date(2026, 9, 1, 20, 0, 0, 0, time.UTC)

type fixture struct {
	e     *echo.Echo
	store *servicetest.MemStore
	h     *handler.ReservationHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := servicetest.NewMemStore()
	svc := service.NewReservationService(store, nil, nil, false).
		WithClock(func() time.Time { return showTime.Add(-24 * time.Hour) })
	return &fixture{
		e:     echo.New(),
		store: store,
		h:     handler.NewReservationHandler(svc),
	}
}

func (f *fixture) seedShow(remaining int) model.Show {
	return f.store.AddShow(model.Show{
		Title:            "Evening Show",
		ScheduledAt:      showTime,
		Price:            decimal.RequireFromString("19.90"),
		RemainingTickets: remaining,
	})
}

// request builds an authenticated echo context the way JWTAuth leaves it.
func (f *fixture) request(method, path, body, userID string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	if userID != "" {
		c.Set("user", &jwt.Token{Claims: jwt.MapClaims{"sub": userID}})
	}
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCreateReservation_Created(t *testing.T) {
	f := newFixture(t)
	show := f.seedShow(10)

	c, rec := f.request(http.MethodPost, "/v1/reservations",
		`{"show_id": `+strconv.FormatUint(show.ID, 10)+`, "quantity": 3}`, "alice")
	require.NoError(t, f.h.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "59.7", body["total_price"])
	assert.EqualValues(t, 3, body["quantity"])
}

func TestCreateReservation_Insufficient(t *testing.T) {
	f := newFixture(t)
	show := f.seedShow(2)

	c, rec := f.request(http.MethodPost, "/v1/reservations",
		`{"show_id": `+strconv.FormatUint(show.ID, 10)+`, "quantity": 5}`, "alice")
	require.NoError(t, f.h.Create(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 2, body["available"])
	assert.EqualValues(t, 5, body["requested"])
}

func TestCreateReservation_BadInput(t *testing.T) {
	f := newFixture(t)
	show := f.seedShow(10)

	// Missing show id.
	c, rec := f.request(http.MethodPost, "/v1/reservations", `{"quantity": 1}`, "alice")
	require.NoError(t, f.h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Zero quantity.
	c, rec = f.request(http.MethodPost, "/v1/reservations",
		`{"show_id": `+strconv.FormatUint(show.ID, 10)+`, "quantity": 0}`, "alice")
	require.NoError(t, f.h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown show.
	c, rec = f.request(http.MethodPost, "/v1/reservations", `{"show_id": 999, "quantity": 1}`, "alice")
	require.NoError(t, f.h.Create(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetReservation_Authorization(t *testing.T) {
	f := newFixture(t)
	show := f.seedShow(10)

	c, rec := f.request(http.MethodPost, "/v1/reservations",
		`{"show_id": `+strconv.FormatUint(show.ID, 10)+`, "quantity": 1}`, "alice")
	require.NoError(t, f.h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody(t, rec)
	id := strconv.FormatFloat(created["id"].(float64), 'f', 0, 64)

	// The owner sees it.
	c, rec = f.request(http.MethodGet, "/v1/reservations/"+id, "", "alice")
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, f.h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Another user gets 403, not the resource.
	c, rec = f.request(http.MethodGet, "/v1/reservations/"+id, "", "mallory")
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, f.h.Get(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Unknown id gets 404.
	c, rec = f.request(http.MethodGet, "/v1/reservations/424242", "", "alice")
	c.SetParamNames("id")
	c.SetParamValues("424242")
	require.NoError(t, f.h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelReservation_Flow(t *testing.T) {
	f := newFixture(t)
	show := f.seedShow(10)

	c, rec := f.request(http.MethodPost, "/v1/reservations",
		`{"show_id": `+strconv.FormatUint(show.ID, 10)+`, "quantity": 4}`, "alice")
	require.NoError(t, f.h.Create(c))
	created := decodeBody(t, rec)
	id := strconv.FormatFloat(created["id"].(float64), 'f', 0, 64)

	// Someone else cannot cancel it.
	c, rec = f.request(http.MethodDelete, "/v1/reservations/"+id, "", "mallory")
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, f.h.Cancel(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The owner can; inventory is restored.
	c, rec = f.request(http.MethodDelete, "/v1/reservations/"+id, "", "alice")
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, f.h.Cancel(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	snap, ok := f.store.ShowSnapshot(show.ID)
	require.True(t, ok)
	assert.Equal(t, 10, snap.RemainingTickets)

	// A second cancel finds nothing.
	c, rec = f.request(http.MethodDelete, "/v1/reservations/"+id, "", "alice")
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, f.h.Cancel(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListReservations_OwnOnly(t *testing.T) {
	f := newFixture(t)
	show := f.seedShow(10)

	for _, user := range []string{"alice", "alice", "bob"} {
		c, rec := f.request(http.MethodPost, "/v1/reservations",
			`{"show_id": `+strconv.FormatUint(show.ID, 10)+`, "quantity": 1}`, user)
		require.NoError(t, f.h.Create(c))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	c, rec := f.request(http.MethodGet, "/v1/reservations", "", "alice")
	require.NoError(t, f.h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 2, body["total"])
	assert.Len(t, body["items"], 2)
}
