package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	ev := ReservationEvent{
		Type:          EventReservationCreated,
		ReservationID: 7,
		UserID:        "alice",
		ShowID:        3,
		ShowTitle:     "Evening Show",
		Quantity:      3,
		TotalPrice:    "59.70",
		OccurredAt:    "2026-08-01T20:00:00Z",
	}
	want := "[2026-08-01T20:00:00Z] reservation.created | reservation_id=7 | user=alice | show_id=3 | show=\"Evening Show\" | quantity=3 | total=59.70\n"
	assert.Equal(t, want, formatLine(ev))
}

func TestHandleMessage_AppendsLogLine(t *testing.T) {
	wd, err0 := os.Getwd()
	require.NoError(t, err0)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	ev := ReservationEvent{
		Type:          EventReservationCancelled,
		ReservationID: 9,
		UserID:        "bob",
		ShowID:        4,
		ShowTitle:     "Gala",
		Quantity:      1,
		TotalPrice:    "50.00",
		OccurredAt:    "2026-08-02T10:00:00Z",
	}
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	require.NoError(t, handleMessage(body))
	require.NoError(t, handleMessage(body)) // append, not truncate

	data, err := os.ReadFile(filepath.Join("logs", "reservation.log"))
	require.NoError(t, err)
	assert.Equal(t, formatLine(ev)+formatLine(ev), string(data))
}

func TestHandleMessage_BadPayload(t *testing.T) {
	wd, err0 := os.Getwd()
	require.NoError(t, err0)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	assert.Error(t, handleMessage([]byte("{not json")))
}
