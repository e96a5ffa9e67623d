// Package queue defines message payloads exchanged over the message broker.
package queue

// Event types carried on the reservation.events queue.
const (
	EventReservationCreated   = "reservation.created"
	EventReservationCancelled = "reservation.cancelled"
)

// ReservationEvent is published whenever a reservation is committed or
// cancelled.  It contains enough information for downstream consumers to
// log, notify, or trigger analytics without querying the primary
// database.  TotalPrice is the frozen decimal amount as a string.
type ReservationEvent struct {
	Type          string `json:"type"`
	ReservationID uint64 `json:"reservation_id"`
	UserID        string `json:"user_id"`
	ShowID        uint64 `json:"show_id"`
	ShowTitle     string `json:"show_title"`
	Quantity      int    `json:"quantity"`
	TotalPrice    string `json:"total_price"`
	OccurredAt    string `json:"occurred_at"`
}
