package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reservation is a user's claim on a quantity of a show's tickets.  The
// total price is computed once at creation time (unit price × quantity)
// and frozen: later price changes to the show never alter an existing
// reservation.  Reservation rows are immutable after commit; they are
// only ever inserted (creation) or hard-deleted (cancellation), never
// updated in place.
//
// UserID is the opaque identifier carried by the caller's identity
// token.  It is not a foreign key into a local user table.
type Reservation struct {
	ID         uint64          `json:"id"`          // reservations.id
	UserID     string          `json:"user_id"`     // reservations.user_id
	ShowID     uint64          `json:"show_id"`     // reservations.show_id
	Quantity   int             `json:"quantity"`    // reservations.quantity
	TotalPrice decimal.Decimal `json:"total_price"` // reservations.total_price
	CreatedAt  time.Time       `json:"created_at"`  // reservations.created_at
}
