package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Show is a scheduled performance with a finite ticket inventory.  The
// RemainingTickets counter is the single shared mutable value in the
// system: it may only be changed inside a transaction that holds the
// exclusive row lock on the show (see repository.Tx.AcquireShow) and it
// must never be negative, not even transiently.
//
// Fields:
//  ID               – primary key identifier.
//  Title            – name of the performance.
//  Description      – free-form description, searchable.
//  ScheduledAt      – when the show takes place (UTC).
//  Price            – unit ticket price, DECIMAL(10,2).
//  RemainingTickets – tickets still available for reservation.
//  ImageURL         – optional poster image.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Show struct {
	ID               uint64          `json:"id"`                  // shows.id
	Title            string          `json:"title"`               // shows.title
	Description      string          `json:"description"`         // shows.description
	ScheduledAt      time.Time       `json:"scheduled_at"`        // shows.scheduled_at
	Price            decimal.Decimal `json:"price"`               // shows.price
	RemainingTickets int             `json:"remaining_tickets"`   // shows.remaining_tickets
	ImageURL         *string         `json:"image_url,omitempty"` // shows.image_url (nullable)
	CreatedAt        time.Time       `json:"created_at"`          // shows.created_at
	UpdatedAt        time.Time       `json:"updated_at"`          // shows.updated_at
}
