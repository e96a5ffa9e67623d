package service

import (
	"context"
	"time"

	"github.com/archiapp/ticket-reservation/internal/model"
	"github.com/archiapp/ticket-reservation/internal/queue"
	"github.com/archiapp/ticket-reservation/internal/repository"
)

// Store is the persistence port the services depend on.  The production
// implementation is repository.Store over MySQL; tests substitute an
// in-memory store that honors the same locking contract.
type Store interface {
	// WithinTx runs fn as one atomic unit: all of fn's writes commit
	// together or none do, and any show lock acquired inside is held
	// until the unit ends.
	WithinTx(ctx context.Context, fn func(tx repository.Tx) error) error

	ShowByID(ctx context.Context, id uint64) (*model.Show, error)
	ShowExists(ctx context.Context, id uint64) (bool, error)
	CreateShow(ctx context.Context, show *model.Show) error
	UpdateShow(ctx context.Context, show *model.Show) error
	ListShows(ctx context.Context, limit, offset int) ([]model.Show, error)
	UpcomingShows(ctx context.Context, now time.Time, limit, offset int) ([]model.Show, error)
	SearchShows(ctx context.Context, keyword string, limit, offset int) ([]model.Show, error)

	ReservationByID(ctx context.Context, id uint64) (*model.Reservation, error)
	ReservationsByUser(ctx context.Context, userID string, limit, offset int) ([]model.Reservation, error)
	CountReservationsByUser(ctx context.Context, userID string) (int64, error)
	// StatisticsSnapshot returns the sales rollup computed from a
	// single consistent view of committed state: revenue, count and
	// the per-show breakdown never mix two points in time.
	StatisticsSnapshot(ctx context.Context) (*model.Stats, error)
}

// Invalidator receives the "state changed" signal emitted at the end of
// every successful mutating operation.  Caching itself is a collaborator
// concern; the services only announce which read views went stale.
type Invalidator interface {
	InvalidateShows(ctx context.Context)
	InvalidateReservations(ctx context.Context)
	InvalidateStatistics(ctx context.Context)
}

// EventPublisher pushes domain events to the message broker after a
// successful commit.  Publish failures are logged and ignored; the
// committed state is authoritative.
type EventPublisher interface {
	ReservationCreated(ctx context.Context, ev queue.ReservationEvent) error
	ReservationCancelled(ctx context.Context, ev queue.ReservationEvent) error
}
