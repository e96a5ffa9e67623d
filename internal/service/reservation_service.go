package service

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/archiapp/ticket-reservation/internal/model"
	"github.com/archiapp/ticket-reservation/internal/queue"
	"github.com/archiapp/ticket-reservation/internal/repository"
)

// ReservationService is the reservation engine.  Every mutating
// operation runs as one atomic unit: acquire the exclusive hold on the
// show row, validate, move the inventory counter, write the ledger,
// commit.  Concurrent requests against the same show are serialized by
// the hold in lock-acquisition order; whichever pass the capacity check
// before capacity runs out succeed, the rest fail with
// InsufficientTicketsError.  Requests are all-or-nothing; the engine
// never returns a reduced quantity.
type ReservationService struct {
	store           Store
	invalidator     Invalidator
	publisher       EventPublisher
	allowPastCancel bool
	now             func() time.Time
}

// NewReservationService wires the engine.  invalidator and publisher
// may be nil; the engine then skips the corresponding signals.
// allowPastCancel relaxes the cancellation business-time check (policy
// flag, off by default in production).
func NewReservationService(store Store, invalidator Invalidator, publisher EventPublisher, allowPastCancel bool) *ReservationService {
	if store == nil {
		panic("nil store passed to NewReservationService")
	}
	return &ReservationService{
		store:           store,
		invalidator:     invalidator,
		publisher:       publisher,
		allowPastCancel: allowPastCancel,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the engine's time source.  Used by tests to pin
// the business-time checks.
func (s *ReservationService) WithClock(now func() time.Time) *ReservationService {
	s.now = now
	return s
}

// Create reserves quantity tickets of the given show for the user.
//
// Protocol, in order: reject quantity < 1 before any lock; acquire the
// exclusive hold on the show; check remaining capacity (the request
// that cannot be satisfied always fails here, never oversells); check
// the show is still in the future; compute the frozen total price;
// decrement the counter; append the ledger row.  All of it commits or
// rolls back together.
func (s *ReservationService) Create(ctx context.Context, userID string, showID uint64, quantity int) (*model.Reservation, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var (
		res       *model.Reservation
		showTitle string
	)
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		show, err := tx.AcquireShow(ctx, showID)
		if err != nil {
			return err
		}
		if show.RemainingTickets < quantity {
			return &InsufficientTicketsError{Available: show.RemainingTickets, Requested: quantity}
		}
		if !show.ScheduledAt.After(s.now()) {
			return ErrShowExpired
		}
		total := show.Price.Mul(decimal.NewFromInt(int64(quantity)))
		if err := tx.SetRemainingTickets(ctx, show.ID, show.RemainingTickets-quantity); err != nil {
			return err
		}
		res = &model.Reservation{
			UserID:     userID,
			ShowID:     show.ID,
			Quantity:   quantity,
			TotalPrice: total,
			CreatedAt:  s.now(),
		}
		showTitle = show.Title
		return tx.InsertReservation(ctx, res)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("reservation created | id=%d user=%s show=%d quantity=%d total=%s",
		res.ID, userID, showID, quantity, res.TotalPrice)
	s.invalidateReadViews(ctx)
	if s.publisher != nil {
		_ = s.publisher.ReservationCreated(ctx, queue.ReservationEvent{
			ReservationID: res.ID,
			UserID:        res.UserID,
			ShowID:        res.ShowID,
			ShowTitle:     showTitle,
			Quantity:      res.Quantity,
			TotalPrice:    res.TotalPrice.StringFixed(2),
			OccurredAt:    s.now().Format(time.RFC3339),
		})
	}
	return res, nil
}

// Cancel removes the user's reservation and restores its quantity to
// the show's inventory.  The restore runs under the same exclusive hold
// as creation, so a concurrent Create against the same show cannot lose
// the update.  The reservation row is hard-deleted.
func (s *ReservationService) Cancel(ctx context.Context, reservationID uint64, userID string) error {
	var (
		cancelled *model.Reservation
		showTitle string
	)
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		res, err := tx.ReservationByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if res.UserID != userID {
			return ErrNotOwner
		}
		show, err := tx.AcquireShow(ctx, res.ShowID)
		if err != nil {
			return err
		}
		if !s.allowPastCancel && !show.ScheduledAt.After(s.now()) {
			return ErrShowAlreadyStarted
		}
		if err := tx.SetRemainingTickets(ctx, show.ID, show.RemainingTickets+res.Quantity); err != nil {
			return err
		}
		if err := tx.DeleteReservation(ctx, res.ID); err != nil {
			return err
		}
		cancelled = res
		showTitle = show.Title
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("reservation cancelled | id=%d user=%s show=%d quantity=%d",
		reservationID, userID, cancelled.ShowID, cancelled.Quantity)
	s.invalidateReadViews(ctx)
	if s.publisher != nil {
		_ = s.publisher.ReservationCancelled(ctx, queue.ReservationEvent{
			ReservationID: cancelled.ID,
			UserID:        cancelled.UserID,
			ShowID:        cancelled.ShowID,
			ShowTitle:     showTitle,
			Quantity:      cancelled.Quantity,
			TotalPrice:    cancelled.TotalPrice.StringFixed(2),
			OccurredAt:    s.now().Format(time.RFC3339),
		})
	}
	return nil
}

// Get returns one reservation of the calling user.  A reservation owned
// by someone else yields ErrNotOwner without revealing anything further
// about it.
func (s *ReservationService) Get(ctx context.Context, reservationID uint64, userID string) (*model.Reservation, error) {
	res, err := s.store.ReservationByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.UserID != userID {
		return nil, ErrNotOwner
	}
	return res, nil
}

// List returns a page of the user's reservations, newest first, along
// with the user's total reservation count for pagination.
func (s *ReservationService) List(ctx context.Context, userID string, limit, offset int) ([]model.Reservation, int64, error) {
	items, err := s.store.ReservationsByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.CountReservationsByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Statistics computes the sales rollup from the ledger: total revenue
// (zero when empty, never an error), total reservation count and the
// per-show breakdown ordered by revenue descending.  The store serves
// all three figures from one consistent snapshot of committed state,
// so revenue always equals the sum over the counted reservations even
// under concurrent writes.  It takes no exclusive show locks.
func (s *ReservationService) Statistics(ctx context.Context) (*model.Stats, error) {
	return s.store.StatisticsSnapshot(ctx)
}

// invalidateReadViews emits the state-changed signal for every cached
// view a reservation mutation can stale: show listings (remaining
// tickets changed), reservation views and statistics.
func (s *ReservationService) invalidateReadViews(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	s.invalidator.InvalidateShows(ctx)
	s.invalidator.InvalidateReservations(ctx)
	s.invalidator.InvalidateStatistics(ctx)
}
