package service

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/archiapp/ticket-reservation/internal/model"
	"github.com/archiapp/ticket-reservation/internal/repository"
)

// CatalogService manages show metadata: listing, search and the admin
// CRUD surface.  It never touches the inventory counter outside of
// seeding it at creation time; reservations own that counter.  Every
// successful mutation emits the cache invalidation signal, since show
// listings, reservation views and statistics all embed show data.
type CatalogService struct {
	store       Store
	invalidator Invalidator
	now         func() time.Time
}

// NewCatalogService wires the catalog.  invalidator may be nil.
func NewCatalogService(store Store, invalidator Invalidator) *CatalogService {
	if store == nil {
		panic("nil store passed to NewCatalogService")
	}
	return &CatalogService{
		store:       store,
		invalidator: invalidator,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the catalog's time source, used by tests to pin
// the upcoming filter.
func (s *CatalogService) WithClock(now func() time.Time) *CatalogService {
	s.now = now
	return s
}

// ShowInput carries the caller-supplied attributes for create/update.
// TotalTickets seeds RemainingTickets on create.  On update it is
// persisted verbatim as the new remaining count, so callers that only
// mean to change catalog attributes must pass the current value.
type ShowInput struct {
	Title        string
	Description  string
	ScheduledAt  time.Time
	Price        decimal.Decimal
	TotalTickets int
	ImageURL     *string
}

// Create adds a new show to the catalog.
func (s *CatalogService) Create(ctx context.Context, in ShowInput) (*model.Show, error) {
	show := &model.Show{
		Title:            in.Title,
		Description:      in.Description,
		ScheduledAt:      in.ScheduledAt,
		Price:            in.Price,
		RemainingTickets: in.TotalTickets,
		ImageURL:         in.ImageURL,
	}
	if err := s.store.CreateShow(ctx, show); err != nil {
		return nil, err
	}
	log.Printf("show created | id=%d title=%q scheduled_at=%s", show.ID, show.Title, show.ScheduledAt.Format(time.RFC3339))
	s.invalidate(ctx)
	return show, nil
}

// Update rewrites a show's attributes.  Frozen reservation prices are
// unaffected by price changes here.
func (s *CatalogService) Update(ctx context.Context, id uint64, in ShowInput) (*model.Show, error) {
	show := &model.Show{
		ID:               id,
		Title:            in.Title,
		Description:      in.Description,
		ScheduledAt:      in.ScheduledAt,
		Price:            in.Price,
		RemainingTickets: in.TotalTickets,
		ImageURL:         in.ImageURL,
	}
	if err := s.store.UpdateShow(ctx, show); err != nil {
		return nil, err
	}
	log.Printf("show updated | id=%d title=%q", show.ID, show.Title)
	s.invalidate(ctx)
	return show, nil
}

// Delete removes a show and, in the same transaction, every reservation
// that references it, so the ledger never holds orphaned rows.  The
// show row is locked first, which serializes the delete against any
// in-flight reservation on the same show.
func (s *CatalogService) Delete(ctx context.Context, id uint64) error {
	exists, err := s.store.ShowExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return repository.ErrShowNotFound
	}
	var removed int64
	err = s.store.WithinTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.AcquireShow(ctx, id); err != nil {
			return err
		}
		n, err := tx.DeleteReservationsForShow(ctx, id)
		if err != nil {
			return err
		}
		removed = n
		return tx.DeleteShow(ctx, id)
	})
	if err != nil {
		return err
	}
	log.Printf("show deleted | id=%d reservations_removed=%d", id, removed)
	s.invalidate(ctx)
	return nil
}

// Get returns a show by id over the non-locking read path.
func (s *CatalogService) Get(ctx context.Context, id uint64) (*model.Show, error) {
	return s.store.ShowByID(ctx, id)
}

// List returns a page of shows, optionally restricted to upcoming ones.
func (s *CatalogService) List(ctx context.Context, upcomingOnly bool, limit, offset int) ([]model.Show, error) {
	if upcomingOnly {
		return s.store.UpcomingShows(ctx, s.now(), limit, offset)
	}
	return s.store.ListShows(ctx, limit, offset)
}

// Search returns shows matching the keyword in title or description.
func (s *CatalogService) Search(ctx context.Context, keyword string, limit, offset int) ([]model.Show, error) {
	return s.store.SearchShows(ctx, keyword, limit, offset)
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	s.invalidator.InvalidateShows(ctx)
	s.invalidator.InvalidateReservations(ctx)
	s.invalidator.InvalidateStatistics(ctx)
}
