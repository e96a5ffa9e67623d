package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/archiapp/ticket-reservation/internal/model"
)

// Tx is the unit-of-work the reservation engine runs inside one database
// transaction.  AcquireShow places the exclusive row lock that
// serializes every mutation of a show's inventory; the lock is released
// when the transaction commits or rolls back, never before and never
// after.  Implementations other than the MySQL one (an optimistic
// store, for instance) must preserve the same contract.
type Tx interface {
	// AcquireShow returns the show row under an exclusive hold that
	// blocks concurrent AcquireShow calls for the same id until this
	// transaction ends.  Returns ErrShowNotFound when absent.
	AcquireShow(ctx context.Context, showID uint64) (*model.Show, error)
	// SetRemainingTickets writes the inventory counter.  Only valid
	// after AcquireShow on the same id within this transaction.
	SetRemainingTickets(ctx context.Context, showID uint64, remaining int) error
	ReservationByID(ctx context.Context, id uint64) (*model.Reservation, error)
	InsertReservation(ctx context.Context, res *model.Reservation) error
	DeleteReservation(ctx context.Context, id uint64) error
	// DeleteReservationsForShow is the cleanup hook the catalog delete
	// flow runs before removing the show itself.
	DeleteReservationsForShow(ctx context.Context, showID uint64) (int64, error)
	DeleteShow(ctx context.Context, showID uint64) error
}

// Store bundles the repositories behind the service layer's port.  It
// owns transaction lifecycles: WithinTx begins a transaction, rolls it
// back when the callback errors and commits otherwise, so callers never
// touch *sql.Tx directly.
type Store struct {
	db           *sql.DB
	shows        *ShowRepo
	reservations *ReservationRepo
}

// NewStore builds a Store and its repositories over one DB handle.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:           db,
		shows:        NewShowRepo(db),
		reservations: NewReservationRepo(db),
	}
}

// sqlTx adapts an open *sql.Tx to the Tx unit-of-work interface.
type sqlTx struct {
	tx    *sql.Tx
	store *Store
}

func (t *sqlTx) AcquireShow(ctx context.Context, showID uint64) (*model.Show, error) {
	return t.store.shows.GetByIDForUpdateTx(ctx, t.tx, showID)
}

func (t *sqlTx) SetRemainingTickets(ctx context.Context, showID uint64, remaining int) error {
	return t.store.shows.UpdateRemainingTicketsTx(ctx, t.tx, showID, remaining)
}

func (t *sqlTx) ReservationByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	return t.store.reservations.GetByIDTx(ctx, t.tx, id)
}

func (t *sqlTx) InsertReservation(ctx context.Context, res *model.Reservation) error {
	return t.store.reservations.CreateTx(ctx, t.tx, res)
}

func (t *sqlTx) DeleteReservation(ctx context.Context, id uint64) error {
	return t.store.reservations.DeleteTx(ctx, t.tx, id)
}

func (t *sqlTx) DeleteReservationsForShow(ctx context.Context, showID uint64) (int64, error) {
	return t.store.reservations.DeleteByShowTx(ctx, t.tx, showID)
}

func (t *sqlTx) DeleteShow(ctx context.Context, showID uint64) error {
	return t.store.shows.DeleteTx(ctx, t.tx, showID)
}

// WithinTx runs fn inside a single database transaction.  If fn returns
// an error the transaction is rolled back and every row lock it held is
// released with the data unchanged; otherwise the transaction commits.
// Context cancellation mid-transaction triggers the same rollback path,
// so no lock outlives its owning transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&sqlTx{tx: tx, store: s}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Non-locking read paths and catalog operations, delegated to the
// repositories.  None of these ever takes the exclusive show lock.

func (s *Store) ShowByID(ctx context.Context, id uint64) (*model.Show, error) {
	return s.shows.GetByID(ctx, id)
}

func (s *Store) ShowExists(ctx context.Context, id uint64) (bool, error) {
	return s.shows.Exists(ctx, id)
}

func (s *Store) CreateShow(ctx context.Context, show *model.Show) error {
	return s.shows.Create(ctx, show)
}

func (s *Store) UpdateShow(ctx context.Context, show *model.Show) error {
	return s.shows.Update(ctx, show)
}

func (s *Store) ListShows(ctx context.Context, limit, offset int) ([]model.Show, error) {
	return s.shows.List(ctx, limit, offset)
}

func (s *Store) UpcomingShows(ctx context.Context, now time.Time, limit, offset int) ([]model.Show, error) {
	return s.shows.ListUpcoming(ctx, now, limit, offset)
}

func (s *Store) SearchShows(ctx context.Context, keyword string, limit, offset int) ([]model.Show, error) {
	return s.shows.Search(ctx, keyword, limit, offset)
}

func (s *Store) ReservationByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	return s.reservations.GetByID(ctx, id)
}

func (s *Store) ReservationsByUser(ctx context.Context, userID string, limit, offset int) ([]model.Reservation, error) {
	return s.reservations.ListByUser(ctx, userID, limit, offset)
}

func (s *Store) CountReservationsByUser(ctx context.Context, userID string) (int64, error) {
	return s.reservations.CountByUser(ctx, userID)
}

// StatisticsSnapshot runs the three sales rollup queries inside one
// read-only transaction, so total revenue, the reservation count and
// the per-show breakdown all describe the same committed state even
// while reservations are being created concurrently.
func (s *Store) StatisticsSnapshot(ctx context.Context) (*model.Stats, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	totalRevenue, err := s.reservations.TotalSalesTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	count, err := s.reservations.CountTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	sales, err := s.reservations.SalesByShowTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &model.Stats{
		TotalRevenue:      totalRevenue,
		TotalReservations: count,
		SalesByShow:       sales,
	}, nil
}
