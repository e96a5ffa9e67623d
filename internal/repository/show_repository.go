// show_repository.go defines repository methods for shows.  A show row
// carries the remaining_tickets inventory counter; every mutation of
// that counter must go through GetByIDForUpdateTx so that concurrent
// reservations against the same show are serialized by the database's
// row lock.

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/archiapp/ticket-reservation/internal/model"
)

// showColumns is the canonical column list scanned into model.Show.
const showColumns = `id, title, description, scheduled_at, price, remaining_tickets, image_url, created_at, updated_at`

// ShowRepo manages persistence for shows.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *ShowRepo) DB() *sql.DB {
	return r.db
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShow(row rowScanner) (*model.Show, error) {
	var s model.Show
	var imageURL sql.NullString
	err := row.Scan(
		&s.ID, &s.Title, &s.Description, &s.ScheduledAt, &s.Price,
		&s.RemainingTickets, &imageURL, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if imageURL.Valid {
		u := imageURL.String
		s.ImageURL = &u
	}
	return &s, nil
}

// Create inserts a new show and populates the generated ID and the
// DB-default timestamps on the given struct.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	const q = `INSERT INTO shows (title, description, scheduled_at, price, remaining_tickets, image_url)
			   VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.Title, s.Description, s.ScheduledAt, s.Price, s.RemainingTickets, s.ImageURL)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	// Query back the full row to populate created_at/updated_at defaults.
	const sel = `SELECT ` + showColumns + ` FROM shows WHERE id = ?`
	created, err := scanShow(r.db.QueryRowContext(ctx, sel, s.ID))
	if err != nil {
		return err
	}
	*s = *created
	return nil
}

// GetByID retrieves a show by its ID without taking any lock.  This is
// the read path for catalog browsing; it is never blocked by an
// in-flight reservation holding the exclusive row lock.  It returns
// ErrShowNotFound if there is no matching row.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*model.Show, error) {
	const q = `SELECT ` + showColumns + ` FROM shows WHERE id = ?`
	s, err := scanShow(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return s, nil
}

// GetByIDForUpdateTx retrieves a show within the given transaction and
// places an exclusive row lock on it (SELECT ... FOR UPDATE).  Any
// concurrent transaction calling this for the same id blocks until the
// holder commits or rolls back; InnoDB grants the lock in arrival
// order.  The lock must never be taken outside a transaction and lives
// exactly as long as the enclosing transaction.  Returns
// ErrShowNotFound when the row does not exist.
func (r *ShowRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Show, error) {
	const q = `SELECT ` + showColumns + ` FROM shows WHERE id = ? FOR UPDATE`
	s, err := scanShow(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return s, nil
}

// UpdateRemainingTicketsTx sets the remaining_tickets counter for a show
// within the given transaction.  Callers must hold the row lock obtained
// via GetByIDForUpdateTx; the value must already have been validated as
// non-negative.
func (r *ShowRepo) UpdateRemainingTicketsTx(ctx context.Context, tx *sql.Tx, id uint64, remaining int) error {
	const q = `UPDATE shows SET remaining_tickets = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, remaining, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// The row was locked a moment ago, so absence means it was
		// deleted by the same transaction; treat as not found.
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM shows WHERE id = ?`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrShowNotFound
			}
			return err
		}
	}
	return nil
}

// Update rewrites a show's catalog attributes (not the inventory
// counter, which only moves through UpdateRemainingTicketsTx).  It
// returns ErrShowNotFound when the row does not exist.
func (r *ShowRepo) Update(ctx context.Context, s *model.Show) error {
	const q = `UPDATE shows
			   SET title = ?, description = ?, scheduled_at = ?, price = ?, remaining_tickets = ?, image_url = ?, updated_at = CURRENT_TIMESTAMP
			   WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, s.Title, s.Description, s.ScheduledAt, s.Price, s.RemainingTickets, s.ImageURL, s.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM shows WHERE id = ?`, s.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrShowNotFound
			}
			return err
		}
		// Row exists but values were identical; nothing to do.
	}
	const sel = `SELECT ` + showColumns + ` FROM shows WHERE id = ?`
	updated, err := scanShow(r.db.QueryRowContext(ctx, sel, s.ID))
	if err != nil {
		return err
	}
	*s = *updated
	return nil
}

// DeleteTx removes a show row within the given transaction.  Dependent
// reservations must have been removed first (see
// ReservationRepo.DeleteByShowTx); the two always run in one
// transaction so a failure leaves both tables untouched.
func (r *ShowRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM shows WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrShowNotFound
	}
	return nil
}

// Exists reports whether a show with the given id exists.  Used by the
// catalog delete flow before invoking the reservation cleanup hook.
func (r *ShowRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM shows WHERE id = ? LIMIT 1`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// List returns shows ordered by scheduled time ascending.  When no shows
// exist it returns an empty slice and nil error.
func (r *ShowRepo) List(ctx context.Context, limit, offset int) ([]model.Show, error) {
	const q = `SELECT ` + showColumns + ` FROM shows ORDER BY scheduled_at ASC LIMIT ? OFFSET ?`
	return r.queryShows(ctx, q, limit, offset)
}

// ListUpcoming returns shows scheduled at or after the given instant,
// ordered by scheduled time ascending.
func (r *ShowRepo) ListUpcoming(ctx context.Context, now time.Time, limit, offset int) ([]model.Show, error) {
	const q = `SELECT ` + showColumns + ` FROM shows WHERE scheduled_at >= ? ORDER BY scheduled_at ASC LIMIT ? OFFSET ?`
	return r.queryShows(ctx, q, now, limit, offset)
}

// Search returns shows whose title or description contains the keyword,
// case-insensitively, ordered by scheduled time ascending.
func (r *ShowRepo) Search(ctx context.Context, keyword string, limit, offset int) ([]model.Show, error) {
	const q = `SELECT ` + showColumns + ` FROM shows
			   WHERE LOWER(title) LIKE LOWER(CONCAT('%', ?, '%'))
				  OR LOWER(description) LIKE LOWER(CONCAT('%', ?, '%'))
			   ORDER BY scheduled_at ASC LIMIT ? OFFSET ?`
	return r.queryShows(ctx, q, keyword, keyword, limit, offset)
}

func (r *ShowRepo) queryShows(ctx context.Context, q string, args ...any) ([]model.Show, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Show, 0)
	for rows.Next() {
		s, err := scanShow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
