package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/archiapp/ticket-reservation/internal/model"
)

// ReservationRepo provides the reservation ledger: append and remove
// operations scoped to a transaction, plus read queries.  Ledger rows
// are immutable once committed; there is no update path.  All timestamp
// fields are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, user_id, show_id, quantity, total_price, created_at`

func scanReservation(row rowScanner) (*model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(&res.ID, &res.UserID, &res.ShowID, &res.Quantity, &res.TotalPrice, &res.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// CreateTx appends a reservation to the ledger within the scope of an
// existing transaction.  It populates the generated ID and the
// server-assigned created_at on the provided record.  The caller must
// commit or roll back the transaction.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (user_id, show_id, quantity, total_price) VALUES (?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, res.UserID, res.ShowID, res.Quantity, res.TotalPrice)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	// Query back the full row to populate the created_at default.
	const sel = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	created, err := scanReservation(tx.QueryRowContext(ctx, sel, res.ID))
	if err != nil {
		return err
	}
	*res = *created
	return nil
}

// GetByID returns a reservation by id, reading only committed state.
// Returns ErrReservationNotFound when no row exists.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

// GetByIDTx is GetByID within an existing transaction.  The cancel flow
// uses it so the ownership check and the delete see the same row.
func (r *ReservationRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	res, err := scanReservation(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

// DeleteTx hard-deletes a reservation within the given transaction.
func (r *ReservationRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// DeleteByShowTx removes every reservation referencing the given show.
// This is the cleanup hook the catalog delete flow runs, in the same
// transaction as the show removal, so no reservation can outlive a
// deleted show.  Returns the number of rows removed.
func (r *ReservationRepo) DeleteByShowTx(ctx context.Context, tx *sql.Tx, showID uint64) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE show_id = ?`, showID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

// ListByUser returns the user's reservations ordered by creation time
// descending (newest first).  When no reservations exist, an empty
// slice is returned.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
			   WHERE user_id = ?
			   ORDER BY created_at DESC, id DESC
			   LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CountByUser returns the total number of reservations the user owns,
// used for pagination metadata.
func (r *ReservationRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}

// TotalSalesTx sums total_price across all reservations within the
// given transaction.  COALESCE keeps the result at zero (not NULL)
// when the ledger is empty.
func (r *ReservationRepo) TotalSalesTx(ctx context.Context, tx *sql.Tx) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := tx.QueryRowContext(ctx, `SELECT COALESCE(SUM(total_price), 0) FROM reservations`).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// CountTx returns the total number of reservations in the ledger
// within the given transaction.
func (r *ReservationRepo) CountTx(ctx context.Context, tx *sql.Tx) (int64, error) {
	var n int64
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations`).Scan(&n)
	return n, err
}

// SalesByShowTx produces the per-show sales rollup within the given
// transaction: tickets sold and revenue grouped by show, ordered by
// revenue descending.  The query reads only committed rows and never
// takes the exclusive show lock.
func (r *ReservationRepo) SalesByShowTx(ctx context.Context, tx *sql.Tx) ([]model.ShowSales, error) {
	const q = `SELECT r.show_id, s.title, SUM(r.quantity) AS tickets_sold, SUM(r.total_price) AS revenue
			   FROM reservations r
			   JOIN shows s ON s.id = r.show_id
			   GROUP BY r.show_id, s.title
			   ORDER BY revenue DESC`
	rows, err := tx.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.ShowSales, 0)
	for rows.Next() {
		var s model.ShowSales
		if err := rows.Scan(&s.ShowID, &s.Title, &s.TicketsSold, &s.Revenue); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
