// Package servicetest provides an in-memory store for exercising the
// services without a database.  It honors the same unit-of-work
// contract as the MySQL store: AcquireShow takes an exclusive per-show
// hold that blocks concurrent acquirers until the unit ends, and writes
// staged inside a unit become visible only on commit.  That makes the
// overbooking scenario testable with real goroutines.
package servicetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/archiapp/ticket-reservation/internal/model"
	"github.com/archiapp/ticket-reservation/internal/repository"
)

// MemStore is a concurrency-correct in-memory implementation of the
// service layer's persistence port.
type MemStore struct {
	mu           sync.Mutex
	shows        map[uint64]model.Show
	reservations map[uint64]model.Reservation
	showLocks    map[uint64]*sync.Mutex
	nextShowID   uint64
	nextResID    uint64
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		shows:        make(map[uint64]model.Show),
		reservations: make(map[uint64]model.Reservation),
		showLocks:    make(map[uint64]*sync.Mutex),
	}
}

// AddShow seeds a show, assigning an id when none is set, and returns it.
func (m *MemStore) AddShow(s model.Show) model.Show {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == 0 {
		m.nextShowID++
		s.ID = m.nextShowID
	} else if s.ID > m.nextShowID {
		m.nextShowID = s.ID
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	s.UpdatedAt = s.CreatedAt
	m.shows[s.ID] = s
	return s
}

// ShowSnapshot returns the committed state of one show.
func (m *MemStore) ShowSnapshot(id uint64) (model.Show, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shows[id]
	return s, ok
}

// ReservationCount reports how many committed reservations exist.
func (m *MemStore) ReservationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reservations)
}

func (m *MemStore) lockFor(showID uint64) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.showLocks[showID]
	if !ok {
		l = &sync.Mutex{}
		m.showLocks[showID] = l
	}
	return l
}

// memTx stages one unit of work.  Writes land in the staging fields and
// are applied to the store on commit only.
type memTx struct {
	store *MemStore

	held      map[uint64]*sync.Mutex
	remaining map[uint64]int
	inserted  []model.Reservation
	deleted   map[uint64]bool
	dropShows map[uint64]bool
}

func (t *memTx) AcquireShow(ctx context.Context, showID uint64) (*model.Show, error) {
	if _, already := t.held[showID]; !already {
		l := t.store.lockFor(showID)
		l.Lock()
		t.held[showID] = l
	}
	t.store.mu.Lock()
	s, ok := t.store.shows[showID]
	t.store.mu.Unlock()
	if !ok || t.dropShows[showID] {
		return nil, repository.ErrShowNotFound
	}
	if r, staged := t.remaining[showID]; staged {
		s.RemainingTickets = r
	}
	return &s, nil
}

func (t *memTx) SetRemainingTickets(ctx context.Context, showID uint64, remaining int) error {
	t.remaining[showID] = remaining
	return nil
}

func (t *memTx) ReservationByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	t.store.mu.Lock()
	r, ok := t.store.reservations[id]
	t.store.mu.Unlock()
	if !ok || t.deleted[id] {
		return nil, repository.ErrReservationNotFound
	}
	return &r, nil
}

func (t *memTx) InsertReservation(ctx context.Context, res *model.Reservation) error {
	t.store.mu.Lock()
	t.store.nextResID++
	res.ID = t.store.nextResID
	t.store.mu.Unlock()
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}
	t.inserted = append(t.inserted, *res)
	return nil
}

func (t *memTx) DeleteReservation(ctx context.Context, id uint64) error {
	t.store.mu.Lock()
	_, ok := t.store.reservations[id]
	t.store.mu.Unlock()
	if !ok || t.deleted[id] {
		return repository.ErrReservationNotFound
	}
	t.deleted[id] = true
	return nil
}

func (t *memTx) DeleteReservationsForShow(ctx context.Context, showID uint64) (int64, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	var n int64
	for id, r := range t.store.reservations {
		if r.ShowID == showID && !t.deleted[id] {
			t.deleted[id] = true
			n++
		}
	}
	return n, nil
}

func (t *memTx) DeleteShow(ctx context.Context, showID uint64) error {
	t.store.mu.Lock()
	_, ok := t.store.shows[showID]
	t.store.mu.Unlock()
	if !ok {
		return repository.ErrShowNotFound
	}
	t.dropShows[showID] = true
	return nil
}

// WithinTx runs fn as one atomic unit.  Show holds taken inside fn are
// released only here, after the staged writes were applied (commit) or
// discarded (rollback), which is exactly the lock lifetime the engine
// depends on.
func (m *MemStore) WithinTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	tx := &memTx{
		store:     m,
		held:      make(map[uint64]*sync.Mutex),
		remaining: make(map[uint64]int),
		deleted:   make(map[uint64]bool),
		dropShows: make(map[uint64]bool),
	}
	err := fn(tx)
	if err == nil {
		m.mu.Lock()
		for id, remaining := range tx.remaining {
			if s, ok := m.shows[id]; ok {
				s.RemainingTickets = remaining
				s.UpdatedAt = time.Now().UTC()
				m.shows[id] = s
			}
		}
		for _, r := range tx.inserted {
			m.reservations[r.ID] = r
		}
		for id := range tx.deleted {
			delete(m.reservations, id)
		}
		for id := range tx.dropShows {
			delete(m.shows, id)
		}
		m.mu.Unlock()
	}
	for _, l := range tx.held {
		l.Unlock()
	}
	return err
}

func (m *MemStore) ShowByID(ctx context.Context, id uint64) (*model.Show, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shows[id]
	if !ok {
		return nil, repository.ErrShowNotFound
	}
	return &s, nil
}

func (m *MemStore) ShowExists(ctx context.Context, id uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.shows[id]
	return ok, nil
}

func (m *MemStore) CreateShow(ctx context.Context, show *model.Show) error {
	created := m.AddShow(*show)
	*show = created
	return nil
}

// UpdateShow rewrites every caller-supplied attribute, the inventory
// counter included, matching the SQL store's UPDATE statement.
func (m *MemStore) UpdateShow(ctx context.Context, show *model.Show) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.shows[show.ID]
	if !ok {
		return repository.ErrShowNotFound
	}
	show.CreatedAt = current.CreatedAt
	show.UpdatedAt = time.Now().UTC()
	m.shows[show.ID] = *show
	return nil
}

func (m *MemStore) ListShows(ctx context.Context, limit, offset int) ([]model.Show, error) {
	return m.listShows(func(model.Show) bool { return true }, limit, offset), nil
}

func (m *MemStore) UpcomingShows(ctx context.Context, now time.Time, limit, offset int) ([]model.Show, error) {
	return m.listShows(func(s model.Show) bool { return !s.ScheduledAt.Before(now) }, limit, offset), nil
}

func (m *MemStore) SearchShows(ctx context.Context, keyword string, limit, offset int) ([]model.Show, error) {
	kw := strings.ToLower(keyword)
	return m.listShows(func(s model.Show) bool {
		return strings.Contains(strings.ToLower(s.Title), kw) ||
			strings.Contains(strings.ToLower(s.Description), kw)
	}, limit, offset), nil
}

// listShows mirrors the SQL ordering: scheduled_at ascending.
func (m *MemStore) listShows(keep func(model.Show) bool, limit, offset int) []model.Show {
	m.mu.Lock()
	out := make([]model.Show, 0, len(m.shows))
	for _, s := range m.shows {
		if keep(s) {
			out = append(out, s)
		}
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ScheduledAt.Before(out[j].ScheduledAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, limit, offset)
}

func (m *MemStore) ReservationByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	return &r, nil
}

// ReservationsByUser mirrors the SQL ordering: created_at descending,
// id descending as the tiebreak.
func (m *MemStore) ReservationsByUser(ctx context.Context, userID string, limit, offset int) ([]model.Reservation, error) {
	m.mu.Lock()
	out := make([]model.Reservation, 0)
	for _, r := range m.reservations {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return page(out, limit, offset), nil
}

func (m *MemStore) CountReservationsByUser(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.reservations {
		if r.UserID == userID {
			n++
		}
	}
	return n, nil
}

// StatisticsSnapshot computes revenue, count and the per-show rollup
// under one hold of the store mutex, the in-memory equivalent of the
// SQL store's read-only transaction: the three figures always describe
// the same committed state.
func (m *MemStore) StatisticsSnapshot(ctx context.Context) (*model.Stats, error) {
	m.mu.Lock()
	total := decimal.Zero
	count := int64(len(m.reservations))
	byShow := make(map[uint64]*model.ShowSales)
	for _, r := range m.reservations {
		total = total.Add(r.TotalPrice)
		e, ok := byShow[r.ShowID]
		if !ok {
			e = &model.ShowSales{ShowID: r.ShowID, Revenue: decimal.Zero}
			if s, found := m.shows[r.ShowID]; found {
				e.Title = s.Title
			}
			byShow[r.ShowID] = e
		}
		e.TicketsSold += int64(r.Quantity)
		e.Revenue = e.Revenue.Add(r.TotalPrice)
	}
	m.mu.Unlock()

	sales := make([]model.ShowSales, 0, len(byShow))
	for _, e := range byShow {
		sales = append(sales, *e)
	}
	sort.Slice(sales, func(i, j int) bool {
		if !sales[i].Revenue.Equal(sales[j].Revenue) {
			return sales[i].Revenue.GreaterThan(sales[j].Revenue)
		}
		return sales[i].ShowID < sales[j].ShowID
	})
	return &model.Stats{
		TotalRevenue:      total,
		TotalReservations: count,
		SalesByShow:       sales,
	}, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
