// Package memoryRepo is an in-process implementation of every repository,
// used by tests and local demos. Documents are stored BSON-encoded so callers
// never share memory with the store.
package memoryRepo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"parkinglot/database"
	"parkinglot/database/repository"
	"parkinglot/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// Store holds all collections. Its RunInTransaction restores every
// collection when fn fails.
type Store struct {
	mu       sync.Mutex
	tickets  map[string][]byte
	cars     map[string][]byte
	payments map[string][]byte
	history  map[string][]byte
	settings []byte
	staff    map[string][]byte
	failures map[string]error
}

func NewStore() *Store {
	return &Store{
		tickets:  map[string][]byte{},
		cars:     map[string][]byte{},
		payments: map[string][]byte{},
		history:  map[string][]byte{},
		staff:    map[string][]byte{},
		failures: map[string]error{},
	}
}

// Repos returns repositories backed by the store.
func (s *Store) Repos() *repository.Repos {
	return &repository.Repos{
		Tickets:  &ticketStore{s},
		Cars:     &carStore{s},
		Payments: &paymentStore{s},
		History:  &historyStore{s},
		Settings: &settingsStore{s},
		Staff:    &staffStore{s},
	}
}

// FailOn makes the named operation (e.g. "cars.create") return err until cleared with a nil err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	saved := s.snapshot()
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.restore(saved)
		s.mu.Unlock()
		return err
	}
	return nil
}

type snapshot struct {
	tickets, cars, payments, history, staff map[string][]byte
	settings                                []byte
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		tickets:  copyMap(s.tickets),
		cars:     copyMap(s.cars),
		payments: copyMap(s.payments),
		history:  copyMap(s.history),
		staff:    copyMap(s.staff),
		settings: s.settings,
	}
}

func (s *Store) restore(snap snapshot) {
	s.tickets = snap.tickets
	s.cars = snap.cars
	s.payments = snap.payments
	s.history = snap.history
	s.staff = snap.staff
	s.settings = snap.settings
}

func copyMap(m map[string][]byte) map[string][]byte {
	out := make(map[string][]byte, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// fail must be called with s.mu held.
func (s *Store) fail(op string) error {
	return s.failures[op]
}

func encode(v any) []byte {
	raw, err := bson.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("memoryRepo: encode %T: %v", v, err))
	}
	return raw
}

func decode[T any](raw []byte) *T {
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		panic(fmt.Sprintf("memoryRepo: decode %T: %v", out, err))
	}
	return &out
}

func decodeAll[T any](m map[string][]byte, keep func(*T) bool) []T {
	out := []T{}
	for _, raw := range m {
		v := decode[T](raw)
		if keep == nil || keep(v) {
			out = append(out, *v)
		}
	}
	return out
}

// ---- tickets ----

type ticketStore struct{ s *Store }

func (r *ticketStore) GetByCode(ctx context.Context, code string) (*models.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("tickets.get"); err != nil {
		return nil, err
	}
	raw, ok := r.s.tickets[code]
	if !ok {
		return nil, database.ErrNotFound
	}
	return decode[models.Ticket](raw), nil
}

func (r *ticketStore) ListByStatus(ctx context.Context, statuses ...models.TicketStatus) ([]models.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := decodeAll(r.s.tickets, func(t *models.Ticket) bool {
		for _, st := range statuses {
			if t.Status == st {
				return true
			}
		}
		return false
	})
	sortTickets(out)
	return out, nil
}

func (r *ticketStore) ListNotAvailable(ctx context.Context) ([]models.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := decodeAll(r.s.tickets, func(t *models.Ticket) bool { return t.Status != models.TicketAvailable })
	sortTickets(out)
	return out, nil
}

func sortTickets(ts []models.Ticket) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].Code < ts[j].Code })
}

func (r *ticketStore) Update(ctx context.Context, ticket *models.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("tickets.update"); err != nil {
		return err
	}
	if _, ok := r.s.tickets[ticket.Code]; !ok {
		return database.ErrNotFound
	}
	r.s.tickets[ticket.Code] = encode(ticket)
	return nil
}

func (r *ticketStore) UpsertInventory(ctx context.Context, codes []string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now().UTC()
	var added int64
	for _, code := range codes {
		if _, ok := r.s.tickets[code]; ok {
			continue
		}
		r.s.tickets[code] = encode(models.Ticket{Code: code, Status: models.TicketAvailable, CreatedAt: now, UpdatedAt: now})
		added++
	}
	return added, nil
}

func (r *ticketStore) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.tickets)), nil
}

func (r *ticketStore) CountByStatus(ctx context.Context, statuses ...models.TicketStatus) (int64, error) {
	list, _ := r.ListByStatus(ctx, statuses...)
	return int64(len(list)), nil
}

func (r *ticketStore) EnsureIndexes(ctx context.Context) error { return nil }

// ---- cars ----

type carStore struct{ s *Store }

func (r *carStore) Create(ctx context.Context, car *models.Car) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("cars.create"); err != nil {
		return err
	}
	if car.ID == "" {
		car.ID = uuid.New().String()
	}
	for _, raw := range r.s.cars {
		if decode[models.Car](raw).TicketCode == car.TicketCode {
			return fmt.Errorf("duplicate key: ticketCode %s", car.TicketCode)
		}
	}
	r.s.cars[car.ID] = encode(car)
	return nil
}

func (r *carStore) GetByID(ctx context.Context, id string) (*models.Car, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	raw, ok := r.s.cars[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return decode[models.Car](raw), nil
}

func (r *carStore) GetByTicketCode(ctx context.Context, code string) (*models.Car, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, raw := range r.s.cars {
		if car := decode[models.Car](raw); car.TicketCode == code {
			return car, nil
		}
	}
	return nil, database.ErrNotFound
}

func (r *carStore) Update(ctx context.Context, car *models.Car) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("cars.update"); err != nil {
		return err
	}
	if _, ok := r.s.cars[car.ID]; !ok {
		return database.ErrNotFound
	}
	r.s.cars[car.ID] = encode(car)
	return nil
}

func (r *carStore) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("cars.delete"); err != nil {
		return err
	}
	if _, ok := r.s.cars[id]; !ok {
		return database.ErrNotFound
	}
	delete(r.s.cars, id)
	return nil
}

func (r *carStore) ListAll(ctx context.Context) ([]models.Car, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := decodeAll[models.Car](r.s.cars, nil)
	sort.Slice(out, func(i, j int) bool { return out[i].EnteredAt.After(out[j].EnteredAt) })
	return out, nil
}

func (r *carStore) CountByStatus(ctx context.Context, statuses ...models.CarStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := decodeAll(r.s.cars, func(c *models.Car) bool {
		for _, st := range statuses {
			if c.Status == st {
				return true
			}
		}
		return false
	})
	return int64(len(out)), nil
}

func (r *carStore) EnsureIndexes(ctx context.Context) error { return nil }

// ---- payments ----

type paymentStore struct{ s *Store }

func (r *paymentStore) Create(ctx context.Context, payment *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("payments.create"); err != nil {
		return err
	}
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	r.s.payments[payment.ID] = encode(payment)
	return nil
}

func (r *paymentStore) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	raw, ok := r.s.payments[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return decode[models.Payment](raw), nil
}

func (r *paymentStore) Update(ctx context.Context, payment *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("payments.update"); err != nil {
		return err
	}
	if _, ok := r.s.payments[payment.ID]; !ok {
		return database.ErrNotFound
	}
	r.s.payments[payment.ID] = encode(payment)
	return nil
}

func (r *paymentStore) FindPendingByTicket(ctx context.Context, ticketCode string) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, raw := range r.s.payments {
		p := decode[models.Payment](raw)
		if p.TicketCode == ticketCode && p.Status == models.PaymentPendingValidation {
			return p, nil
		}
	}
	return nil, database.ErrNotFound
}

func (r *paymentStore) ListByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := decodeAll(r.s.payments, func(p *models.Payment) bool { return p.Status == status })
	sort.Slice(out, func(i, j int) bool { return out[i].PaidAt.After(out[j].PaidAt) })
	return out, nil
}

func (r *paymentStore) CountByStatus(ctx context.Context, status models.PaymentStatus) (int64, error) {
	list, _ := r.ListByStatus(ctx, status)
	return int64(len(list)), nil
}

func (r *paymentStore) CountSince(ctx context.Context, since time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := decodeAll(r.s.payments, func(p *models.Payment) bool { return !p.PaidAt.Before(since) })
	return int64(len(out)), nil
}

func (r *paymentStore) EnsureIndexes(ctx context.Context) error { return nil }

// ---- history ----

type historyStore struct{ s *Store }

func (r *historyStore) Create(ctx context.Context, entry *models.HistoryEntry) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("history.create"); err != nil {
		return "", err
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	r.s.history[entry.ID] = encode(entry)
	return entry.ID, nil
}

func (r *historyStore) GetByID(ctx context.Context, id string) (*models.HistoryEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	raw, ok := r.s.history[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return decode[models.HistoryEntry](raw), nil
}

func (r *historyStore) Update(ctx context.Context, entry *models.HistoryEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("history.update"); err != nil {
		return err
	}
	if _, ok := r.s.history[entry.ID]; !ok {
		return database.ErrNotFound
	}
	r.s.history[entry.ID] = encode(entry)
	return nil
}

func (r *historyStore) List(ctx context.Context, filter repository.HistoryFilter) ([]models.HistoryEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := decodeAll(r.s.history, func(h *models.HistoryEntry) bool {
		if filter.Plate != "" && h.Car.Plate != strings.ToUpper(filter.Plate) {
			return false
		}
		return filter.TicketCode == "" || h.TicketCode == filter.TicketCode
	})
	sort.Slice(out, func(i, j int) bool { return out[i].EnteredAt.After(out[j].EnteredAt) })
	limit := int(filter.Limit)
	if limit <= 0 {
		limit = 100
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *historyStore) EnsureIndexes(ctx context.Context) error { return nil }

// ---- settings ----

type settingsStore struct{ s *Store }

func (r *settingsStore) Get(ctx context.Context) (*models.CompanySettings, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.settings == nil {
		return nil, database.ErrNotFound
	}
	return decode[models.CompanySettings](r.s.settings), nil
}

func (r *settingsStore) Save(ctx context.Context, settings *models.CompanySettings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("settings.save"); err != nil {
		return err
	}
	cp := *settings
	cp.ID = models.CompanySettingsID
	r.s.settings = encode(cp)
	return nil
}

// ---- staff ----

type staffStore struct{ s *Store }

func (r *staffStore) Create(ctx context.Context, staff *models.Staff) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.staff[staff.Email]; ok {
		return nil
	}
	if staff.ID == "" {
		staff.ID = uuid.New().String()
	}
	r.s.staff[staff.Email] = encode(staff)
	return nil
}

func (r *staffStore) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.staff)), nil
}

func (r *staffStore) EnsureIndexes(ctx context.Context) error { return nil }
