package services

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/njorogedev/estate_hub/models"
)

// memStore is an in-memory BookingStore with the same guarded-transition
// semantics as the GORM repository.
type memStore struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]models.Booking
}

func newMemStore() *memStore {
	return &memStore{bookings: make(map[uuid.UUID]models.Booking)}
}

func (m *memStore) Create(b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.PaymentReference != nil {
		for _, existing := range m.bookings {
			if existing.PaymentReference != nil && *existing.PaymentReference == *b.PaymentReference {
				return errors.New("duplicate payment reference")
			}
		}
	}
	m.bookings[b.ID] = *b
	return nil
}

func (m *memStore) FindByID(id uuid.UUID) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	copied := b
	return &copied, nil
}

func (m *memStore) FindByReference(reference string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.PaymentReference != nil && *b.PaymentReference == reference {
			copied := b
			return &copied, nil
		}
	}
	return nil, errors.New("record not found")
}

func (m *memStore) ListByUser(userID uuid.UUID) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) ListDueForExpiry(userID uuid.UUID, now time.Time) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.Status != models.BookingPendingPayment && b.Status != models.BookingPendingVisit {
			continue
		}
		if !b.VisitAt.Before(now) {
			continue
		}
		if userID != uuid.Nil && b.UserID != userID {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (m *memStore) Transition(id uuid.UUID, fromStatuses []string, updates map[string]interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return false, nil
	}
	if fromStatuses != nil {
		matched := false
		for _, s := range fromStatuses {
			if b.Status == s {
				matched = true
				break
			}
		}
		if !matched {
			return false, nil
		}
	}
	for key, value := range updates {
		switch key {
		case "status":
			b.Status = value.(string)
		case "payment_status":
			b.PaymentStatus = value.(string)
		case "cancelled_at":
			t := value.(time.Time)
			b.CancelledAt = &t
		case "receipt_url":
			url := value.(string)
			b.ReceiptURL = &url
		}
	}
	m.bookings[id] = b
	return true, nil
}

func (m *memStore) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return errors.New("record not found")
	}
	delete(m.bookings, id)
	return nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}

// notifyRecorder captures fire-and-forget emails so tests can assert on the
// fan-out. Sends happen on goroutines; read counts with assert.Eventually or
// after a settle delay.
type notifyRecorder struct {
	mu       sync.Mutex
	subjects []string
}

func (r *notifyRecorder) record(toName, toEmail, subject, htmlContent string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subjects = append(r.subjects, subject)
}

func (r *notifyRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subjects)
}

func (r *notifyRecorder) sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.subjects))
	copy(out, r.subjects)
	return out
}

type memCatalog struct {
	properties map[uuid.UUID]models.Property
}

func (m *memCatalog) FindProperty(id uuid.UUID) (*models.Property, error) {
	p, ok := m.properties[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	copied := p
	return &copied, nil
}

type memDirectory struct {
	users map[uuid.UUID]models.User
}

func (m *memDirectory) FindUser(id uuid.UUID) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	copied := u
	return &copied, nil
}

// testWorld bundles the fakes plus a frozen clock for the engine under test.
type testWorld struct {
	store    *memStore
	engine   *BookingService
	sweeper  *SweeperService
	now      time.Time
	visitor  models.User
	owner    models.User
	property models.Property
}

func newTestWorld() *testWorld {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	visitor := models.User{
		ID:       uuid.New(),
		FullName: "Wanjiku Visitor",
		Email:    "visitor@example.com",
		Role:     "user",
		IsActive: true,
	}
	owner := models.User{
		ID:       uuid.New(),
		FullName: "Otieno Owner",
		Email:    "owner@example.com",
		Role:     "user",
		IsActive: true,
	}
	property := models.Property{
		ID:      uuid.New(),
		OwnerID: owner.ID,
		Title:   "Two Bedroom in Kilimani",
		City:    "Nairobi",
		Price:   85000,
		Owner:   owner,
	}

	store := newMemStore()
	catalog := &memCatalog{properties: map[uuid.UUID]models.Property{property.ID: property}}
	directory := &memDirectory{users: map[uuid.UUID]models.User{visitor.ID: visitor, owner.ID: owner}}

	engine := NewBookingService(store, catalog, directory, nil, nil, BookingConfig{})
	engine.now = func() time.Time { return now }

	sweeper := NewSweeperService(store, ExpiryFlag)
	sweeper.now = func() time.Time { return now }

	return &testWorld{
		store:    store,
		engine:   engine,
		sweeper:  sweeper,
		now:      now,
		visitor:  visitor,
		owner:    owner,
		property: property,
	}
}

func (w *testWorld) actor() Actor {
	return Actor{UserID: w.visitor.ID, Role: "user"}
}

func (w *testWorld) admin() Actor {
	return Actor{UserID: uuid.New(), Role: "admin"}
}
