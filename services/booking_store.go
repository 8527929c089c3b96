package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/njorogedev/estate_hub/models"
)

// BookingStore is the durable record of all visit bookings. Mutations go
// through Transition, a conditional single-row update guarded by the current
// status, so concurrent writers (a cancel racing a webhook confirmation, a
// sweep racing either) can never clobber each other.
type BookingStore interface {
	Create(b *models.Booking) error
	FindByID(id uuid.UUID) (*models.Booking, error)
	FindByReference(reference string) (*models.Booking, error)
	ListByUser(userID uuid.UUID) ([]models.Booking, error)

	// ListDueForExpiry returns non-terminal bookings whose visit moment is
	// strictly before now. The userID filter is optional (uuid.Nil = all).
	ListDueForExpiry(userID uuid.UUID, now time.Time) ([]models.Booking, error)

	// Transition applies updates to the booking only if its current status
	// is one of fromStatuses (nil means any status). Returns false when the
	// guard did not match, without error.
	Transition(id uuid.UUID, fromStatuses []string, updates map[string]interface{}) (bool, error)

	Delete(id uuid.UUID) error
}

// PropertyCatalog resolves a property reference for booking validation.
type PropertyCatalog interface {
	FindProperty(id uuid.UUID) (*models.Property, error)
}

// UserDirectory resolves the authenticated principal to an account record.
type UserDirectory interface {
	FindUser(id uuid.UUID) (*models.User, error)
}

// NotifyFunc sends a transactional email. Callers treat it as
// fire-and-forget: failures are logged by the implementation and never
// propagate into a state transition.
type NotifyFunc func(toName, toEmail, subject, htmlContent string)

// PushFunc delivers a realtime booking event to the owning user.
type PushFunc func(userID uuid.UUID, event string, booking *models.Booking)
