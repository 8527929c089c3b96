package models

import (
	"time"

	"github.com/google/uuid"
)

// Booking lifecycle statuses. A booking lives in exactly one of these; the
// legacy visit/booking status pair from older API clients is derived, never
// stored.
const (
	BookingPendingPayment = "pending_payment"
	BookingPendingVisit   = "pending_visit"
	BookingCompleted      = "completed"
	BookingCancelled      = "cancelled"
	BookingExpired        = "expired"
)

const (
	PaymentMethodStripe       = "stripe"
	PaymentMethodPayPal       = "paypal"
	PaymentMethodPaystack     = "paystack"
	PaymentMethodMobileMoney  = "mobile_money"
	PaymentMethodPayOnArrival = "pay_on_arrival"
)

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

type Booking struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID     uuid.UUID `gorm:"not null;index" json:"user_id"`
	PropertyID uuid.UUID `gorm:"not null;index" json:"property_id"`

	VisitDate string `gorm:"size:10;not null" json:"visit_date"`
	VisitTime string `gorm:"size:5;not null" json:"visit_time"`
	// VisitAt is VisitDate+VisitTime combined in UTC; all expiry and
	// reminder queries run against this column.
	VisitAt time.Time `gorm:"not null;index" json:"visit_at"`

	Status string `gorm:"size:20;not null;default:'pending_payment';index" json:"status"`

	PaymentMethod    string  `gorm:"size:20;not null" json:"payment_method"`
	PaymentStatus    string  `gorm:"size:20;not null;default:'pending'" json:"payment_status"`
	PaymentReference *string `gorm:"size:255;unique" json:"payment_reference"`
	Amount           float64 `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency         string  `gorm:"size:3" json:"currency"`

	ReceiptURL  *string    `gorm:"size:255" json:"receipt_url"`
	CancelledAt *time.Time `json:"cancelled_at"`

	User     User     `gorm:"foreignkey:UserID" json:"user,omitempty"`
	Property Property `gorm:"foreignkey:PropertyID" json:"property,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTerminal reports whether the booking can still transition.
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingCompleted || b.Status == BookingCancelled || b.Status == BookingExpired
}

// VisitStatus derives the legacy visit status field for older clients.
func (b *Booking) VisitStatus() string {
	switch b.Status {
	case BookingCompleted:
		return "completed"
	case BookingCancelled:
		return "cancelled"
	default:
		return "pending"
	}
}

// BookingStatus derives the legacy record status field for older clients.
func (b *Booking) BookingStatus() string {
	switch b.Status {
	case BookingExpired:
		return "expired"
	case BookingCancelled:
		return "cancelled"
	default:
		return "active"
	}
}
