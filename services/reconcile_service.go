package services

import (
	"fmt"
	"log"

	"github.com/njorogedev/estate_hub/models"
)

// PaymentEvent is the normalized shape every payment backend reduces to:
// which booking (by reference) and whether the charge went through. Signature
// verification and provider-specific parsing happen in the payments package
// before an event is ever constructed.
type PaymentEvent struct {
	Provider  string
	Reference string
	Succeeded bool
}

// ReconciliationService matches asynchronous payment confirmations to
// bookings. It is the only caller of ConfirmPayment in the system.
type ReconciliationService struct {
	engine *BookingService
	store  BookingStore
}

var Reconciler *ReconciliationService

func NewReconciliationService(engine *BookingService, store BookingStore) *ReconciliationService {
	return &ReconciliationService{engine: engine, store: store}
}

// Apply folds one payment event into booking state. Replayed success events
// land on an already-paid booking and return it unchanged; failure events
// after a success are ignored (providers occasionally deliver out of order).
func (r *ReconciliationService) Apply(ev PaymentEvent) (*models.Booking, error) {
	if ev.Reference == "" {
		return nil, fmt.Errorf("%w: empty payment reference", ErrValidation)
	}

	if ev.Succeeded {
		return r.engine.ConfirmPayment(ev.Reference)
	}

	booking, err := r.store.FindByReference(ev.Reference)
	if err != nil {
		return nil, fmt.Errorf("%w: no booking for reference %s", ErrNotFound, ev.Reference)
	}
	if booking.PaymentStatus == models.PaymentPaid {
		log.Printf("Ignoring failure event from %s for already-paid reference %s", ev.Provider, ev.Reference)
		return booking, nil
	}

	ok, err := r.store.Transition(booking.ID, []string{models.BookingPendingPayment},
		map[string]interface{}{"payment_status": models.PaymentFailed})
	if err != nil {
		return nil, err
	}
	if ok {
		log.Printf("Marked payment failed for booking %s (%s)", booking.ID, ev.Provider)
	}
	return r.store.FindByID(booking.ID)
}
