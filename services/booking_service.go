package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/njorogedev/estate_hub/models"
	"github.com/njorogedev/estate_hub/utils"
)

// Actor is the authenticated principal performing a transition. Credentials
// are verified by the auth middleware; the engine only checks ownership and
// role.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == "admin" }

type BookingConfig struct {
	VisitFee      float64
	VisitCurrency string
}

// BookingService owns the booking state machine:
//
//	pending_payment -> pending_visit -> completed
//	      |                 |
//	      +---> cancelled <-+        (owner or admin)
//	      +---> expired  <--+        (sweeper only)
//
// Every transition is a guarded single-row update through the BookingStore.
type BookingService struct {
	store   BookingStore
	catalog PropertyCatalog
	users   UserDirectory
	notify  NotifyFunc
	push    PushFunc
	cfg     BookingConfig
	now     func() time.Time
}

var Bookings *BookingService

func NewBookingService(store BookingStore, catalog PropertyCatalog, users UserDirectory, notify NotifyFunc, push PushFunc, cfg BookingConfig) *BookingService {
	if cfg.VisitFee <= 0 {
		cfg.VisitFee = 25.00
	}
	if cfg.VisitCurrency == "" {
		cfg.VisitCurrency = "USD"
	}
	if notify == nil {
		notify = func(string, string, string, string) {}
	}
	return &BookingService{
		store:   store,
		catalog: catalog,
		users:   users,
		notify:  notify,
		push:    push,
		cfg:     cfg,
		now:     time.Now,
	}
}

// generateReceipt is swapped for a stub in tests; production always points
// at GenerateVisitReceipt.
var generateReceipt = GenerateVisitReceipt

var paymentMethods = map[string]bool{
	models.PaymentMethodStripe:       true,
	models.PaymentMethodPayPal:       true,
	models.PaymentMethodPaystack:     true,
	models.PaymentMethodMobileMoney:  true,
	models.PaymentMethodPayOnArrival: true,
}

// ParseVisitAt combines the separate date and time components under a strict
// grammar ("2006-01-02" and "15:04") into a single UTC instant. All expiry
// comparisons run against this instant; no local-time evaluation anywhere.
func ParseVisitAt(visitDate, visitTime string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", visitDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: visit_date must be YYYY-MM-DD", ErrValidation)
	}
	t, err := time.Parse("15:04", visitTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: visit_time must be HH:MM", ErrValidation)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

// Create validates and records a new visit booking. pay_on_arrival bookings
// skip the payment leg and start in pending_visit; every other method starts
// in pending_payment under a unique payment reference. An empty reference is
// generated server-side (Paystack, mobile money); Stripe clients pass the
// payment-intent id they were issued.
func (s *BookingService) Create(actor Actor, propertyID uuid.UUID, visitDate, visitTime, method, reference string) (*models.Booking, error) {
	method = strings.ToLower(strings.TrimSpace(method))
	if !paymentMethods[method] {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, method)
	}

	visitAt, err := ParseVisitAt(visitDate, visitTime)
	if err != nil {
		return nil, err
	}
	if !visitAt.After(s.now().UTC()) {
		return nil, fmt.Errorf("%w: visit must be scheduled in the future", ErrValidation)
	}

	user, err := s.users.FindUser(actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}

	property, err := s.catalog.FindProperty(propertyID)
	if err != nil {
		return nil, fmt.Errorf("%w: property", ErrNotFound)
	}
	if property.Retracted {
		return nil, fmt.Errorf("%w: property is no longer listed", ErrValidation)
	}

	booking := models.Booking{
		UserID:        user.ID,
		PropertyID:    property.ID,
		VisitDate:     visitDate,
		VisitTime:     visitTime,
		VisitAt:       visitAt,
		Status:        models.BookingPendingPayment,
		PaymentMethod: method,
		PaymentStatus: models.PaymentPending,
		Amount:        s.cfg.VisitFee,
		Currency:      s.cfg.VisitCurrency,
	}

	if method == models.PaymentMethodPayOnArrival {
		booking.Status = models.BookingPendingVisit
	} else {
		if reference == "" {
			reference = utils.GeneratePaymentReference(method)
		}
		booking.PaymentReference = &reference
	}

	if err := s.store.Create(&booking); err != nil {
		return nil, err
	}

	go s.notify(property.Owner.FullName, property.Owner.Email, "New Visit Request",
		fmt.Sprintf("<h1>New Visit Request</h1><p>%s has requested a site visit to <b>%s</b> on %s at %s.</p>",
			user.FullName, property.Title, visitDate, visitTime))
	if booking.Status == models.BookingPendingVisit {
		go s.notify(user.FullName, user.Email, "Your Visit is Booked!",
			fmt.Sprintf("<h1>Visit Booked</h1><p>Your visit to <b>%s</b> is confirmed for %s at %s. Payment is due on arrival.</p>",
				property.Title, visitDate, visitTime))
	}
	s.pushEvent(user.ID, "booking_created", &booking)

	return &booking, nil
}

// ConfirmPayment transitions pending_payment -> pending_visit for the
// booking matching reference. Only the reconciliation gateway (or an admin
// completing a visit) ever marks a payment paid. Replaying a confirmation
// for an already-paid booking is a no-op, not an error, and sends no second
// notification.
func (s *BookingService) ConfirmPayment(reference string) (*models.Booking, error) {
	booking, err := s.store.FindByReference(reference)
	if err != nil {
		return nil, fmt.Errorf("%w: no booking for reference %s", ErrNotFound, reference)
	}

	if booking.PaymentStatus == models.PaymentPaid && booking.Status != models.BookingExpired {
		return booking, nil
	}
	if booking.Status == models.BookingCancelled || booking.Status == models.BookingExpired {
		// Expiry wins: a late confirmation does not reinstate the booking.
		return nil, fmt.Errorf("%w: booking is %s", ErrConflict, booking.Status)
	}

	ok, err := s.store.Transition(booking.ID, []string{models.BookingPendingPayment}, map[string]interface{}{
		"status":         models.BookingPendingVisit,
		"payment_status": models.PaymentPaid,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race; re-read to tell a concurrent confirmation (fine)
		// from a concurrent cancel/expiry (conflict).
		current, err := s.store.FindByID(booking.ID)
		if err != nil {
			return nil, err
		}
		if current.PaymentStatus == models.PaymentPaid {
			return current, nil
		}
		return nil, fmt.Errorf("%w: booking is %s", ErrConflict, current.Status)
	}

	confirmed, err := s.store.FindByID(booking.ID)
	if err != nil {
		return nil, err
	}

	if user, uerr := s.users.FindUser(confirmed.UserID); uerr == nil {
		go s.notify(user.FullName, user.Email, "Payment Received: Visit Confirmed",
			fmt.Sprintf("<h1>Visit Confirmed</h1><p>Your payment was received. Your visit on %s at %s is confirmed.</p>",
				confirmed.VisitDate, confirmed.VisitTime))
	}
	if property, perr := s.catalog.FindProperty(confirmed.PropertyID); perr == nil {
		go s.notify(property.Owner.FullName, property.Owner.Email, "Visit Payment Received",
			fmt.Sprintf("<h1>Visit Confirmed</h1><p>The visit to <b>%s</b> on %s at %s has been paid for.</p>",
				property.Title, confirmed.VisitDate, confirmed.VisitTime))
	}
	s.pushEvent(confirmed.UserID, "booking_confirmed", confirmed)

	return confirmed, nil
}

// Cancel moves any non-terminal booking to cancelled. Only the owning user
// or an admin may cancel.
func (s *BookingService) Cancel(actor Actor, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.store.FindByID(bookingID)
	if err != nil {
		return nil, fmt.Errorf("%w: booking", ErrNotFound)
	}
	if !actor.IsAdmin() && actor.UserID != booking.UserID {
		return nil, fmt.Errorf("%w: not your booking", ErrForbidden)
	}
	if booking.IsTerminal() {
		return nil, fmt.Errorf("%w: booking is %s", ErrConflict, booking.Status)
	}

	now := s.now().UTC()
	ok, err := s.store.Transition(bookingID,
		[]string{models.BookingPendingPayment, models.BookingPendingVisit},
		map[string]interface{}{"status": models.BookingCancelled, "cancelled_at": now})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: booking changed concurrently", ErrConflict)
	}

	cancelled, err := s.store.FindByID(bookingID)
	if err != nil {
		return nil, err
	}
	s.pushEvent(cancelled.UserID, "booking_cancelled", cancelled)
	return cancelled, nil
}

// ForceStatus is the admin override: direct transition to completed,
// cancelled or pending_visit. Forcing completed also marks the payment paid
// (a completed visit implies the fee was collected, on arrival if nowhere
// else).
func (s *BookingService) ForceStatus(actor Actor, bookingID uuid.UUID, newStatus string) (*models.Booking, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: admin only", ErrForbidden)
	}
	switch newStatus {
	case models.BookingCompleted, models.BookingCancelled, models.BookingPendingVisit:
	default:
		return nil, fmt.Errorf("%w: cannot force status %q", ErrValidation, newStatus)
	}

	if _, err := s.store.FindByID(bookingID); err != nil {
		return nil, fmt.Errorf("%w: booking", ErrNotFound)
	}

	updates := map[string]interface{}{"status": newStatus}
	if newStatus == models.BookingCompleted {
		updates["payment_status"] = models.PaymentPaid
	}
	if newStatus == models.BookingCancelled {
		updates["cancelled_at"] = s.now().UTC()
	}

	ok, err := s.store.Transition(bookingID, nil, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: booking not found", ErrNotFound)
	}

	forced, err := s.store.FindByID(bookingID)
	if err != nil {
		return nil, err
	}
	log.Printf("Admin %s forced booking %s to %s", actor.UserID, bookingID, newStatus)

	if newStatus == models.BookingCompleted {
		go generateReceipt(*forced)
	}
	s.pushEvent(forced.UserID, "booking_"+newStatus, forced)
	return forced, nil
}

// Expire is called only by the sweeper. It flags a past-due, non-terminal
// booking; completed bookings are untouchable regardless of age.
func (s *BookingService) Expire(bookingID uuid.UUID) (bool, error) {
	return s.store.Transition(bookingID,
		[]string{models.BookingPendingPayment, models.BookingPendingVisit},
		map[string]interface{}{"status": models.BookingExpired})
}

func (s *BookingService) pushEvent(userID uuid.UUID, event string, booking *models.Booking) {
	if s.push != nil {
		s.push(userID, event, booking)
	}
}
