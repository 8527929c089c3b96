package services

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/njorogedev/estate_hub/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVisitAt(t *testing.T) {
	at, err := ParseVisitAt("2026-03-15", "14:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC), at)
	assert.Equal(t, time.UTC, at.Location())

	_, err = ParseVisitAt("15-03-2026", "14:30")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseVisitAt("2026-03-15", "2:30pm")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateBooking_StartsPendingPayment(t *testing.T) {
	w := newTestWorld()

	booking, err := w.engine.Create(w.actor(), w.property.ID, "2026-03-15", "14:30", models.PaymentMethodPaystack, "")
	require.NoError(t, err)

	assert.Equal(t, models.BookingPendingPayment, booking.Status)
	assert.Equal(t, models.PaymentPending, booking.PaymentStatus)
	assert.Equal(t, 25.00, booking.Amount)
	assert.Equal(t, "USD", booking.Currency)
	require.NotNil(t, booking.PaymentReference)
	assert.True(t, strings.HasPrefix(*booking.PaymentReference, "EH-"))
}

func TestCreateBooking_PayOnArrivalSkipsPaymentLeg(t *testing.T) {
	w := newTestWorld()

	booking, err := w.engine.Create(w.actor(), w.property.ID, "2026-03-15", "14:30", models.PaymentMethodPayOnArrival, "")
	require.NoError(t, err)

	assert.Equal(t, models.BookingPendingVisit, booking.Status)
	assert.Nil(t, booking.PaymentReference)
}

func TestCreateBooking_KeepsClientReference(t *testing.T) {
	w := newTestWorld()

	booking, err := w.engine.Create(w.actor(), w.property.ID, "2026-03-15", "14:30", models.PaymentMethodStripe, "pi_abc123")
	require.NoError(t, err)

	require.NotNil(t, booking.PaymentReference)
	assert.Equal(t, "pi_abc123", *booking.PaymentReference)
}

func TestCreateBooking_RejectsPastVisit(t *testing.T) {
	w := newTestWorld()

	// The frozen clock sits at 2026-03-10 12:00 UTC.
	_, err := w.engine.Create(w.actor(), w.property.ID, "2026-03-10", "11:59", models.PaymentMethodStripe, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = w.engine.Create(w.actor(), w.property.ID, "2026-03-10", "12:00", models.PaymentMethodStripe, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateBooking_RejectsUnknownMethod(t *testing.T) {
	w := newTestWorld()

	_, err := w.engine.Create(w.actor(), w.property.ID, "2026-03-15", "14:30", "cheque", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateBooking_RejectsRetractedProperty(t *testing.T) {
	w := newTestWorld()
	retracted := w.property
	retracted.ID = uuid.New()
	retracted.Retracted = true
	w.engine.catalog.(*memCatalog).properties[retracted.ID] = retracted

	_, err := w.engine.Create(w.actor(), retracted.ID, "2026-03-15", "14:30", models.PaymentMethodStripe, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateBooking_UnknownProperty(t *testing.T) {
	w := newTestWorld()

	_, err := w.engine.Create(w.actor(), uuid.New(), "2026-03-15", "14:30", models.PaymentMethodStripe, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConfirmPayment_TransitionsToPendingVisit(t *testing.T) {
	w := newTestWorld()
	booking, err := w.engine.Create(w.actor(), w.property.ID, "2026-03-15", "14:30", models.PaymentMethodStripe, "pi_abc123")
	require.NoError(t, err)

	confirmed, err := w.engine.ConfirmPayment("pi_abc123")
	require.NoError(t, err)

	assert.Equal(t, booking.ID, confirmed.ID)
	assert.Equal(t, models.BookingPendingVisit, confirmed.Status)
	assert.Equal(t, models.PaymentPaid, confirmed.PaymentStatus)
}

func TestConfirmPayment_ReplayIsIdempotent(t *testing.T) {
	w := newTestWorld()
	_, err := w.engine.Create(w.actor(), w.property.ID, "2026-03-15", "14:30", models.PaymentMethodStripe, "pi_abc123")
	require.NoError(t, err)

	first, err := w.engine.ConfirmPayment("pi_abc123")
	require.NoError(t, err)

	replay, err := w.engine.ConfirmPayment("pi_abc123")
	require.NoError(t, err)

	assert.Equal(t, first.ID, replay.ID)
	assert.Equal(t, models.BookingPendingVisit, replay.Status)
	assert.Equal(t, models.PaymentPaid, replay.PaymentStatus)
}

func TestConfirmPayment_ReplaySendsNoSecondNotification(t *testing.T) {
	w := newTestWorld()
	recorder := &notifyRecorder{}
	w.engine.notify = recorder.record

	_, err := w.engine.Create(w.actor(), w.property.ID, "2026-03-15", "14:30", models.PaymentMethodStripe, "pi_abc123")
	require.NoError(t, err)

	_, err = w.engine.ConfirmPayment("pi_abc123")
	require.NoError(t, err)

	// One owner email from the creation, one each to visitor and owner from
	// the confirmation.
	require.Eventually(t, func() bool { return recorder.count() == 3 },
		time.Second, 10*time.Millisecond)
	assert.Contains(t, recorder.sent(), "Payment Received: Visit Confirmed")

	_, err = w.engine.ConfirmPayment("pi_abc123")
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 3, recorder.count())
}

func TestConfirmPayment_UnknownReference(t *testing.T) {
	w := newTestWorld()

	_, err := w.engine.ConfirmPayment("pi_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConfirmPayment_LateAfterExpiryIsRejected(t *testing.T) {
	w := newTestWorld()
	booking, err := w.engine.Create(w.actor(), w.property.ID, "2026-03-15", "14:30", models.PaymentMethodStripe, "pi_late")
	require.NoError(t, err)

	ok, err := w.engine.Expire(booking.ID)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = w.engine.ConfirmPayment("pi_late")
	assert.ErrorIs(t, err, ErrConflict)

	// Expiry wins; the late payment must not reinstate the booking.
	current, err := w.store.FindByID(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingExpired, current.Status)
	assert.Equal(t, models.PaymentPending, current.PaymentStatus)
}

func TestConfirmPayment_AfterCancelIsRejected(t *testing.T) {
	w := newTestWorld()
	booking, err := w.engine.Create(w.actor(), w.property.ID, "2026-03-15", "14:30", models.PaymentMethodStripe, "pi_cancelled")
	require.NoError(t, err)

	_, err = w.engine.Cancel(w.actor(), booking.ID)
	require.NoError(t, err)

	_, err = w.engine.ConfirmPayment("pi_cancelled")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCancel_OwnerCanCancel(t *testing.T) {
	w := newTestWorld()
	booking, err := w.engine.Create(w.actor(), w.property.ID, "2026-03-15", "14:30", models.PaymentMethodStripe, "")
	require.NoError(t, err)

	cancelled, err := w.engine.Cancel(w.actor(), booking.ID)
	require.NoError(t, err)

	assert.Equal(t, models.BookingCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, w.now, cancelled.CancelledAt.UTC())
}

func TestCancel_StrangerIsForbidden(t *testing.T) {
	w := newTestWorld()
	booking, err := w.engine.Create(w.actor(), w.property.ID, "2026-03-15", "14:30", models.PaymentMethodStripe, "")
	require.NoError(t, err)

	stranger := Actor{UserID: uuid.New(), Role: "user"}
	_, err = w.engine.Cancel(stranger, booking.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCancel_AdminCanCancelAnyBooking(t *testing.T) {
	w := newTestWorld()
	booking, err := w.engine.Create(w.actor(), w.property.ID, "2026-03-15", "14:30", models.PaymentMethodStripe, "")
	require.NoError(t, err)

	cancelled, err := w.engine.Cancel(w.admin(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)
}

func TestCancel_TerminalBookingConflicts(t *testing.T) {
	w := newTestWorld()
	booking, err := w.engine.Create(w.actor(), w.property.ID, "2026-03-15", "14:30", models.PaymentMethodStripe, "")
	require.NoError(t, err)

	_, err = w.engine.Cancel(w.actor(), booking.ID)
	require.NoError(t, err)

	_, err = w.engine.Cancel(w.actor(), booking.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestForceStatus_AdminOnly(t *testing.T) {
	w := newTestWorld()
	booking, err := w.engine.Create(w.actor(), w.property.ID, "2026-03-15", "14:30", models.PaymentMethodStripe, "")
	require.NoError(t, err)

	_, err = w.engine.ForceStatus(w.actor(), booking.ID, models.BookingCompleted)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestForceStatus_CompletedMarksPaymentPaid(t *testing.T) {
	old := generateReceipt
	generateReceipt = func(models.Booking) {}
	defer func() { generateReceipt = old }()

	w := newTestWorld()
	booking, err := w.engine.Create(w.actor(), w.property.ID, "2026-03-15", "14:30", models.PaymentMethodPayOnArrival, "")
	require.NoError(t, err)

	forced, err := w.engine.ForceStatus(w.admin(), booking.ID, models.BookingCompleted)
	require.NoError(t, err)

	assert.Equal(t, models.BookingCompleted, forced.Status)
	assert.Equal(t, models.PaymentPaid, forced.PaymentStatus)
}

func TestForceStatus_UnknownBooking(t *testing.T) {
	w := newTestWorld()

	_, err := w.engine.ForceStatus(w.admin(), uuid.New(), models.BookingCancelled)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestForceStatus_ExpiredIsReservedForSweeper(t *testing.T) {
	w := newTestWorld()
	booking, err := w.engine.Create(w.actor(), w.property.ID, "2026-03-15", "14:30", models.PaymentMethodStripe, "")
	require.NoError(t, err)

	_, err = w.engine.ForceStatus(w.admin(), booking.ID, models.BookingExpired)
	assert.ErrorIs(t, err, ErrValidation)
}
