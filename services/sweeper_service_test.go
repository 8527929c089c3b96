package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/njorogedev/estate_hub/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldExpire(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		status  string
		visitAt time.Time
		want    bool
	}{
		{"pending payment past due", models.BookingPendingPayment, now.Add(-time.Minute), true},
		{"pending visit past due", models.BookingPendingVisit, now.Add(-time.Minute), true},
		{"still in the future", models.BookingPendingPayment, now.Add(time.Minute), false},
		{"exactly at the visit moment", models.BookingPendingVisit, now, false},
		{"completed is never swept", models.BookingCompleted, now.Add(-24 * time.Hour), false},
		{"cancelled is never swept", models.BookingCancelled, now.Add(-24 * time.Hour), false},
		{"already expired", models.BookingExpired, now.Add(-24 * time.Hour), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &models.Booking{Status: tc.status, VisitAt: tc.visitAt}
			assert.Equal(t, tc.want, ShouldExpire(b, now))
		})
	}
}

func TestSweepAll_FlagsPastDueBookings(t *testing.T) {
	w := newTestWorld()

	due, err := w.engine.Create(w.actor(), w.property.ID, "2026-03-15", "14:30", models.PaymentMethodStripe, "pi_due")
	require.NoError(t, err)
	upcoming, err := w.engine.Create(w.actor(), w.property.ID, "2026-03-20", "10:00", models.PaymentMethodStripe, "pi_upcoming")
	require.NoError(t, err)

	// Move the sweeper's clock past the first visit but not the second.
	w.sweeper.now = func() time.Time { return time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC) }

	swept, err := w.sweeper.SweepAll()
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	expired, err := w.store.FindByID(due.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingExpired, expired.Status)

	untouched, err := w.store.FindByID(upcoming.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPendingPayment, untouched.Status)
}

func TestSweepAll_CompletedBookingsAreUntouchable(t *testing.T) {
	old := generateReceipt
	generateReceipt = func(models.Booking) {}
	defer func() { generateReceipt = old }()

	w := newTestWorld()
	booking, err := w.engine.Create(w.actor(), w.property.ID, "2026-03-15", "14:30", models.PaymentMethodPayOnArrival, "")
	require.NoError(t, err)
	_, err = w.engine.ForceStatus(w.admin(), booking.ID, models.BookingCompleted)
	require.NoError(t, err)

	w.sweeper.now = func() time.Time { return time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC) }

	swept, err := w.sweeper.SweepAll()
	require.NoError(t, err)
	assert.Equal(t, 0, swept)

	current, err := w.store.FindByID(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCompleted, current.Status)
}

func TestSweep_PrunePolicyDeletesRows(t *testing.T) {
	w := newTestWorld()
	booking, err := w.engine.Create(w.actor(), w.property.ID, "2026-03-15", "14:30", models.PaymentMethodStripe, "pi_prune")
	require.NoError(t, err)

	pruner := NewSweeperService(w.store, ExpiryPrune)
	pruner.now = func() time.Time { return time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC) }

	swept, err := pruner.SweepAll()
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	_, err = w.store.FindByID(booking.ID)
	assert.Error(t, err)
	assert.Equal(t, 0, w.store.count())
}

func TestSweepUser_OnlyTouchesThatUser(t *testing.T) {
	w := newTestWorld()

	mine, err := w.engine.Create(w.actor(), w.property.ID, "2026-03-15", "14:30", models.PaymentMethodStripe, "pi_mine")
	require.NoError(t, err)

	other := Actor{UserID: w.owner.ID, Role: "user"}
	theirs, err := w.engine.Create(other, w.property.ID, "2026-03-15", "14:30", models.PaymentMethodStripe, "pi_theirs")
	require.NoError(t, err)

	w.sweeper.now = func() time.Time { return time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC) }

	swept, err := w.sweeper.SweepUser(w.visitor.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	sweptBooking, err := w.store.FindByID(mine.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingExpired, sweptBooking.Status)

	untouched, err := w.store.FindByID(theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPendingPayment, untouched.Status)
}

// staleListStore serves a snapshot taken before a concurrent transition,
// reproducing the race between listing due bookings and retiring them.
type staleListStore struct {
	*memStore
	snapshot []models.Booking
}

func (s *staleListStore) ListDueForExpiry(userID uuid.UUID, now time.Time) ([]models.Booking, error) {
	return s.snapshot, nil
}

func TestSweep_ConcurrentTransitionIsNotCounted(t *testing.T) {
	w := newTestWorld()
	booking, err := w.engine.Create(w.actor(), w.property.ID, "2026-03-15", "14:30", models.PaymentMethodStripe, "pi_raced")
	require.NoError(t, err)

	// Snapshot the booking while still pending, then let a cancel win the
	// race before the sweeper gets to it.
	snapshot := *booking
	_, err = w.engine.Cancel(w.actor(), booking.ID)
	require.NoError(t, err)

	sweeper := NewSweeperService(&staleListStore{memStore: w.store, snapshot: []models.Booking{snapshot}}, ExpiryFlag)
	sweeper.now = func() time.Time { return time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC) }

	swept, err := sweeper.SweepAll()
	require.NoError(t, err)
	assert.Equal(t, 0, swept)

	current, err := w.store.FindByID(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, current.Status)
}

func TestNewSweeperService_UnknownPolicyFallsBackToFlag(t *testing.T) {
	s := NewSweeperService(newMemStore(), ExpiryPolicy("archive"))
	assert.Equal(t, ExpiryFlag, s.policy)
}
