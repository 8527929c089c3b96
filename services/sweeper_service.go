package services

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/njorogedev/estate_hub/models"
)

// ExpiryPolicy controls what the sweeper does with a past-due booking:
// flag it (keep the row, status expired) or prune it (delete the row).
type ExpiryPolicy string

const (
	ExpiryFlag  ExpiryPolicy = "flag"
	ExpiryPrune ExpiryPolicy = "prune"
)

// SweeperService retires bookings whose visit moment has passed without the
// visit being completed. The cron trigger and the on-demand per-user trigger
// share one sweep path; there is deliberately no second copy of this logic
// anywhere.
type SweeperService struct {
	store  BookingStore
	policy ExpiryPolicy
	now    func() time.Time
}

var Sweeper *SweeperService

func NewSweeperService(store BookingStore, policy ExpiryPolicy) *SweeperService {
	if policy != ExpiryPrune {
		policy = ExpiryFlag
	}
	return &SweeperService{store: store, policy: policy, now: time.Now}
}

// ShouldExpire is the sweep decision: past-due in UTC and not in a terminal
// state. Completed bookings are never swept, however old.
func ShouldExpire(b *models.Booking, now time.Time) bool {
	if b.IsTerminal() {
		return false
	}
	return b.VisitAt.Before(now.UTC())
}

// SweepAll runs one pass over every user's bookings. Fired by cron.
func (s *SweeperService) SweepAll() (int, error) {
	return s.sweepScoped(uuid.Nil)
}

// SweepUser sweeps a single user's bookings. Invoked opportunistically
// before user-facing booking reads so stale rows never reach a client.
func (s *SweeperService) SweepUser(userID uuid.UUID) (int, error) {
	return s.sweepScoped(userID)
}

func (s *SweeperService) sweepScoped(userID uuid.UUID) (int, error) {
	now := s.now().UTC()
	due, err := s.store.ListDueForExpiry(userID, now)
	if err != nil {
		return 0, err
	}

	swept := 0
	for i := range due {
		booking := &due[i]
		if !ShouldExpire(booking, now) {
			continue
		}
		retired, err := s.retire(booking)
		if err != nil {
			// Partial failure is expected during a bulk pass; keep going.
			log.Printf("🔥 Sweep failed for booking %s: %v", booking.ID, err)
			continue
		}
		if retired {
			swept++
		}
	}
	if swept > 0 {
		log.Printf("Sweep retired %d booking(s) (policy=%s)", swept, s.policy)
	}
	return swept, nil
}

// retire reports whether it actually retired the booking; a missed guard
// (a concurrent transition won) is not an error but must not be counted.
func (s *SweeperService) retire(booking *models.Booking) (bool, error) {
	if s.policy == ExpiryPrune {
		if err := s.store.Delete(booking.ID); err != nil {
			return false, err
		}
		return true, nil
	}
	ok, err := s.store.Transition(booking.ID,
		[]string{models.BookingPendingPayment, models.BookingPendingVisit},
		map[string]interface{}{"status": models.BookingExpired})
	if err != nil {
		return false, err
	}
	if !ok {
		// A concurrent confirm, cancel or admin override got there first;
		// nothing left to retire.
		log.Printf("Booking %s transitioned concurrently, skipping expiry", booking.ID)
	}
	return ok, nil
}
