package jobs

import (
	"log"

	"github.com/njorogedev/estate_hub/services"
)

// SweepExpiredBookings is the recurring trigger for the expiry sweeper. The
// per-user on-demand trigger lives in the booking handlers; both funnel into
// the same sweep path in services.
func SweepExpiredBookings() {
	log.Println("Running job: SweepExpiredBookings...")

	swept, err := services.Sweeper.SweepAll()
	if err != nil {
		log.Printf("Error sweeping expired bookings: %v", err)
		return
	}

	if swept == 0 {
		log.Println("No expired bookings found.")
	}
}
