package services

import (
	"log"
	"strconv"

	config "github.com/njorogedev/estate_hub/configs"
)

// InitBookingServices wires the booking core once at startup. Dependencies
// are constructed here and read-only afterwards; nothing in this package
// reaches for a global SDK client.
func InitBookingServices(store BookingStore, catalog PropertyCatalog, users UserDirectory, notify NotifyFunc, push PushFunc) {
	fee, err := strconv.ParseFloat(config.Config("VISIT_FEE"), 64)
	if err != nil {
		fee = 0 // NewBookingService applies the default
	}

	policy := ExpiryPolicy(config.Config("EXPIRY_POLICY"))

	Bookings = NewBookingService(store, catalog, users, notify, push, BookingConfig{
		VisitFee:      fee,
		VisitCurrency: config.Config("VISIT_FEE_CURRENCY"),
	})
	Sweeper = NewSweeperService(store, policy)
	Reconciler = NewReconciliationService(Bookings, store)

	log.Printf("✅ Booking services initialized (expiry policy: %s)", Sweeper.policy)
}
