package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/njorogedev/estate_hub/database"
	"github.com/njorogedev/estate_hub/models"
	"github.com/njorogedev/estate_hub/notifications"
)

// SendVisitReminders emails both parties an hour before a confirmed visit.
// The five minute window matches the cron cadence so each booking is
// reminded exactly once.
func SendVisitReminders() {
	log.Println("Running job: SendVisitReminders...")

	now := time.Now().UTC()
	lowerBound := now.Add(60 * time.Minute)
	upperBound := now.Add(65 * time.Minute)

	var upcomingBookings []models.Booking

	err := database.DB.
		Preload("User").
		Preload("Property.Owner").
		Where("status = ? AND visit_at BETWEEN ? AND ?", models.BookingPendingVisit, lowerBound, upperBound).
		Find(&upcomingBookings).Error

	if err != nil {
		log.Printf("Error checking for upcoming visits: %v", err)
		return
	}

	if len(upcomingBookings) == 0 {
		return
	}

	for _, booking := range upcomingBookings {
		log.Printf("Sending reminder for booking ID: %s", booking.ID)

		emailSubject := "Reminder: Your Site Visit is in 1 Hour!"
		emailBody := fmt.Sprintf(
			"<h1>Visit Reminder</h1><p>Hi there,</p><p>This is a friendly reminder that your visit to <b>%s</b> (%s) is scheduled for %s at %s UTC.</p>",
			booking.Property.Title,
			booking.Property.Address,
			booking.VisitDate,
			booking.VisitTime,
		)

		go notifications.SendEmail(booking.User.FullName, booking.User.Email, emailSubject, emailBody)
		go notifications.SendEmail(booking.Property.Owner.FullName, booking.Property.Owner.Email, emailSubject, emailBody)
	}
}
