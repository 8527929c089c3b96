package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/njorogedev/estate_hub/database"
	"github.com/njorogedev/estate_hub/models"
	"github.com/njorogedev/estate_hub/services"
)

// AdminGetAllBookings lists every booking, newest visit first.
func AdminGetAllBookings(c *fiber.Ctx) error {
	var bookings []models.Booking
	err := database.DB.
		Preload("User").
		Preload("Property").
		Order("visit_at desc").
		Find(&bookings).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch bookings"})
	}
	return c.JSON(bookings)
}

type ForceStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ForceBookingStatus is the admin override lane. Forcing a booking to
// completed also marks its payment paid; the expired status stays reserved
// for the sweeper.
func ForceBookingStatus(c *fiber.Ctx) error {
	actor := currentActor(c)
	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID"})
	}

	var req ForceStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	booking, err := services.Bookings.ForceStatus(actor, bookingID, req.Status)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Booking status updated", "booking": booking})
}

// TriggerExpirySweep runs a full sweep pass outside the cron schedule.
func TriggerExpirySweep(c *fiber.Ctx) error {
	swept, err := services.Sweeper.SweepAll()
	if err != nil {
		log.Printf("🔥 Manual sweep failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Sweep failed"})
	}
	return c.JSON(fiber.Map{"message": "Sweep complete", "retired": swept})
}

// RetractProperty pulls a listing from public browse without deleting it.
// Existing bookings against the listing keep their lifecycle.
func RetractProperty(c *fiber.Ctx) error {
	propertyID := c.Params("propertyId")

	var property models.Property
	if err := database.DB.First(&property, "id = ?", propertyID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Property not found"})
	}

	property.Retracted = !property.Retracted
	if err := database.DB.Save(&property).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update listing"})
	}

	message := "Listing retracted"
	if !property.Retracted {
		message = "Listing restored"
	}
	return c.JSON(fiber.Map{"message": message, "property": property})
}

func GetAllUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := database.DB.Order("created_at desc").Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch users"})
	}

	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, UserResponse{
			ID:        user.ID.String(),
			FullName:  user.FullName,
			Email:     user.Email,
			Role:      user.Role,
			CreatedAt: user.CreatedAt,
		})
	}
	return c.JSON(responses)
}

func ToggleUserStatus(c *fiber.Ctx) error {
	userID := c.Params("userId")

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	user.IsActive = !user.IsActive
	if err := database.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user"})
	}

	message := "User account activated"
	if !user.IsActive {
		message = "User account deactivated"
	}
	return c.JSON(fiber.Map{"message": message})
}

// GetDashboardAnalytics aggregates the headline numbers for the admin view.
func GetDashboardAnalytics(c *fiber.Ctx) error {
	var totalUsers, totalProperties, totalBookings, completedVisits, pendingPayments int64
	var revenue float64

	database.DB.Model(&models.User{}).Count(&totalUsers)
	database.DB.Model(&models.Property{}).Where("retracted = ?", false).Count(&totalProperties)
	database.DB.Model(&models.Booking{}).Count(&totalBookings)
	database.DB.Model(&models.Booking{}).Where("status = ?", models.BookingCompleted).Count(&completedVisits)
	database.DB.Model(&models.Booking{}).Where("status = ?", models.BookingPendingPayment).Count(&pendingPayments)
	database.DB.Model(&models.Booking{}).
		Where("payment_status = ?", models.PaymentPaid).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&revenue)

	return c.JSON(fiber.Map{
		"total_users":       totalUsers,
		"active_listings":   totalProperties,
		"total_bookings":    totalBookings,
		"completed_visits":  completedVisits,
		"pending_payments":  pendingPayments,
		"visit_fee_revenue": revenue,
	})
}
