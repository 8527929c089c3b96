package handlers

import (
	"log"
	"math"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/njorogedev/estate_hub/database"
	"github.com/njorogedev/estate_hub/models"
	"github.com/njorogedev/estate_hub/payments"
	"github.com/njorogedev/estate_hub/services"
)

type CreateBookingRequest struct {
	PropertyID       string `json:"property_id" validate:"required,uuid"`
	VisitDate        string `json:"visit_date" validate:"required"`
	VisitTime        string `json:"visit_time" validate:"required"`
	PaymentMethod    string `json:"payment_method" validate:"required"`
	PaymentReference string `json:"payment_reference,omitempty"`
	MpesaPhoneNumber string `json:"mpesa_phone_number,omitempty"`
}

func CreateBooking(c *fiber.Ctx) error {
	actor := currentActor(c)

	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	propertyID, _ := uuid.Parse(req.PropertyID)

	booking, err := services.Bookings.Create(actor, propertyID, req.VisitDate, req.VisitTime, req.PaymentMethod, req.PaymentReference)
	if err != nil {
		return serviceError(c, err)
	}

	switch booking.PaymentMethod {
	case models.PaymentMethodMobileMoney:
		if req.MpesaPhoneNumber == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "M-Pesa phone number is required"})
		}

		kesAmount, err := services.ConvertUSDToKES(booking.Amount)
		if err != nil {
			log.Printf("🔥 Currency conversion failed: %v", err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Could not perform currency conversion."})
		}

		stkResponse, err := payments.InitiateMpesaSTKPush(math.Round(kesAmount), req.MpesaPhoneNumber, *booking.PaymentReference)
		if err != nil {
			log.Printf("🔥 CRITICAL: InitiateMpesaSTKPush failed: %v", err)
			if err.Error() == "invalid M-Pesa phone number format" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			}
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Payment could not be initiated, please try again."})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"booking":          booking,
			"customer_message": stkResponse.Response.CustomerMessage,
		})

	case models.PaymentMethodPaystack:
		var user models.User
		if err := database.DB.First(&user, "id = ?", actor.UserID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}

		initResp, err := payments.InitializePaystackTransaction(user.Email, int64(booking.Amount*100), *booking.PaymentReference)
		if err != nil {
			log.Printf("🔥 Paystack initialization failed: %v", err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Payment could not be initiated, please try again."})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"booking":           booking,
			"authorization_url": initResp.Data.AuthorizationURL,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"booking": booking})
}

// GetMyBookings sweeps the caller's stale bookings before listing, so an
// expired visit can never be served as live.
func GetMyBookings(c *fiber.Ctx) error {
	actor := currentActor(c)

	if _, err := services.Sweeper.SweepUser(actor.UserID); err != nil {
		log.Printf("On-demand sweep failed for user %s: %v", actor.UserID, err)
	}

	bookings, err := database.NewBookingRepository().ListByUser(actor.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch bookings"})
	}
	return c.JSON(bookings)
}

// GetPropertyVisits lists upcoming visits for one of the caller's listings.
func GetPropertyVisits(c *fiber.Ctx) error {
	actor := currentActor(c)
	propertyID := c.Params("propertyId")

	var property models.Property
	if err := database.DB.First(&property, "id = ?", propertyID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Property not found"})
	}
	if property.OwnerID != actor.UserID && !actor.IsAdmin() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not own this listing"})
	}

	var bookings []models.Booking
	database.DB.
		Preload("User").
		Where("property_id = ? AND status IN ?", property.ID,
			[]string{models.BookingPendingPayment, models.BookingPendingVisit}).
		Order("visit_at asc").
		Find(&bookings)

	return c.JSON(bookings)
}

func CancelBooking(c *fiber.Ctx) error {
	actor := currentActor(c)
	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID"})
	}

	booking, err := services.Bookings.Cancel(actor, bookingID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Booking cancelled", "booking": booking})
}
