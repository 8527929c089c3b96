package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	config "github.com/njorogedev/estate_hub/configs"
	"github.com/njorogedev/estate_hub/database"
	"github.com/njorogedev/estate_hub/models"
	"github.com/njorogedev/estate_hub/payments"
	"github.com/njorogedev/estate_hub/services"
)

// HandleStripeWebhook is the push-style payment ingress. The signature is
// verified against the raw body before any booking state is touched; an
// unsigned or tampered delivery never reaches the reconciler.
func HandleStripeWebhook(c *fiber.Ctx) error {
	body := c.Body()
	sigHeader := c.Get("Stripe-Signature")

	secret := config.Config("STRIPE_WEBHOOK_SECRET")
	if err := payments.VerifyStripeSignature(body, sigHeader, secret, payments.DefaultSignatureTolerance); err != nil {
		log.Printf("🔥 Stripe webhook rejected: %v", err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid signature"})
	}

	event, err := payments.ParseStripeEvent(body)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	booking, err := services.Reconciler.Apply(services.PaymentEvent{
		Provider:  "stripe",
		Reference: event.Reference(),
		Succeeded: event.Succeeded(),
	})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no booking for reference"})
		}
		if errors.Is(err, services.ErrConflict) {
			// The booking already expired or was cancelled. Acknowledge so
			// Stripe stops retrying; the money side is handled out of band.
			log.Printf("Stripe event for reference %s hit a terminal booking", event.Reference())
			return c.SendStatus(fiber.StatusOK)
		}
		return serviceError(c, err)
	}

	log.Printf("✅ Stripe event %s reconciled for booking %s", event.Type, booking.ID)
	return c.SendStatus(fiber.StatusOK)
}

type MpesaCallbackPayload struct {
	Response struct {
		ResultCode        int    `json:"resultCode"`
		ResultDescription string `json:"resultDesc"`
		InvoiceNumber     string `json:"invoiceNumber"`
		TransactionID     string `json:"transactionId"`
	} `json:"response"`
}

// HandleMpesaCallback completes the initiate-then-callback mobile money leg.
func HandleMpesaCallback(c *fiber.Ctx) error {
	var payload MpesaCallbackPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("🔥 Could not parse M-Pesa callback: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	reference := payments.ReferenceFromInvoice(payload.Response.InvoiceNumber)
	succeeded := payload.Response.ResultCode == 0

	if !succeeded {
		log.Printf("M-Pesa payment failed for reference %s: %s", reference, payload.Response.ResultDescription)
	}

	if _, err := services.Reconciler.Apply(services.PaymentEvent{
		Provider:  "mpesa",
		Reference: reference,
		Succeeded: succeeded,
	}); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no booking for reference"})
		}
		if errors.Is(err, services.ErrConflict) {
			return c.SendStatus(fiber.StatusOK)
		}
		return serviceError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// VerifyPaystackPayment is the pull-style reconciliation endpoint: the client
// returns from the Paystack checkout and asks us to confirm its reference.
func VerifyPaystackPayment(c *fiber.Ctx) error {
	reference := c.Params("reference")
	if reference == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Payment reference is required"})
	}

	verifyResp, err := payments.VerifyPaystackTransaction(reference)
	if err != nil {
		log.Printf("🔥 Paystack verification failed for %s: %v", reference, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Could not verify payment with provider"})
	}

	booking, err := services.Reconciler.Apply(services.PaymentEvent{
		Provider:  "paystack",
		Reference: reference,
		Succeeded: verifyResp.Succeeded(),
	})
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"booking": booking, "payment_status": booking.PaymentStatus})
}

type CreatePayPalOrderRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
}

// CreatePayPalOrderHandler opens a PayPal order for a pending booking and
// rebinds the booking's payment reference to the order id, so the capture
// step can reconcile by reference like every other backend.
func CreatePayPalOrderHandler(c *fiber.Ctx) error {
	actor := currentActor(c)

	var req CreatePayPalOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var booking models.Booking
	if err := database.DB.First(&booking, "id = ?", req.BookingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}
	if booking.UserID != actor.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This booking is not yours"})
	}
	if booking.Status != models.BookingPendingPayment {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Booking is not awaiting payment"})
	}

	order, err := payments.CreatePayPalOrder(booking.Amount, booking.Currency)
	if err != nil {
		log.Printf("🔥 Failed to create PayPal order: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Could not create PayPal order"})
	}

	booking.PaymentReference = &order.ID
	if err := database.DB.Save(&booking).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store order reference"})
	}

	return c.JSON(fiber.Map{"order_id": order.ID})
}

// CapturePayPalOrderHandler settles the order and feeds the outcome through
// the same reconciliation path as the webhook backends.
func CapturePayPalOrderHandler(c *fiber.Ctx) error {
	orderID := c.Params("orderId")
	if orderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Order ID is required"})
	}

	order, err := payments.CapturePayPalOrder(orderID)
	if err != nil {
		log.Printf("🔥 Failed to capture PayPal order %s: %v", orderID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Could not capture PayPal order"})
	}

	booking, err := services.Reconciler.Apply(services.PaymentEvent{
		Provider:  "paypal",
		Reference: order.ID,
		Succeeded: order.Status == "COMPLETED",
	})
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"booking": booking, "payment_status": booking.PaymentStatus})
}

// GetPaymentStatus lets a client poll the booking state tied to a payment
// reference, closing the loop for the initiate-then-poll mobile money flow.
func GetPaymentStatus(c *fiber.Ctx) error {
	actor := currentActor(c)
	reference := c.Params("reference")

	var booking models.Booking
	if err := database.DB.Where("payment_reference = ?", reference).First(&booking).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No booking for that reference"})
	}
	if booking.UserID != actor.UserID && !actor.IsAdmin() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This booking is not yours"})
	}

	return c.JSON(fiber.Map{
		"status":         booking.Status,
		"payment_status": booking.PaymentStatus,
	})
}
