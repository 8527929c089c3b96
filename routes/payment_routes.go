package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/njorogedev/estate_hub/handlers"
	"github.com/njorogedev/estate_hub/middleware"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Provider callbacks authenticate by signature or reference, not JWT.
	api.Post("/payments/stripe/webhook", handlers.HandleStripeWebhook)
	api.Post("/payments/mpesa/callback", handlers.HandleMpesaCallback)

	payments := api.Group("/payments", middleware.Protected())
	payments.Get("/verify/:reference", handlers.VerifyPaystackPayment)
	payments.Get("/status/:reference", handlers.GetPaymentStatus)

	paypal := api.Group("/payments/paypal", middleware.Protected())
	paypal.Post("/create-order", handlers.CreatePayPalOrderHandler)
	paypal.Post("/capture-order/:orderId", handlers.CapturePayPalOrderHandler)
}
