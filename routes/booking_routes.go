package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/njorogedev/estate_hub/handlers"
	"github.com/njorogedev/estate_hub/middleware"
)

func BookingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	booking := api.Group("/bookings", middleware.Protected())
	booking.Get("/me", handlers.GetMyBookings)
	booking.Post("", handlers.CreateBooking)
	booking.Post("/:bookingId/cancel", handlers.CancelBooking)
}
