package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/njorogedev/estate_hub/handlers"
	"github.com/njorogedev/estate_hub/middleware"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())
	admin.Get("/bookings", handlers.AdminGetAllBookings)
	admin.Patch("/bookings/:bookingId/status", handlers.ForceBookingStatus)
	admin.Post("/bookings/sweep", handlers.TriggerExpirySweep)
	admin.Patch("/properties/:propertyId/retract", handlers.RetractProperty)
	admin.Get("/users", handlers.GetAllUsers)
	admin.Patch("/users/:userId/status", handlers.ToggleUserStatus)
	admin.Get("/analytics", handlers.GetDashboardAnalytics)
}
