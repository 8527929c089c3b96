package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/njorogedev/estate_hub/handlers"
	"github.com/njorogedev/estate_hub/middleware"
)

func UploadRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	upload := api.Group("/uploads", middleware.Protected())
	upload.Get("/signature", handlers.GenerateUploadSignature)
}
