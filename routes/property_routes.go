package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/njorogedev/estate_hub/handlers"
	"github.com/njorogedev/estate_hub/middleware"
)

func PropertyRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Public browse; retracted listings are filtered in the handler.
	api.Get("/properties", handlers.ListProperties)
	api.Get("/properties/:propertyId", handlers.GetProperty)

	properties := api.Group("/properties", middleware.Protected())
	properties.Post("", handlers.CreateProperty)
	properties.Patch("/:propertyId", handlers.UpdateProperty)
	properties.Get("/:propertyId/visits", handlers.GetPropertyVisits)
	properties.Post("/:propertyId/favorite", handlers.ToggleFavorite)

	me := api.Group("/me", middleware.Protected())
	me.Get("/properties", handlers.GetMyProperties)
	me.Get("/favorites", handlers.GetMyFavorites)
}
