package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/njorogedev/estate_hub/database"
	"github.com/njorogedev/estate_hub/models"
)

type CreatePropertyRequest struct {
	Title       string  `json:"title" validate:"required,min=5"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Currency    string  `json:"currency,omitempty"`
	Address     string  `json:"address" validate:"required"`
	City        string  `json:"city" validate:"required"`
	Country     string  `json:"country" validate:"required"`
	Bedrooms    int     `json:"bedrooms"`
	Bathrooms   int     `json:"bathrooms"`
	Parkings    int     `json:"parkings"`
	ImageURL    *string `json:"image_url,omitempty"`
}

func CreateProperty(c *fiber.Ctx) error {
	actor := currentActor(c)

	var req CreatePropertyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	property := models.Property{
		OwnerID:     actor.UserID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Currency:    currency,
		Address:     req.Address,
		City:        req.City,
		Country:     req.Country,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Parkings:    req.Parkings,
		ImageURL:    req.ImageURL,
	}
	if err := database.DB.Create(&property).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create listing"})
	}

	return c.Status(fiber.StatusCreated).JSON(property)
}

// ListProperties is the public browse endpoint. Retracted listings never
// appear here.
func ListProperties(c *fiber.Ctx) error {
	query := database.DB.Where("retracted = ?", false)

	if city := c.Query("city"); city != "" {
		query = query.Where("city ILIKE ?", city)
	}
	if maxPrice := c.Query("max_price"); maxPrice != "" {
		if price, err := strconv.ParseFloat(maxPrice, 64); err == nil {
			query = query.Where("price <= ?", price)
		}
	}
	if minBedrooms := c.Query("min_bedrooms"); minBedrooms != "" {
		if n, err := strconv.Atoi(minBedrooms); err == nil {
			query = query.Where("bedrooms >= ?", n)
		}
	}

	var properties []models.Property
	if err := query.Order("created_at desc").Find(&properties).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch listings"})
	}
	return c.JSON(properties)
}

func GetProperty(c *fiber.Ctx) error {
	propertyID := c.Params("propertyId")

	var property models.Property
	if err := database.DB.Preload("Owner").First(&property, "id = ?", propertyID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Property not found"})
	}
	return c.JSON(property)
}

func GetMyProperties(c *fiber.Ctx) error {
	actor := currentActor(c)

	var properties []models.Property
	database.DB.Where("owner_id = ?", actor.UserID).Order("created_at desc").Find(&properties)
	return c.JSON(properties)
}

type UpdatePropertyRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty"`
}

func UpdateProperty(c *fiber.Ctx) error {
	actor := currentActor(c)
	propertyID := c.Params("propertyId")

	var property models.Property
	if err := database.DB.First(&property, "id = ?", propertyID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Property not found"})
	}
	if property.OwnerID != actor.UserID && !actor.IsAdmin() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not own this listing"})
	}

	var req UpdatePropertyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if req.Title != nil {
		property.Title = *req.Title
	}
	if req.Description != nil {
		property.Description = *req.Description
	}
	if req.Price != nil {
		property.Price = *req.Price
	}
	if req.ImageURL != nil {
		property.ImageURL = req.ImageURL
	}

	if err := database.DB.Save(&property).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update listing"})
	}
	return c.JSON(property)
}

// ToggleFavorite adds or removes a property from the user's favorites.
func ToggleFavorite(c *fiber.Ctx) error {
	actor := currentActor(c)
	propertyID, err := uuid.Parse(c.Params("propertyId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid property ID"})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", actor.UserID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	var property models.Property
	if err := database.DB.First(&property, "id = ?", propertyID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Property not found"})
	}

	var count int64
	database.DB.Table("user_favorites").
		Where("user_id = ? AND property_id = ?", user.ID, property.ID).
		Count(&count)

	if count > 0 {
		if err := database.DB.Model(&user).Association("Favorites").Delete(&property); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to remove favorite"})
		}
		return c.JSON(fiber.Map{"message": "Removed from favorites", "favorited": false})
	}

	if err := database.DB.Model(&user).Association("Favorites").Append(&property); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to add favorite"})
	}
	return c.JSON(fiber.Map{"message": "Added to favorites", "favorited": true})
}

func GetMyFavorites(c *fiber.Ctx) error {
	actor := currentActor(c)

	var user models.User
	if err := database.DB.Preload("Favorites").First(&user, "id = ?", actor.UserID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	return c.JSON(user.Favorites)
}
