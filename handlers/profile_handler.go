package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/njorogedev/estate_hub/database"
	"github.com/njorogedev/estate_hub/models"
)

func GetMyProfile(c *fiber.Ctx) error {
	actor := currentActor(c)

	var user models.User
	if err := database.DB.First(&user, "id = ?", actor.UserID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(fiber.Map{
		"id":                  user.ID,
		"full_name":           user.FullName,
		"email":               user.Email,
		"role":                user.Role,
		"phone_number":        user.PhoneNumber,
		"profile_picture_url": user.ProfilePictureURL,
		"created_at":          user.CreatedAt,
	})
}

type UpdateProfileRequest struct {
	FullName          *string `json:"full_name,omitempty"`
	PhoneNumber       *string `json:"phone_number,omitempty"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`
}

func UpdateMyProfile(c *fiber.Ctx) error {
	actor := currentActor(c)

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", actor.UserID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = req.PhoneNumber
	}
	if req.ProfilePictureURL != nil {
		user.ProfilePictureURL = req.ProfilePictureURL
	}

	if err := database.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}
	return c.JSON(fiber.Map{"message": "Profile updated"})
}
