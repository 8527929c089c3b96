package models

import (
	"time"

	"github.com/google/uuid"
)

type Property struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OwnerID     uuid.UUID `gorm:"not null;index" json:"owner_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `gorm:"type:numeric(12,2);not null" json:"price"`
	Currency    string    `gorm:"size:3;default:'USD'" json:"currency"`

	Address string `gorm:"size:255;not null" json:"address"`
	City    string `gorm:"size:100;not null;index" json:"city"`
	Country string `gorm:"size:100;not null" json:"country"`

	Bedrooms  int `gorm:"default:0" json:"bedrooms"`
	Bathrooms int `gorm:"default:0" json:"bathrooms"`
	Parkings  int `gorm:"default:0" json:"parkings"`

	ImageURL *string `gorm:"size:255" json:"image_url"`

	// A retracted listing stays visible to its owner and admins but can no
	// longer be booked.
	Retracted bool `gorm:"default:false" json:"retracted"`

	Owner User `gorm:"foreignkey:OwnerID" json:"owner,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
