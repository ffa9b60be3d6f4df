package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CompanyInfo holds the storefront's about/contact content. The table
// is expected to contain a single row, created on first read.
type CompanyInfo struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name         string    `json:"name"`
	Slogan       string    `json:"slogan"`
	Description  string    `gorm:"size:1000" json:"description"`
	Logo         string    `json:"logo"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	PostalCode   string    `json:"postalCode"`
	WorkingHours string    `json:"workingHours"`
	Instagram    string    `json:"instagram"`
	Telegram     string    `json:"telegram"`
	WhatsApp     string    `json:"whatsapp"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (c *CompanyInfo) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
