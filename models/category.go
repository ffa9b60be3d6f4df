package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"size:500" json:"description"`
	Image       string    `json:"image"`
	IsActive    bool      `json:"isActive"`
	SortOrder   int       `json:"sortOrder"`
	// Derived count of active products in this category. Recomputed on
	// read, not maintained as a live invariant.
	ProductsCount int64     `json:"productsCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Products []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CountActiveProducts returns the number of active products that
// reference this category.
func (c *Category) CountActiveProducts(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&Product{}).
		Where("category_id = ? AND is_active = ?", c.ID, true).
		Count(&count).Error
	return count, err
}
