package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name             string    `gorm:"size:200;not null" json:"name"`
	Slug             string    `gorm:"uniqueIndex;not null" json:"slug"`
	Description      string    `gorm:"size:15000;not null" json:"description"`
	ShortDescription string    `gorm:"size:300" json:"shortDescription"`
	CategoryID       uuid.UUID `gorm:"type:uuid;not null;index" json:"categoryId"`
	Category         Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	PartNumber       string    `gorm:"not null" json:"partNumber"`
	Brand            string    `gorm:"not null;index" json:"brand"`
	CarType          string    `gorm:"not null" json:"carType"`
	SortOrder        int       `json:"sortOrder"`
	ViewsCount       int64     `json:"viewsCount"`
	IsFeatured       bool      `gorm:"index" json:"isFeatured"`
	IsActive         bool      `gorm:"index" json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	// Ordered by Position; at most one entry has IsMain set.
	Images []ProductImage `gorm:"foreignKey:ProductID" json:"images"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// MainImage returns the image flagged as main, falling back to the
// first image when none is flagged.
func (p *Product) MainImage() *ProductImage {
	if len(p.Images) == 0 {
		return nil
	}
	for i := range p.Images {
		if p.Images[i].IsMain {
			return &p.Images[i]
		}
	}
	return &p.Images[0]
}
