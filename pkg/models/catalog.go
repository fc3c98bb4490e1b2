package models

import (
	"strings"

	"github.com/google/uuid"
)

// Product represents a product in the storefront catalog
type Product struct {
	BaseModel
	Name          string  `gorm:"not null" json:"name" validate:"required"`
	Description   string  `json:"description"`
	Category      string  `gorm:"index;not null" json:"category" validate:"required"`
	Price         float64 `gorm:"not null;default:0" json:"price" validate:"gte=0"`
	ImageURL      string  `json:"image_url"`
	StockQuantity int     `gorm:"default:0" json:"stock_quantity"`
	SortOrder     int     `gorm:"default:0" json:"sort_order"`
}

// Supplier represents a vendor the store can source products from
type Supplier struct {
	BaseModel
	Name         string  `gorm:"not null" json:"name" validate:"required"`
	Categories   string  `json:"categories"` // comma separated
	Location     string  `json:"location"`
	LeadTimeDays int     `gorm:"default:0" json:"lead_time_days"`
	Rating       float64 `gorm:"default:0" json:"rating"`
}

// CategoryList splits the comma separated categories of a supplier
func (s *Supplier) CategoryList() []string {
	var out []string
	for _, c := range strings.Split(s.Categories, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// ProductPerformance is the per-product sales aggregate used by the admin report
type ProductPerformance struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	UnitsSold int64     `json:"units_sold"`
	Revenue   float64   `json:"revenue"`
	Stock     int       `json:"stock"`
}
