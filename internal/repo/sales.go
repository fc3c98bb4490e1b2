package repo

import (
	"context"
	"time"

	"vitrine/pkg/models"

	"gorm.io/gorm"
)

// excludedOrderStatuses never count as sales
var excludedOrderStatuses = []string{"cancelled", "refunded"}

// SalesRepository aggregates order data for reports
type SalesRepository struct {
	db *gorm.DB
}

// NewSalesRepository creates a new sales repository
func NewSalesRepository(db *gorm.DB) *SalesRepository {
	return &SalesRepository{db: db}
}

// ProductPerformance returns units sold and revenue per product for orders placed
// between from and to. Products without sales are included with zero totals.
func (r *SalesRepository) ProductPerformance(ctx context.Context, from, to time.Time) ([]models.ProductPerformance, error) {
	var rows []models.ProductPerformance
	err := r.db.WithContext(ctx).
		Table("products").
		Select(`
			products.id AS product_id,
			products.name AS name,
			products.category AS category,
			COALESCE(SUM(CASE WHEN orders.id IS NOT NULL THEN order_items.quantity ELSE 0 END), 0) AS units_sold,
			COALESCE(SUM(CASE WHEN orders.id IS NOT NULL THEN order_items.quantity * order_items.unit_price ELSE 0 END), 0) AS revenue,
			products.stock_quantity AS stock
		`).
		Joins("LEFT JOIN order_items ON order_items.product_id = products.id AND order_items.deleted_at IS NULL").
		Joins("LEFT JOIN orders ON orders.id = order_items.order_id AND orders.deleted_at IS NULL AND orders.created_at BETWEEN ? AND ? AND orders.status NOT IN ?",
			from, to, excludedOrderStatuses).
		Where("products.deleted_at IS NULL").
		Group("products.id, products.name, products.category, products.stock_quantity").
		Order("units_sold DESC, revenue DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
