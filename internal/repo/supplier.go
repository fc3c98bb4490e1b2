package repo

import (
	"context"
	"strings"

	"vitrine/pkg/models"

	"gorm.io/gorm"
)

// SupplierRepository handles supplier data access
type SupplierRepository struct {
	db *gorm.DB
}

// NewSupplierRepository creates a new supplier repository
func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

// List gets all suppliers, best rated first
func (r *SupplierRepository) List(ctx context.Context) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	if err := r.db.WithContext(ctx).Order("rating DESC, name ASC").Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

// ForCategory gets the suppliers serving a category (case insensitive). An empty
// category returns every supplier.
func (r *SupplierRepository) ForCategory(ctx context.Context, category string) ([]models.Supplier, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return r.List(ctx)
	}

	var suppliers []models.Supplier
	err := r.db.WithContext(ctx).
		Where("LOWER(categories) LIKE ?", "%"+strings.ToLower(category)+"%").
		Order("rating DESC, name ASC").
		Find(&suppliers).Error
	if err != nil {
		return nil, err
	}
	return suppliers, nil
}

// CreateBatch inserts several suppliers at once
func (r *SupplierRepository) CreateBatch(ctx context.Context, suppliers []models.Supplier) error {
	if len(suppliers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&suppliers).Error
}
