package repo

import (
	"context"
	"errors"

	"vitrine/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRepository handles product data access. It is the catalog the AI flows
// validate model output against.
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// AllProducts lists the catalog in display order
func (r *ProductRepository) AllProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("sort_order ASC, name ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ProductByID gets a product by ID. Unknown or malformed ids return (nil, nil).
func (r *ProductRepository) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}

	var product models.Product
	err = r.db.WithContext(ctx).Where("id = ?", productID).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Count returns how many products the catalog holds
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error
	return count, err
}

// CreateBatch inserts several products at once
func (r *ProductRepository) CreateBatch(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&products).Error
}
