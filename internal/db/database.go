package db

import (
	"context"
	"fmt"

	"vitrine/internal/repo"
	"vitrine/pkg/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds the Postgres connection settings
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	TimeZone string
	Debug    bool
}

// DSN builds the Postgres connection string
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode, c.TimeZone,
	)
}

// NewDatabase creates a new database connection
func NewDatabase(cfg Config) (*gorm.DB, error) {
	gormLogger := logger.Default.LogMode(logger.Error)
	if cfg.Debug {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// AutoMigrate runs database migrations using GORM
func AutoMigrate(db *gorm.DB) error {
	log.Info().Msg("Running GORM AutoMigrate...")

	if err := db.AutoMigrate(models.GetAllModels()...); err != nil {
		return fmt.Errorf("failed to run GORM AutoMigrate: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_order_items_product_order ON order_items(product_id, order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_created_status ON orders(created_at, status)`,
	}
	for _, idx := range indexes {
		if err := db.Exec(idx).Error; err != nil {
			log.Warn().Err(err).Str("index", idx).Msg("Failed to create index")
		}
	}

	log.Info().Msg("GORM AutoMigrate completed successfully")
	return nil
}

// SeedCatalog fills an empty store with the demo catalog and suppliers.
// A store that already has products is left untouched.
func SeedCatalog(ctx context.Context, products *repo.ProductRepository, suppliers *repo.SupplierRepository) error {
	count, err := products.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		log.Info().Int64("products", count).Msg("Catalog already populated, skipping seed")
		return nil
	}

	demoProducts := DemoProducts()
	if err := products.CreateBatch(ctx, demoProducts); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	if err := suppliers.CreateBatch(ctx, DemoSuppliers()); err != nil {
		return fmt.Errorf("failed to seed suppliers: %w", err)
	}

	log.Info().Int("products", len(demoProducts)).Msg("Demo catalog seeded")
	return nil
}

// DemoProducts is the catalog used for demos and local development
func DemoProducts() []models.Product {
	items := []struct {
		name, category, description string
		price                       float64
		stock                       int
	}{
		{"Blue Jeans", "Apparel", "Straight-leg jeans in washed indigo denim.", 79.90, 24},
		{"Black Slim Jeans", "Apparel", "Slim fit jeans in stretch black denim.", 84.90, 18},
		{"White Cotton Tee", "Apparel", "Heavyweight organic cotton t-shirt.", 24.90, 60},
		{"Linen Shirt", "Apparel", "Breathable linen shirt with a relaxed collar.", 59.90, 15},
		{"Wool Overcoat", "Apparel", "Double-breasted overcoat in recycled wool.", 229.00, 6},
		{"Leather Sneakers", "Footwear", "Minimal white leather sneakers.", 119.00, 20},
		{"Chelsea Boots", "Footwear", "Suede chelsea boots with rubber sole.", 159.00, 9},
		{"Canvas Tote", "Accessories", "Sturdy canvas tote with inner pocket.", 29.90, 40},
		{"Silk Scarf", "Accessories", "Printed silk scarf, 90x90 cm.", 49.90, 12},
		{"Ceramic Mug", "Home", "Hand-glazed stoneware mug, 350 ml.", 18.50, 35},
		{"Desk Lamp", "Home", "Adjustable brass desk lamp.", 89.00, 7},
		{"Scented Candle", "Home", "Cedar and vanilla soy candle.", 22.00, 50},
	}

	products := make([]models.Product, 0, len(items))
	for i, it := range items {
		products = append(products, models.Product{
			Name:          it.name,
			Category:      it.category,
			Description:   it.description,
			Price:         it.price,
			StockQuantity: it.stock,
			SortOrder:     i,
		})
	}
	return products
}

// DemoSuppliers is the supplier list used for demos and local development
func DemoSuppliers() []models.Supplier {
	return []models.Supplier{
		{Name: "Indigo Mills", Categories: "Apparel", Location: "Porto, PT", LeadTimeDays: 14, Rating: 4.7},
		{Name: "Northwind Textiles", Categories: "Apparel,Accessories", Location: "Izmir, TR", LeadTimeDays: 21, Rating: 4.3},
		{Name: "Stride Footwear", Categories: "Footwear", Location: "Leon, MX", LeadTimeDays: 30, Rating: 4.5},
		{Name: "Kiln & Co", Categories: "Home", Location: "Stoke-on-Trent, UK", LeadTimeDays: 10, Rating: 4.8},
		{Name: "Global Goods Trading", Categories: "Apparel,Footwear,Accessories,Home", Location: "Shenzhen, CN", LeadTimeDays: 45, Rating: 3.9},
	}
}
