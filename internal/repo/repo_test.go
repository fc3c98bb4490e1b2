package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

func TestProductRepository_AllProducts(t *testing.T) {
	db, mock := newMockDB(t)
	id1, id2 := uuid.New(), uuid.New()

	rows := sqlmock.NewRows([]string{"id", "name", "category", "price", "sort_order"}).
		AddRow(id1.String(), "Blue Jeans", "Apparel", 79.9, 0).
		AddRow(id2.String(), "Coffee Mug", "Home", 12.5, 1)
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE "products"."deleted_at" IS NULL ORDER BY sort_order ASC, name ASC`).
		WillReturnRows(rows)

	products, err := NewProductRepository(db).AllProducts(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 2)
	assert.Equal(t, id1, products[0].ID)
	assert.Equal(t, "Apparel", products[0].Category)
	assert.Equal(t, "Coffee Mug", products[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_ProductByID(t *testing.T) {
	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 AND "products"."deleted_at" IS NULL`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "category"}).AddRow(id.String(), "Blue Jeans", "Apparel"))

		p, err := NewProductRepository(db).ProductByID(context.Background(), id.String())
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "Blue Jeans", p.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

		p, err := NewProductRepository(db).ProductByID(context.Background(), id.String())
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("malformed id", func(t *testing.T) {
		db, mock := newMockDB(t)

		p, err := NewProductRepository(db).ProductByID(context.Background(), "not-a-uuid")
		require.NoError(t, err)
		assert.Nil(t, p)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "products"`).WillReturnError(errors.New("connection lost"))

		_, err := NewProductRepository(db).ProductByID(context.Background(), id.String())
		assert.ErrorContains(t, err, "connection lost")
	})
}

func TestProductRepository_Count(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := NewProductRepository(db).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

func TestSupplierRepository_ForCategory(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "suppliers" WHERE LOWER\(categories\) LIKE \$1`).
		WithArgs("%apparel%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "categories", "rating"}).
			AddRow(uuid.New().String(), "Denim Co", "Apparel, Footwear", 4.8))

	suppliers, err := NewSupplierRepository(db).ForCategory(context.Background(), " Apparel ")
	require.NoError(t, err)

	require.Len(t, suppliers, 1)
	assert.Equal(t, []string{"Apparel", "Footwear"}, suppliers[0].CategoryList())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSalesRepository_ProductPerformance(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()
	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	mock.ExpectQuery(`(?s)SELECT\s+products.id AS product_id.+LEFT JOIN order_items.+LEFT JOIN orders.+GROUP BY products.id`).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "name", "category", "units_sold", "revenue", "stock"}).
			AddRow(id.String(), "Blue Jeans", "Apparel", 12, 958.8, 3))

	rows, err := NewSalesRepository(db).ProductPerformance(context.Background(), from, to)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, id, rows[0].ProductID)
	assert.Equal(t, int64(12), rows[0].UnitsSold)
	assert.InDelta(t, 958.8, rows[0].Revenue, 0.001)
	assert.Equal(t, 3, rows[0].Stock)
	assert.NoError(t, mock.ExpectationsWereMet())
}
