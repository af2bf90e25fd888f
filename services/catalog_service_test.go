package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yeremiapane/barpos/models"
)

func seedCatalog(t *testing.T, db *gorm.DB) (drinks, food models.Category) {
	t.Helper()
	drinks = models.Category{Name: "Bebidas", Active: true}
	food = models.Category{Name: "Comidas", Active: true}
	retired := models.Category{Name: "Vinos", Active: false}
	require.NoError(t, db.Create(&drinks).Error)
	require.NoError(t, db.Create(&food).Error)
	require.NoError(t, db.Create(&retired).Error)

	products := []models.Product{
		{Name: "Fernet con Coca", Price: decimal.NewFromInt(2000), CategoryID: &drinks.ID, Active: true},
		{Name: "Agua Mineral", Price: decimal.NewFromInt(800), CategoryID: &drinks.ID, Active: true},
		{Name: "Milanesa Napolitana", Price: decimal.NewFromInt(4000), CategoryID: &food.ID, Active: true},
		{Name: "Plato del día", Price: decimal.NewFromInt(3000), CategoryID: &food.ID, Active: false},
		{Name: "Chicles", Price: decimal.NewFromInt(300), CategoryID: nil, Active: true},
	}
	require.NoError(t, db.Create(&products).Error)
	return drinks, food
}

func TestListCategoriesActiveOnly(t *testing.T) {
	db := setupLedgerDB(t)
	seedCatalog(t, db)
	catalog := NewCatalogService(db)

	categories, err := catalog.ListCategories()
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Bebidas", categories[0].Name)
	assert.Equal(t, "Comidas", categories[1].Name)
}

func TestListProductsGroupedByCategory(t *testing.T) {
	db := setupLedgerDB(t)
	seedCatalog(t, db)
	catalog := NewCatalogService(db)

	products, err := catalog.ListProducts(nil)
	require.NoError(t, err)
	require.Len(t, products, 4)

	// Grouped by category name (orphans sort with the NULL category
	// name, first on sqlite); inactive products filtered out.
	assert.Equal(t, "Chicles", products[0].Name)
	assert.Nil(t, products[0].CategoryID)
	assert.Equal(t, "Agua Mineral", products[1].Name)
	assert.Equal(t, "Fernet con Coca", products[2].Name)
	assert.Equal(t, "Milanesa Napolitana", products[3].Name)

	require.NotNil(t, products[1].Category)
	assert.Equal(t, "Bebidas", products[1].Category.Name)
}

func TestListProductsFilteredByCategory(t *testing.T) {
	db := setupLedgerDB(t)
	drinks, _ := seedCatalog(t, db)
	catalog := NewCatalogService(db)

	products, err := catalog.ListProducts(&drinks.ID)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Agua Mineral", products[0].Name)
	assert.Equal(t, "Fernet con Coca", products[1].Name)
}

func TestListUsersActiveOnly(t *testing.T) {
	db := setupLedgerDB(t)
	directory := NewDirectoryService(db)

	users := []models.User{
		{Name: "María García", Role: RoleWaiter, Active: true},
		{Name: "Carlos López", Role: RoleCashier, Active: true},
		{Name: "Ex Empleado", Role: RoleWaiter, Active: false},
	}
	require.NoError(t, db.Create(&users).Error)

	active, err := directory.ListUsers()
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Carlos López", active[0].Name)
	assert.Equal(t, "María García", active[1].Name)
}
