package services

import (
	"gorm.io/gorm"

	"github.com/yeremiapane/barpos/models"
)

// CatalogService serves the read side of the catalog: active categories
// and sellable products. Catalog management (create, price changes, soft
// delete) lives in the HTTP layer; the ledger only ever reads from here.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ListCategories returns the active categories ordered by name.
func (s *CatalogService) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Where("active = ?", true).Order("name asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// ListProducts returns the active products, joined with their category.
// With a category filter the products come back by name; without one they
// are grouped by category name (orphaned products sort with the NULL
// category name, ahead of named categories on sqlite).
func (s *CatalogService) ListProducts(categoryID *uint) ([]models.Product, error) {
	var products []models.Product

	query := s.db.Preload("Category").Where("products.active = ?", true)
	if categoryID != nil {
		query = query.Where("products.category_id = ?", *categoryID).
			Order("products.name asc")
	} else {
		query = query.
			Joins("LEFT JOIN categories ON categories.id = products.category_id").
			Order("categories.name asc, products.name asc")
	}

	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
