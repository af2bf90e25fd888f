package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yeremiapane/barpos/models"
	"github.com/yeremiapane/barpos/services"
	"github.com/yeremiapane/barpos/utils"
)

type ProductController struct {
	DB      *gorm.DB
	Catalog *services.CatalogService
}

func NewProductController(db *gorm.DB, catalog *services.CatalogService) *ProductController {
	return &ProductController{DB: db, Catalog: catalog}
}

// GetAllProducts -> active products, optionally filtered by ?category_id=
func (pc *ProductController) GetAllProducts(c *gin.Context) {
	var categoryID *uint
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		v := uint(id)
		categoryID = &v
	}

	products, err := pc.Catalog.ListProducts(categoryID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of products", products)
}

// CreateProduct
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req struct {
		Name       string          `json:"name" binding:"required"`
		Price      decimal.Decimal `json:"price"`
		CategoryID *uint           `json:"category_id"`
		Stock      int             `json:"stock"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Price.IsNegative() {
		utils.RespondError(c, http.StatusBadRequest, services.ErrInvalidArgument)
		return
	}

	product := models.Product{
		Name:       req.Name,
		Price:      req.Price,
		CategoryID: req.CategoryID,
		Stock:      req.Stock,
		Active:     true,
	}
	if err := pc.DB.Create(&product).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New product: %s ($%s)", product.Name, product.Price)
	utils.RespondJSON(c, http.StatusCreated, "Product created", product)
}

// UpdateProduct -> name/price/stock/category. Price changes only affect
// lines added from now on; captured unit prices stay put.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Name       *string          `json:"name"`
		Price      *decimal.Decimal `json:"price"`
		CategoryID *uint            `json:"category_id"`
		Stock      *int             `json:"stock"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var product models.Product
	if err := pc.DB.First(&product, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			utils.RespondError(c, http.StatusBadRequest, services.ErrInvalidArgument)
			return
		}
		product.Price = *req.Price
	}
	if req.CategoryID != nil {
		product.CategoryID = req.CategoryID
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}

	if err := pc.DB.Save(&product).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product updated", product)
}

// DeactivateProduct -> soft delete; the product stops being sellable but
// historical lines keep pointing at it.
func (pc *ProductController) DeactivateProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var product models.Product
	if err := pc.DB.First(&product, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	product.Active = false
	if err := pc.DB.Save(&product).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Product %d (%s) deactivated", product.ID, product.Name)
	utils.RespondJSON(c, http.StatusOK, "Product deactivated", product)
}
