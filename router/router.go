package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/barpos/controllers"
	"github.com/yeremiapane/barpos/middlewares"
	"github.com/yeremiapane/barpos/services"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Middlewares must be attached before any route is registered: gin
	// snapshots each route's handler chain at registration time, so a
	// later Use() never reaches existing routes.
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.NewRateLimiter(50, 100).RateLimit())

	ledger := services.NewLedgerService(db)
	catalog := services.NewCatalogService(db)
	directory := services.NewDirectoryService(db)
	invoices := services.NewInvoiceService(db)

	tableCtrl := controllers.NewTableController(db, ledger)
	orderCtrl := controllers.NewOrderController(ledger)
	categoryCtrl := controllers.NewCategoryController(db, catalog)
	productCtrl := controllers.NewProductController(db, catalog)
	userCtrl := controllers.NewUserController(db, directory)
	invoiceCtrl := controllers.NewInvoiceController(invoices)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// ----------------------------------------------------------------
	//                      TABLES
	// ----------------------------------------------------------------
	r.GET("/tables", tableCtrl.GetAllTables)
	r.POST("/tables", tableCtrl.CreateTable)
	r.PATCH("/tables/:table_id/status", tableCtrl.UpdateTableStatus)
	r.GET("/tables/:table_id/order", tableCtrl.GetActiveOrder)

	// ----------------------------------------------------------------
	//                      ORDERS
	// ----------------------------------------------------------------
	r.POST("/orders", orderCtrl.OpenOrder)
	r.GET("/orders", orderCtrl.GetOpenOrders)
	r.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	r.POST("/orders/:order_id/lines", orderCtrl.AddLine)
	r.DELETE("/order-lines/:line_id", orderCtrl.RemoveLine)
	r.POST("/orders/:order_id/finalize", orderCtrl.FinalizeOrder)
	r.POST("/orders/:order_id/cancel", orderCtrl.CancelOrder)
	r.GET("/orders/:order_id/summary", invoiceCtrl.GetOrderSummary)

	// ----------------------------------------------------------------
	//                      CATALOG
	// ----------------------------------------------------------------
	r.GET("/categories", categoryCtrl.GetAllCategories)
	r.POST("/categories", categoryCtrl.CreateCategory)
	r.PATCH("/categories/:cat_id", categoryCtrl.UpdateCategory)
	r.DELETE("/categories/:cat_id", categoryCtrl.DeactivateCategory)

	r.GET("/products", productCtrl.GetAllProducts)
	r.POST("/products", productCtrl.CreateProduct)
	r.PATCH("/products/:product_id", productCtrl.UpdateProduct)
	r.DELETE("/products/:product_id", productCtrl.DeactivateProduct)

	// ----------------------------------------------------------------
	//                      STAFF
	// ----------------------------------------------------------------
	r.GET("/users", userCtrl.GetAllUsers)
	r.POST("/users", userCtrl.CreateUser)

	return r
}
