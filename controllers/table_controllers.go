package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/barpos/models"
	"github.com/yeremiapane/barpos/services"
	"github.com/yeremiapane/barpos/utils"
)

type TableController struct {
	DB     *gorm.DB
	Ledger *services.LedgerService
}

func NewTableController(db *gorm.DB, ledger *services.LedgerService) *TableController {
	return &TableController{DB: db, Ledger: ledger}
}

// GetAllTables -> every table, ordered by number
func (tc *TableController) GetAllTables(c *gin.Context) {
	tables, err := tc.Ledger.ListTables()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// CreateTable -> register a new physical table
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		Number   int `json:"number" binding:"required"`
		Capacity int `json:"capacity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table := models.Table{
		Number:   req.Number,
		Capacity: 4,
		Status:   services.TableStatusFree,
	}
	if req.Capacity > 0 {
		table.Capacity = req.Capacity
	}

	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}

	utils.InfoLogger.Printf("New table created: %d (capacity=%d)", table.Number, table.Capacity)
	utils.RespondJSON(c, http.StatusCreated, "Table created", table)
}

// UpdateTableStatus -> administrative status override. Day-to-day status
// changes happen through the order lifecycle, not here.
func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	tableID, err := strconv.ParseUint(c.Param("table_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Ledger.SetTableStatus(uint(tableID), body.Status)
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}

	utils.InfoLogger.Printf("Table %d status overridden to %s", table.ID, table.Status)
	utils.RespondJSON(c, http.StatusOK, "Table status updated", table)
}

// GetActiveOrder -> the table's open order, if any
func (tc *TableController) GetActiveOrder(c *gin.Context) {
	tableID, err := strconv.ParseUint(c.Param("table_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := tc.Ledger.ActiveOrderForTable(uint(tableID))
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}
	if order == nil {
		utils.RespondJSON(c, http.StatusOK, "No active order", nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active order", order)
}
