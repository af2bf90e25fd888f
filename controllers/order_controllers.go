package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/barpos/services"
	"github.com/yeremiapane/barpos/utils"
)

type OrderController struct {
	Ledger *services.LedgerService
}

func NewOrderController(ledger *services.LedgerService) *OrderController {
	return &OrderController{Ledger: ledger}
}

// OpenOrder -> start a sale. For channel "table" this is idempotent:
// tapping an already-open table returns its existing order.
func (oc *OrderController) OpenOrder(c *gin.Context) {
	var req struct {
		TableID *uint  `json:"table_id"`
		UserID  uint   `json:"user_id" binding:"required"`
		Channel string `json:"channel" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Ledger.OpenOrder(req.TableID, req.UserID, req.Channel)
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}

	utils.InfoLogger.Printf("Order %d open (channel=%s, user=%d)", order.ID, order.Channel, order.UserID)
	utils.RespondJSON(c, http.StatusCreated, "Order open", order)
}

// GetOrderByID -> one order with its lines
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("order_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Ledger.GetOrder(uint(orderID))
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// GetOpenOrders -> open orders, newest first (till view)
func (oc *OrderController) GetOpenOrders(c *gin.Context) {
	orders, err := oc.Ledger.ListOpenOrders()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Open orders", orders)
}

// AddLine -> add quantity units of a product to an open order. Repeating
// a product merges into the existing line at the captured price.
func (oc *OrderController) AddLine(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("order_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		ProductID uint `json:"product_id" binding:"required"`
		Quantity  int  `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Ledger.AddLine(uint(orderID), req.ProductID, req.Quantity)
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Line added", order)
}

// RemoveLine -> delete a line from its (still open) order
func (oc *OrderController) RemoveLine(c *gin.Context) {
	lineID, err := strconv.ParseUint(c.Param("line_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Ledger.RemoveLine(uint(lineID))
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Line removed", order)
}

// FinalizeOrder -> close as paid, freeing the table
func (oc *OrderController) FinalizeOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("order_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		PaymentMethod string `json:"payment_method" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Ledger.FinalizeOrder(uint(orderID), req.PaymentMethod)
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}

	utils.InfoLogger.Printf("Order %d finalized (%s, total=%s)", order.ID, req.PaymentMethod, order.Total)
	utils.RespondJSON(c, http.StatusOK, "Order finalized", order)
}

// CancelOrder -> close as void, freeing the table, keeping lines for audit
func (oc *OrderController) CancelOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("order_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Ledger.CancelOrder(uint(orderID))
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}

	utils.InfoLogger.Printf("Order %d cancelled", order.ID)
	utils.RespondJSON(c, http.StatusOK, "Order cancelled", order)
}
