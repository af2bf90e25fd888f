package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/barpos/services"
	"github.com/yeremiapane/barpos/utils"
)

type InvoiceController struct {
	Invoices *services.InvoiceService
}

func NewInvoiceController(invoices *services.InvoiceService) *InvoiceController {
	return &InvoiceController{Invoices: invoices}
}

// GetOrderSummary -> the denormalized order view the receipt renderer
// consumes. The document itself is generated downstream; this endpoint
// only guarantees the data.
func (ic *InvoiceController) GetOrderSummary(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("order_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	summary, err := ic.Invoices.GetOrderSummary(uint(orderID))
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order summary", summary)
}
