package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yeremiapane/barpos/models"
	"github.com/yeremiapane/barpos/utils"
)

// InvoiceService assembles the denormalized view of an order that the
// external receipt/PDF renderer consumes. Pure read, no side effects;
// nothing here formats or renders a document.
type InvoiceService struct {
	db *gorm.DB
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db}
}

type InvoiceLine struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// OrderSummary carries everything the renderer needs: order meta, the
// table number (nil means a direct till sale), who sold it, how it was
// paid, and the lines with captured prices.
type OrderSummary struct {
	OrderID       uint            `json:"order_id"`
	Number        string          `json:"number"`
	CreatedAt     time.Time       `json:"created_at"`
	Status        string          `json:"status"`
	Channel       string          `json:"channel"`
	TableNumber   *int            `json:"table_number,omitempty"`
	SoldBy        string          `json:"sold_by"`
	PaymentMethod *string         `json:"payment_method,omitempty"`
	Total         decimal.Decimal `json:"total"`
	TotalDisplay  string          `json:"total_display"`
	Lines         []InvoiceLine   `json:"lines"`
}

// GetOrderSummary composes order, lines, product names, table number and
// creator name for one order, lines ordered by product name.
func (s *InvoiceService) GetOrderSummary(orderID uint) (*OrderSummary, error) {
	var order models.Order
	if err := s.db.Preload("Table").Preload("User").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
		}
		return nil, err
	}

	var lines []models.OrderLine
	if err := s.db.Preload("Product").
		Joins("JOIN products ON products.id = order_lines.product_id").
		Where("order_lines.order_id = ?", order.ID).
		Order("products.name asc").
		Find(&lines).Error; err != nil {
		return nil, err
	}

	summary := OrderSummary{
		OrderID:       order.ID,
		Number:        fmt.Sprintf("%06d", order.ID),
		CreatedAt:     order.CreatedAt,
		Status:        order.Status,
		Channel:       order.Channel,
		PaymentMethod: order.PaymentMethod,
		Total:         order.Total,
		TotalDisplay:  utils.FormatCurrency(order.Total),
	}
	if order.Table != nil {
		summary.TableNumber = &order.Table.Number
	}
	if order.User != nil {
		summary.SoldBy = order.User.Name
	}

	summary.Lines = make([]InvoiceLine, 0, len(lines))
	for _, line := range lines {
		summary.Lines = append(summary.Lines, InvoiceLine{
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    line.Subtotal,
		})
	}
	return &summary, nil
}
