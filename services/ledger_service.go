package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yeremiapane/barpos/models"
)

// Order status
const (
	OrderStatusOpen      = "open"
	OrderStatusFinalized = "finalized"
	OrderStatusCancelled = "cancelled"
)

// Sale channel
const (
	ChannelTable = "table"
	ChannelTill  = "till"
)

// Table status
const (
	TableStatusFree     = "free"
	TableStatusOccupied = "occupied"
	TableStatusReserved = "reserved"
)

// Payment method
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
)

// LedgerService owns the order state machine and the table registry.
// Every multi-step mutation runs inside a single gorm transaction, and
// operations that pair an open-order check with a write on the same table
// additionally serialize on a per-table mutex so two concurrent opens can
// never both observe "no open order" and both insert.
type LedgerService struct {
	db *gorm.DB

	mu         sync.Mutex
	tableLocks map[uint]*sync.Mutex
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{
		db:         db,
		tableLocks: make(map[uint]*sync.Mutex),
	}
}

// lockTable serializes order-lifecycle operations per table.
func (s *LedgerService) lockTable(tableID uint) func() {
	s.mu.Lock()
	lock, ok := s.tableLocks[tableID]
	if !ok {
		lock = &sync.Mutex{}
		s.tableLocks[tableID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// ----------------------------------------------------------------
//                      TABLE REGISTRY
// ----------------------------------------------------------------

// ListTables returns every table ordered by its number.
func (s *LedgerService) ListTables() ([]models.Table, error) {
	var tables []models.Table
	if err := s.db.Order("number asc").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

// SetTableStatus unconditionally overwrites a table's status. This is the
// administrative correction path; normal status changes happen as part of
// OpenOrder, FinalizeOrder and CancelOrder.
func (s *LedgerService) SetTableStatus(tableID uint, status string) (*models.Table, error) {
	switch status {
	case TableStatusFree, TableStatusOccupied, TableStatusReserved:
	default:
		// An unknown status string is malformed input, not an illegal
		// state transition of an existing table.
		return nil, fmt.Errorf("unknown table status %q: %w", status, ErrInvalidArgument)
	}

	unlock := s.lockTable(tableID)
	defer unlock()

	var table models.Table
	if err := s.db.First(&table, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("table %d: %w", tableID, ErrNotFound)
		}
		return nil, err
	}

	table.Status = status
	if err := s.db.Save(&table).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

// ----------------------------------------------------------------
//                      ORDER LIFECYCLE
// ----------------------------------------------------------------

// OpenOrder starts a sale. For the table channel it is idempotent: if the
// table already has an open order that order is returned, so staff tapping
// the same table twice never create duplicates. A table that reads
// occupied without any open order is occupancy drift and is refused with
// ErrTableConflict rather than silently papered over with a fresh order.
func (s *LedgerService) OpenOrder(tableID *uint, userID uint, channel string) (*models.Order, error) {
	switch channel {
	case ChannelTable:
		if tableID == nil {
			return nil, fmt.Errorf("table sale requires a table: %w", ErrInvalidArgument)
		}
	case ChannelTill:
		if tableID != nil {
			return nil, fmt.Errorf("till sale must not reference a table: %w", ErrInvalidArgument)
		}
	default:
		return nil, fmt.Errorf("unknown sale channel %q: %w", channel, ErrInvalidArgument)
	}

	var user models.User
	if err := s.db.Where("active = ?", true).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return nil, err
	}

	if channel == ChannelTill {
		order := models.Order{
			UserID:  user.ID,
			Total:   decimal.Zero,
			Status:  OrderStatusOpen,
			Channel: ChannelTill,
		}
		if err := s.db.Create(&order).Error; err != nil {
			return nil, err
		}
		return &order, nil
	}

	unlock := s.lockTable(*tableID)
	defer unlock()

	var out *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := tx.First(&table, *tableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("table %d: %w", *tableID, ErrNotFound)
			}
			return err
		}

		var existing models.Order
		err := tx.Where("table_id = ? AND status = ?", table.ID, OrderStatusOpen).
			Order("created_at desc").
			First(&existing).Error
		if err == nil {
			out = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if table.Status == TableStatusOccupied {
			return fmt.Errorf("table %d is occupied but has no open order: %w", table.ID, ErrTableConflict)
		}

		order := models.Order{
			TableID: &table.ID,
			UserID:  user.ID,
			Total:   decimal.Zero,
			Status:  OrderStatusOpen,
			Channel: ChannelTable,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Table{}).Where("id = ?", table.ID).
			Update("status", TableStatusOccupied).Error; err != nil {
			return err
		}
		out = &order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddLine puts quantity units of a product on an open order. If the order
// already carries a line for the product, the quantity is merged into it
// and the subtotal recomputed from the unit price captured when the line
// was first created — not from the product's current price.
func (s *LedgerService) AddLine(orderID, productID uint, quantity int) (*models.Order, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d: %w", quantity, ErrInvalidArgument)
	}

	var out *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := openOrderForUpdate(tx, orderID)
		if err != nil {
			return err
		}

		var product models.Product
		if err := tx.Where("active = ?", true).First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("product %d: %w", productID, ErrNotFound)
			}
			return err
		}

		var line models.OrderLine
		err = tx.Where("order_id = ? AND product_id = ?", orderID, productID).First(&line).Error
		switch {
		case err == nil:
			line.Quantity += quantity
			line.Subtotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
			if err := tx.Save(&line).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			line = models.OrderLine{
				OrderID:   order.ID,
				ProductID: product.ID,
				Quantity:  quantity,
				UnitPrice: product.Price,
				Subtotal:  product.Price.Mul(decimal.NewFromInt(int64(quantity))),
			}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
		default:
			return err
		}

		if err := refreshTotal(tx, order); err != nil {
			return err
		}
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveLine deletes a line from an open order and recomputes the total
// (zero when the last line goes). Closed orders are immutable.
func (s *LedgerService) RemoveLine(lineID uint) (*models.Order, error) {
	var out *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var line models.OrderLine
		if err := tx.First(&line, lineID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("order line %d: %w", lineID, ErrNotFound)
			}
			return err
		}

		order, err := openOrderForUpdate(tx, line.OrderID)
		if err != nil {
			return err
		}

		if err := tx.Delete(&models.OrderLine{}, line.ID).Error; err != nil {
			return err
		}
		if err := refreshTotal(tx, order); err != nil {
			return err
		}
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FinalizeOrder closes an open order as paid. The state change, the
// payment method and the table release commit together; an order without
// lines cannot be finalized.
func (s *LedgerService) FinalizeOrder(orderID uint, paymentMethod string) (*models.Order, error) {
	switch paymentMethod {
	case PaymentCash, PaymentCard, PaymentTransfer:
	default:
		return nil, fmt.Errorf("unknown payment method %q: %w", paymentMethod, ErrInvalidArgument)
	}

	return s.closeOrder(orderID, func(tx *gorm.DB, order *models.Order) error {
		var lineCount int64
		if err := tx.Model(&models.OrderLine{}).Where("order_id = ?", order.ID).
			Count(&lineCount).Error; err != nil {
			return err
		}
		if lineCount == 0 {
			return fmt.Errorf("order %d has no lines: %w", order.ID, ErrInvalidState)
		}

		order.Status = OrderStatusFinalized
		order.PaymentMethod = &paymentMethod
		return tx.Model(order).Updates(map[string]interface{}{
			"status":         OrderStatusFinalized,
			"payment_method": paymentMethod,
		}).Error
	})
}

// CancelOrder closes an open order as void. Lines stay in place for audit;
// the table (if any) is freed in the same transaction.
func (s *LedgerService) CancelOrder(orderID uint) (*models.Order, error) {
	return s.closeOrder(orderID, func(tx *gorm.DB, order *models.Order) error {
		order.Status = OrderStatusCancelled
		return tx.Model(order).Update("status", OrderStatusCancelled).Error
	})
}

// closeOrder runs the shared open -> terminal transition: verify the order
// is open, apply the state change, free the table if the sale had one.
// The table mutex is taken when the order references a table so the flip
// to free cannot interleave with a concurrent OpenOrder on that table.
func (s *LedgerService) closeOrder(orderID uint, apply func(*gorm.DB, *models.Order) error) (*models.Order, error) {
	var probe models.Order
	if err := s.db.First(&probe, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
		}
		return nil, err
	}
	if probe.TableID != nil {
		unlock := s.lockTable(*probe.TableID)
		defer unlock()
	}

	var out *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := openOrderForUpdate(tx, orderID)
		if err != nil {
			return err
		}
		if err := apply(tx, order); err != nil {
			return err
		}
		if order.TableID != nil {
			if err := tx.Model(&models.Table{}).Where("id = ?", *order.TableID).
				Update("status", TableStatusFree).Error; err != nil {
				return err
			}
		}
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ActiveOrderForTable returns the table's open order, or nil when there is
// none. More than one open order violates the one-open-order-per-table
// invariant and is surfaced instead of being silently resolved.
func (s *LedgerService) ActiveOrderForTable(tableID uint) (*models.Order, error) {
	var orders []models.Order
	if err := s.db.Where("table_id = ? AND status = ?", tableID, OrderStatusOpen).
		Order("created_at desc").
		Preload("Lines").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	switch len(orders) {
	case 0:
		return nil, nil
	case 1:
		return &orders[0], nil
	default:
		return nil, fmt.Errorf("table %d has %d open orders: %w", tableID, len(orders), ErrTableConflict)
	}
}

// ListOpenOrders returns every open order, newest first. The till view
// uses this to pick up direct sales that were left open.
func (s *LedgerService) ListOpenOrders() ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.Where("status = ?", OrderStatusOpen).
		Order("created_at desc").
		Preload("Lines").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder returns one order with its lines.
func (s *LedgerService) GetOrder(orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Lines").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
		}
		return nil, err
	}
	return &order, nil
}

// openOrderForUpdate loads an order inside tx and rejects anything that is
// no longer open.
func openOrderForUpdate(tx *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := tx.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
		}
		return nil, err
	}
	if order.Status != OrderStatusOpen {
		return nil, fmt.Errorf("order %d is %s, expected %s: %w",
			order.ID, order.Status, OrderStatusOpen, ErrInvalidState)
	}
	return &order, nil
}

// refreshTotal re-derives the cached order total from the persisted lines.
// Summing happens in Go with decimals so no float arithmetic ever touches
// money, whatever the underlying driver does with DECIMAL columns.
func refreshTotal(tx *gorm.DB, order *models.Order) error {
	var lines []models.OrderLine
	if err := tx.Where("order_id = ?", order.ID).Find(&lines).Error; err != nil {
		return err
	}
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal)
	}
	order.Total = total
	order.Lines = lines
	return tx.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("total", total).Error
}
