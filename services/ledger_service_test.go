package services

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/barpos/models"
)

// setupLedgerDB opens a private in-memory SQLite database per test (named
// after the test so parallel tests never share state) and migrates the
// full schema.
func setupLedgerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderLine{},
	)
	require.NoError(t, err)

	// One connection keeps shared-cache sqlite from throwing "table is
	// locked" under the concurrency tests; writers queue instead.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

type ledgerFixture struct {
	table models.Table
	user  models.User
	beer  models.Product
	fries models.Product
}

func seedLedger(t *testing.T, db *gorm.DB) ledgerFixture {
	t.Helper()
	f := ledgerFixture{
		table: models.Table{Number: 4, Capacity: 4, Status: TableStatusFree},
		user:  models.User{Name: "María García", Role: RoleWaiter, Active: true},
		beer:  models.Product{Name: "Cerveza Quilmes", Price: decimal.NewFromInt(1500), Stock: 50, Active: true},
		fries: models.Product{Name: "Papas Fritas", Price: decimal.NewFromInt(1800), Stock: 25, Active: true},
	}
	require.NoError(t, db.Create(&f.table).Error)
	require.NoError(t, db.Create(&f.user).Error)
	require.NoError(t, db.Create(&f.beer).Error)
	require.NoError(t, db.Create(&f.fries).Error)
	return f
}

func TestOpenOrderIsIdempotentPerTable(t *testing.T) {
	db := setupLedgerDB(t)
	f := seedLedger(t, db)
	ledger := NewLedgerService(db)

	first, err := ledger.OpenOrder(&f.table.ID, f.user.ID, ChannelTable)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusOpen, first.Status)
	assert.Equal(t, ChannelTable, first.Channel)

	// Staff tapping the same table again must get the same order back.
	second, err := ledger.OpenOrder(&f.table.ID, f.user.ID, ChannelTable)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var table models.Table
	require.NoError(t, db.First(&table, f.table.ID).Error)
	assert.Equal(t, TableStatusOccupied, table.Status)

	var count int64
	db.Model(&models.Order{}).Where("table_id = ? AND status = ?", f.table.ID, OrderStatusOpen).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestOpenOrderTillAlwaysCreates(t *testing.T) {
	db := setupLedgerDB(t)
	f := seedLedger(t, db)
	ledger := NewLedgerService(db)

	first, err := ledger.OpenOrder(nil, f.user.ID, ChannelTill)
	require.NoError(t, err)
	second, err := ledger.OpenOrder(nil, f.user.ID, ChannelTill)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Nil(t, first.TableID)
	assert.Equal(t, ChannelTill, first.Channel)
}

func TestOpenOrderArgumentValidation(t *testing.T) {
	db := setupLedgerDB(t)
	f := seedLedger(t, db)
	ledger := NewLedgerService(db)

	_, err := ledger.OpenOrder(&f.table.ID, f.user.ID, "delivery")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ledger.OpenOrder(nil, f.user.ID, ChannelTable)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ledger.OpenOrder(&f.table.ID, f.user.ID, ChannelTill)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ledger.OpenOrder(&f.table.ID, 999, ChannelTable)
	assert.ErrorIs(t, err, ErrNotFound)

	missing := uint(999)
	_, err = ledger.OpenOrder(&missing, f.user.ID, ChannelTable)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenOrderRefusesOccupiedTableWithoutOrder(t *testing.T) {
	db := setupLedgerDB(t)
	f := seedLedger(t, db)
	ledger := NewLedgerService(db)

	// Simulate drift: the table says occupied but no open order exists.
	require.NoError(t, db.Model(&models.Table{}).Where("id = ?", f.table.ID).
		Update("status", TableStatusOccupied).Error)

	_, err := ledger.OpenOrder(&f.table.ID, f.user.ID, ChannelTable)
	assert.ErrorIs(t, err, ErrTableConflict)

	// No order may have been fabricated.
	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestOpenOrderOnReservedTable(t *testing.T) {
	db := setupLedgerDB(t)
	f := seedLedger(t, db)
	ledger := NewLedgerService(db)

	// Seating a reservation opens an order and occupies the table.
	require.NoError(t, db.Model(&models.Table{}).Where("id = ?", f.table.ID).
		Update("status", TableStatusReserved).Error)

	order, err := ledger.OpenOrder(&f.table.ID, f.user.ID, ChannelTable)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusOpen, order.Status)

	var table models.Table
	require.NoError(t, db.First(&table, f.table.ID).Error)
	assert.Equal(t, TableStatusOccupied, table.Status)
}

func TestAddLineMergesAtCapturedPrice(t *testing.T) {
	db := setupLedgerDB(t)
	f := seedLedger(t, db)
	ledger := NewLedgerService(db)

	order, err := ledger.OpenOrder(&f.table.ID, f.user.ID, ChannelTable)
	require.NoError(t, err)

	order, err = ledger.AddLine(order.ID, f.beer.ID, 2)
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(3000)), "total = %s", order.Total)

	// A price change between the two adds must not touch the line.
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", f.beer.ID).
		Update("price", decimal.NewFromInt(9999)).Error)

	order, err = ledger.AddLine(order.ID, f.beer.ID, 3)
	require.NoError(t, err)

	var lines []models.OrderLine
	require.NoError(t, db.Where("order_id = ?", order.ID).Find(&lines).Error)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.True(t, lines[0].UnitPrice.Equal(decimal.NewFromInt(1500)), "unit price = %s", lines[0].UnitPrice)
	assert.True(t, lines[0].Subtotal.Equal(decimal.NewFromInt(7500)), "subtotal = %s", lines[0].Subtotal)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(7500)), "total = %s", order.Total)
}

func TestAddLineValidation(t *testing.T) {
	db := setupLedgerDB(t)
	f := seedLedger(t, db)
	ledger := NewLedgerService(db)

	order, err := ledger.OpenOrder(&f.table.ID, f.user.ID, ChannelTable)
	require.NoError(t, err)

	_, err = ledger.AddLine(order.ID, f.beer.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ledger.AddLine(order.ID, f.beer.ID, -3)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ledger.AddLine(999, f.beer.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = ledger.AddLine(order.ID, 999, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	// Inactive products are not sellable.
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", f.fries.ID).
		Update("active", false).Error)
	_, err = ledger.AddLine(order.ID, f.fries.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	// Closed orders are immutable.
	_, err = ledger.AddLine(order.ID, f.beer.ID, 1)
	require.NoError(t, err)
	_, err = ledger.FinalizeOrder(order.ID, PaymentCash)
	require.NoError(t, err)
	_, err = ledger.AddLine(order.ID, f.beer.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRemoveLineRecomputesTotal(t *testing.T) {
	db := setupLedgerDB(t)
	f := seedLedger(t, db)
	ledger := NewLedgerService(db)

	order, err := ledger.OpenOrder(&f.table.ID, f.user.ID, ChannelTable)
	require.NoError(t, err)
	_, err = ledger.AddLine(order.ID, f.beer.ID, 2)
	require.NoError(t, err)
	order, err = ledger.AddLine(order.ID, f.fries.ID, 1)
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(4800)), "total = %s", order.Total)

	var friesLine models.OrderLine
	require.NoError(t, db.Where("order_id = ? AND product_id = ?", order.ID, f.fries.ID).
		First(&friesLine).Error)

	order, err = ledger.RemoveLine(friesLine.ID)
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(3000)), "total = %s", order.Total)

	var beerLine models.OrderLine
	require.NoError(t, db.Where("order_id = ? AND product_id = ?", order.ID, f.beer.ID).
		First(&beerLine).Error)

	order, err = ledger.RemoveLine(beerLine.ID)
	require.NoError(t, err)
	assert.True(t, order.Total.IsZero(), "total = %s", order.Total)

	_, err = ledger.RemoveLine(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveLineOnClosedOrder(t *testing.T) {
	db := setupLedgerDB(t)
	f := seedLedger(t, db)
	ledger := NewLedgerService(db)

	order, err := ledger.OpenOrder(nil, f.user.ID, ChannelTill)
	require.NoError(t, err)
	_, err = ledger.AddLine(order.ID, f.beer.ID, 1)
	require.NoError(t, err)
	_, err = ledger.FinalizeOrder(order.ID, PaymentCard)
	require.NoError(t, err)

	var line models.OrderLine
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&line).Error)

	_, err = ledger.RemoveLine(line.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestFinalizeOrder(t *testing.T) {
	db := setupLedgerDB(t)
	f := seedLedger(t, db)
	ledger := NewLedgerService(db)

	order, err := ledger.OpenOrder(&f.table.ID, f.user.ID, ChannelTable)
	require.NoError(t, err)

	// Empty orders cannot be finalized.
	_, err = ledger.FinalizeOrder(order.ID, PaymentCash)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = ledger.AddLine(order.ID, f.beer.ID, 2)
	require.NoError(t, err)

	_, err = ledger.FinalizeOrder(order.ID, "check")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ledger.FinalizeOrder(999, PaymentCash)
	assert.ErrorIs(t, err, ErrNotFound)

	closed, err := ledger.FinalizeOrder(order.ID, PaymentCash)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusFinalized, closed.Status)
	require.NotNil(t, closed.PaymentMethod)
	assert.Equal(t, PaymentCash, *closed.PaymentMethod)

	var table models.Table
	require.NoError(t, db.First(&table, f.table.ID).Error)
	assert.Equal(t, TableStatusFree, table.Status)

	// Finalized is terminal.
	_, err = ledger.FinalizeOrder(order.ID, PaymentCash)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = ledger.CancelOrder(order.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelOrderKeepsLines(t *testing.T) {
	db := setupLedgerDB(t)
	f := seedLedger(t, db)
	ledger := NewLedgerService(db)

	order, err := ledger.OpenOrder(&f.table.ID, f.user.ID, ChannelTable)
	require.NoError(t, err)
	_, err = ledger.AddLine(order.ID, f.beer.ID, 2)
	require.NoError(t, err)
	_, err = ledger.AddLine(order.ID, f.fries.ID, 1)
	require.NoError(t, err)

	cancelled, err := ledger.CancelOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.PaymentMethod)

	// Lines stay for audit.
	var lineCount int64
	db.Model(&models.OrderLine{}).Where("order_id = ?", order.ID).Count(&lineCount)
	assert.EqualValues(t, 2, lineCount)

	var table models.Table
	require.NoError(t, db.First(&table, f.table.ID).Error)
	assert.Equal(t, TableStatusFree, table.Status)

	_, err = ledger.CancelOrder(order.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = ledger.CancelOrder(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestActiveOrderForTable(t *testing.T) {
	db := setupLedgerDB(t)
	f := seedLedger(t, db)
	ledger := NewLedgerService(db)

	order, err := ledger.ActiveOrderForTable(f.table.ID)
	require.NoError(t, err)
	assert.Nil(t, order)

	opened, err := ledger.OpenOrder(&f.table.ID, f.user.ID, ChannelTable)
	require.NoError(t, err)

	order, err = ledger.ActiveOrderForTable(f.table.ID)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, opened.ID, order.ID)

	// Two open orders on one table is a consistency bug and must be
	// surfaced, not silently resolved.
	rogue := models.Order{TableID: &f.table.ID, UserID: f.user.ID,
		Total: decimal.Zero, Status: OrderStatusOpen, Channel: ChannelTable}
	require.NoError(t, db.Create(&rogue).Error)

	_, err = ledger.ActiveOrderForTable(f.table.ID)
	assert.ErrorIs(t, err, ErrTableConflict)
}

func TestTotalAlwaysMatchesLineSum(t *testing.T) {
	db := setupLedgerDB(t)
	f := seedLedger(t, db)
	ledger := NewLedgerService(db)

	order, err := ledger.OpenOrder(&f.table.ID, f.user.ID, ChannelTable)
	require.NoError(t, err)

	checkInvariant := func() {
		var stored models.Order
		require.NoError(t, db.First(&stored, order.ID).Error)
		var lines []models.OrderLine
		require.NoError(t, db.Where("order_id = ?", order.ID).Find(&lines).Error)
		sum := decimal.Zero
		for _, l := range lines {
			sum = sum.Add(l.Subtotal)
		}
		assert.True(t, stored.Total.Equal(sum), "total %s != line sum %s", stored.Total, sum)
	}

	_, err = ledger.AddLine(order.ID, f.beer.ID, 2)
	require.NoError(t, err)
	checkInvariant()

	_, err = ledger.AddLine(order.ID, f.fries.ID, 3)
	require.NoError(t, err)
	checkInvariant()

	_, err = ledger.AddLine(order.ID, f.beer.ID, 1)
	require.NoError(t, err)
	checkInvariant()

	var line models.OrderLine
	require.NoError(t, db.Where("order_id = ? AND product_id = ?", order.ID, f.fries.ID).
		First(&line).Error)
	_, err = ledger.RemoveLine(line.ID)
	require.NoError(t, err)
	checkInvariant()
}

func TestListTablesOrderedByNumber(t *testing.T) {
	db := setupLedgerDB(t)
	ledger := NewLedgerService(db)

	for _, n := range []int{7, 2, 5} {
		require.NoError(t, db.Create(&models.Table{Number: n, Capacity: 4, Status: TableStatusFree}).Error)
	}

	tables, err := ledger.ListTables()
	require.NoError(t, err)
	require.Len(t, tables, 3)
	assert.Equal(t, 2, tables[0].Number)
	assert.Equal(t, 5, tables[1].Number)
	assert.Equal(t, 7, tables[2].Number)
}

func TestSetTableStatus(t *testing.T) {
	db := setupLedgerDB(t)
	f := seedLedger(t, db)
	ledger := NewLedgerService(db)

	table, err := ledger.SetTableStatus(f.table.ID, TableStatusReserved)
	require.NoError(t, err)
	assert.Equal(t, TableStatusReserved, table.Status)

	// Idempotent overwrite.
	table, err = ledger.SetTableStatus(f.table.ID, TableStatusReserved)
	require.NoError(t, err)
	assert.Equal(t, TableStatusReserved, table.Status)

	_, err = ledger.SetTableStatus(f.table.ID, "dirty")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ledger.SetTableStatus(999, TableStatusFree)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentOpensResolveToOneOrder(t *testing.T) {
	db := setupLedgerDB(t)
	f := seedLedger(t, db)
	ledger := NewLedgerService(db)

	const workers = 8
	ids := make(chan uint, workers)
	for i := 0; i < workers; i++ {
		go func() {
			order, err := ledger.OpenOrder(&f.table.ID, f.user.ID, ChannelTable)
			if err != nil {
				ids <- 0
				return
			}
			ids <- order.ID
		}()
	}

	seen := make(map[uint]bool)
	for i := 0; i < workers; i++ {
		id := <-ids
		require.NotZero(t, id)
		seen[id] = true
	}
	assert.Len(t, seen, 1, "all concurrent opens must converge on one order")

	var count int64
	db.Model(&models.Order{}).Where("table_id = ? AND status = ?", f.table.ID, OrderStatusOpen).Count(&count)
	assert.EqualValues(t, 1, count)
}
