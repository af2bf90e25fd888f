package database

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yeremiapane/barpos/models"
	"github.com/yeremiapane/barpos/services"
	"github.com/yeremiapane/barpos/utils"
)

// Seed provisions the reference data a fresh installation needs: the house
// menu, fifteen four-seat tables and the staff list. Guarded by a count
// check so restarting the server never duplicates anything. The ledger
// itself never depends on this running.
func Seed(db *gorm.DB) error {
	var categoryCount int64
	if err := db.Model(&models.Category{}).Count(&categoryCount).Error; err != nil {
		return err
	}
	if categoryCount > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		categories := []models.Category{
			{Name: "Bebidas", Active: true},
			{Name: "Comidas", Active: true},
			{Name: "Postres", Active: true},
			{Name: "Entradas", Active: true},
		}
		if err := tx.Create(&categories).Error; err != nil {
			return err
		}

		price := func(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
		products := []models.Product{
			{Name: "Cerveza Quilmes", Price: price(1500), CategoryID: &categories[0].ID, Stock: 50, Active: true},
			{Name: "Fernet con Coca", Price: price(2000), CategoryID: &categories[0].ID, Stock: 30, Active: true},
			{Name: "Agua Mineral", Price: price(800), CategoryID: &categories[0].ID, Stock: 40, Active: true},
			{Name: "Hamburguesa Completa", Price: price(3500), CategoryID: &categories[1].ID, Stock: 20, Active: true},
			{Name: "Papas Fritas", Price: price(1800), CategoryID: &categories[1].ID, Stock: 25, Active: true},
			{Name: "Milanesa Napolitana", Price: price(4000), CategoryID: &categories[1].ID, Stock: 15, Active: true},
			{Name: "Helado", Price: price(1200), CategoryID: &categories[2].ID, Stock: 20, Active: true},
			{Name: "Flan", Price: price(1000), CategoryID: &categories[2].ID, Stock: 15, Active: true},
			{Name: "Rabas", Price: price(2200), CategoryID: &categories[3].ID, Stock: 18, Active: true},
			{Name: "Empanadas (6u)", Price: price(2500), CategoryID: &categories[3].ID, Stock: 30, Active: true},
		}
		if err := tx.Create(&products).Error; err != nil {
			return err
		}

		tables := make([]models.Table, 0, 15)
		for number := 1; number <= 15; number++ {
			tables = append(tables, models.Table{
				Number:   number,
				Capacity: 4,
				Status:   services.TableStatusFree,
			})
		}
		if err := tx.Create(&tables).Error; err != nil {
			return err
		}

		users := []models.User{
			{Name: "Juan Pérez", Role: services.RoleWaiter, Active: true},
			{Name: "María García", Role: services.RoleWaiter, Active: true},
			{Name: "Carlos López", Role: services.RoleCashier, Active: true},
			{Name: "Admin", Role: services.RoleAdmin, Active: true},
		}
		if err := tx.Create(&users).Error; err != nil {
			return err
		}

		utils.InfoLogger.Printf("seeded %d categories, %d products, %d tables, %d users",
			len(categories), len(products), len(tables), len(users))
		return nil
	})
}
