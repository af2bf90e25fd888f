package database

import (
	"github.com/yeremiapane/barpos/utils"
	"gorm.io/gorm"
)

// EnsureConstraints installs the schema rules AutoMigrate cannot express.
// The one that matters is open-order uniqueness: at most one order in
// state 'open' may reference a table, so two racing opens cannot both
// insert even if they slipped past the ledger's table locks.
func EnsureConstraints(db *gorm.DB) error {
	switch db.Dialector.Name() {
	case "sqlite", "postgres":
		stmt := `CREATE UNIQUE INDEX IF NOT EXISTS idx_one_open_order_per_table
			ON orders(table_id) WHERE status = 'open' AND table_id IS NOT NULL`
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
		utils.InfoLogger.Printf("open-order uniqueness index ensured")
	default:
		// MySQL has no partial indexes; uniqueness relies on the
		// ledger serializing per table.
		utils.InfoLogger.Printf("skipping partial index on %s", db.Dialector.Name())
	}
	return nil
}
