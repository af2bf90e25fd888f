package config

import (
	"fmt"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// InitDB opens the backing store. SQLite is the default so a bare binary
// runs against a local file like the till machines do; DB_DRIVER=mysql
// switches to a shared server.
func InitDB() (*gorm.DB, error) {
	driver := getenv("DB_DRIVER", "sqlite")

	// TranslateError turns driver-specific constraint violations into
	// gorm.ErrDuplicatedKey and friends, which the HTTP layer maps to
	// client errors.
	cfg := &gorm.Config{TranslateError: true}

	switch driver {
	case "sqlite":
		dsn := getenv("DB_DSN", "bar_pos.db")
		return gorm.Open(sqlite.Open(dsn), cfg)
	case "mysql":
		dsn := getenv("DB_DSN", "root:root@tcp(127.0.0.1:3306)/barpos?charset=utf8mb4&parseTime=True&loc=Local")
		return gorm.Open(mysql.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}
