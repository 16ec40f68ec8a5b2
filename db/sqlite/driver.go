package sqlite

import (
	"github.com/kasuganosora/modguard/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	gormschema "gorm.io/gorm/schema"
)

// Open creates a GORM *DB backed by a SQLite file (":memory:" for tests).
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NamingStrategy: gormschema.NamingStrategy{
			TablePrefix: cfg.TablePrefix,
		},
	})
}
