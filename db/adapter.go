package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kasuganosora/modguard/config"
	dbmysql "github.com/kasuganosora/modguard/db/mysql"
	dbpostgres "github.com/kasuganosora/modguard/db/postgres"
	dbsqlite "github.com/kasuganosora/modguard/db/sqlite"
	"gorm.io/gorm"
)

const (
	BackendMySQL    = "mysql"
	BackendMariaDB  = "mariadb"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendH2       = "h2"
)

// ErrUnsupportedBackend is returned for backends the schema translator
// knows but no Go driver can connect to (H2).
var ErrUnsupportedBackend = errors.New("db: backend has no Go driver")

// Open returns a *gorm.DB for the configured backend with pool limits
// applied and connectivity verified. A failure here is startup-fatal for
// the owning process.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var (
		gdb *gorm.DB
		err error
	)
	switch cfg.Backend {
	case BackendMySQL, BackendMariaDB:
		// MariaDB speaks the MySQL wire protocol; same driver.
		gdb, err = dbmysql.Open(cfg)
	case BackendPostgres:
		gdb, err = dbpostgres.Open(cfg)
	case BackendSQLite:
		gdb, err = dbsqlite.Open(cfg)
	case BackendH2:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBackend, cfg.Backend)
	default:
		return nil, fmt.Errorf("db: unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	maxOpen := cfg.MaxOpen
	if cfg.Backend == BackendSQLite {
		// File-level write serialization: a single connection avoids
		// SQLITE_BUSY under concurrent writers.
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(cfg.MinIdle)
	sqlDB.SetConnMaxIdleTime(cfg.IdleTimeout)
	sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)

	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db: connect: %w", err)
	}
	return gdb, nil
}
