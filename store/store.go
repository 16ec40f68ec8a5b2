package store

import (
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store is the typed CRUD layer over the moderation tables. Methods are
// synchronous and context-taking; asynchrony is owned by the service's
// worker pool, never here.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New creates a Store over an opened database.
func New(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// DB exposes the underlying handle for wiring (audit worker, tests).
func (s *Store) DB() *gorm.DB {
	return s.db
}
