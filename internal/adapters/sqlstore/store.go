// Package sqlstore implements the primer catalog and location index on
// SQLite through gorm.
package sqlstore

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// defaultBatchSize bounds rows per INSERT and values per IN clause, below
// SQLite's host parameter limit.
const defaultBatchSize = 500

// Store owns the database handle and hands out repositories.
type Store struct {
	db *gorm.DB
}

// Option configures Open.
type Option func(*gorm.Config)

// WithGormLogger replaces the default silent gorm logger.
func WithGormLogger(l gormlogger.Interface) Option {
	return func(c *gorm.Config) {
		c.Logger = l
	}
}

// Open opens or creates the database at path and migrates the schema.
// ":memory:" opens a private in-memory database.
func Open(path string, opts ...Option) (*Store, error) {
	cfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlstore: %w", err)
		}
		dsn = path + "?_busy_timeout=5000&_journal_mode=WAL"
	}

	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", path, err)
	}

	// In-memory databases are per connection.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlstore: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&primerRecord{}, &locationRecord{}, &scanRecord{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Primers returns the primer repository.
func (s *Store) Primers() *PrimerRepository {
	return &PrimerRepository{db: s.db}
}

// Locations returns the location repository.
func (s *Store) Locations() *LocationRepository {
	return &LocationRepository{db: s.db}
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
