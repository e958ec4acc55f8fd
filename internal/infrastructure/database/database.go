package database

import (
	"errors"
	"strings"

	"setu-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open opens a GORM DB from DSN (Postgres or pooler URL).
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") behind PgBouncer-style poolers.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{TranslateError: true})
}

// OpenSQLite opens a pure-Go SQLite database (local development and tests).
// An in-memory database lives per connection, so the pool is pinned to a single connection.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// OpenDriver picks the dialect from DATABASE_DRIVER; anything other than sqlite is Postgres.
func OpenDriver(driver, dsn string) (*gorm.DB, error) {
	if driver == DriverSQLite {
		return OpenSQLite(dsn)
	}
	return Open(dsn)
}

// Models is every table owned by the service, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.Village{},
		&domain.Project{},
		&domain.Checkpoint{},
		&domain.Submission{},
		&domain.Media{},
		&domain.FundTransaction{},
		&domain.PriorityVote{},
		&domain.AdarshScore{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// IsPostgres reports whether db talks to Postgres; row locks are only issued there.
func IsPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == DriverPostgres
}

// IsUniqueViolation reports whether err came from a unique constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}
