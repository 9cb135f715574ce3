// Package store is the gorm-backed persistence layer. All entities live
// in a single sqlite database; the pure-Go driver avoids CGO so the
// backend cross-compiles cleanly.
package store

import (
	"errors"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/devwatch/sentinel/pkg/models"
)

// ErrNotFound is returned when a lookup by primary key misses. Absence
// on filtered lookups (whitelist, pending requests) is not an error and
// is reported as a nil record instead.
var ErrNotFound = errors.New("record not found")

// Store wraps the database handle and the query helpers
type Store struct {
	db  *gorm.DB
	log *logrus.Logger
}

// Open opens (or creates) the database at path and migrates the schema
func Open(path string, log *logrus.Logger) (*Store, error) {
	if log == nil {
		log = logrus.New()
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&models.Device{},
		&models.DeviceEvent{},
		&models.LogEntry{},
		&models.DataTransfer{},
		&models.Alert{},
		&models.AuthorizedUSBDevice{},
		&models.USBApprovalRequest{},
	)
	if err != nil {
		return nil, err
	}

	return &Store{db: db, log: log}, nil
}

// Transaction runs fn with a store bound to a database transaction.
// An error from fn rolls everything back.
func (s *Store) Transaction(fn func(tx *Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, log: s.log})
	})
}

// IsConflict reports whether err came from a unique constraint violation
func IsConflict(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint")
}

func asNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
