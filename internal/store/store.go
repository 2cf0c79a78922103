package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dseeg/IoT-Environment/internal/model"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert collides with a
	// uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// Store wraps the sqlite connection and exposes the persistence
// operations for relays, devices, data types and reports.
type Store struct {
	orm *gorm.DB
}

// Open opens the SQLite database, runs migrations and returns a store.
func Open(path string) (*Store, error) {
	g, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}
	if err := g.AutoMigrate(&model.Relay{}, &model.Device{}, &model.DataType{}, &model.Report{}); err != nil {
		_ = closeORM(g)
		return nil, err
	}
	return &Store{orm: g}, nil
}

// Transaction runs fn inside a single database transaction. The store
// passed to fn is scoped to that transaction; any error rolls the whole
// unit of work back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{orm: tx})
	})
}

func (s *Store) Close() error { return closeORM(s.orm) }

func closeORM(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translate maps gorm's sentinel errors onto the store's own.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
