package store

import (
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"eventcrm/internal/models"
)

// Store is the single persistence handle. It is created once at process
// start and passed into every component; inside Transaction it is rebound
// to the transaction so authorization, validation and writes share one
// atomic scope.
type Store struct {
	db *gorm.DB
	lg *zap.SugaredLogger
}

// Open connects to the backing database. A postgres:// or postgresql://
// URL selects the Postgres driver, anything else is opened as a SQLite
// file. TranslateError turns driver unique-violation errors into
// gorm.ErrDuplicatedKey so the store can map them to typed errors.
func Open(databaseURL string) (*gorm.DB, error) {
	gcfg := &gorm.Config{TranslateError: true}
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return gorm.Open(postgres.Open(databaseURL), gcfg)
	}
	return gorm.Open(sqlite.Open(databaseURL), gcfg)
}

func New(db *gorm.DB, lg *zap.SugaredLogger) *Store {
	return &Store{db: db, lg: lg}
}

// AutoMigrate creates or updates the schema for all entities.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Contract{},
		&models.Event{},
		&models.AuditLog{},
	)
}

// Transaction runs fn against a store bound to a single database
// transaction. Nested calls join the outer transaction via savepoints.
func (s *Store) Transaction(fn func(tx *Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, lg: s.lg})
	})
}

// translate maps gorm sentinel errors onto the typed taxonomy.
func translate(err error, kind, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.NotFoundError{EntityKind: kind, EntityID: id}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &models.DuplicateKeyError{EntityKind: kind, Field: "unique field"}
	}
	return err
}
