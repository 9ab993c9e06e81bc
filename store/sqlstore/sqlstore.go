package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"parcel-delivery-api/models"
	"parcel-delivery-api/store"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type txKey struct{}

// Store keeps each collection in its own table
type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// Open connects with the named driver ("sqlite" or "postgres") and creates
// missing tables
func Open(driver, dsn string, level logger.LogLevel) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// single writer; also keeps one shared database for ":memory:"
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return New(db)
}

// New wraps an open connection and creates missing tables
func New(db *gorm.DB) (*Store, error) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Parcel{},
		&models.Rider{},
		&models.Payment{},
	)
	if err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Users() store.UserStore       { return userStore{s} }
func (s *Store) Parcels() store.ParcelStore   { return parcelStore{s} }
func (s *Store) Riders() store.RiderStore     { return riderStore{s} }
func (s *Store) Payments() store.PaymentStore { return paymentStore{s} }

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// conn returns the transaction bound to ctx, or the pool
func (s *Store) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return s.db.WithContext(ctx)
}

// transition applies updates to the row with id while column holds one of from
func (s *Store) transition(ctx context.Context, model any, id, column string, from []string, updates map[string]any) (store.UpdateResult, error) {
	if len(from) == 0 {
		return store.UpdateResult{}, fmt.Errorf("transition %s: no source states", column)
	}
	res := s.conn(ctx).Model(model).
		Where("id = ?", id).
		Where(column+" IN ?", from).
		Updates(updates)
	if res.Error != nil {
		return store.UpdateResult{}, res.Error
	}
	if res.RowsAffected > 0 {
		return store.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
	}

	exists, err := s.exists(ctx, model, id)
	if err != nil {
		return store.UpdateResult{}, err
	}
	if !exists {
		return store.UpdateResult{}, store.ErrNotFound
	}
	return store.UpdateResult{MatchedCount: 1}, nil
}

func (s *Store) exists(ctx context.Context, model any, id string) (bool, error) {
	var n int64
	if err := s.conn(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}

// duplicate maps unique constraint violations to store.ErrDuplicate. Drivers
// without error translation are matched on their message.
func duplicate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key value") {
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
