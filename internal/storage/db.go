// Package storage persists users, cached recipes, favorites and sessions.
package storage

import (
	"context"
	"fmt"
	stdlog "log"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"recipebox/internal/config"
)

const sqliteParams = "_foreign_keys=on&_busy_timeout=5000"

// Open connects to postgres when a host is configured and to a local sqlite
// file otherwise.
func Open(cfg config.DBConfig, logger *logrus.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if cfg.UsesPostgres() {
		logger.WithField("host", cfg.Host).Info("Connecting to PostgreSQL database")
		dialector = postgres.Open(cfg.DSN())
	} else {
		logger.WithField("path", cfg.SQLitePath).Info("Connecting to SQLite database")
		dialector = sqlite.Open(sqliteDSN(cfg.SQLitePath))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(
			stdlog.New(logger.WriterLevel(logrus.WarnLevel), "", 0),
			gormlogger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	})
	if err != nil {
		logger.WithError(err).Error("Failed to connect to the database")
		return nil, fmt.Errorf("open database: %w", err)
	}

	if !cfg.UsesPostgres() {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite handle: %w", err)
		}
		// sqlite serialises writers; one connection avoids "database is locked".
		sqlDB.SetMaxOpenConns(1)
	}

	logger.Info("Database connection successful")
	return db, nil
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&" + sqliteParams
	}
	return path + "?" + sqliteParams
}

// Migrate creates or updates the schema.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&User{}, &Recipe{}, &Favorite{}, &Session{}); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// Store groups the per-entity repositories over one connection or transaction.
type Store struct {
	db        *gorm.DB
	Users     *UserRepository
	Recipes   *RecipeRepository
	Favorites *FavoriteRepository
	Sessions  *SessionRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:        db,
		Users:     &UserRepository{db: db},
		Recipes:   &RecipeRepository{db: db},
		Favorites: &FavoriteRepository{db: db},
		Sessions:  &SessionRepository{db: db},
	}
}

// Transaction runs fn against repositories bound to a single transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
