// Package storagetest opens throwaway sqlite stores for tests.
package storagetest

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"recipebox/internal/config"
	"recipebox/internal/storage"
)

// NewStore returns a migrated store backed by a sqlite file in t.TempDir.
func NewStore(t testing.TB) *storage.Store {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db, err := storage.Open(config.DBConfig{SQLitePath: filepath.Join(t.TempDir(), "recipebox.db")}, logger)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := storage.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	store := storage.NewStore(db)
	t.Cleanup(func() { _ = store.Close() })
	return store
}
