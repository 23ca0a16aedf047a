// Package store owns the database handle: schema migration, the shared unit
// of work and whole-file export/import.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"dmc-inventory/apperr"
	"dmc-inventory/config"
	"dmc-inventory/models"

	"gorm.io/gorm"
)

var sqliteHeader = []byte("SQLite format 3\x00")

var errClosed = errors.New("store is closed")

// Store guards a single *gorm.DB. Ordinary reads and writes hold the shared
// lock; export, import and backup hold it exclusively.
type Store struct {
	mu  sync.RWMutex
	cfg config.Database
	db  *gorm.DB
	log *log.Logger

	// Now stamps backup file names.
	Now func() time.Time
}

// Open connects, migrates the schema and returns a ready store.
func Open(cfg config.Database, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.New(os.Stdout, "[dmc] ", log.LstdFlags)
	}
	if cfg.Driver == "" {
		cfg.Driver = config.DriverSQLite
	}
	s := &Store{cfg: cfg, log: logger, Now: time.Now}
	if err := s.open(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) open() error {
	db, err := config.OpenDB(s.cfg)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		closeDB(db)
		return fmt.Errorf("auto migrate: %w", err)
	}
	s.db = db
	return nil
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Driver() string { return s.cfg.Driver }

// Path is the database file, empty for server databases.
func (s *Store) Path() string {
	if s.cfg.Driver != config.DriverSQLite {
		return ""
	}
	return s.cfg.Path
}

// Read runs fn against the live handle. Use it for queries and single
// statement writes.
func (s *Store) Read(ctx context.Context, fn func(db *gorm.DB) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return apperr.Storage(errClosed, "database unavailable")
	}
	return fn(s.db.WithContext(ctx))
}

// Atomic runs fn inside one transaction. Any error returned by fn rolls the
// whole unit back and is returned as is. fn must only use tx.
func (s *Store) Atomic(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return apperr.Storage(errClosed, "database unavailable")
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := closeDB(s.db)
	s.db = nil
	return err
}

func (s *Store) requireFile() error {
	if s.cfg.Driver != config.DriverSQLite {
		return apperr.Unsupported("whole-store copy is only available for the sqlite driver, not %s", s.cfg.Driver)
	}
	return nil
}

// Export writes a copy of the database file to dst. The connection is closed
// for the duration of the copy and reopened afterwards.
func (s *Store) Export(ctx context.Context, dst string) error {
	if err := s.requireFile(); err != nil {
		return err
	}
	if dst == "" {
		return apperr.Validation("destination path is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return apperr.Storage(errClosed, "database unavailable")
	}
	if err := closeDB(s.db); err != nil {
		return apperr.Storage(err, "close database before export")
	}
	s.db = nil

	copyErr := copyFile(s.cfg.Path, dst)
	if err := s.open(); err != nil {
		return apperr.Storage(err, "reopen database after export")
	}
	if copyErr != nil {
		return apperr.Storage(copyErr, "export database")
	}
	s.log.Printf("store: exported %s to %s", s.cfg.Path, dst)
	return nil
}

// Import replaces the database with the file at src. The current file is
// first copied to <path>.backup.<unix-ms>; that path is returned. If the
// imported file cannot be opened the backup is put back.
func (s *Store) Import(ctx context.Context, src string) (string, error) {
	if err := s.requireFile(); err != nil {
		return "", err
	}
	if err := checkSQLiteFile(src); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		if err := closeDB(s.db); err != nil {
			return "", apperr.Storage(err, "close database before import")
		}
		s.db = nil
	}

	backup := s.backupName("")
	if err := copyFile(s.cfg.Path, backup); err != nil {
		if reopenErr := s.open(); reopenErr != nil {
			s.log.Printf("store: reopen after failed backup: %v", reopenErr)
		}
		return "", apperr.Storage(err, "back up database before import")
	}
	s.log.Printf("store: backed up %s to %s", s.cfg.Path, backup)

	if err := copyFile(src, s.cfg.Path); err != nil {
		return backup, s.restore(backup, apperr.Storage(err, "copy imported database"))
	}
	if err := s.open(); err != nil {
		return backup, s.restore(backup, apperr.Storage(err, "open imported database"))
	}
	s.log.Printf("store: imported %s", src)
	return backup, nil
}

// restore puts the backup back after a failed import. Callers hold mu.
func (s *Store) restore(backup string, cause error) error {
	s.log.Printf("store: import failed, restoring %s: %v", backup, cause)
	if err := copyFile(backup, s.cfg.Path); err != nil {
		s.log.Printf("store: restore failed: %v", err)
		return cause
	}
	if err := s.open(); err != nil {
		s.log.Printf("store: reopen after restore failed: %v", err)
	}
	return cause
}

// Backup copies the database file next to itself and returns the copy's path.
func (s *Store) Backup(suffix string) (string, error) {
	if err := s.requireFile(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dst := s.backupName(suffix)
	if err := copyFile(s.cfg.Path, dst); err != nil {
		return "", apperr.Storage(err, "back up database")
	}
	s.log.Printf("store: backed up %s to %s", s.cfg.Path, dst)
	return dst, nil
}

func (s *Store) backupName(suffix string) string {
	name := fmt.Sprintf("%s.backup.%d", s.cfg.Path, s.Now().UnixMilli())
	if suffix != "" {
		name += "." + suffix
	}
	return name
}

func checkSQLiteFile(path string) error {
	if path == "" {
		return apperr.Validation("source path is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return apperr.Validation("cannot open import file: %v", err)
	}
	defer f.Close()

	head := make([]byte, len(sqliteHeader))
	if _, err := io.ReadFull(f, head); err != nil || !bytes.Equal(head, sqliteHeader) {
		return apperr.Validation("%s is not a SQLite database", filepath.Base(path))
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if dir := filepath.Dir(dst); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := dst + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
