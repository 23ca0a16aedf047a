package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// PostgresURL resolves the server DSN the same way for local and hosted setups.
func (d Database) PostgresURL() string {
	dbURL := d.URL
	if dbURL == "" {
		return fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			"localhost", "postgres", "postgres", "dmc_inventory", "5432",
		)
	}
	// hosted databases usually want TLS
	if !strings.Contains(dbURL, "sslmode=") {
		dbURL = appendParam(dbURL, "sslmode=require")
	}
	if !strings.Contains(dbURL, "search_path=") {
		dbURL = appendParam(dbURL, "search_path=public")
	}
	return dbURL
}

func appendParam(dbURL, param string) string {
	sep := "?"
	if strings.Contains(dbURL, "?") {
		sep = "&"
	}
	return dbURL + sep + param
}

// SQLiteDSN enables foreign keys on every pooled connection; cascades depend on it.
func (d Database) SQLiteDSN() string {
	return "file:" + d.Path + "?_foreign_keys=1&_busy_timeout=5000"
}

func GormLogger(level string) logger.Interface {
	lvl := logger.Warn
	switch strings.ToLower(level) {
	case "silent":
		lvl = logger.Silent
	case "error":
		lvl = logger.Error
	case "info":
		lvl = logger.Info
	}
	return logger.New(
		log.New(os.Stdout, "[GORM] ", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  lvl,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
}

// OpenDB connects to the configured driver. Schema migration is left to the caller.
func OpenDB(d Database) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: GormLogger(d.LogLevel)}

	switch d.Driver {
	case DriverSQLite, "":
		if d.Path == "" {
			return nil, fmt.Errorf("sqlite: empty database path")
		}
		db, err := gorm.Open(sqlite.Open(d.SQLiteDSN()), gcfg)
		if err != nil {
			return nil, fmt.Errorf("sqlite: open %s: %w", d.Path, err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// one writer; also keeps transactions and the pragma on the same connection
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
		}
		return db, nil

	case DriverPostgres:
		db, err := gorm.Open(postgres.Open(d.PostgresURL()), gcfg)
		if err != nil {
			return nil, fmt.Errorf("postgres: connect: %w", err)
		}
		if err := db.Exec(`SET search_path TO public`).Error; err != nil {
			log.Printf("postgres: set search_path public: %v", err)
		}
		if err := db.Exec(`SET TIME ZONE 'UTC'`).Error; err != nil {
			log.Printf("postgres: set timezone UTC: %v", err)
		}
		var dbName, currentUser string
		_ = db.Raw("SELECT current_database()").Scan(&dbName)
		_ = db.Raw("SELECT current_user").Scan(&currentUser)
		log.Printf("postgres: connected db=%s user=%s", dbName, currentUser)
		return db, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", d.Driver)
}
