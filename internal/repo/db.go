// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file opens the case store: SQLite (pure Go driver,
// local runs and tests) or PostgreSQL (deployments), with query logging
// through zerolog, optional tracing and schema migrations.
package repo

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/legal-aid-backend/internal/domain"
)

const slowQueryThreshold = 250 * time.Millisecond

// sqlitePragmas are applied on every pooled connection through the DSN.
var sqlitePragmas = []string{
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(ON)",
	"busy_timeout(5000)",
}

// Open dispatches on driver ("sqlite" or "postgres"). For sqlite the target
// is a file path; for postgres it is a DSN.
func Open(driver, target string) (*gorm.DB, error) {
	switch driver {
	case "sqlite":
		return OpenSQLite(target)
	case "postgres":
		return OpenPostgres(target)
	default:
		return nil, fmt.Errorf("repo: unsupported driver %q", driver)
	}
}

// OpenSQLite opens (or creates) the SQLite file at path.
func OpenSQLite(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}
	db, err := gorm.Open(sqlite.Open(sqliteDSN(path)), gormConfig())
	if err != nil {
		return nil, err
	}
	configurePool(db, 10)
	return db, nil
}

func sqliteDSN(path string) string {
	q := url.Values{}
	for _, p := range sqlitePragmas {
		q.Add("_pragma", p)
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + q.Encode()
}

// OpenPostgres connects to PostgreSQL using the pgx-backed GORM driver.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}
	configurePool(db, 25)
	return db, nil
}

// gormConfig routes GORM's own logging (slow queries, errors) to zerolog at
// warn level. Record-not-found is an expected outcome and is not logged.
func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(zerologPrinter{}, gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		}),
	}
}

// zerologPrinter adapts the global zerolog logger to gorm's Writer.
type zerologPrinter struct{}

func (zerologPrinter) Printf(format string, args ...any) {
	log.Warn().Str("component", "gorm").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func configurePool(db *gorm.DB, maxConns int) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(maxConns)
		sqlDB.SetMaxIdleConns(maxConns)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
}

// EnableTracing registers the OpenTelemetry GORM plugin so every query runs
// in a child span of the request. Bound query variables are omitted because
// case descriptions carry personal data.
func EnableTracing(db *gorm.DB) error {
	return db.Use(tracing.NewPlugin(tracing.WithoutQueryVariables()))
}

// AutoMigrate creates or updates every table owned by the application.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(domain.Models()...)
}
