// Package database opens and migrates the Postgres store behind the
// gormrepos repositories.
package database

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hoshiyaar/paathshala/core"
	"github.com/hoshiyaar/paathshala/storage/database/gormrepos"
)

// Open connects to the database described by conf. TranslateError is on so
// that unique violations surface as gorm.ErrDuplicatedKey, which the
// repositories rely on for their insert-if-absent operations.
func Open(conf core.DatabaseConfig, debug bool) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if debug {
		logLevel = gormlogger.Info
	}
	db, err := gorm.Open(postgres.Open(DSN(conf)), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	return db, nil
}

// DSN builds the Postgres connection URL.
func DSN(conf core.DatabaseConfig) string {
	sslMode := "require"
	if conf.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(conf.User, conf.Password),
		Host:     conf.Address(),
		Path:     conf.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// StatusCheck waits for the database to be ready, retrying with a linear
// backoff until ctx expires.
func StatusCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "unwrapping connection pool")
	}

	var pingErr error
	for attempt := 1; ; attempt++ {
		if pingErr = sqlDB.PingContext(ctx); pingErr == nil {
			break
		}
		select {
		case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
		case <-ctx.Done():
			return fmt.Errorf("database never ready: %w", pingErr)
		}
	}

	// ping alone does not prove a usable session
	var tmp bool
	return db.WithContext(ctx).Raw("SELECT true").Scan(&tmp).Error
}

// Migrate brings the schema up to date.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(gormrepos.Models()...); err != nil {
		return errors.Wrap(err, "migrating schema")
	}
	return nil
}
