// Package db opens the relational store and prepares its tables
package db

import (
	"acumenus/startpage-api/config"
	"acumenus/startpage-api/internal/model"
	"acumenus/startpage-api/pkg/util"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Models lists every table owned by the service
var Models = []any{
	&model.User{},
	&model.ApplicationLink{},
	&model.Feature{},
	&model.Screenshot{},
	&model.UsageMetric{},
	&model.RelatedApp{},
}

func New(c config.DB, logLevel string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch c.Driver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC search_path=%s",
			c.Host,
			c.User,
			c.Password,
			c.Name,
			c.Port,
			c.Schema,
		)
		dialector = postgres.Open(dsn)

	case "sqlite":
		// Inside a container a missing file means the volume isn't mounted,
		// and a fresh database would vanish with the container
		if util.InContainer() {
			if _, err := os.Stat(c.Path); errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("SQLite database file not mounted, mount it with a volume at %s", c.Path)
			}
		}

		dialector = sqlite.Open(SQLiteDSN(c.Path))

	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.Driver)
	}

	db, err := Open(dialector, logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database, %w", c.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB, %w", err)
	}

	if c.Driver == "sqlite" {
		// One writer at a time, otherwise concurrent requests hit SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
		sqlDB.SetMaxIdleConns(max(c.MaxOpenConns/2, 1))
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)

		err = db.Exec("CREATE SCHEMA IF NOT EXISTS ?", clause.Table{Name: c.Schema}).Error
		if err != nil {
			return nil, fmt.Errorf("failed to create schema %s, %w", c.Schema, err)
		}
	}

	zap.L().Info("Connected to database", zap.String("driver", c.Driver))
	return db, nil
}

// Open wraps gorm.Open with the settings every connection uses
func Open(d gorm.Dialector, logLevel string) (*gorm.DB, error) {
	return gorm.Open(d, &gorm.Config{
		Logger:                 newLogger(zap.L(), logLevel),
		TranslateError:         true,
		SkipDefaultTransaction: true,
	})
}

// SQLiteDSN turns a path into a DSN with foreign keys enforced, which the
// link collections rely on for cascading deletes
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	return path + sep + "_foreign_keys=on"
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return nil
}

type Hasher interface {
	GenerateFromPassword(p string) (string, error)
}

// SeedAdmin creates the admin user when the users table is empty. The row
// gets the first id from the sequence, matching the id bootstrap tokens carry.
func SeedAdmin(ctx context.Context, db *gorm.DB, h Hasher, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}

	var n int64
	if err := db.WithContext(ctx).Model(&model.User{}).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to count users, %w", err)
	}

	if n > 0 {
		return false, nil
	}

	hash, err := h.GenerateFromPassword(password)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password, %w", err)
	}

	u := model.User{
		Username:     username,
		Email:        "admin@example.com",
		PasswordHash: &hash,
		IsAdmin:      true,
	}

	if err := db.WithContext(ctx).Create(&u).Error; err != nil {
		return false, fmt.Errorf("failed to create admin user, %w", err)
	}

	zap.L().Info("Seeded admin user", zap.String("username", username), zap.Uint("id", u.ID))
	return true, nil
}

// Ping checks that the database answers within ctx
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
