package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/botfoundry/menubot/bot"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Repository provides access to the session database.
type Repository struct {
	db *gorm.DB
}

// NewSQLiteRepository creates a repository backed by SQLite.
func NewSQLiteRepository(dsn string, gormLogger logger.Interface) (*Repository, error) {
	if dsn == "" {
		return nil, fmt.Errorf("dsn required")
	}

	if gormLogger == nil {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}

	dbDir := filepath.Dir(dsn)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 gormLogger,
	})
	if err != nil {
		return nil, err
	}

	if err := applySQLitePragmas(db); err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&UserSessionModel{}); err != nil {
		return nil, err
	}

	return &Repository{db: db}, nil
}

// ConfigurePool updates the database connection pool settings.
func (r *Repository) ConfigurePool(maxOpen, maxIdle int, maxLifetime time.Duration) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	if maxOpen <= 0 {
		maxOpen = 1
	}
	if maxIdle <= 0 {
		maxIdle = 1
	}
	if maxLifetime <= 0 {
		maxLifetime = time.Hour
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(maxLifetime)
	return nil
}

// Get returns the stored session for a user, or (nil, nil) if absent.
func (r *Repository) Get(ctx context.Context, userID int64) (*bot.UserSession, error) {
	var model UserSessionModel
	err := r.db.WithContext(ctx).First(&model, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model.toSession(), nil
}

// Save upserts a session keyed by user ID.
func (r *Repository) Save(ctx context.Context, session *bot.UserSession) error {
	if session == nil {
		return fmt.Errorf("session required")
	}
	model := fromSession(session)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(model).Error
}

// DeleteInactiveBefore removes sessions whose last activity precedes
// cutoff and returns how many were removed.
func (r *Repository) DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("last_activity < ?", cutoff).
		Delete(&UserSessionModel{})
	return result.RowsAffected, result.Error
}

// Count returns the number of stored sessions.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&UserSessionModel{}).Count(&count).Error
	return count, err
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func applySQLitePragmas(db *gorm.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, stmt := range pragmas {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
