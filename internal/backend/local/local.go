// Package local implements service.Service on a SQLite file, for use
// without any account.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dodo/internal/config"
	"dodo/internal/service"
)

// Todo is the stored task.
type Todo struct {
	ID        string     `gorm:"primarykey;size:36"`
	Content   string     `gorm:"not null"`
	IsDone    bool       `gorm:"not null;default:false"`
	CreatedAt time.Time  `gorm:"not null;index;autoCreateTime:false"`
	EndedAt   *time.Time
	Duration  *int64
	Deadline  *time.Time
}

// TableName returns the table name for Todo model.
func (Todo) TableName() string {
	return "todos"
}

func (t Todo) row() service.Row {
	return service.Row(t)
}

// Client implements service.Service on a gorm database.
type Client struct {
	db  *gorm.DB
	log *zap.Logger
}

// New opens (creating if needed) the database at cfg.DatabasePath().
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Client, error) {
	path := cfg.DatabasePath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	log.Debug("opened database", zap.String("path", path))
	return NewWithDB(ctx, db, log)
}

// NewWithDB migrates db and wraps it.
func NewWithDB(ctx context.Context, db *gorm.DB, log *zap.Logger) (*Client, error) {
	if err := db.WithContext(ctx).AutoMigrate(&Todo{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Client{db: db, log: log}, nil
}

// Close closes the underlying database.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SelectAll implements service.Service.
func (c *Client) SelectAll(ctx context.Context) ([]service.Row, error) {
	var todos []Todo
	if err := c.db.WithContext(ctx).Order("created_at desc, id").Find(&todos).Error; err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	rows := make([]service.Row, len(todos))
	for i, t := range todos {
		rows[i] = t.row()
	}
	return rows, nil
}

// Insert implements service.Service. The id is a new UUID.
func (c *Client) Insert(ctx context.Context, row service.Row) (service.Row, error) {
	t := Todo(row)
	t.ID = uuid.New().String()
	if err := c.db.WithContext(ctx).Create(&t).Error; err != nil {
		return service.Row{}, fmt.Errorf("failed to create todo: %w", err)
	}
	return t.row(), nil
}

// Update implements service.Service.
func (c *Client) Update(ctx context.Context, id string, changes service.Changes) (service.Row, error) {
	var t Todo
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Todo{}).Where("id = ?", id).Updates(map[string]any(changes))
		if result.Error != nil {
			return fmt.Errorf("failed to update todo: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return service.ErrNotFound
		}
		return tx.First(&t, "id = ?", id).Error
	})
	if err != nil {
		return service.Row{}, err
	}
	return t.row(), nil
}

// Delete implements service.Service.
func (c *Client) Delete(ctx context.Context, id string) error {
	result := c.db.WithContext(ctx).Delete(&Todo{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if result.RowsAffected == 0 {
		return service.ErrNotFound
	}
	return nil
}

var _ service.Service = (*Client)(nil)
