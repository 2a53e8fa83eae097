package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cdc_zoning/internal/model"
)

// GormLog keeps the operation log in the operation_logs table
type GormLog struct {
	db *gorm.DB
}

// NewGormLog returns a log on db. Run db.Migrate first.
func NewGormLog(db *gorm.DB) *GormLog {
	return &GormLog{db: db}
}

// Record inserts entry. Entries without a request id get a fresh one.
func (g *GormLog) Record(ctx context.Context, entry *model.OperationLog) error {
	if entry.RequestID == "" {
		entry.RequestID = uuid.NewString()
	}
	if err := g.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record operation: %w", err)
	}
	return nil
}

// List returns matching entries, newest first
func (g *GormLog) List(ctx context.Context, f Filter) ([]model.OperationLog, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := g.db.WithContext(ctx).Model(&model.OperationLog{})
	if f.Operation != "" {
		query = query.Where("operation = ?", f.Operation)
	}
	if f.Failed {
		query = query.Where("success = ?", false)
	}

	var entries []model.OperationLog
	if err := query.Order("id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	return entries, nil
}
