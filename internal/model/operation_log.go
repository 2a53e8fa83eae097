package model

import (
	"time"

	"gorm.io/datatypes"
)

// OperationLog is one console action recorded in the operation log
type OperationLog struct {
	ID        int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RequestID string         `gorm:"column:request_id;type:varchar(64);index" json:"requestId"`
	Operation string         `gorm:"column:operation;type:varchar(64);not null;index" json:"operation"`
	Message   string         `gorm:"column:message;type:varchar(512);not null" json:"message"`
	Success   bool           `gorm:"column:success;not null" json:"success"`
	Error     string         `gorm:"column:error;type:varchar(512)" json:"error,omitempty"`
	Details   datatypes.JSON `gorm:"column:details;type:json" json:"details,omitempty"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

// TableName specifies the table name for OperationLog
func (OperationLog) TableName() string {
	return "operation_logs"
}
