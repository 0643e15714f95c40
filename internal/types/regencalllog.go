package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RegenCallLog records one call to the external text-generation provider,
// successful or not. Append-only; used for audit and quota tuning.
type RegenCallLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Kind      string         `gorm:"column:kind;not null;index" json:"kind"`
	ConcernID string         `gorm:"column:concern_id;not null;index" json:"concern_id"`
	Model     string         `gorm:"column:model;not null" json:"model"`
	Success   bool           `gorm:"column:success;not null" json:"success"`
	Error     string         `gorm:"column:error" json:"error"`
	Usage     datatypes.JSON `gorm:"type:jsonb;column:usage" json:"usage"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (RegenCallLog) TableName() string {
	return "regen_call_log"
}
