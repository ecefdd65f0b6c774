package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditEvent records one mutating engine operation, written in the same
// transaction as the mutation itself.
type AuditEvent struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	InvestmentID string `gorm:"type:varchar(15);not null;index" json:"investment_id"`
	Version      string `gorm:"type:varchar(4);not null" json:"version"`

	Action string `gorm:"type:varchar(40);not null;index" json:"action"`
	Actor  string `gorm:"type:varchar(64);not null" json:"actor"`

	Signers datatypes.JSON `gorm:"type:jsonb" json:"signers"`
	Details datatypes.JSON `gorm:"type:jsonb" json:"details"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
