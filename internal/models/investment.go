package models

import (
	"time"

	"gorm.io/datatypes"
)

// Investment lifecycle states. Pending always precedes Completed; there is
// no way back.
const (
	InvestmentStateInit      = "init"
	InvestmentStatePending   = "pending"
	InvestmentStateCompleted = "completed"
)

// Investment kinds.
const (
	InvestmentTypeStandard = "standard"
	InvestmentTypeCsr      = "csr"
)

// Investment is the configuration record and aggregate root. One row per
// (investment_id, version); created once, mutated only through quorum-gated
// operations, never deleted.
type Investment struct {
	InvestmentID string `gorm:"type:varchar(15);primaryKey" json:"investment_id"`
	Version      string `gorm:"type:varchar(4);primaryKey" json:"version"`

	Type          string `gorm:"type:varchar(10);not null" json:"type"`
	StageSchedule datatypes.JSON `gorm:"type:jsonb;not null" json:"stage_schedule"`

	StartAt    int64  `gorm:"not null" json:"start_at"`
	EndAt      int64  `gorm:"not null" json:"end_at"`
	UpperLimit uint64 `gorm:"not null" json:"upper_limit"`

	// Base58 key arrays. Execute and update lists hold exactly 5 entries,
	// the withdraw list 1-5.
	ExecuteWhitelist  datatypes.JSON `gorm:"type:jsonb;not null" json:"execute_whitelist"`
	UpdateWhitelist   datatypes.JSON `gorm:"type:jsonb;not null" json:"update_whitelist"`
	WithdrawWhitelist datatypes.JSON `gorm:"type:jsonb;not null" json:"withdraw_whitelist"`

	VaultAddress string `gorm:"type:varchar(64);not null;index" json:"vault_address"`

	State  string `gorm:"type:varchar(12);not null;default:'pending'" json:"state"`
	Active bool   `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (Investment) TableName() string {
	return "investments"
}
