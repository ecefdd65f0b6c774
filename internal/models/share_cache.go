package models

import (
	"time"

	"gorm.io/datatypes"
)

// ProfitShareCache is a precomputed, time-bounded, single-use profit payout
// plan for one batch. Re-estimation overwrites it while executed_at == 0;
// execution seals it.
type ProfitShareCache struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	InvestmentID string `gorm:"type:varchar(15);not null;uniqueIndex:idx_profit_cache,priority:1" json:"investment_id"`
	Version      string `gorm:"type:varchar(4);not null;uniqueIndex:idx_profit_cache,priority:2" json:"version"`
	BatchID      uint16 `gorm:"not null;uniqueIndex:idx_profit_cache,priority:3" json:"batch_id"`

	SubtotalUsdt uint64 `gorm:"not null" json:"subtotal_usdt"`
	GasEstimate  uint64 `gorm:"not null" json:"gas_estimate"`

	// Unix seconds; 0 means pending execution.
	ExecutedAt int64 `gorm:"not null;default:0;index" json:"executed_at"`
	CreatedAt  int64 `gorm:"not null" json:"created_at"`

	Entries datatypes.JSON `gorm:"type:jsonb;not null" json:"entries"`

	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (ProfitShareCache) TableName() string {
	return "profit_share_caches"
}

// RefundShareCache is the refund analogue, additionally keyed by the payout
// year index.
type RefundShareCache struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	InvestmentID string `gorm:"type:varchar(15);not null;uniqueIndex:idx_refund_cache,priority:1" json:"investment_id"`
	Version      string `gorm:"type:varchar(4);not null;uniqueIndex:idx_refund_cache,priority:2" json:"version"`
	BatchID      uint16 `gorm:"not null;uniqueIndex:idx_refund_cache,priority:3" json:"batch_id"`
	YearIndex    uint8  `gorm:"not null;uniqueIndex:idx_refund_cache,priority:4" json:"year_index"`

	SubtotalHcoin uint64 `gorm:"not null" json:"subtotal_hcoin"`
	GasEstimate   uint64 `gorm:"not null" json:"gas_estimate"`

	ExecutedAt int64 `gorm:"not null;default:0;index" json:"executed_at"`
	CreatedAt  int64 `gorm:"not null" json:"created_at"`

	Entries datatypes.JSON `gorm:"type:jsonb;not null" json:"entries"`

	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (RefundShareCache) TableName() string {
	return "refund_share_caches"
}
