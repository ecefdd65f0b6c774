package models

import "time"

// InvestmentRecord is one investor contribution. Append-only except for the
// quorum-gated wallet rebind and the one-way revocation.
type InvestmentRecord struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	InvestmentID string `gorm:"type:varchar(15);not null;uniqueIndex:idx_record_addr,priority:1" json:"investment_id"`
	Version      string `gorm:"type:varchar(4);not null;uniqueIndex:idx_record_addr,priority:2" json:"version"`
	BatchID      uint16 `gorm:"not null;uniqueIndex:idx_record_addr,priority:3;index" json:"batch_id"`
	RecordID     uint64 `gorm:"not null;uniqueIndex:idx_record_addr,priority:4" json:"record_id"`
	AccountID    string `gorm:"type:varchar(15);not null;uniqueIndex:idx_record_addr,priority:5;index" json:"account_id"`

	Wallet      string `gorm:"type:varchar(64);not null" json:"wallet"`
	AmountUsdt  uint64 `gorm:"not null" json:"amount_usdt"`
	AmountHcoin uint64 `gorm:"not null" json:"amount_hcoin"`
	Stage       uint8  `gorm:"not null" json:"stage"`

	// Unix seconds; 0 means the record is still live.
	RevokedAt int64 `gorm:"not null;default:0" json:"revoked_at"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (InvestmentRecord) TableName() string {
	return "investment_records"
}
