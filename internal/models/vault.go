package models

import "time"

// Vault is the custody account for one investment version. Balances are in
// base units and are mutated only by deposit, withdraw, and settlement.
type Vault struct {
	InvestmentID string `gorm:"type:varchar(15);primaryKey" json:"investment_id"`
	Version      string `gorm:"type:varchar(4);primaryKey" json:"version"`

	Address string `gorm:"type:varchar(64);not null;uniqueIndex" json:"address"`

	NativeBalance uint64 `gorm:"not null;default:0" json:"native_balance"`
	UsdtBalance   uint64 `gorm:"not null;default:0" json:"usdt_balance"`
	HcoinBalance  uint64 `gorm:"not null;default:0" json:"hcoin_balance"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (Vault) TableName() string {
	return "vaults"
}

// SettlementAccount is the destination side of the treasury ledger: one
// balance per (settlement address), owned by a wallet, denominated in one
// mint. Native payouts use the zero mint.
type SettlementAccount struct {
	Address string `gorm:"type:varchar(64);primaryKey" json:"address"`
	Owner   string `gorm:"type:varchar(64);not null;index" json:"owner"`
	Mint    string `gorm:"type:varchar(64);not null;index" json:"mint"`

	Balance uint64 `gorm:"not null;default:0" json:"balance"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (SettlementAccount) TableName() string {
	return "settlement_accounts"
}
