package db

import "vaultshare/internal/models"

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.Investment{},
		&models.InvestmentRecord{},
		&models.ProfitShareCache{},
		&models.RefundShareCache{},
		&models.Vault{},
		&models.SettlementAccount{},
		&models.AuditEvent{},
	)
}
