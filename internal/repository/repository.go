package repository

import (
	"context"

	"vaultshare/internal/models"
)

// Store is the persistence surface of the distribution engine. Every engine
// operation runs against a single Store; InTx hands the callback a Store
// bound to one database transaction so a failing operation leaves no partial
// writes behind.
type Store interface {
	InTx(ctx context.Context, fn func(tx Store) error) error

	// Investments.
	CreateInvestment(ctx context.Context, item *models.Investment) error
	SaveInvestment(ctx context.Context, item *models.Investment) error
	GetInvestment(ctx context.Context, investmentID, version string) (*models.Investment, error)
	ListInvestments(ctx context.Context, params ListInvestmentsParams) ([]models.Investment, error)
	CountInvestments(ctx context.Context, params ListInvestmentsParams) (int64, error)

	// Contribution records.
	CreateRecord(ctx context.Context, item *models.InvestmentRecord) error
	SaveRecord(ctx context.Context, item *models.InvestmentRecord) error
	GetRecord(ctx context.Context, investmentID, version string, recordID uint64, accountID string) (*models.InvestmentRecord, error)
	ListRecords(ctx context.Context, params ListRecordsParams) ([]models.InvestmentRecord, error)
	CountRecords(ctx context.Context, params ListRecordsParams) (int64, error)
	ListRecordsByRecordIDs(ctx context.Context, investmentID, version string, recordIDs []uint64) ([]models.InvestmentRecord, error)

	// Distribution caches.
	UpsertProfitCache(ctx context.Context, item *models.ProfitShareCache) error
	SaveProfitCache(ctx context.Context, item *models.ProfitShareCache) error
	GetProfitCache(ctx context.Context, investmentID, version string, batchID uint16) (*models.ProfitShareCache, error)
	ListProfitCaches(ctx context.Context, investmentID, version string) ([]models.ProfitShareCache, error)
	UpsertRefundCache(ctx context.Context, item *models.RefundShareCache) error
	SaveRefundCache(ctx context.Context, item *models.RefundShareCache) error
	GetRefundCache(ctx context.Context, investmentID, version string, batchID uint16, yearIndex uint8) (*models.RefundShareCache, error)
	ListRefundCaches(ctx context.Context, investmentID, version string) ([]models.RefundShareCache, error)
	DeleteExpiredCaches(ctx context.Context, createdBefore int64) (int64, error)

	// Vault custody.
	CreateVault(ctx context.Context, item *models.Vault) error
	SaveVault(ctx context.Context, item *models.Vault) error
	GetVault(ctx context.Context, investmentID, version string) (*models.Vault, error)
	GetSettlementAccount(ctx context.Context, address string) (*models.SettlementAccount, error)
	UpsertSettlementAccount(ctx context.Context, item *models.SettlementAccount) error
	ListSettlementAccountsByOwner(ctx context.Context, owner string) ([]models.SettlementAccount, error)

	// Audit trail.
	InsertAuditEvent(ctx context.Context, item *models.AuditEvent) error
	ListAuditEvents(ctx context.Context, params ListAuditEventsParams) ([]models.AuditEvent, error)
	CountAuditEvents(ctx context.Context, params ListAuditEventsParams) (int64, error)
}

type ListInvestmentsParams struct {
	Limit   int
	Offset  int
	State   *string
	Type    *string
	Active  *bool
	OrderBy string
	Asc     *bool
}

type ListRecordsParams struct {
	Limit          int
	Offset         int
	InvestmentID   string
	Version        string
	BatchID        *uint16
	AccountID      *string
	IncludeRevoked bool
	OrderBy        string
	Asc            *bool
}

type ListAuditEventsParams struct {
	Limit        int
	Offset       int
	InvestmentID *string
	Version      *string
	Action       *string
	OrderBy      string
	Asc          *bool
}
