package gormrepository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vaultshare/internal/models"
	"vaultshare/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// --- Investments -------------------------------------------------------------

func (s *Store) CreateInvestment(ctx context.Context, item *models.Investment) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) SaveInvestment(ctx context.Context, item *models.Investment) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) GetInvestment(ctx context.Context, investmentID, version string) (*models.Investment, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Investment
	err := s.db.WithContext(ctx).
		Where("investment_id = ? AND version = ?", investmentID, version).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListInvestments(ctx context.Context, params repository.ListInvestmentsParams) ([]models.Investment, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyInvestmentFilters(s.db.WithContext(ctx).Model(&models.Investment{}), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "created_at")
	var items []models.Investment
	if err := query.Limit(normalizeLimit(params.Limit, 100)).Offset(normalizeOffset(params.Offset)).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountInvestments(ctx context.Context, params repository.ListInvestmentsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var count int64
	err := applyInvestmentFilters(s.db.WithContext(ctx).Model(&models.Investment{}), params).Count(&count).Error
	return count, err
}

func applyInvestmentFilters(query *gorm.DB, params repository.ListInvestmentsParams) *gorm.DB {
	if params.State != nil && strings.TrimSpace(*params.State) != "" {
		query = query.Where("state = ?", strings.TrimSpace(*params.State))
	}
	if params.Type != nil && strings.TrimSpace(*params.Type) != "" {
		query = query.Where("type = ?", strings.TrimSpace(*params.Type))
	}
	if params.Active != nil {
		query = query.Where("active = ?", *params.Active)
	}
	return query
}

// --- Contribution records -----------------------------------------------------

func (s *Store) CreateRecord(ctx context.Context, item *models.InvestmentRecord) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) SaveRecord(ctx context.Context, item *models.InvestmentRecord) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) GetRecord(ctx context.Context, investmentID, version string, recordID uint64, accountID string) (*models.InvestmentRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.InvestmentRecord
	err := s.db.WithContext(ctx).
		Where("investment_id = ? AND version = ? AND record_id = ? AND account_id = ?", investmentID, version, recordID, accountID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListRecords(ctx context.Context, params repository.ListRecordsParams) ([]models.InvestmentRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyRecordFilters(s.db.WithContext(ctx).Model(&models.InvestmentRecord{}), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "record_id")
	var items []models.InvestmentRecord
	if err := query.Limit(normalizeLimit(params.Limit, 200)).Offset(normalizeOffset(params.Offset)).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountRecords(ctx context.Context, params repository.ListRecordsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var count int64
	err := applyRecordFilters(s.db.WithContext(ctx).Model(&models.InvestmentRecord{}), params).Count(&count).Error
	return count, err
}

func applyRecordFilters(query *gorm.DB, params repository.ListRecordsParams) *gorm.DB {
	query = query.Where("investment_id = ? AND version = ?", params.InvestmentID, params.Version)
	if params.BatchID != nil {
		query = query.Where("batch_id = ?", *params.BatchID)
	}
	if params.AccountID != nil && strings.TrimSpace(*params.AccountID) != "" {
		query = query.Where("account_id = ?", strings.TrimSpace(*params.AccountID))
	}
	if !params.IncludeRevoked {
		query = query.Where("revoked_at = 0")
	}
	return query
}

func (s *Store) ListRecordsByRecordIDs(ctx context.Context, investmentID, version string, recordIDs []uint64) ([]models.InvestmentRecord, error) {
	if s == nil || s.db == nil || len(recordIDs) == 0 {
		return nil, nil
	}
	var items []models.InvestmentRecord
	err := s.db.WithContext(ctx).
		Where("investment_id = ? AND version = ?", investmentID, version).
		Where("record_id IN ?", recordIDs).
		Order("record_id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// --- Distribution caches ------------------------------------------------------

func (s *Store) UpsertProfitCache(ctx context.Context, item *models.ProfitShareCache) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "investment_id"}, {Name: "version"}, {Name: "batch_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"subtotal_usdt",
			"gas_estimate",
			"executed_at",
			"created_at",
			"entries",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) SaveProfitCache(ctx context.Context, item *models.ProfitShareCache) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) GetProfitCache(ctx context.Context, investmentID, version string, batchID uint16) (*models.ProfitShareCache, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.ProfitShareCache
	err := s.db.WithContext(ctx).
		Where("investment_id = ? AND version = ? AND batch_id = ?", investmentID, version, batchID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListProfitCaches(ctx context.Context, investmentID, version string) ([]models.ProfitShareCache, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.ProfitShareCache
	err := s.db.WithContext(ctx).
		Where("investment_id = ? AND version = ?", investmentID, version).
		Order("batch_id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpsertRefundCache(ctx context.Context, item *models.RefundShareCache) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "investment_id"}, {Name: "version"}, {Name: "batch_id"}, {Name: "year_index"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"subtotal_hcoin",
			"gas_estimate",
			"executed_at",
			"created_at",
			"entries",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) SaveRefundCache(ctx context.Context, item *models.RefundShareCache) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) GetRefundCache(ctx context.Context, investmentID, version string, batchID uint16, yearIndex uint8) (*models.RefundShareCache, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.RefundShareCache
	err := s.db.WithContext(ctx).
		Where("investment_id = ? AND version = ? AND batch_id = ? AND year_index = ?", investmentID, version, batchID, yearIndex).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListRefundCaches(ctx context.Context, investmentID, version string) ([]models.RefundShareCache, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.RefundShareCache
	err := s.db.WithContext(ctx).
		Where("investment_id = ? AND version = ?", investmentID, version).
		Order("batch_id asc, year_index asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) DeleteExpiredCaches(ctx context.Context, createdBefore int64) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	profit := s.db.WithContext(ctx).
		Where("executed_at = 0").
		Where("created_at < ?", createdBefore).
		Delete(&models.ProfitShareCache{})
	if profit.Error != nil {
		return 0, profit.Error
	}
	refund := s.db.WithContext(ctx).
		Where("executed_at = 0").
		Where("created_at < ?", createdBefore).
		Delete(&models.RefundShareCache{})
	if refund.Error != nil {
		return profit.RowsAffected, refund.Error
	}
	return profit.RowsAffected + refund.RowsAffected, nil
}

// --- Vault custody -------------------------------------------------------------

func (s *Store) CreateVault(ctx context.Context, item *models.Vault) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) SaveVault(ctx context.Context, item *models.Vault) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) GetVault(ctx context.Context, investmentID, version string) (*models.Vault, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Vault
	err := s.db.WithContext(ctx).
		Where("investment_id = ? AND version = ?", investmentID, version).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetSettlementAccount(ctx context.Context, address string) (*models.SettlementAccount, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.SettlementAccount
	err := s.db.WithContext(ctx).
		Where("address = ?", address).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpsertSettlementAccount(ctx context.Context, item *models.SettlementAccount) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"balance",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) ListSettlementAccountsByOwner(ctx context.Context, owner string) ([]models.SettlementAccount, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.SettlementAccount
	err := s.db.WithContext(ctx).
		Where("owner = ?", owner).
		Order("address asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// --- Audit trail ---------------------------------------------------------------

func (s *Store) InsertAuditEvent(ctx context.Context, item *models.AuditEvent) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListAuditEvents(ctx context.Context, params repository.ListAuditEventsParams) ([]models.AuditEvent, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyAuditFilters(s.db.WithContext(ctx).Model(&models.AuditEvent{}), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "created_at")
	var items []models.AuditEvent
	if err := query.Limit(normalizeLimit(params.Limit, 200)).Offset(normalizeOffset(params.Offset)).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountAuditEvents(ctx context.Context, params repository.ListAuditEventsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var count int64
	err := applyAuditFilters(s.db.WithContext(ctx).Model(&models.AuditEvent{}), params).Count(&count).Error
	return count, err
}

func applyAuditFilters(query *gorm.DB, params repository.ListAuditEventsParams) *gorm.DB {
	if params.InvestmentID != nil && strings.TrimSpace(*params.InvestmentID) != "" {
		query = query.Where("investment_id = ?", strings.TrimSpace(*params.InvestmentID))
	}
	if params.Version != nil && strings.TrimSpace(*params.Version) != "" {
		query = query.Where("version = ?", strings.TrimSpace(*params.Version))
	}
	if params.Action != nil && strings.TrimSpace(*params.Action) != "" {
		query = query.Where("action = ?", strings.TrimSpace(*params.Action))
	}
	return query
}

// --- Helpers --------------------------------------------------------------------

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

var orderableColumns = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"record_id":     true,
	"batch_id":      true,
	"investment_id": true,
	"action":        true,
	"state":         true,
}

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(strings.ToLower(orderBy))
	if !orderableColumns[column] {
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}
