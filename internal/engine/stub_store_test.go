package engine

import (
	"context"
	"fmt"
	"sort"

	"vaultshare/internal/models"
	"vaultshare/internal/repository"
)

// stubStore is a test-only in-memory implementation of repository.Store.
// InTx snapshots all state before the callback and restores it on error, so
// engine tests can assert the all-or-nothing behavior the real transaction
// provides.
type stubStore struct {
	investments  map[string]models.Investment
	records      map[string]models.InvestmentRecord
	profitCaches map[string]models.ProfitShareCache
	refundCaches map[string]models.RefundShareCache
	vaults       map[string]models.Vault
	settlements  map[string]models.SettlementAccount
	audits       []models.AuditEvent
}

func newStubStore() *stubStore {
	return &stubStore{
		investments:  map[string]models.Investment{},
		records:      map[string]models.InvestmentRecord{},
		profitCaches: map[string]models.ProfitShareCache{},
		refundCaches: map[string]models.RefundShareCache{},
		vaults:       map[string]models.Vault{},
		settlements:  map[string]models.SettlementAccount{},
	}
}

func invKey(id, ver string) string { return id + "|" + ver }

func recKey(id, ver string, recordID uint64, accountID string) string {
	return fmt.Sprintf("%s|%s|%d|%s", id, ver, recordID, accountID)
}

func profitKey(id, ver string, batch uint16) string {
	return fmt.Sprintf("%s|%s|%d", id, ver, batch)
}

func refundKey(id, ver string, batch uint16, year uint8) string {
	return fmt.Sprintf("%s|%s|%d|%d", id, ver, batch, year)
}

func (s *stubStore) snapshot() *stubStore {
	c := newStubStore()
	for k, v := range s.investments {
		c.investments[k] = v
	}
	for k, v := range s.records {
		c.records[k] = v
	}
	for k, v := range s.profitCaches {
		c.profitCaches[k] = v
	}
	for k, v := range s.refundCaches {
		c.refundCaches[k] = v
	}
	for k, v := range s.vaults {
		c.vaults[k] = v
	}
	for k, v := range s.settlements {
		c.settlements[k] = v
	}
	c.audits = append(c.audits, s.audits...)
	return c
}

func (s *stubStore) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	saved := s.snapshot()
	if err := fn(s); err != nil {
		*s = *saved
		return err
	}
	return nil
}

func (s *stubStore) CreateInvestment(ctx context.Context, item *models.Investment) error {
	s.investments[invKey(item.InvestmentID, item.Version)] = *item
	return nil
}

func (s *stubStore) SaveInvestment(ctx context.Context, item *models.Investment) error {
	s.investments[invKey(item.InvestmentID, item.Version)] = *item
	return nil
}

func (s *stubStore) GetInvestment(ctx context.Context, id, ver string) (*models.Investment, error) {
	if item, ok := s.investments[invKey(id, ver)]; ok {
		out := item
		return &out, nil
	}
	return nil, nil
}

func (s *stubStore) ListInvestments(ctx context.Context, params repository.ListInvestmentsParams) ([]models.Investment, error) {
	var items []models.Investment
	for _, v := range s.investments {
		items = append(items, v)
	}
	return items, nil
}

func (s *stubStore) CountInvestments(ctx context.Context, params repository.ListInvestmentsParams) (int64, error) {
	return int64(len(s.investments)), nil
}

func (s *stubStore) CreateRecord(ctx context.Context, item *models.InvestmentRecord) error {
	s.records[recKey(item.InvestmentID, item.Version, item.RecordID, item.AccountID)] = *item
	return nil
}

func (s *stubStore) SaveRecord(ctx context.Context, item *models.InvestmentRecord) error {
	s.records[recKey(item.InvestmentID, item.Version, item.RecordID, item.AccountID)] = *item
	return nil
}

func (s *stubStore) GetRecord(ctx context.Context, id, ver string, recordID uint64, accountID string) (*models.InvestmentRecord, error) {
	if item, ok := s.records[recKey(id, ver, recordID, accountID)]; ok {
		out := item
		return &out, nil
	}
	return nil, nil
}

func (s *stubStore) ListRecords(ctx context.Context, params repository.ListRecordsParams) ([]models.InvestmentRecord, error) {
	var items []models.InvestmentRecord
	for _, v := range s.records {
		if v.InvestmentID != params.InvestmentID || v.Version != params.Version {
			continue
		}
		if !params.IncludeRevoked && v.RevokedAt != 0 {
			continue
		}
		items = append(items, v)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].RecordID < items[j].RecordID })
	return items, nil
}

func (s *stubStore) CountRecords(ctx context.Context, params repository.ListRecordsParams) (int64, error) {
	items, _ := s.ListRecords(ctx, params)
	return int64(len(items)), nil
}

func (s *stubStore) ListRecordsByRecordIDs(ctx context.Context, id, ver string, recordIDs []uint64) ([]models.InvestmentRecord, error) {
	want := map[uint64]bool{}
	for _, rid := range recordIDs {
		want[rid] = true
	}
	var items []models.InvestmentRecord
	for _, v := range s.records {
		if v.InvestmentID == id && v.Version == ver && want[v.RecordID] {
			items = append(items, v)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].RecordID < items[j].RecordID })
	return items, nil
}

func (s *stubStore) UpsertProfitCache(ctx context.Context, item *models.ProfitShareCache) error {
	s.profitCaches[profitKey(item.InvestmentID, item.Version, item.BatchID)] = *item
	return nil
}

func (s *stubStore) SaveProfitCache(ctx context.Context, item *models.ProfitShareCache) error {
	return s.UpsertProfitCache(ctx, item)
}

func (s *stubStore) GetProfitCache(ctx context.Context, id, ver string, batch uint16) (*models.ProfitShareCache, error) {
	if item, ok := s.profitCaches[profitKey(id, ver, batch)]; ok {
		out := item
		return &out, nil
	}
	return nil, nil
}

func (s *stubStore) ListProfitCaches(ctx context.Context, id, ver string) ([]models.ProfitShareCache, error) {
	var items []models.ProfitShareCache
	for _, v := range s.profitCaches {
		if v.InvestmentID == id && v.Version == ver {
			items = append(items, v)
		}
	}
	return items, nil
}

func (s *stubStore) UpsertRefundCache(ctx context.Context, item *models.RefundShareCache) error {
	s.refundCaches[refundKey(item.InvestmentID, item.Version, item.BatchID, item.YearIndex)] = *item
	return nil
}

func (s *stubStore) SaveRefundCache(ctx context.Context, item *models.RefundShareCache) error {
	return s.UpsertRefundCache(ctx, item)
}

func (s *stubStore) GetRefundCache(ctx context.Context, id, ver string, batch uint16, year uint8) (*models.RefundShareCache, error) {
	if item, ok := s.refundCaches[refundKey(id, ver, batch, year)]; ok {
		out := item
		return &out, nil
	}
	return nil, nil
}

func (s *stubStore) ListRefundCaches(ctx context.Context, id, ver string) ([]models.RefundShareCache, error) {
	var items []models.RefundShareCache
	for _, v := range s.refundCaches {
		if v.InvestmentID == id && v.Version == ver {
			items = append(items, v)
		}
	}
	return items, nil
}

func (s *stubStore) DeleteExpiredCaches(ctx context.Context, createdBefore int64) (int64, error) {
	var deleted int64
	for k, v := range s.profitCaches {
		if v.ExecutedAt == 0 && v.CreatedAt < createdBefore {
			delete(s.profitCaches, k)
			deleted++
		}
	}
	for k, v := range s.refundCaches {
		if v.ExecutedAt == 0 && v.CreatedAt < createdBefore {
			delete(s.refundCaches, k)
			deleted++
		}
	}
	return deleted, nil
}

func (s *stubStore) CreateVault(ctx context.Context, item *models.Vault) error {
	s.vaults[invKey(item.InvestmentID, item.Version)] = *item
	return nil
}

func (s *stubStore) SaveVault(ctx context.Context, item *models.Vault) error {
	s.vaults[invKey(item.InvestmentID, item.Version)] = *item
	return nil
}

func (s *stubStore) GetVault(ctx context.Context, id, ver string) (*models.Vault, error) {
	if item, ok := s.vaults[invKey(id, ver)]; ok {
		out := item
		return &out, nil
	}
	return nil, nil
}

func (s *stubStore) GetSettlementAccount(ctx context.Context, address string) (*models.SettlementAccount, error) {
	if item, ok := s.settlements[address]; ok {
		out := item
		return &out, nil
	}
	return nil, nil
}

func (s *stubStore) UpsertSettlementAccount(ctx context.Context, item *models.SettlementAccount) error {
	s.settlements[item.Address] = *item
	return nil
}

func (s *stubStore) ListSettlementAccountsByOwner(ctx context.Context, owner string) ([]models.SettlementAccount, error) {
	var items []models.SettlementAccount
	for _, v := range s.settlements {
		if v.Owner == owner {
			items = append(items, v)
		}
	}
	return items, nil
}

func (s *stubStore) InsertAuditEvent(ctx context.Context, item *models.AuditEvent) error {
	s.audits = append(s.audits, *item)
	return nil
}

func (s *stubStore) ListAuditEvents(ctx context.Context, params repository.ListAuditEventsParams) ([]models.AuditEvent, error) {
	return s.audits, nil
}

func (s *stubStore) CountAuditEvents(ctx context.Context, params repository.ListAuditEventsParams) (int64, error) {
	return int64(len(s.audits)), nil
}

var _ repository.Store = (*stubStore)(nil)
