package engine

import (
	"context"
	"math"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"vaultshare/internal/models"
	"vaultshare/internal/repository"
)

// loadCandidates resolves a caller-supplied record id set into payable
// records: duplicates in the request are rejected outright, revoked records
// and records from other batches are silently dropped, and the survivors must
// be a non-empty set within the batch cap. Two surviving rows sharing one
// record id (possible under different account ids) would double-pay that id,
// so that is rejected too.
func loadCandidates(ctx context.Context, tx repository.Store, investmentID, version string, batchID uint16, recordIDs []uint64) ([]models.InvestmentRecord, error) {
	if len(recordIDs) == 0 {
		return nil, ErrNoRecords
	}
	if len(recordIDs) > MaxEntriesPerBatch {
		return nil, ErrTooManyRecords
	}
	seen := make(map[uint64]bool, len(recordIDs))
	for _, id := range recordIDs {
		if seen[id] {
			return nil, ErrDuplicateRecord
		}
		seen[id] = true
	}

	records, err := tx.ListRecordsByRecordIDs(ctx, investmentID, version, recordIDs)
	if err != nil {
		return nil, err
	}

	payable := records[:0]
	paid := make(map[uint64]bool, len(records))
	for _, rec := range records {
		if rec.RevokedAt != 0 || rec.BatchID != batchID {
			continue
		}
		if paid[rec.RecordID] {
			return nil, ErrDuplicateRecord
		}
		paid[rec.RecordID] = true
		payable = append(payable, rec)
	}
	if len(payable) == 0 {
		return nil, ErrNoRecords
	}
	return payable, nil
}

// EstimateProfit computes and caches a profit payout plan for one batch.
// Each record's share is its contribution expressed in basis points of the
// total invested amount, applied to the distributed profit. Standard
// investments only.
func (e *Engine) EstimateProfit(ctx context.Context, investmentID, version string, batchID uint16, totalProfit, totalInvested uint64, recordIDs []uint64, signer solana.PublicKey) (*models.ProfitShareCache, error) {
	if totalInvested == 0 {
		return nil, ErrZeroTotalInvested
	}

	var out *models.ProfitShareCache
	err := e.store.InTx(ctx, func(tx repository.Store) error {
		inv, err := mustGetInvestment(ctx, tx, investmentID, version)
		if err != nil {
			return err
		}
		if err := requireDistributable(inv); err != nil {
			return err
		}
		if inv.Type != models.InvestmentTypeStandard {
			return ErrStandardOnly
		}
		if err := requireEstimator(inv, signer); err != nil {
			return err
		}

		records, err := loadCandidates(ctx, tx, investmentID, version, batchID, recordIDs)
		if err != nil {
			return err
		}

		entries := make([]ProfitEntry, 0, len(records))
		var subtotal uint64
		for _, rec := range records {
			ratioBp := saturatingMul(rec.AmountUsdt, BasisPointScale) / totalInvested
			if ratioBp > math.MaxUint16 {
				return ErrRatioOverflow
			}
			payout := saturatingMul(totalProfit, ratioBp) / BasisPointScale

			wallet, err := solana.PublicKeyFromBase58(rec.Wallet)
			if err != nil {
				return err
			}
			settlement, err := DeriveSettlementAddress(wallet, e.assets.PrimaryMint)
			if err != nil {
				return err
			}

			var ok bool
			subtotal, ok = checkedAdd(subtotal, payout)
			if !ok {
				return ErrNumericalOverflow
			}
			entries = append(entries, ProfitEntry{
				RecordID:   rec.RecordID,
				AccountID:  rec.AccountID,
				Wallet:     rec.Wallet,
				Settlement: settlement.String(),
				AmountUsdt: payout,
				RatioBp:    uint16(ratioBp),
			})
		}

		existing, err := tx.GetProfitCache(ctx, investmentID, version, batchID)
		if err != nil {
			return err
		}
		if existing != nil && existing.ExecutedAt != 0 {
			return ErrAlreadyExecuted
		}

		cache := &models.ProfitShareCache{
			InvestmentID: investmentID,
			Version:      version,
			BatchID:      batchID,
			SubtotalUsdt: subtotal,
			GasEstimate:  GasBase + uint64(len(entries))*GasPerEntry,
			ExecutedAt:   0,
			CreatedAt:    e.now(),
			Entries:      entriesToJSON(entries),
		}
		if err := tx.UpsertProfitCache(ctx, cache); err != nil {
			return err
		}
		out = cache
		return e.audit(ctx, tx, investmentID, version, ActionEstimateProfit, signer, nil, map[string]any{
			"batch_id": batchID,
			"entries":  len(entries),
			"subtotal": subtotal,
		})
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("profit share estimated",
		zap.String("investment_id", investmentID),
		zap.Uint16("batch_id", batchID),
		zap.Uint64("subtotal_usdt", out.SubtotalUsdt))
	return out, nil
}

// EstimateRefund computes and caches a refund payout plan for one batch and
// payout year. Each record gets the scheduled percentage of its token
// contribution for its stage.
func (e *Engine) EstimateRefund(ctx context.Context, investmentID, version string, batchID uint16, yearIndex uint8, recordIDs []uint64, signer solana.PublicKey) (*models.RefundShareCache, error) {
	if yearIndex < StartYearIndex || yearIndex > MaxYearIndex {
		return nil, ErrRefundPeriodInvalid
	}

	var out *models.RefundShareCache
	err := e.store.InTx(ctx, func(tx repository.Store) error {
		inv, err := mustGetInvestment(ctx, tx, investmentID, version)
		if err != nil {
			return err
		}
		if err := requireDistributable(inv); err != nil {
			return err
		}
		if err := requireEstimator(inv, signer); err != nil {
			return err
		}

		// Year percentages unlock one at a time as full years elapse after
		// the investment's end.
		now := e.now()
		if now < inv.EndAt || int64(yearIndex) > (now-inv.EndAt)/secondsPerYear {
			return ErrRefundPeriodInvalid
		}

		schedule, err := ScheduleFromJSON(inv.StageSchedule)
		if err != nil {
			return err
		}

		records, err := loadCandidates(ctx, tx, investmentID, version, batchID, recordIDs)
		if err != nil {
			return err
		}

		entries := make([]RefundEntry, 0, len(records))
		var subtotal uint64
		for _, rec := range records {
			pct := schedule.RefundPercentage(rec.Stage, yearIndex)
			payout := saturatingMul(rec.AmountHcoin, uint64(pct)) / 100

			wallet, err := solana.PublicKeyFromBase58(rec.Wallet)
			if err != nil {
				return err
			}
			settlement, err := DeriveSettlementAddress(wallet, e.assets.SecondaryMint)
			if err != nil {
				return err
			}

			var ok bool
			subtotal, ok = checkedAdd(subtotal, payout)
			if !ok {
				return ErrNumericalOverflow
			}
			entries = append(entries, RefundEntry{
				RecordID:    rec.RecordID,
				AccountID:   rec.AccountID,
				Wallet:      rec.Wallet,
				Settlement:  settlement.String(),
				AmountHcoin: payout,
				Stage:       rec.Stage,
			})
		}

		existing, err := tx.GetRefundCache(ctx, investmentID, version, batchID, yearIndex)
		if err != nil {
			return err
		}
		if existing != nil && existing.ExecutedAt != 0 {
			return ErrAlreadyExecuted
		}

		cache := &models.RefundShareCache{
			InvestmentID:  investmentID,
			Version:       version,
			BatchID:       batchID,
			YearIndex:     yearIndex,
			SubtotalHcoin: subtotal,
			GasEstimate:   GasBase + uint64(len(entries))*GasPerEntry,
			ExecutedAt:    0,
			CreatedAt:     now,
			Entries:       entriesToJSON(entries),
		}
		if err := tx.UpsertRefundCache(ctx, cache); err != nil {
			return err
		}
		out = cache
		return e.audit(ctx, tx, investmentID, version, ActionEstimateRefund, signer, nil, map[string]any{
			"batch_id":   batchID,
			"year_index": yearIndex,
			"entries":    len(entries),
			"subtotal":   subtotal,
		})
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("refund share estimated",
		zap.String("investment_id", investmentID),
		zap.Uint16("batch_id", batchID),
		zap.Uint8("year_index", yearIndex),
		zap.Uint64("subtotal_hcoin", out.SubtotalHcoin))
	return out, nil
}
