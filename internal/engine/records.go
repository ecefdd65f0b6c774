package engine

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"vaultshare/internal/models"
	"vaultshare/internal/repository"
)

// AddRecordParams describes one contribution to append.
type AddRecordParams struct {
	InvestmentID string
	Version      string
	BatchID      uint16
	RecordID     uint64
	AccountID    string
	Wallet       solana.PublicKey
	AmountUsdt   uint64
	AmountHcoin  uint64
	Stage        uint8
	Signers      []solana.PublicKey
}

// AddRecord appends a contribution record under update-list quorum. Records
// may only be added while the investment is still pending; completion freezes
// the ledger.
func (e *Engine) AddRecord(ctx context.Context, params AddRecordParams) (*models.InvestmentRecord, error) {
	if len(params.AccountID) != AccountIDLength {
		return nil, ErrInvalidAccountIDLength
	}
	if params.Stage < 1 || params.Stage > MaxStage {
		return nil, ErrInvalidStage
	}

	rec := &models.InvestmentRecord{
		InvestmentID: params.InvestmentID,
		Version:      params.Version,
		BatchID:      params.BatchID,
		RecordID:     params.RecordID,
		AccountID:    params.AccountID,
		Wallet:       params.Wallet.String(),
		AmountUsdt:   params.AmountUsdt,
		AmountHcoin:  params.AmountHcoin,
		Stage:        params.Stage,
	}

	err := e.store.InTx(ctx, func(tx repository.Store) error {
		inv, err := mustGetInvestment(ctx, tx, params.InvestmentID, params.Version)
		if err != nil {
			return err
		}
		if err := requireMutable(inv); err != nil {
			return err
		}
		if inv.State == models.InvestmentStateCompleted {
			return ErrInvestmentCompleted
		}
		if err := requireQuorum(inv, UpdateList, params.Signers); err != nil {
			return err
		}

		existing, err := tx.GetRecord(ctx, params.InvestmentID, params.Version, params.RecordID, params.AccountID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrRecordExists
		}
		if err := tx.CreateRecord(ctx, rec); err != nil {
			return err
		}
		return e.audit(ctx, tx, params.InvestmentID, params.Version, ActionAddRecord, firstSigner(params.Signers), params.Signers, map[string]any{
			"batch_id":   params.BatchID,
			"record_id":  params.RecordID,
			"account_id": params.AccountID,
		})
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("record added",
		zap.String("investment_id", params.InvestmentID),
		zap.Uint64("record_id", params.RecordID),
		zap.Uint16("batch_id", params.BatchID))
	return rec, nil
}

// RebindWallet points every record of an account at a new wallet. It scans a
// caller-supplied candidate set, skips records whose account does not match
// or whose wallet already equals the target, and fails if nothing changed.
func (e *Engine) RebindWallet(ctx context.Context, investmentID, version, accountID string, newWallet solana.PublicKey, candidateRecordIDs []uint64, signers []solana.PublicKey) (int, error) {
	if len(accountID) != AccountIDLength {
		return 0, ErrInvalidAccountIDLength
	}

	updated := 0
	err := e.store.InTx(ctx, func(tx repository.Store) error {
		inv, err := mustGetInvestment(ctx, tx, investmentID, version)
		if err != nil {
			return err
		}
		if err := requireMutable(inv); err != nil {
			return err
		}
		if err := requireQuorum(inv, UpdateList, signers); err != nil {
			return err
		}

		records, err := tx.ListRecordsByRecordIDs(ctx, investmentID, version, candidateRecordIDs)
		if err != nil {
			return err
		}
		for i := range records {
			rec := &records[i]
			if rec.AccountID != accountID || rec.Wallet == newWallet.String() {
				continue
			}
			rec.Wallet = newWallet.String()
			if err := tx.SaveRecord(ctx, rec); err != nil {
				return err
			}
			updated++
		}
		if updated == 0 {
			return ErrNoRecordsUpdated
		}
		return e.audit(ctx, tx, investmentID, version, ActionRebindWallet, firstSigner(signers), signers, map[string]any{
			"account_id": accountID,
			"wallet":     newWallet.String(),
			"updated":    updated,
		})
	})
	if err != nil {
		return 0, err
	}

	e.log.Info("wallet rebound",
		zap.String("investment_id", investmentID),
		zap.String("account_id", accountID),
		zap.Int("updated", updated))
	return updated, nil
}

// RevokeRecord marks one record revoked. One-way: revoked records never
// rejoin estimates.
func (e *Engine) RevokeRecord(ctx context.Context, investmentID, version string, batchID uint16, recordID uint64, accountID string, signers []solana.PublicKey) error {
	err := e.store.InTx(ctx, func(tx repository.Store) error {
		inv, err := mustGetInvestment(ctx, tx, investmentID, version)
		if err != nil {
			return err
		}
		if err := requireMutable(inv); err != nil {
			return err
		}
		if err := requireQuorum(inv, UpdateList, signers); err != nil {
			return err
		}

		rec, err := tx.GetRecord(ctx, investmentID, version, recordID, accountID)
		if err != nil {
			return err
		}
		if rec == nil || rec.BatchID != batchID {
			return ErrRecordNotFound
		}
		if rec.RevokedAt != 0 {
			return ErrRecordRevoked
		}
		rec.RevokedAt = e.now()
		if err := tx.SaveRecord(ctx, rec); err != nil {
			return err
		}
		return e.audit(ctx, tx, investmentID, version, ActionRevokeRecord, firstSigner(signers), signers, map[string]any{
			"batch_id":   batchID,
			"record_id":  recordID,
			"account_id": accountID,
		})
	})
	if err != nil {
		return err
	}

	e.log.Info("record revoked",
		zap.String("investment_id", investmentID),
		zap.Uint64("record_id", recordID))
	return nil
}
