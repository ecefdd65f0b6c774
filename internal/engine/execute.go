package engine

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"vaultshare/internal/models"
	"vaultshare/internal/repository"
	"vaultshare/internal/treasury"
)

// ExecuteProfit settles a cached profit plan. Every precondition is fatal
// and the whole settlement rides one transaction, so either all entries pay
// out and the cache seals, or nothing is committed.
func (e *Engine) ExecuteProfit(ctx context.Context, investmentID, version string, batchID uint16, signers []solana.PublicKey) (*models.ProfitShareCache, error) {
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
		if err := requireQuorum(inv, ExecuteList, signers); err != nil {
			return err
		}

		cache, err := tx.GetProfitCache(ctx, investmentID, version, batchID)
		if err != nil {
			return err
		}
		if cache == nil {
			return ErrCacheNotFound
		}

		now := e.now()
		if err := e.checkExecutable(cache.ExecutedAt, cache.CreatedAt, now, cache.SubtotalUsdt); err != nil {
			return err
		}

		vault, err := mustGetVault(ctx, tx, investmentID, version)
		if err != nil {
			return err
		}
		if vault.UsdtBalance < cache.SubtotalUsdt {
			return ErrInsufficientTokenBalance
		}
		if vault.NativeBalance < cache.GasEstimate {
			return ErrInsufficientGasBalance
		}

		entries, err := ProfitEntriesFromJSON(cache.Entries)
		if err != nil {
			return err
		}

		var totalTransferred uint64
		for _, entry := range entries {
			dest, err := solana.PublicKeyFromBase58(entry.Settlement)
			if err != nil {
				return err
			}
			if err := e.transferToken(ctx, tx, vault, e.assets.PrimaryMint, dest, entry.AmountUsdt); err != nil {
				return err
			}
			var ok bool
			totalTransferred, ok = checkedAdd(totalTransferred, entry.AmountUsdt)
			if !ok {
				return ErrNumericalOverflow
			}
		}
		if totalTransferred != cache.SubtotalUsdt {
			return ErrTotalMismatch
		}

		if err := tx.SaveVault(ctx, vault); err != nil {
			return err
		}
		cache.ExecutedAt = now
		if err := tx.SaveProfitCache(ctx, cache); err != nil {
			return err
		}
		out = cache
		return e.audit(ctx, tx, investmentID, version, ActionExecuteProfit, firstSigner(signers), signers, map[string]any{
			"batch_id":    batchID,
			"entries":     len(entries),
			"transferred": totalTransferred,
		})
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("profit share executed",
		zap.String("investment_id", investmentID),
		zap.Uint16("batch_id", batchID),
		zap.Uint64("transferred_usdt", out.SubtotalUsdt))
	return out, nil
}

// ExecuteRefund settles a cached refund plan for one batch and year.
func (e *Engine) ExecuteRefund(ctx context.Context, investmentID, version string, batchID uint16, yearIndex uint8, signers []solana.PublicKey) (*models.RefundShareCache, error) {
	var out *models.RefundShareCache
	err := e.store.InTx(ctx, func(tx repository.Store) error {
		inv, err := mustGetInvestment(ctx, tx, investmentID, version)
		if err != nil {
			return err
		}
		if err := requireDistributable(inv); err != nil {
			return err
		}
		if err := requireQuorum(inv, ExecuteList, signers); err != nil {
			return err
		}

		cache, err := tx.GetRefundCache(ctx, investmentID, version, batchID, yearIndex)
		if err != nil {
			return err
		}
		if cache == nil {
			return ErrCacheNotFound
		}

		now := e.now()
		if err := e.checkExecutable(cache.ExecutedAt, cache.CreatedAt, now, cache.SubtotalHcoin); err != nil {
			return err
		}

		vault, err := mustGetVault(ctx, tx, investmentID, version)
		if err != nil {
			return err
		}
		if vault.HcoinBalance < cache.SubtotalHcoin {
			return ErrInsufficientTokenBalance
		}
		if vault.NativeBalance < cache.GasEstimate {
			return ErrInsufficientGasBalance
		}

		entries, err := RefundEntriesFromJSON(cache.Entries)
		if err != nil {
			return err
		}

		var totalTransferred uint64
		for _, entry := range entries {
			dest, err := solana.PublicKeyFromBase58(entry.Settlement)
			if err != nil {
				return err
			}
			if err := e.transferToken(ctx, tx, vault, e.assets.SecondaryMint, dest, entry.AmountHcoin); err != nil {
				return err
			}
			var ok bool
			totalTransferred, ok = checkedAdd(totalTransferred, entry.AmountHcoin)
			if !ok {
				return ErrNumericalOverflow
			}
		}
		if totalTransferred != cache.SubtotalHcoin {
			return ErrTotalMismatch
		}

		if err := tx.SaveVault(ctx, vault); err != nil {
			return err
		}
		cache.ExecutedAt = now
		if err := tx.SaveRefundCache(ctx, cache); err != nil {
			return err
		}
		out = cache
		return e.audit(ctx, tx, investmentID, version, ActionExecuteRefund, firstSigner(signers), signers, map[string]any{
			"batch_id":    batchID,
			"year_index":  yearIndex,
			"entries":     len(entries),
			"transferred": totalTransferred,
		})
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("refund share executed",
		zap.String("investment_id", investmentID),
		zap.Uint16("batch_id", batchID),
		zap.Uint8("year_index", yearIndex),
		zap.Uint64("transferred_hcoin", out.SubtotalHcoin))
	return out, nil
}

// checkExecutable applies the shared cache seal, staleness, and non-zero
// subtotal preconditions.
func (e *Engine) checkExecutable(executedAt, createdAt, now int64, subtotal uint64) error {
	if executedAt != 0 {
		return ErrAlreadyExecuted
	}
	if now-createdAt > CacheExpirySecs {
		return ErrCacheExpired
	}
	if subtotal == 0 {
		return ErrZeroSubtotal
	}
	return nil
}

// transferToken delegates to the treasury, translating an unregistered
// settlement account into the engine's own error taxonomy.
func (e *Engine) transferToken(ctx context.Context, tx repository.Store, vault *models.Vault, mint, dest solana.PublicKey, amount uint64) error {
	err := e.treasury.TransferToken(ctx, tx, vault, mint, dest, amount)
	if errors.Is(err, treasury.ErrNoSettlementAccount) {
		return ErrMissingSettlementAccount
	}
	return err
}
