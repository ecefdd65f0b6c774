package engine

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"vaultshare/internal/models"
	"vaultshare/internal/repository"
)

// DepositNative credits the vault's native balance. Deposits are open: any
// caller may fund a completed, active investment.
func (e *Engine) DepositNative(ctx context.Context, investmentID, version string, amount uint64, payer solana.PublicKey) (*models.Vault, error) {
	var out *models.Vault
	err := e.store.InTx(ctx, func(tx repository.Store) error {
		inv, err := mustGetInvestment(ctx, tx, investmentID, version)
		if err != nil {
			return err
		}
		if err := requireDistributable(inv); err != nil {
			return err
		}

		vault, err := mustGetVault(ctx, tx, investmentID, version)
		if err != nil {
			return err
		}
		balance, ok := checkedAdd(vault.NativeBalance, amount)
		if !ok {
			return ErrNumericalOverflow
		}
		vault.NativeBalance = balance
		if err := tx.SaveVault(ctx, vault); err != nil {
			return err
		}
		out = vault
		return e.audit(ctx, tx, investmentID, version, ActionDepositNative, payer, nil, map[string]any{
			"amount": amount,
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DepositToken credits one of the vault's token balances, selected by mint.
func (e *Engine) DepositToken(ctx context.Context, investmentID, version string, mint solana.PublicKey, amount uint64, payer solana.PublicKey) (*models.Vault, error) {
	var out *models.Vault
	err := e.store.InTx(ctx, func(tx repository.Store) error {
		inv, err := mustGetInvestment(ctx, tx, investmentID, version)
		if err != nil {
			return err
		}
		if err := requireDistributable(inv); err != nil {
			return err
		}

		vault, err := mustGetVault(ctx, tx, investmentID, version)
		if err != nil {
			return err
		}
		switch {
		case mint.Equals(e.assets.PrimaryMint):
			balance, ok := checkedAdd(vault.UsdtBalance, amount)
			if !ok {
				return ErrNumericalOverflow
			}
			vault.UsdtBalance = balance
		case mint.Equals(e.assets.SecondaryMint):
			balance, ok := checkedAdd(vault.HcoinBalance, amount)
			if !ok {
				return ErrNumericalOverflow
			}
			vault.HcoinBalance = balance
		default:
			return ErrInvalidMint
		}
		if err := tx.SaveVault(ctx, vault); err != nil {
			return err
		}
		out = vault
		return e.audit(ctx, tx, investmentID, version, ActionDepositToken, payer, nil, map[string]any{
			"mint":   mint.String(),
			"amount": amount,
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WithdrawResult reports what one withdraw moved, per asset.
type WithdrawResult struct {
	Usdt   uint64 `json:"usdt"`
	Hcoin  uint64 `json:"hcoin"`
	Native uint64 `json:"native"`
}

// Withdraw drains the vault to a whitelisted recipient: full token balances
// (zero balances skipped), then whatever native remains above the rent floor
// and a reserve for one more execution's gas.
func (e *Engine) Withdraw(ctx context.Context, investmentID, version string, recipient solana.PublicKey, signers []solana.PublicKey) (*WithdrawResult, error) {
	var out *WithdrawResult
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

		withdrawList, err := KeysFromJSON(inv.WithdrawWhitelist)
		if err != nil {
			return err
		}
		if !containsKey(withdrawList, recipient) {
			return ErrUnauthorizedRecipient
		}

		vault, err := mustGetVault(ctx, tx, investmentID, version)
		if err != nil {
			return err
		}

		result := WithdrawResult{}

		if usdt := vault.UsdtBalance; usdt > 0 {
			dest, err := DeriveSettlementAddress(recipient, e.assets.PrimaryMint)
			if err != nil {
				return err
			}
			if err := e.transferToken(ctx, tx, vault, e.assets.PrimaryMint, dest, usdt); err != nil {
				return err
			}
			result.Usdt = usdt
		}
		if hcoin := vault.HcoinBalance; hcoin > 0 {
			dest, err := DeriveSettlementAddress(recipient, e.assets.SecondaryMint)
			if err != nil {
				return err
			}
			if err := e.transferToken(ctx, tx, vault, e.assets.SecondaryMint, dest, hcoin); err != nil {
				return err
			}
			result.Hcoin = hcoin
		}

		// Leave the rent floor plus one execution's worth of gas behind so
		// the vault can still settle after the sweep.
		withdrawable := saturatingSub(vault.NativeBalance, e.rentFloor)
		withdrawable = saturatingSub(withdrawable, GasBase)
		withdrawable = saturatingSub(withdrawable, GasPerEntry)
		if withdrawable > 0 {
			if err := e.treasury.TransferNative(ctx, tx, vault, recipient, withdrawable); err != nil {
				return err
			}
			result.Native = withdrawable
		}

		if err := tx.SaveVault(ctx, vault); err != nil {
			return err
		}
		out = &result
		return e.audit(ctx, tx, investmentID, version, ActionWithdraw, firstSigner(signers), signers, map[string]any{
			"recipient": recipient.String(),
			"usdt":      result.Usdt,
			"hcoin":     result.Hcoin,
			"native":    result.Native,
		})
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("vault withdrawn",
		zap.String("investment_id", investmentID),
		zap.String("recipient", recipient.String()),
		zap.Uint64("usdt", out.Usdt),
		zap.Uint64("hcoin", out.Hcoin),
		zap.Uint64("native", out.Native))
	return out, nil
}

// RegisterSettlementAccount creates (or returns) the settlement account a
// wallet receives a mint at. Execution fails on unregistered recipients, so
// operators register accounts ahead of the payout run.
func (e *Engine) RegisterSettlementAccount(ctx context.Context, owner, mint solana.PublicKey) (*models.SettlementAccount, error) {
	if !mint.Equals(e.assets.PrimaryMint) && !mint.Equals(e.assets.SecondaryMint) {
		return nil, ErrInvalidMint
	}
	address, err := DeriveSettlementAddress(owner, mint)
	if err != nil {
		return nil, err
	}

	var out *models.SettlementAccount
	err = e.store.InTx(ctx, func(tx repository.Store) error {
		existing, err := tx.GetSettlementAccount(ctx, address.String())
		if err != nil {
			return err
		}
		if existing != nil {
			out = existing
			return nil
		}
		acct := &models.SettlementAccount{
			Address: address.String(),
			Owner:   owner.String(),
			Mint:    mint.String(),
		}
		if err := tx.UpsertSettlementAccount(ctx, acct); err != nil {
			return err
		}
		out = acct
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
