package treasury

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"

	"vaultshare/internal/models"
	"vaultshare/internal/repository"
)

// Errors surfaced by the ledger. The engine checks balances before it starts
// transferring, so hitting one of these mid-batch aborts the transaction.
var (
	ErrUnknownMint            = errors.New("unknown mint")
	ErrVaultBalanceExhausted  = errors.New("vault balance exhausted")
	ErrNoSettlementAccount    = errors.New("settlement account not registered")
	ErrSettlementMintMismatch = errors.New("settlement account mint mismatch")
)

// Transferrer moves value out of a vault. Implementations run inside the
// caller's transaction: the store they receive is already bound to it, and
// mutations to the vault are flushed by the caller after the batch.
type Transferrer interface {
	// TransferToken debits amount of mint from the vault and credits the
	// recipient's settlement account for that mint.
	TransferToken(ctx context.Context, store repository.Store, vault *models.Vault, mint, dest solana.PublicKey, amount uint64) error

	// TransferNative debits amount of the native asset from the vault and
	// credits the recipient wallet directly.
	TransferNative(ctx context.Context, store repository.Store, vault *models.Vault, dest solana.PublicKey, amount uint64) error
}

// Ledger is the book-entry Transferrer: balances live in the vaults and
// settlement_accounts tables and move atomically with the rest of the
// operation.
type Ledger struct {
	PrimaryMint   solana.PublicKey
	SecondaryMint solana.PublicKey
}

func NewLedger(primaryMint, secondaryMint solana.PublicKey) *Ledger {
	return &Ledger{PrimaryMint: primaryMint, SecondaryMint: secondaryMint}
}

func (l *Ledger) TransferToken(ctx context.Context, store repository.Store, vault *models.Vault, mint, dest solana.PublicKey, amount uint64) error {
	if amount == 0 {
		return nil
	}

	switch {
	case mint.Equals(l.PrimaryMint):
		if vault.UsdtBalance < amount {
			return ErrVaultBalanceExhausted
		}
		vault.UsdtBalance -= amount
	case mint.Equals(l.SecondaryMint):
		if vault.HcoinBalance < amount {
			return ErrVaultBalanceExhausted
		}
		vault.HcoinBalance -= amount
	default:
		return ErrUnknownMint
	}

	acct, err := store.GetSettlementAccount(ctx, dest.String())
	if err != nil {
		return err
	}
	if acct == nil {
		return ErrNoSettlementAccount
	}
	if acct.Mint != mint.String() {
		return ErrSettlementMintMismatch
	}
	acct.Balance += amount
	return store.UpsertSettlementAccount(ctx, acct)
}

func (l *Ledger) TransferNative(ctx context.Context, store repository.Store, vault *models.Vault, dest solana.PublicKey, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if vault.NativeBalance < amount {
		return ErrVaultBalanceExhausted
	}
	vault.NativeBalance -= amount

	acct, err := store.GetSettlementAccount(ctx, dest.String())
	if err != nil {
		return err
	}
	if acct == nil {
		// Native credits need no prior registration; the wallet is its own
		// settlement address.
		acct = &models.SettlementAccount{
			Address: dest.String(),
			Owner:   dest.String(),
			Mint:    solana.PublicKey{}.String(),
		}
	}
	acct.Balance += amount
	return store.UpsertSettlementAccount(ctx, acct)
}
