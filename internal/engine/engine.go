package engine

import (
	"context"
	"encoding/json"

	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"vaultshare/internal/models"
	"vaultshare/internal/repository"
	"vaultshare/internal/treasury"
)

// AssetRegistry fixes the two token mints an engine instance settles in and
// the program the vault addresses are derived under.
type AssetRegistry struct {
	ProgramID     solana.PublicKey
	PrimaryMint   solana.PublicKey // USDT, profit payouts
	SecondaryMint solana.PublicKey // HCOIN, refund payouts
}

// Engine implements the distribution lifecycle: investment setup, the
// contribution ledger, the two-phase estimate/execute payout protocol, and
// vault custody. Every public method runs as one store transaction.
type Engine struct {
	store     repository.Store
	treasury  treasury.Transferrer
	clock     clockwork.Clock
	log       *zap.Logger
	assets    AssetRegistry
	rentFloor uint64
}

func New(store repository.Store, tr treasury.Transferrer, clock clockwork.Clock, log *zap.Logger, assets AssetRegistry, rentFloor uint64) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{
		store:     store,
		treasury:  tr,
		clock:     clock,
		log:       log,
		assets:    assets,
		rentFloor: rentFloor,
	}
}

func (e *Engine) now() int64 {
	return e.clock.Now().Unix()
}

// DeriveVaultAddress computes the deterministic custody address for one
// investment version.
func (e *Engine) DeriveVaultAddress(investmentID, version string) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("vault"), []byte(investmentID), []byte(version)},
		e.assets.ProgramID,
	)
	return addr, err
}

// DeriveSettlementAddress computes the token settlement address a wallet
// receives a given mint at.
func DeriveSettlementAddress(wallet, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(wallet, mint)
	return addr, err
}

// ProfitEntry is one row of a profit payout plan. Settlement is the derived
// token address the payout lands at.
type ProfitEntry struct {
	RecordID   uint64 `json:"record_id"`
	AccountID  string `json:"account_id"`
	Wallet     string `json:"wallet"`
	Settlement string `json:"settlement"`
	AmountUsdt uint64 `json:"amount_usdt"`
	RatioBp    uint16 `json:"ratio_bp"`
}

// RefundEntry is one row of a refund payout plan.
type RefundEntry struct {
	RecordID    uint64 `json:"record_id"`
	AccountID   string `json:"account_id"`
	Wallet      string `json:"wallet"`
	Settlement  string `json:"settlement"`
	AmountHcoin uint64 `json:"amount_hcoin"`
	Stage       uint8  `json:"stage"`
}

func entriesToJSON(v any) datatypes.JSON {
	raw, _ := json.Marshal(v)
	return datatypes.JSON(raw)
}

// ProfitEntriesFromJSON parses a stored profit plan.
func ProfitEntriesFromJSON(raw datatypes.JSON) ([]ProfitEntry, error) {
	var entries []ProfitEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// RefundEntriesFromJSON parses a stored refund plan.
func RefundEntriesFromJSON(raw datatypes.JSON) ([]RefundEntry, error) {
	var entries []RefundEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// audit writes one trail row inside the caller's transaction.
func (e *Engine) audit(ctx context.Context, tx repository.Store, investmentID, version, action string, actor solana.PublicKey, signers []solana.PublicKey, details map[string]any) error {
	var signersJSON datatypes.JSON
	if len(signers) > 0 {
		signersJSON = KeysToJSON(signers)
	}
	var detailsJSON datatypes.JSON
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return err
		}
		detailsJSON = datatypes.JSON(raw)
	}
	return tx.InsertAuditEvent(ctx, &models.AuditEvent{
		InvestmentID: investmentID,
		Version:      version,
		Action:       action,
		Actor:        actor.String(),
		Signers:      signersJSON,
		Details:      detailsJSON,
	})
}

// mustGetInvestment loads an investment or fails with ErrInvestmentNotFound.
func mustGetInvestment(ctx context.Context, tx repository.Store, investmentID, version string) (*models.Investment, error) {
	inv, err := tx.GetInvestment(ctx, investmentID, version)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrInvestmentNotFound
	}
	return inv, nil
}

// mustGetVault loads a vault or fails with ErrVaultNotFound.
func mustGetVault(ctx context.Context, tx repository.Store, investmentID, version string) (*models.Vault, error) {
	vault, err := tx.GetVault(ctx, investmentID, version)
	if err != nil {
		return nil, err
	}
	if vault == nil {
		return nil, ErrVaultNotFound
	}
	return vault, nil
}

func validateIdentity(investmentID, version string) error {
	if len(investmentID) != InvestmentIDLength {
		return ErrInvalidInvestmentIDLength
	}
	if len(version) != VersionLength {
		return ErrInvalidVersionLength
	}
	return nil
}

// requireMutable rejects operations against deactivated investments.
func requireMutable(inv *models.Investment) error {
	if !inv.Active {
		return ErrInvestmentDeactivated
	}
	return nil
}

// requireDistributable gates the estimate and execute paths: the investment
// must be active and its lifecycle completed.
func requireDistributable(inv *models.Investment) error {
	if !inv.Active {
		return ErrInvestmentDeactivated
	}
	if inv.State != models.InvestmentStateCompleted {
		return ErrInvestmentNotCompleted
	}
	return nil
}
