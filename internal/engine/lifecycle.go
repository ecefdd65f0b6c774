package engine

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"vaultshare/internal/models"
	"vaultshare/internal/repository"
)

// Audit trail action names.
const (
	ActionInitialize        = "investment.initialize"
	ActionUpdate            = "investment.update"
	ActionComplete          = "investment.complete"
	ActionDeactivate        = "investment.deactivate"
	ActionPatchExecuteList  = "whitelist.patch_execute"
	ActionPatchUpdateList   = "whitelist.patch_update"
	ActionPatchWithdrawList = "whitelist.replace_withdraw"
	ActionAddRecord         = "record.add"
	ActionRebindWallet      = "record.rebind_wallet"
	ActionRevokeRecord      = "record.revoke"
	ActionEstimateProfit    = "distribution.estimate_profit"
	ActionEstimateRefund    = "distribution.estimate_refund"
	ActionExecuteProfit     = "distribution.execute_profit"
	ActionExecuteRefund     = "distribution.execute_refund"
	ActionDepositNative     = "vault.deposit_native"
	ActionDepositToken      = "vault.deposit_token"
	ActionWithdraw          = "vault.withdraw"
)

// InitializeParams carries everything needed to create an investment and its
// vault.
type InitializeParams struct {
	InvestmentID string
	Version      string
	Type         string
	Schedule     StageSchedule
	StartAt      int64
	EndAt        int64
	UpperLimit   uint64

	ExecuteWhitelist  []solana.PublicKey
	UpdateWhitelist   []solana.PublicKey
	WithdrawWhitelist []solana.PublicKey

	Payer solana.PublicKey
}

// InitializeInvestment creates the investment config in state pending plus
// its empty vault. It is the only operation that does not require quorum:
// the lists it installs are what quorum is measured against afterwards.
func (e *Engine) InitializeInvestment(ctx context.Context, params InitializeParams) (*models.Investment, error) {
	if err := validateIdentity(params.InvestmentID, params.Version); err != nil {
		return nil, err
	}
	if params.Type != models.InvestmentTypeStandard && params.Type != models.InvestmentTypeCsr {
		return nil, ErrInvalidInvestmentType
	}
	if err := params.Schedule.Validate(); err != nil {
		return nil, err
	}
	if len(params.ExecuteWhitelist) != MaxWhitelistLen || len(params.UpdateWhitelist) != MaxWhitelistLen {
		return nil, ErrWhitelistMustBeFive
	}
	if len(params.WithdrawWhitelist) < 1 || len(params.WithdrawWhitelist) > MaxWhitelistLen {
		return nil, ErrWhitelistLengthInvalid
	}

	vaultAddr, err := e.DeriveVaultAddress(params.InvestmentID, params.Version)
	if err != nil {
		return nil, err
	}

	inv := &models.Investment{
		InvestmentID:      params.InvestmentID,
		Version:           params.Version,
		Type:              params.Type,
		StageSchedule:     params.Schedule.ToJSON(),
		StartAt:           params.StartAt,
		EndAt:             params.EndAt,
		UpperLimit:        params.UpperLimit,
		ExecuteWhitelist:  KeysToJSON(params.ExecuteWhitelist),
		UpdateWhitelist:   KeysToJSON(params.UpdateWhitelist),
		WithdrawWhitelist: KeysToJSON(params.WithdrawWhitelist),
		VaultAddress:      vaultAddr.String(),
		State:             models.InvestmentStatePending,
		Active:            true,
	}

	err = e.store.InTx(ctx, func(tx repository.Store) error {
		existing, err := tx.GetInvestment(ctx, params.InvestmentID, params.Version)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrInvestmentExists
		}
		if err := tx.CreateInvestment(ctx, inv); err != nil {
			return err
		}
		if err := tx.CreateVault(ctx, &models.Vault{
			InvestmentID: params.InvestmentID,
			Version:      params.Version,
			Address:      vaultAddr.String(),
		}); err != nil {
			return err
		}
		return e.audit(ctx, tx, params.InvestmentID, params.Version, ActionInitialize, params.Payer, nil, map[string]any{
			"type":  params.Type,
			"vault": vaultAddr.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("investment initialized",
		zap.String("investment_id", inv.InvestmentID),
		zap.String("version", inv.Version),
		zap.String("vault", inv.VaultAddress))
	return inv, nil
}

// UpdateParams replaces the upper limit and/or the stage schedule. Nil fields
// are left untouched.
type UpdateParams struct {
	InvestmentID string
	Version      string
	UpperLimit   *uint64
	Schedule     *StageSchedule
	Signers      []solana.PublicKey
}

// UpdateInvestment rewrites mutable config fields under update-list quorum.
// A replacement schedule goes through the same validation as at initialize.
func (e *Engine) UpdateInvestment(ctx context.Context, params UpdateParams) (*models.Investment, error) {
	if params.Schedule != nil {
		if err := params.Schedule.Validate(); err != nil {
			return nil, err
		}
	}

	var out *models.Investment
	err := e.store.InTx(ctx, func(tx repository.Store) error {
		inv, err := mustGetInvestment(ctx, tx, params.InvestmentID, params.Version)
		if err != nil {
			return err
		}
		if err := requireMutable(inv); err != nil {
			return err
		}
		if err := requireQuorum(inv, UpdateList, params.Signers); err != nil {
			return err
		}

		if params.UpperLimit != nil {
			inv.UpperLimit = *params.UpperLimit
		}
		if params.Schedule != nil {
			inv.StageSchedule = params.Schedule.ToJSON()
		}
		if err := tx.SaveInvestment(ctx, inv); err != nil {
			return err
		}
		out = inv
		return e.audit(ctx, tx, inv.InvestmentID, inv.Version, ActionUpdate, firstSigner(params.Signers), params.Signers, nil)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CompleteInvestment advances pending to completed. One-way.
func (e *Engine) CompleteInvestment(ctx context.Context, investmentID, version string, signers []solana.PublicKey) (*models.Investment, error) {
	var out *models.Investment
	err := e.store.InTx(ctx, func(tx repository.Store) error {
		inv, err := mustGetInvestment(ctx, tx, investmentID, version)
		if err != nil {
			return err
		}
		if err := requireMutable(inv); err != nil {
			return err
		}
		if inv.State == models.InvestmentStateCompleted {
			return ErrInvestmentCompleted
		}
		if err := requireQuorum(inv, UpdateList, signers); err != nil {
			return err
		}

		inv.State = models.InvestmentStateCompleted
		if err := tx.SaveInvestment(ctx, inv); err != nil {
			return err
		}
		out = inv
		return e.audit(ctx, tx, investmentID, version, ActionComplete, firstSigner(signers), signers, nil)
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("investment completed",
		zap.String("investment_id", investmentID),
		zap.String("version", version))
	return out, nil
}

// DeactivateInvestment turns off the active flag. Terminal: nothing mutates
// a deactivated investment again, including this call.
func (e *Engine) DeactivateInvestment(ctx context.Context, investmentID, version string, signers []solana.PublicKey) (*models.Investment, error) {
	var out *models.Investment
	err := e.store.InTx(ctx, func(tx repository.Store) error {
		inv, err := mustGetInvestment(ctx, tx, investmentID, version)
		if err != nil {
			return err
		}
		if err := requireMutable(inv); err != nil {
			return err
		}
		if inv.State != models.InvestmentStateCompleted {
			return ErrInvestmentNotCompleted
		}
		if err := requireQuorum(inv, UpdateList, signers); err != nil {
			return err
		}

		inv.Active = false
		if err := tx.SaveInvestment(ctx, inv); err != nil {
			return err
		}
		out = inv
		return e.audit(ctx, tx, investmentID, version, ActionDeactivate, firstSigner(signers), signers, nil)
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("investment deactivated",
		zap.String("investment_id", investmentID),
		zap.String("version", version))
	return out, nil
}

// PatchExecuteList swaps one execute-list member, authorized by the execute
// list itself.
func (e *Engine) PatchExecuteList(ctx context.Context, investmentID, version string, from, to solana.PublicKey, signers []solana.PublicKey) (*models.Investment, error) {
	return e.patchFiveList(ctx, investmentID, version, ExecuteList, from, to, signers)
}

// PatchUpdateList swaps one update-list member, authorized by the update
// list itself.
func (e *Engine) PatchUpdateList(ctx context.Context, investmentID, version string, from, to solana.PublicKey, signers []solana.PublicKey) (*models.Investment, error) {
	return e.patchFiveList(ctx, investmentID, version, UpdateList, from, to, signers)
}

// patchFiveList is the shared single-slot replace for the two fixed-size
// lists: from must be present, to must not, and quorum comes from the list
// being patched.
func (e *Engine) patchFiveList(ctx context.Context, investmentID, version string, kind WhitelistKind, from, to solana.PublicKey, signers []solana.PublicKey) (*models.Investment, error) {
	if from.Equals(to) {
		return nil, ErrWhitelistAddressExists
	}

	var out *models.Investment
	err := e.store.InTx(ctx, func(tx repository.Store) error {
		inv, err := mustGetInvestment(ctx, tx, investmentID, version)
		if err != nil {
			return err
		}
		if err := requireMutable(inv); err != nil {
			return err
		}
		if err := requireQuorum(inv, kind, signers); err != nil {
			return err
		}

		list, err := whitelist(inv, kind)
		if err != nil {
			return err
		}
		if containsKey(list, to) {
			return ErrWhitelistAddressExists
		}
		slot := -1
		for i, k := range list {
			if k.Equals(from) {
				slot = i
				break
			}
		}
		if slot < 0 {
			return ErrWhitelistAddressAbsent
		}
		list[slot] = to

		switch kind {
		case ExecuteList:
			inv.ExecuteWhitelist = KeysToJSON(list)
		case UpdateList:
			inv.UpdateWhitelist = KeysToJSON(list)
		}
		if err := tx.SaveInvestment(ctx, inv); err != nil {
			return err
		}
		out = inv

		action := ActionPatchExecuteList
		if kind == UpdateList {
			action = ActionPatchUpdateList
		}
		return e.audit(ctx, tx, investmentID, version, action, firstSigner(signers), signers, map[string]any{
			"from": from.String(),
			"to":   to.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceWithdrawList installs a whole new withdraw list (1-5 entries) under
// execute-list quorum.
func (e *Engine) ReplaceWithdrawList(ctx context.Context, investmentID, version string, members []solana.PublicKey, signers []solana.PublicKey) (*models.Investment, error) {
	if len(members) < 1 || len(members) > MaxWhitelistLen {
		return nil, ErrWhitelistLengthInvalid
	}

	var out *models.Investment
	err := e.store.InTx(ctx, func(tx repository.Store) error {
		inv, err := mustGetInvestment(ctx, tx, investmentID, version)
		if err != nil {
			return err
		}
		if err := requireMutable(inv); err != nil {
			return err
		}
		if err := requireQuorum(inv, ExecuteList, signers); err != nil {
			return err
		}

		inv.WithdrawWhitelist = KeysToJSON(members)
		if err := tx.SaveInvestment(ctx, inv); err != nil {
			return err
		}
		out = inv
		return e.audit(ctx, tx, investmentID, version, ActionPatchWithdrawList, firstSigner(signers), signers, map[string]any{
			"size": len(members),
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func firstSigner(signers []solana.PublicKey) solana.PublicKey {
	if len(signers) == 0 {
		return solana.PublicKey{}
	}
	return signers[0]
}
