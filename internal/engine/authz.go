package engine

import (
	"github.com/gagliardetto/solana-go"

	"vaultshare/internal/models"
)

// WhitelistKind selects which of an investment's signer lists an operation is
// authorized against.
type WhitelistKind int

const (
	ExecuteList WhitelistKind = iota
	UpdateList
	WithdrawList
)

func (k WhitelistKind) String() string {
	switch k {
	case ExecuteList:
		return "execute"
	case UpdateList:
		return "update"
	case WithdrawList:
		return "withdraw"
	default:
		return "unknown"
	}
}

// whitelist loads one of the investment's signer lists.
func whitelist(inv *models.Investment, kind WhitelistKind) ([]solana.PublicKey, error) {
	switch kind {
	case ExecuteList:
		return KeysFromJSON(inv.ExecuteWhitelist)
	case UpdateList:
		return KeysFromJSON(inv.UpdateWhitelist)
	default:
		return KeysFromJSON(inv.WithdrawWhitelist)
	}
}

// requireQuorum verifies that at least QuorumThreshold distinct signers are
// members of the selected whitelist. Signers outside the list and duplicate
// signatures do not count toward the threshold. The execute and update lists
// must hold exactly MaxWhitelistLen members; anything else means the stored
// row is corrupt and no quorum can be trusted.
func requireQuorum(inv *models.Investment, kind WhitelistKind, signers []solana.PublicKey) error {
	list, err := whitelist(inv, kind)
	if err != nil {
		return err
	}
	if (kind == ExecuteList || kind == UpdateList) && len(list) != MaxWhitelistLen {
		return ErrWhitelistMustBeFive
	}

	matched := 0
	seen := make(map[solana.PublicKey]bool, len(signers))
	for _, s := range signers {
		if seen[s] {
			continue
		}
		seen[s] = true
		if containsKey(list, s) {
			matched++
		}
	}

	if matched < QuorumThreshold {
		return ErrUnauthorizedSigner
	}
	return nil
}

// requireEstimator verifies the single estimate signer is a member of either
// the execute or the update whitelist. Estimates write only overwritable
// caches, so one authorized signer is enough.
func requireEstimator(inv *models.Investment, signer solana.PublicKey) error {
	execList, err := KeysFromJSON(inv.ExecuteWhitelist)
	if err != nil {
		return err
	}
	if containsKey(execList, signer) {
		return nil
	}

	updList, err := KeysFromJSON(inv.UpdateWhitelist)
	if err != nil {
		return err
	}
	if containsKey(updList, signer) {
		return nil
	}
	return ErrUnauthorizedSigner
}
