package engine

import (
	"encoding/json"

	"github.com/gagliardetto/solana-go"
	"gorm.io/datatypes"
)

// KeysToJSON renders a key list as a base58 string array for jsonb storage.
func KeysToJSON(keys []solana.PublicKey) datatypes.JSON {
	strs := make([]string, len(keys))
	for i, k := range keys {
		strs[i] = k.String()
	}
	raw, _ := json.Marshal(strs)
	return datatypes.JSON(raw)
}

// KeysFromJSON parses a stored base58 string array back into keys.
func KeysFromJSON(raw datatypes.JSON) ([]solana.PublicKey, error) {
	var strs []string
	if err := json.Unmarshal(raw, &strs); err != nil {
		return nil, err
	}
	keys := make([]solana.PublicKey, len(strs))
	for i, s := range strs {
		k, err := solana.PublicKeyFromBase58(s)
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}
	return keys, nil
}

func containsKey(keys []solana.PublicKey, target solana.PublicKey) bool {
	for _, k := range keys {
		if k.Equals(target) {
			return true
		}
	}
	return false
}
