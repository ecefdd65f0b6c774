package handler

import (
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"vaultshare/internal/engine"
)

// tokenDecimals is the display scale of both settlement mints.
const tokenDecimals = 6

func intQuery(c *gin.Context, key string, def int) int {
	if val := c.Query(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}

func boolQueryPtr(c *gin.Context, key string) *bool {
	if val := c.Query(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return &b
		}
	}
	return nil
}

func stringQueryPtr(c *gin.Context, key string) *string {
	if val := strings.TrimSpace(c.Query(key)); val != "" {
		return &val
	}
	return nil
}

func boolPtr(v bool) *bool { return &v }

func parseOrder(value string, allow map[string]string) string {
	key := strings.TrimSpace(strings.ToLower(value))
	if key == "" {
		return ""
	}
	if mapped, ok := allow[key]; ok {
		return mapped
	}
	return ""
}

func paginationMeta(limit, offset int, total int64) map[string]any {
	if limit <= 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	hasNext := int64(offset+limit) < total
	return map[string]any{
		"limit":    limit,
		"offset":   offset,
		"total":    total,
		"has_next": hasNext,
	}
}

// identityParams pulls the (investment_id, version) pair every nested route
// carries.
func identityParams(c *gin.Context) (string, string) {
	return strings.TrimSpace(c.Param("id")), strings.TrimSpace(c.Param("version"))
}

func parseKey(raw string) (solana.PublicKey, error) {
	return solana.PublicKeyFromBase58(strings.TrimSpace(raw))
}

func parseKeys(raw []string) ([]solana.PublicKey, error) {
	keys := make([]solana.PublicKey, len(raw))
	for i, s := range raw {
		k, err := parseKey(s)
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}
	return keys, nil
}

// displayAmount renders a base-unit amount at the token's display scale.
func displayAmount(amount uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -tokenDecimals).String()
}

// engineError maps the engine's error taxonomy onto HTTP statuses and writes
// the response.
func engineError(c *gin.Context, err error) {
	Error(c, statusFor(err), err.Error(), nil)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrUnauthorizedSigner),
		errors.Is(err, engine.ErrUnauthorizedRecipient):
		return http.StatusForbidden

	case errors.Is(err, engine.ErrInvestmentNotFound),
		errors.Is(err, engine.ErrRecordNotFound),
		errors.Is(err, engine.ErrCacheNotFound),
		errors.Is(err, engine.ErrVaultNotFound):
		return http.StatusNotFound

	case errors.Is(err, engine.ErrInvestmentExists),
		errors.Is(err, engine.ErrRecordExists),
		errors.Is(err, engine.ErrRecordRevoked),
		errors.Is(err, engine.ErrInvestmentCompleted),
		errors.Is(err, engine.ErrInvestmentNotCompleted),
		errors.Is(err, engine.ErrInvestmentDeactivated),
		errors.Is(err, engine.ErrAlreadyExecuted),
		errors.Is(err, engine.ErrCacheExpired):
		return http.StatusConflict

	case errors.Is(err, engine.ErrNumericalOverflow),
		errors.Is(err, engine.ErrRatioOverflow),
		errors.Is(err, engine.ErrZeroSubtotal),
		errors.Is(err, engine.ErrTotalMismatch),
		errors.Is(err, engine.ErrInsufficientTokenBalance),
		errors.Is(err, engine.ErrInsufficientGasBalance),
		errors.Is(err, engine.ErrMissingSettlementAccount):
		return http.StatusUnprocessableEntity

	case errors.Is(err, engine.ErrInvalidInvestmentIDLength),
		errors.Is(err, engine.ErrInvalidVersionLength),
		errors.Is(err, engine.ErrInvalidAccountIDLength),
		errors.Is(err, engine.ErrInvalidInvestmentType),
		errors.Is(err, engine.ErrInvalidStage),
		errors.Is(err, engine.ErrInvalidScheduleValue),
		errors.Is(err, engine.ErrInvalidScheduleSum),
		errors.Is(err, engine.ErrNonContiguousSchedule),
		errors.Is(err, engine.ErrEmptySchedule),
		errors.Is(err, engine.ErrDuplicateRecord),
		errors.Is(err, engine.ErrTooManyRecords),
		errors.Is(err, engine.ErrNoRecords),
		errors.Is(err, engine.ErrNoRecordsUpdated),
		errors.Is(err, engine.ErrZeroTotalInvested),
		errors.Is(err, engine.ErrRefundPeriodInvalid),
		errors.Is(err, engine.ErrInvalidMint),
		errors.Is(err, engine.ErrStandardOnly),
		errors.Is(err, engine.ErrWhitelistMustBeFive),
		errors.Is(err, engine.ErrWhitelistLengthInvalid),
		errors.Is(err, engine.ErrWhitelistAddressExists),
		errors.Is(err, engine.ErrWhitelistAddressAbsent):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
