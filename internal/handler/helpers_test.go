package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultshare/internal/engine"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{engine.ErrUnauthorizedSigner, http.StatusForbidden},
		{engine.ErrUnauthorizedRecipient, http.StatusForbidden},
		{engine.ErrInvestmentNotFound, http.StatusNotFound},
		{engine.ErrCacheNotFound, http.StatusNotFound},
		{engine.ErrInvestmentExists, http.StatusConflict},
		{engine.ErrAlreadyExecuted, http.StatusConflict},
		{engine.ErrCacheExpired, http.StatusConflict},
		{engine.ErrInsufficientTokenBalance, http.StatusUnprocessableEntity},
		{engine.ErrMissingSettlementAccount, http.StatusUnprocessableEntity},
		{engine.ErrRatioOverflow, http.StatusUnprocessableEntity},
		{engine.ErrNonContiguousSchedule, http.StatusBadRequest},
		{engine.ErrRefundPeriodInvalid, http.StatusBadRequest},
		{errors.New("database on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), "error %v", tc.err)
	}

	// Wrapped errors map the same way.
	wrapped := errors.Join(errors.New("context"), engine.ErrCacheExpired)
	assert.Equal(t, http.StatusConflict, statusFor(wrapped))
}

func TestDisplayAmount(t *testing.T) {
	assert.Equal(t, "0", displayAmount(0))
	assert.Equal(t, "0.000001", displayAmount(1))
	assert.Equal(t, "1", displayAmount(1_000_000))
	assert.Equal(t, "1234.56789", displayAmount(1_234_567_890))
	assert.Equal(t, "18446744073709.551615", displayAmount(^uint64(0)))
}

func TestParseOrder(t *testing.T) {
	allow := map[string]string{"created_at": "created_at", "batch_id": "batch_id"}
	assert.Equal(t, "created_at", parseOrder(" Created_At ", allow))
	assert.Equal(t, "", parseOrder("", allow))
	assert.Equal(t, "", parseOrder("state; drop table investments", allow))
}

func TestPaginationMeta(t *testing.T) {
	meta := paginationMeta(20, 40, 100)
	assert.Equal(t, int64(100), meta["total"])
	assert.Equal(t, true, meta["has_next"])

	meta = paginationMeta(20, 80, 100)
	assert.Equal(t, false, meta["has_next"])

	meta = paginationMeta(-5, -3, 10)
	assert.Equal(t, 0, meta["limit"])
	assert.Equal(t, 0, meta["offset"])
}

func TestParseKeys(t *testing.T) {
	keys, err := parseKeys([]string{
		"11111111111111111111111111111111",
		" So11111111111111111111111111111111111111112 ",
	})
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, "So11111111111111111111111111111111111111112", keys[1].String())

	_, err = parseKeys([]string{"not-a-key"})
	require.Error(t, err)
}
