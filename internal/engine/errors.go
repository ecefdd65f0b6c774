package engine

import "errors"

// Authorization failures.
var (
	ErrUnauthorizedSigner     = errors.New("unauthorized signer or not enough signatures")
	ErrUnauthorizedRecipient  = errors.New("recipient is not in the withdraw whitelist")
	ErrWhitelistMustBeFive    = errors.New("whitelist must contain exactly 5 members")
	ErrWhitelistLengthInvalid = errors.New("withdraw whitelist must be between 1 and 5 entries")
	ErrWhitelistAddressExists = errors.New("target address already exists in whitelist")
	ErrWhitelistAddressAbsent = errors.New("address to be replaced not found in whitelist")
)

// State failures.
var (
	ErrInvestmentNotFound     = errors.New("investment not found")
	ErrInvestmentExists       = errors.New("investment already exists")
	ErrInvestmentNotCompleted = errors.New("investment has not completed yet")
	ErrInvestmentCompleted    = errors.New("investment has completed already")
	ErrInvestmentDeactivated  = errors.New("investment has been deactivated and can no longer be modified")
	ErrStandardOnly           = errors.New("investment type must be standard")

	ErrRecordNotFound   = errors.New("investment record not found")
	ErrRecordExists     = errors.New("investment record already exists")
	ErrRecordRevoked    = errors.New("record has been revoked already")
	ErrNoRecordsUpdated = errors.New("no record has been updated")

	ErrCacheNotFound   = errors.New("share cache not found")
	ErrCacheExpired    = errors.New("share cache has expired")
	ErrAlreadyExecuted = errors.New("share cache already executed")
	ErrVaultNotFound   = errors.New("vault not found")
)

// Validation failures.
var (
	ErrInvalidInvestmentIDLength = errors.New("investment id must be 15 bytes")
	ErrInvalidVersionLength      = errors.New("version must be 4 bytes")
	ErrInvalidInvestmentType     = errors.New("investment type is not recognized")
	ErrInvalidAccountIDLength    = errors.New("account id must be 15 bytes")
	ErrInvalidStage              = errors.New("stage must be between 1 and 3")
	ErrInvalidScheduleValue      = errors.New("stage schedule value must be between 0 and 100")
	ErrInvalidScheduleSum        = errors.New("stage schedule row sum must not exceed 100")
	ErrNonContiguousSchedule     = errors.New("stage schedule must be contiguous once non-zero values begin")
	ErrEmptySchedule             = errors.New("all stage schedule values are zero")
	ErrDuplicateRecord           = errors.New("duplicate record id in candidate set")
	ErrTooManyRecords            = errors.New("too many candidate records")
	ErrNoRecords                 = errors.New("no candidate records supplied")
	ErrZeroSubtotal              = errors.New("subtotal amount cannot be zero")
	ErrZeroTotalInvested         = errors.New("total invested amount cannot be zero")
	ErrRefundPeriodInvalid       = errors.New("refund period is invalid")
	ErrInvalidMint               = errors.New("mint is not a recognized asset")
	ErrMissingSettlementAccount  = errors.New("missing settlement account for recipient")
)

// Arithmetic failures.
var (
	ErrNumericalOverflow = errors.New("math overflow")
	ErrRatioOverflow     = errors.New("basis-point ratio overflowed 16 bits")
)

// Resource failures.
var (
	ErrInsufficientTokenBalance = errors.New("insufficient token balance in vault")
	ErrInsufficientGasBalance   = errors.New("insufficient native balance in vault to cover estimated gas")
	ErrTotalMismatch            = errors.New("total transferred does not match cache subtotal")
)
