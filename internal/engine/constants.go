package engine

// Whitelist and batch shape.
const (
	// MaxWhitelistLen is the fixed size of the execute and update lists and
	// the upper bound of the withdraw list.
	MaxWhitelistLen = 5

	// QuorumThreshold is the number of whitelist members that must sign a
	// mutating operation.
	QuorumThreshold = 3

	// MaxStage is the number of investment stages (1, 2, 3).
	MaxStage = 3

	// MaxEntriesPerBatch caps how many contribution records one distribution
	// cache may cover.
	MaxEntriesPerBatch = 30
)

// Identity field lengths, in bytes.
const (
	InvestmentIDLength = 15
	VersionLength      = 4
	AccountIDLength    = 15
)

// Distribution timing.
const (
	// CacheExpirySecs is how long an unexecuted share cache stays valid:
	// 25 days.
	CacheExpirySecs int64 = 25 * 86400

	// StartYearIndex is the first year index (0-based) at which refund
	// distributions may run.
	StartYearIndex uint8 = 3

	// MaxYearIndex is the last refund year index (inclusive).
	MaxYearIndex uint8 = 9

	secondsPerYear int64 = 365 * 86400
)

// Gas estimation, in native base units.
const (
	// GasBase covers signature fees and minimal compute for one execution.
	GasBase uint64 = 100_000

	// GasPerEntry covers the per-transfer cost of each batch entry.
	GasPerEntry uint64 = 5_000
)

// BasisPointScale is the denominator of proportional ratios (1bp = 1/10000).
const BasisPointScale uint64 = 10_000
