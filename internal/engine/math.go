package engine

import "math"

// saturatingMul multiplies a*b, clamping at MaxUint64. Used on payout
// numerators so an oversized intermediate never panics; the final division
// brings the value back into range.
func saturatingMul(a, b uint64) uint64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxUint64/b {
		return math.MaxUint64
	}
	return a * b
}

// checkedAdd adds a+b and reports overflow. Accumulation overflow is a hard
// error, never saturated.
func checkedAdd(a, b uint64) (uint64, bool) {
	if a > math.MaxUint64-b {
		return 0, false
	}
	return a + b, true
}

// saturatingSub subtracts b from a, clamping at zero.
func saturatingSub(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}
