package engine

import (
	"math"
	"testing"
)

func TestSaturatingMul(t *testing.T) {
	if got := saturatingMul(0, math.MaxUint64); got != 0 {
		t.Fatalf("got=%d want=0", got)
	}
	if got := saturatingMul(3, 7); got != 21 {
		t.Fatalf("got=%d want=21", got)
	}
	if got := saturatingMul(math.MaxUint64, 2); got != math.MaxUint64 {
		t.Fatalf("got=%d want=MaxUint64", got)
	}
	if got := saturatingMul(math.MaxUint64/2+1, 2); got != math.MaxUint64 {
		t.Fatalf("got=%d want=MaxUint64", got)
	}
}

func TestCheckedAdd(t *testing.T) {
	if got, ok := checkedAdd(1, 2); !ok || got != 3 {
		t.Fatalf("got=%d ok=%v", got, ok)
	}
	if _, ok := checkedAdd(math.MaxUint64, 1); ok {
		t.Fatalf("overflow not detected")
	}
	if got, ok := checkedAdd(math.MaxUint64-1, 1); !ok || got != math.MaxUint64 {
		t.Fatalf("boundary add failed: got=%d ok=%v", got, ok)
	}
}

func TestSaturatingSub(t *testing.T) {
	if got := saturatingSub(10, 3); got != 7 {
		t.Fatalf("got=%d want=7", got)
	}
	if got := saturatingSub(3, 10); got != 0 {
		t.Fatalf("got=%d want=0", got)
	}
	if got := saturatingSub(5, 5); got != 0 {
		t.Fatalf("got=%d want=0", got)
	}
}
