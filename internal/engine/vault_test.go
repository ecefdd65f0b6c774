package engine

import (
	"context"
	"errors"
	"testing"
)

func TestDeposit_RequiresCompletedActive(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	seedPending(t, eng)
	ctx := context.Background()

	if _, err := eng.DepositToken(ctx, testInvestmentID, testVersion, testPrimaryMint, 100, testKey(60)); !errors.Is(err, ErrInvestmentNotCompleted) {
		t.Fatalf("token deposit on pending: err=%v", err)
	}
	if _, err := eng.DepositNative(ctx, testInvestmentID, testVersion, 100, testKey(60)); !errors.Is(err, ErrInvestmentNotCompleted) {
		t.Fatalf("native deposit on pending: err=%v", err)
	}

	completeTest(t, eng)
	vault, err := eng.DepositToken(ctx, testInvestmentID, testVersion, testPrimaryMint, 100, testKey(60))
	if err != nil {
		t.Fatalf("deposit after complete: %v", err)
	}
	if vault.UsdtBalance != 100 {
		t.Fatalf("usdt=%d want=100", vault.UsdtBalance)
	}

	if _, err := eng.DeactivateInvestment(ctx, testInvestmentID, testVersion, updateQuorum()); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := eng.DepositToken(ctx, testInvestmentID, testVersion, testPrimaryMint, 100, testKey(60)); !errors.Is(err, ErrInvestmentDeactivated) {
		t.Fatalf("deposit on deactivated: err=%v", err)
	}
}

func TestDepositToken_UnknownMint(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	seedPending(t, eng)
	completeTest(t, eng)

	if _, err := eng.DepositToken(context.Background(), testInvestmentID, testVersion, testKey(99), 100, testKey(60)); !errors.Is(err, ErrInvalidMint) {
		t.Fatalf("err=%v want=%v", err, ErrInvalidMint)
	}
}

func TestWithdraw_SweepsTokensAndNativeAboveReserve(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	seedPending(t, eng)
	completeTest(t, eng)
	ctx := context.Background()

	recipient := withdrawKeys[0]
	usdtAddr := registerTestSettlement(t, eng, recipient, testPrimaryMint)
	hcoinAddr := registerTestSettlement(t, eng, recipient, testSecondaryMint)
	fundVault(t, eng, 300_000, 400_000, 2_000_000)

	res, err := eng.Withdraw(ctx, testInvestmentID, testVersion, recipient, execQuorum())
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if res.Usdt != 300_000 || res.Hcoin != 400_000 {
		t.Fatalf("tokens swept=%d/%d want=300000/400000", res.Usdt, res.Hcoin)
	}
	// 2_000_000 - 890_880 rent - 100_000 base gas - 5_000 per-entry gas.
	if res.Native != 1_004_120 {
		t.Fatalf("native swept=%d want=1004120", res.Native)
	}

	vault, _ := store.GetVault(ctx, testInvestmentID, testVersion)
	if vault.UsdtBalance != 0 || vault.HcoinBalance != 0 {
		t.Fatalf("token balances remain: %d/%d", vault.UsdtBalance, vault.HcoinBalance)
	}
	if vault.NativeBalance != 995_880 {
		t.Fatalf("native reserve=%d want=995880", vault.NativeBalance)
	}

	usdtAcct, _ := store.GetSettlementAccount(ctx, usdtAddr)
	hcoinAcct, _ := store.GetSettlementAccount(ctx, hcoinAddr)
	if usdtAcct.Balance != 300_000 || hcoinAcct.Balance != 400_000 {
		t.Fatalf("recipient credited %d/%d", usdtAcct.Balance, hcoinAcct.Balance)
	}
}

func TestWithdraw_NativeBelowReserveMovesNothing(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	seedPending(t, eng)
	completeTest(t, eng)
	ctx := context.Background()

	// Exactly the reserve: rent floor + base gas + one entry's gas.
	fundVault(t, eng, 0, 0, 995_880)

	res, err := eng.Withdraw(ctx, testInvestmentID, testVersion, withdrawKeys[0], execQuorum())
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if res.Usdt != 0 || res.Hcoin != 0 || res.Native != 0 {
		t.Fatalf("moved %+v from a vault at the reserve", res)
	}
	vault, _ := store.GetVault(ctx, testInvestmentID, testVersion)
	if vault.NativeBalance != 995_880 {
		t.Fatalf("native=%d want=995880", vault.NativeBalance)
	}
}

func TestWithdraw_Authorization(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	seedPending(t, eng)
	completeTest(t, eng)
	ctx := context.Background()

	// Recipient outside the withdraw whitelist.
	if _, err := eng.Withdraw(ctx, testInvestmentID, testVersion, testKey(99), execQuorum()); !errors.Is(err, ErrUnauthorizedRecipient) {
		t.Fatalf("outsider recipient: err=%v", err)
	}
	// Quorum comes from the execute list, not the update list.
	if _, err := eng.Withdraw(ctx, testInvestmentID, testVersion, withdrawKeys[0], updateQuorum()); !errors.Is(err, ErrUnauthorizedSigner) {
		t.Fatalf("update quorum: err=%v", err)
	}
}

func TestWithdraw_RequiresCompleted(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	seedPending(t, eng)

	if _, err := eng.Withdraw(context.Background(), testInvestmentID, testVersion, withdrawKeys[0], execQuorum()); !errors.Is(err, ErrInvestmentNotCompleted) {
		t.Fatalf("err=%v want=%v", err, ErrInvestmentNotCompleted)
	}
}

func TestRegisterSettlementAccount(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	first, err := eng.RegisterSettlementAccount(context.Background(), testKey(50), testPrimaryMint)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if first.Owner != testKey(50).String() || first.Mint != testPrimaryMint.String() {
		t.Fatalf("account fields wrong: %+v", first)
	}

	// Re-registering returns the same account without resetting it.
	again, err := eng.RegisterSettlementAccount(context.Background(), testKey(50), testPrimaryMint)
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if again.Address != first.Address {
		t.Fatalf("address changed: %s vs %s", again.Address, first.Address)
	}

	if _, err := eng.RegisterSettlementAccount(context.Background(), testKey(50), testKey(99)); !errors.Is(err, ErrInvalidMint) {
		t.Fatalf("unknown mint: err=%v", err)
	}

	// Distinct mints land at distinct derived addresses.
	other, err := eng.RegisterSettlementAccount(context.Background(), testKey(50), testSecondaryMint)
	if err != nil {
		t.Fatalf("register secondary: %v", err)
	}
	if other.Address == first.Address {
		t.Fatalf("mints share one settlement address")
	}
}
