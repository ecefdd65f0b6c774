package engine

import (
	"context"
	"errors"
	"testing"

	"vaultshare/internal/models"
)

func TestInitializeInvestment_CreatesVaultAndPendingState(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	inv := seedPending(t, eng)

	if inv.State != models.InvestmentStatePending {
		t.Fatalf("state=%s want=%s", inv.State, models.InvestmentStatePending)
	}
	if !inv.Active {
		t.Fatalf("new investment should be active")
	}
	vault, err := store.GetVault(context.Background(), testInvestmentID, testVersion)
	if err != nil || vault == nil {
		t.Fatalf("vault missing: %v", err)
	}
	if vault.Address != inv.VaultAddress {
		t.Fatalf("vault address mismatch: %s vs %s", vault.Address, inv.VaultAddress)
	}

	derived, err := eng.DeriveVaultAddress(testInvestmentID, testVersion)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if derived.String() != inv.VaultAddress {
		t.Fatalf("vault address not deterministic: %s vs %s", derived, inv.VaultAddress)
	}
}

func TestInitializeInvestment_Validation(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	base := InitializeParams{
		InvestmentID:      testInvestmentID,
		Version:           testVersion,
		Type:              models.InvestmentTypeStandard,
		Schedule:          validSchedule(),
		ExecuteWhitelist:  execKeys,
		UpdateWhitelist:   updateKeys,
		WithdrawWhitelist: withdrawKeys,
		Payer:             updateKeys[0],
	}

	cases := []struct {
		name   string
		mutate func(*InitializeParams)
		want   error
	}{
		{"short id", func(p *InitializeParams) { p.InvestmentID = "short" }, ErrInvalidInvestmentIDLength},
		{"short version", func(p *InitializeParams) { p.Version = "v1" }, ErrInvalidVersionLength},
		{"bad type", func(p *InitializeParams) { p.Type = "equity" }, ErrInvalidInvestmentType},
		{"execute list too small", func(p *InitializeParams) { p.ExecuteWhitelist = execKeys[:4] }, ErrWhitelistMustBeFive},
		{"update list too small", func(p *InitializeParams) { p.UpdateWhitelist = updateKeys[:2] }, ErrWhitelistMustBeFive},
		{"withdraw list empty", func(p *InitializeParams) { p.WithdrawWhitelist = nil }, ErrWhitelistLengthInvalid},
		{"withdraw list too big", func(p *InitializeParams) { p.WithdrawWhitelist = testKeys(21, 6) }, ErrWhitelistLengthInvalid},
		{"empty schedule", func(p *InitializeParams) { p.Schedule = StageSchedule{} }, ErrEmptySchedule},
	}
	for _, tc := range cases {
		params := base
		tc.mutate(&params)
		_, err := eng.InitializeInvestment(context.Background(), params)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: err=%v want=%v", tc.name, err, tc.want)
		}
	}
}

func TestInitializeInvestment_Duplicate(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	seedPending(t, eng)

	_, err := eng.InitializeInvestment(context.Background(), InitializeParams{
		InvestmentID:      testInvestmentID,
		Version:           testVersion,
		Type:              models.InvestmentTypeCsr,
		Schedule:          validSchedule(),
		ExecuteWhitelist:  execKeys,
		UpdateWhitelist:   updateKeys,
		WithdrawWhitelist: withdrawKeys,
		Payer:             updateKeys[0],
	})
	if !errors.Is(err, ErrInvestmentExists) {
		t.Fatalf("err=%v want=%v", err, ErrInvestmentExists)
	}
}

func TestUpdateInvestment_ReplacesFieldsUnderQuorum(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	seedPending(t, eng)

	limit := uint64(42)
	newSchedule := validSchedule()
	newSchedule[0][0] = 25

	inv, err := eng.UpdateInvestment(context.Background(), UpdateParams{
		InvestmentID: testInvestmentID,
		Version:      testVersion,
		UpperLimit:   &limit,
		Schedule:     &newSchedule,
		Signers:      updateQuorum(),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if inv.UpperLimit != 42 {
		t.Fatalf("upper limit=%d want=42", inv.UpperLimit)
	}
	got, err := ScheduleFromJSON(inv.StageSchedule)
	if err != nil {
		t.Fatalf("schedule parse: %v", err)
	}
	if got[0][0] != 25 {
		t.Fatalf("schedule not replaced")
	}
}

func TestUpdateInvestment_RejectsInvalidScheduleAndBadQuorum(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	seedPending(t, eng)

	bad := StageSchedule{}
	bad[0][0] = 101
	if _, err := eng.UpdateInvestment(context.Background(), UpdateParams{
		InvestmentID: testInvestmentID,
		Version:      testVersion,
		Schedule:     &bad,
		Signers:      updateQuorum(),
	}); !errors.Is(err, ErrInvalidScheduleValue) {
		t.Fatalf("err=%v want=%v", err, ErrInvalidScheduleValue)
	}

	limit := uint64(7)
	if _, err := eng.UpdateInvestment(context.Background(), UpdateParams{
		InvestmentID: testInvestmentID,
		Version:      testVersion,
		UpperLimit:   &limit,
		Signers:      execQuorum(), // wrong list
	}); !errors.Is(err, ErrUnauthorizedSigner) {
		t.Fatalf("err=%v want=%v", err, ErrUnauthorizedSigner)
	}
}

func TestCompleteInvestment_OneWay(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	seedPending(t, eng)
	completeTest(t, eng)

	_, err := eng.CompleteInvestment(context.Background(), testInvestmentID, testVersion, updateQuorum())
	if !errors.Is(err, ErrInvestmentCompleted) {
		t.Fatalf("err=%v want=%v", err, ErrInvestmentCompleted)
	}
}

func TestDeactivateInvestment_RequiresCompletedAndIsTerminal(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	seedPending(t, eng)

	if _, err := eng.DeactivateInvestment(context.Background(), testInvestmentID, testVersion, updateQuorum()); !errors.Is(err, ErrInvestmentNotCompleted) {
		t.Fatalf("err=%v want=%v", err, ErrInvestmentNotCompleted)
	}

	completeTest(t, eng)
	if _, err := eng.DeactivateInvestment(context.Background(), testInvestmentID, testVersion, updateQuorum()); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	// Nothing mutates a deactivated investment again.
	if _, err := eng.DeactivateInvestment(context.Background(), testInvestmentID, testVersion, updateQuorum()); !errors.Is(err, ErrInvestmentDeactivated) {
		t.Fatalf("err=%v want=%v", err, ErrInvestmentDeactivated)
	}
	limit := uint64(1)
	if _, err := eng.UpdateInvestment(context.Background(), UpdateParams{
		InvestmentID: testInvestmentID,
		Version:      testVersion,
		UpperLimit:   &limit,
		Signers:      updateQuorum(),
	}); !errors.Is(err, ErrInvestmentDeactivated) {
		t.Fatalf("err=%v want=%v", err, ErrInvestmentDeactivated)
	}
}

func TestPatchExecuteList_SingleSlotRules(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	seedPending(t, eng)

	newcomer := testKey(99)

	// Replacing a member not in the list fails.
	if _, err := eng.PatchExecuteList(context.Background(), testInvestmentID, testVersion, testKey(98), newcomer, execQuorum()); !errors.Is(err, ErrWhitelistAddressAbsent) {
		t.Fatalf("err=%v want=%v", err, ErrWhitelistAddressAbsent)
	}
	// Target already in the list fails.
	if _, err := eng.PatchExecuteList(context.Background(), testInvestmentID, testVersion, execKeys[0], execKeys[1], execQuorum()); !errors.Is(err, ErrWhitelistAddressExists) {
		t.Fatalf("err=%v want=%v", err, ErrWhitelistAddressExists)
	}
	// Quorum must come from the execute list itself.
	if _, err := eng.PatchExecuteList(context.Background(), testInvestmentID, testVersion, execKeys[4], newcomer, updateQuorum()); !errors.Is(err, ErrUnauthorizedSigner) {
		t.Fatalf("err=%v want=%v", err, ErrUnauthorizedSigner)
	}

	inv, err := eng.PatchExecuteList(context.Background(), testInvestmentID, testVersion, execKeys[4], newcomer, execQuorum())
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	list, err := KeysFromJSON(inv.ExecuteWhitelist)
	if err != nil {
		t.Fatalf("parse list: %v", err)
	}
	if len(list) != MaxWhitelistLen || !containsKey(list, newcomer) || containsKey(list, execKeys[4]) {
		t.Fatalf("patched list wrong: %v", list)
	}
}

func TestPatchUpdateList_QuorumFromUpdateList(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	seedPending(t, eng)

	newcomer := testKey(88)
	if _, err := eng.PatchUpdateList(context.Background(), testInvestmentID, testVersion, updateKeys[0], newcomer, execQuorum()); !errors.Is(err, ErrUnauthorizedSigner) {
		t.Fatalf("err=%v want=%v", err, ErrUnauthorizedSigner)
	}
	if _, err := eng.PatchUpdateList(context.Background(), testInvestmentID, testVersion, updateKeys[0], newcomer, updateQuorum()); err != nil {
		t.Fatalf("patch: %v", err)
	}
}

func TestReplaceWithdrawList(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	seedPending(t, eng)

	if _, err := eng.ReplaceWithdrawList(context.Background(), testInvestmentID, testVersion, testKeys(30, 6), execQuorum()); !errors.Is(err, ErrWhitelistLengthInvalid) {
		t.Fatalf("err=%v want=%v", err, ErrWhitelistLengthInvalid)
	}
	// Withdraw replacement is authorized by the execute list, not update.
	if _, err := eng.ReplaceWithdrawList(context.Background(), testInvestmentID, testVersion, testKeys(30, 3), updateQuorum()); !errors.Is(err, ErrUnauthorizedSigner) {
		t.Fatalf("err=%v want=%v", err, ErrUnauthorizedSigner)
	}

	inv, err := eng.ReplaceWithdrawList(context.Background(), testInvestmentID, testVersion, testKeys(30, 3), execQuorum())
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	list, err := KeysFromJSON(inv.WithdrawWhitelist)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(list) != 3 || !containsKey(list, testKey(30)) {
		t.Fatalf("withdraw list wrong: %v", list)
	}
}
