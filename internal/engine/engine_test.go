package engine

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"vaultshare/internal/models"
	"vaultshare/internal/treasury"
)

const (
	testInvestmentID = "INV000000000001"
	testVersion      = "v001"
	testAccountID    = "ACC000000000001"
)

var testEpoch = time.Unix(1_700_000_000, 0).UTC()

func testKey(i byte) solana.PublicKey {
	var b [32]byte
	b[0] = i
	b[31] = ^i
	return solana.PublicKeyFromBytes(b[:])
}

func testKeys(from, count byte) []solana.PublicKey {
	keys := make([]solana.PublicKey, count)
	for i := byte(0); i < count; i++ {
		keys[i] = testKey(from + i)
	}
	return keys
}

var (
	execKeys     = testKeys(1, 5)
	updateKeys   = testKeys(11, 5)
	withdrawKeys = testKeys(21, 2)

	testProgramID     = testKey(200)
	testPrimaryMint   = testKey(201)
	testSecondaryMint = testKey(202)
)

func execQuorum() []solana.PublicKey   { return execKeys[:3] }
func updateQuorum() []solana.PublicKey { return updateKeys[:3] }

func validSchedule() StageSchedule {
	var s StageSchedule
	for stage := 0; stage < MaxStage; stage++ {
		for year := 0; year < 7; year++ {
			s[stage][year] = 10
		}
	}
	return s
}

func newTestEngine(t *testing.T) (*Engine, *stubStore, *clockwork.FakeClock) {
	t.Helper()
	store := newStubStore()
	clock := clockwork.NewFakeClockAt(testEpoch)
	ledger := treasury.NewLedger(testPrimaryMint, testSecondaryMint)
	eng := New(store, ledger, clock, zap.NewNop(), AssetRegistry{
		ProgramID:     testProgramID,
		PrimaryMint:   testPrimaryMint,
		SecondaryMint: testSecondaryMint,
	}, 890_880)
	return eng, store, clock
}

// seedPending initializes the standard test investment, leaving it pending so
// records can still be added. Its end timestamp sits five years in the past
// so refund year indexes 3-5 are unlocked.
func seedPending(t *testing.T, eng *Engine) *models.Investment {
	t.Helper()
	endAt := testEpoch.Unix() - 5*365*86400
	inv, err := eng.InitializeInvestment(context.Background(), InitializeParams{
		InvestmentID:      testInvestmentID,
		Version:           testVersion,
		Type:              models.InvestmentTypeStandard,
		Schedule:          validSchedule(),
		StartAt:           endAt - 365*86400,
		EndAt:             endAt,
		UpperLimit:        1_000_000_000,
		ExecuteWhitelist:  execKeys,
		UpdateWhitelist:   updateKeys,
		WithdrawWhitelist: withdrawKeys,
		Payer:             updateKeys[0],
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return inv
}

func addTestRecord(t *testing.T, eng *Engine, recordID uint64, batchID uint16, wallet solana.PublicKey, usdt, hcoin uint64, stage uint8) {
	t.Helper()
	_, err := eng.AddRecord(context.Background(), AddRecordParams{
		InvestmentID: testInvestmentID,
		Version:      testVersion,
		BatchID:      batchID,
		RecordID:     recordID,
		AccountID:    testAccountID,
		Wallet:       wallet,
		AmountUsdt:   usdt,
		AmountHcoin:  hcoin,
		Stage:        stage,
		Signers:      updateQuorum(),
	})
	if err != nil {
		t.Fatalf("add record %d: %v", recordID, err)
	}
}

func completeTest(t *testing.T, eng *Engine) {
	t.Helper()
	if _, err := eng.CompleteInvestment(context.Background(), testInvestmentID, testVersion, updateQuorum()); err != nil {
		t.Fatalf("complete: %v", err)
	}
}

// registerTestSettlement registers the account a wallet receives a mint at
// and returns its derived address.
func registerTestSettlement(t *testing.T, eng *Engine, wallet, mint solana.PublicKey) string {
	t.Helper()
	acct, err := eng.RegisterSettlementAccount(context.Background(), wallet, mint)
	if err != nil {
		t.Fatalf("register settlement: %v", err)
	}
	return acct.Address
}
