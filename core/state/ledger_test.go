package state

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

var (
	testToken  = common.HexToAddress("0x0000000000000000000000000000000000000a01")
	testAlice  = common.HexToAddress("0x0000000000000000000000000000000000000b01")
	testBob    = common.HexToAddress("0x0000000000000000000000000000000000000b02")
	testCredit = big.NewInt(1_000)
)

func TestTransferMovesBalance(t *testing.T) {
	ledger := NewLedger()
	if err := ledger.Mint(testToken, testAlice, testCredit); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := ledger.Transfer(testToken, testAlice, testBob, big.NewInt(400)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got := ledger.BalanceOf(testToken, testAlice); got.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("unexpected sender balance: %s", got)
	}
	if got := ledger.BalanceOf(testToken, testBob); got.Cmp(big.NewInt(400)) != 0 {
		t.Fatalf("unexpected recipient balance: %s", got)
	}
}

func TestTransferRejectsOverdraw(t *testing.T) {
	ledger := NewLedger()
	if err := ledger.Mint(testToken, testAlice, big.NewInt(10)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := ledger.Transfer(testToken, testAlice, testBob, big.NewInt(11)); err != ErrInsufficientBalance {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if err := ledger.Transfer(testToken, testAlice, testBob, big.NewInt(0)); err == nil {
		t.Fatal("expected zero-amount transfer to fail")
	}
}

func TestSnapshotRevertRestoresBalances(t *testing.T) {
	ledger := NewLedger()
	if err := ledger.Mint(testToken, testAlice, testCredit); err != nil {
		t.Fatalf("mint: %v", err)
	}
	snap := ledger.Snapshot()
	if err := ledger.Transfer(testToken, testAlice, testBob, big.NewInt(999)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if err := ledger.Burn(testToken, testBob, big.NewInt(500)); err != nil {
		t.Fatalf("burn: %v", err)
	}
	if err := ledger.RevertToSnapshot(snap); err != nil {
		t.Fatalf("revert: %v", err)
	}
	if got := ledger.BalanceOf(testToken, testAlice); got.Cmp(testCredit) != 0 {
		t.Fatalf("sender balance not restored: %s", got)
	}
	if got := ledger.BalanceOf(testToken, testBob); got.Sign() != 0 {
		t.Fatalf("recipient balance not restored: %s", got)
	}
}

func TestNestedSnapshots(t *testing.T) {
	ledger := NewLedger()
	if err := ledger.Mint(testToken, testAlice, testCredit); err != nil {
		t.Fatalf("mint: %v", err)
	}
	outer := ledger.Snapshot()
	if err := ledger.Transfer(testToken, testAlice, testBob, big.NewInt(100)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	inner := ledger.Snapshot()
	if err := ledger.Transfer(testToken, testAlice, testBob, big.NewInt(100)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if err := ledger.RevertToSnapshot(inner); err != nil {
		t.Fatalf("revert inner: %v", err)
	}
	if got := ledger.BalanceOf(testToken, testBob); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("inner revert lost outer transfer: %s", got)
	}
	if err := ledger.RevertToSnapshot(outer); err != nil {
		t.Fatalf("revert outer: %v", err)
	}
	if got := ledger.BalanceOf(testToken, testBob); got.Sign() != 0 {
		t.Fatalf("outer revert incomplete: %s", got)
	}
	if err := ledger.RevertToSnapshot(inner); err == nil {
		t.Fatal("expected stale snapshot id to be rejected")
	}
}

func TestDiscardSnapshotCommits(t *testing.T) {
	ledger := NewLedger()
	if err := ledger.Mint(testToken, testAlice, testCredit); err != nil {
		t.Fatalf("mint: %v", err)
	}
	snap := ledger.Snapshot()
	if err := ledger.Transfer(testToken, testAlice, testBob, big.NewInt(250)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if err := ledger.DiscardSnapshot(snap); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if got := ledger.BalanceOf(testToken, testBob); got.Cmp(big.NewInt(250)) != 0 {
		t.Fatalf("committed balance lost: %s", got)
	}
	if err := ledger.RevertToSnapshot(snap); err == nil {
		t.Fatal("expected discarded snapshot id to be rejected")
	}
	if next := ledger.Snapshot(); next != snap {
		t.Fatalf("snapshot id not reused after discard: %d", next)
	}
}

func TestDiscardInnerKeepsOuterRevertable(t *testing.T) {
	ledger := NewLedger()
	if err := ledger.Mint(testToken, testAlice, testCredit); err != nil {
		t.Fatalf("mint: %v", err)
	}
	outer := ledger.Snapshot()
	if err := ledger.Transfer(testToken, testAlice, testBob, big.NewInt(100)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	inner := ledger.Snapshot()
	if err := ledger.Transfer(testToken, testAlice, testBob, big.NewInt(100)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if err := ledger.DiscardSnapshot(inner); err != nil {
		t.Fatalf("discard inner: %v", err)
	}
	if err := ledger.RevertToSnapshot(outer); err != nil {
		t.Fatalf("revert outer: %v", err)
	}
	if got := ledger.BalanceOf(testToken, testBob); got.Sign() != 0 {
		t.Fatalf("outer revert missed committed inner changes: %s", got)
	}
	if got := ledger.BalanceOf(testToken, testAlice); got.Cmp(testCredit) != 0 {
		t.Fatalf("sender balance not restored: %s", got)
	}
}
