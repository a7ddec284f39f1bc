package state

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInsufficientBalance is returned when a transfer or burn exceeds the
	// holder's balance in the given token.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")
	errInvalidAmount       = errors.New("ledger: amount must be positive")
	errInvalidSnapshot     = errors.New("ledger: unknown snapshot id")
)

type balanceKey struct {
	token  common.Address
	holder common.Address
}

type journalEntry struct {
	key  balanceKey
	prev *big.Int
}

// Ledger tracks token balances keyed by (token, holder) and records every
// mutation in a journal so a whole sequence of transfers can be rolled back.
// Balances never go negative; all amounts are denominated in the token's
// smallest unit.
type Ledger struct {
	balances map[balanceKey]*big.Int
	journal  []journalEntry
	snaps    []int
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{balances: make(map[balanceKey]*big.Int)}
}

// BalanceOf returns a copy of the holder's balance in the given token.
func (l *Ledger) BalanceOf(token, holder common.Address) *big.Int {
	if bal, ok := l.balances[balanceKey{token, holder}]; ok {
		return new(big.Int).Set(bal)
	}
	return big.NewInt(0)
}

func (l *Ledger) setBalance(key balanceKey, value *big.Int) {
	prev, ok := l.balances[key]
	if ok {
		l.journal = append(l.journal, journalEntry{key: key, prev: new(big.Int).Set(prev)})
	} else {
		l.journal = append(l.journal, journalEntry{key: key})
	}
	l.balances[key] = value
}

// Mint credits newly issued tokens to the holder.
func (l *Ledger) Mint(token, holder common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	key := balanceKey{token, holder}
	l.setBalance(key, new(big.Int).Add(l.BalanceOf(token, holder), amount))
	return nil
}

// Burn destroys tokens held by the holder.
func (l *Ledger) Burn(token, holder common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	bal := l.BalanceOf(token, holder)
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	l.setBalance(balanceKey{token, holder}, bal.Sub(bal, amount))
	return nil
}

// Transfer moves tokens between holders. Zero-amount transfers are rejected so
// callers surface accounting bugs instead of silently settling nothing.
func (l *Ledger) Transfer(token, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	fromBal := l.BalanceOf(token, from)
	if fromBal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	l.setBalance(balanceKey{token, from}, fromBal.Sub(fromBal, amount))
	l.setBalance(balanceKey{token, to}, new(big.Int).Add(l.BalanceOf(token, to), amount))
	return nil
}

// Snapshot marks the current journal position and returns an identifier that
// can later be passed to RevertToSnapshot.
func (l *Ledger) Snapshot() int {
	l.snaps = append(l.snaps, len(l.journal))
	return len(l.snaps) - 1
}

// RevertToSnapshot unwinds every balance change recorded since the snapshot
// was taken. Snapshots taken after the reverted one are discarded.
func (l *Ledger) RevertToSnapshot(id int) error {
	if id < 0 || id >= len(l.snaps) {
		return errInvalidSnapshot
	}
	target := l.snaps[id]
	for i := len(l.journal) - 1; i >= target; i-- {
		entry := l.journal[i]
		if entry.prev == nil {
			delete(l.balances, entry.key)
		} else {
			l.balances[entry.key] = entry.prev
		}
	}
	l.journal = l.journal[:target]
	l.snaps = l.snaps[:id]
	return nil
}

// DiscardSnapshot commits every change recorded since the snapshot was
// taken, releasing it and any later snapshots. The journal is retained while
// an earlier snapshot could still revert past this point and freed once none
// remain.
func (l *Ledger) DiscardSnapshot(id int) error {
	if id < 0 || id >= len(l.snaps) {
		return errInvalidSnapshot
	}
	l.snaps = l.snaps[:id]
	if len(l.snaps) == 0 {
		l.journal = l.journal[:0]
	}
	return nil
}
