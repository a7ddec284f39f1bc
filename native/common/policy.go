package common

import (
	"errors"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// ErrActionDisallowed is returned when the policy registry forbids the
// requested action for the asset involved.
var ErrActionDisallowed = errors.New("action disallowed for asset")

// Actions gated by the policy registry.
const (
	ActionBorrow    = "borrow"
	ActionRepay     = "repay"
	ActionLiquidate = "liquidate"
)

// PolicyView exposes the allow/deny decisions of the protocol's policy
// registry. Implementations are expected to be pure views over governance
// state.
type PolicyView interface {
	Allowed(action string, asset ethcommon.Address) bool
}

// Guard checks the policy registry before an engine mutates state. A nil view
// permits everything so modules stay usable in isolation.
func Guard(p PolicyView, action string, asset ethcommon.Address) error {
	if p == nil || action == "" {
		return nil
	}
	if !p.Allowed(action, asset) {
		return ErrActionDisallowed
	}
	return nil
}
