package flash

import (
	"github.com/ethereum/go-ethereum/common"
)

// authenticateV2 verifies that caller is the pair the factory would have
// deployed for key. The check is pure address recomputation, so a contract
// that merely mimics the pair interface cannot pass it.
func (o *Orchestrator) authenticateV2(caller common.Address, key PoolKey) error {
	if PairAddress(o.cfg.V2Factory, o.cfg.V2InitCodeHash, key) != caller {
		return ErrUnauthorizedCaller
	}
	return nil
}

// authenticateV3 verifies that caller is the pool the factory would have
// deployed for key, fee tier included.
func (o *Orchestrator) authenticateV3(caller common.Address, key PoolKey) error {
	if PoolAddress(o.cfg.V3Factory, o.cfg.V3InitCodeHash, key) != caller {
		return ErrUnauthorizedCaller
	}
	return nil
}

// poolSide reports which side of a pair a token sits on. ok is false when the
// token is not in the pool at all.
func poolSide(token, token0, token1 common.Address) (isToken0, ok bool) {
	switch token {
	case token0:
		return true, true
	case token1:
		return false, true
	default:
		return false, false
	}
}
