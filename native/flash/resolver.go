package flash

import (
	"bytes"
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// PoolKey identifies an AMM pool by its token pair and, for concentrated
// liquidity pools, fee tier. Token ordering is irrelevant to callers; address
// derivation canonicalizes it the same way the factories do.
type PoolKey struct {
	TokenA  common.Address
	TokenB  common.Address
	FeeTier uint32
}

// Canonical returns the key with tokens in the factory's canonical
// lexicographic ordering. Hashing a non-canonical ordering would derive an
// address no factory ever deployed.
func (k PoolKey) Canonical() PoolKey {
	if bytes.Compare(k.TokenA.Bytes(), k.TokenB.Bytes()) > 0 {
		k.TokenA, k.TokenB = k.TokenB, k.TokenA
	}
	return k
}

// PairAddress recomputes the deterministic address of a constant-product
// pair deployed by factory, reproducing the factory's own CREATE2 scheme
// (salt = keccak(token0 || token1)). No on-chain lookup is involved.
func PairAddress(factory common.Address, initCodeHash common.Hash, key PoolKey) common.Address {
	key = key.Canonical()
	salt := ethcrypto.Keccak256Hash(key.TokenA.Bytes(), key.TokenB.Bytes())
	return ethcrypto.CreateAddress2(factory, salt, initCodeHash.Bytes())
}

// PoolAddress recomputes the deterministic address of a concentrated
// liquidity pool (salt = keccak(abi.encode(token0, token1, fee))).
func PoolAddress(factory common.Address, initCodeHash common.Hash, key PoolKey) common.Address {
	key = key.Canonical()
	var fee [32]byte
	binary.BigEndian.PutUint32(fee[28:], key.FeeTier)
	salt := ethcrypto.Keccak256Hash(
		common.LeftPadBytes(key.TokenA.Bytes(), 32),
		common.LeftPadBytes(key.TokenB.Bytes(), 32),
		fee[:],
	)
	return ethcrypto.CreateAddress2(factory, salt, initCodeHash.Bytes())
}
