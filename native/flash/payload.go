package flash

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// CallbackParams carries the liquidation request through the pool's swap
// callback. The V2 encoding omits PoolFee and UnderlyingAmount.
type CallbackParams struct {
	Borrower   common.Address
	Bond       common.Address
	Collateral common.Address
	// PoolFee is the V3 fee tier in hundredths of a basis point.
	PoolFee uint32
	// Turnout is the minimum acceptable settlement-asset outcome. Negative
	// values authorize a bounded subsidy.
	Turnout *big.Int
	// UnderlyingAmount is the declared V3 flash amount, cross-checked
	// against the fee the pool reports.
	UnderlyingAmount *big.Int
}

const (
	v2PayloadLength = 128
	v3PayloadLength = 192
)

var (
	v2PayloadArgs = abi.Arguments{
		{Name: "borrower", Type: mustABIType("address")},
		{Name: "bond", Type: mustABIType("address")},
		{Name: "collateral", Type: mustABIType("address")},
		{Name: "turnout", Type: mustABIType("int256")},
	}
	v3PayloadArgs = abi.Arguments{
		{Name: "borrower", Type: mustABIType("address")},
		{Name: "bond", Type: mustABIType("address")},
		{Name: "collateral", Type: mustABIType("address")},
		{Name: "poolFee", Type: mustABIType("uint24")},
		{Name: "turnout", Type: mustABIType("int256")},
		{Name: "underlyingAmount", Type: mustABIType("uint256")},
	}
)

func mustABIType(name string) abi.Type {
	t, err := abi.NewType(name, "", nil)
	if err != nil {
		panic(fmt.Sprintf("flash adapter: abi type %s: %v", name, err))
	}
	return t
}

// EncodeV2Params packs params for the V2 swap callback.
func EncodeV2Params(params CallbackParams) ([]byte, error) {
	if params.Turnout == nil {
		return nil, ErrInvalidPayload
	}
	return v2PayloadArgs.Pack(params.Borrower, params.Bond, params.Collateral, params.Turnout)
}

// DecodeV2Params unpacks a V2 callback payload. The payload must be exactly
// four words; anything else is rejected before field interpretation.
func DecodeV2Params(data []byte) (CallbackParams, error) {
	if len(data) != v2PayloadLength {
		return CallbackParams{}, ErrInvalidPayload
	}
	values, err := v2PayloadArgs.Unpack(data)
	if err != nil {
		return CallbackParams{}, ErrInvalidPayload
	}
	return CallbackParams{
		Borrower:   values[0].(common.Address),
		Bond:       values[1].(common.Address),
		Collateral: values[2].(common.Address),
		Turnout:    values[3].(*big.Int),
	}, nil
}

// EncodeV3Params packs params for the V3 flash callback.
func EncodeV3Params(params CallbackParams) ([]byte, error) {
	if params.Turnout == nil || params.UnderlyingAmount == nil {
		return nil, ErrInvalidPayload
	}
	return v3PayloadArgs.Pack(
		params.Borrower,
		params.Bond,
		params.Collateral,
		new(big.Int).SetUint64(uint64(params.PoolFee)),
		params.Turnout,
		params.UnderlyingAmount,
	)
}

// DecodeV3Params unpacks a V3 callback payload, rejecting any length other
// than the six-word canonical encoding.
func DecodeV3Params(data []byte) (CallbackParams, error) {
	if len(data) != v3PayloadLength {
		return CallbackParams{}, ErrInvalidPayload
	}
	values, err := v3PayloadArgs.Unpack(data)
	if err != nil {
		return CallbackParams{}, ErrInvalidPayload
	}
	poolFee := values[3].(*big.Int)
	if !poolFee.IsUint64() || poolFee.Uint64() > 1<<24-1 {
		return CallbackParams{}, ErrInvalidPayload
	}
	return CallbackParams{
		Borrower:         values[0].(common.Address),
		Bond:             values[1].(common.Address),
		Collateral:       values[2].(common.Address),
		PoolFee:          uint32(poolFee.Uint64()),
		Turnout:          values[4].(*big.Int),
		UnderlyingAmount: values[5].(*big.Int),
	}, nil
}
