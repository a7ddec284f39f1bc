package flash

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"tenorfi/core/types"
)

// EventTypeSettlement is emitted once per successfully settled flash
// liquidation.
const EventTypeSettlement = "flash.liquidation"

// NewSettlementEvent records the full accounting of a settled liquidation.
func NewSettlementEvent(variant string, liquidator, borrower, bond common.Address, swapAmount, seizeAmount, repayAmount, subsidyAmount, profitAmount *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeSettlement,
		Attributes: map[string]string{
			"variant":       variant,
			"liquidator":    liquidator.Hex(),
			"borrower":      borrower.Hex(),
			"bond":          bond.Hex(),
			"swapAmount":    swapAmount.String(),
			"seizeAmount":   seizeAmount.String(),
			"repayAmount":   repayAmount.String(),
			"subsidyAmount": subsidyAmount.String(),
			"profitAmount":  profitAmount.String(),
		},
	}
}
