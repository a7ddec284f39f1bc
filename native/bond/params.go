package bond

// RiskParameters groups the governance-controlled safety limits applied to
// borrowing and liquidation.
type RiskParameters struct {
	// LiquidationIncentiveBps rewards liquidators with a premium over the
	// oracle-implied collateral value, expressed in basis points
	// (e.g. 11000 = 110%).
	LiquidationIncentiveBps uint64
}
