package bond

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"tenorfi/core/events"
	"tenorfi/core/state"
	nativecommon "tenorfi/native/common"
)

var (
	// ErrBondNotListed is returned when the referenced debt instrument is not
	// registered with the engine.
	ErrBondNotListed = errors.New("bond engine: bond not listed")
	// ErrCollateralNotListed is returned when the referenced collateral asset
	// is not registered with the engine.
	ErrCollateralNotListed = errors.New("bond engine: collateral not listed")
	// ErrNoShortfall is returned when a liquidation is attempted against a
	// healthy position.
	ErrNoShortfall = errors.New("bond engine: borrower has no liquidity shortfall")

	errNilLedger           = errors.New("bond engine: ledger not configured")
	errNilOracle           = errors.New("bond engine: oracle not configured")
	errInvalidAmount       = errors.New("bond engine: amount must be positive")
	errBondMatured         = errors.New("bond engine: bond past maturity")
	errBondAlreadyListed   = errors.New("bond engine: bond already listed")
	errBorrowCapacity      = errors.New("bond engine: insufficient collateral for borrow")
	errNoDebtToRepay       = errors.New("bond engine: no outstanding debt to repay")
	errInsufficientCustody = errors.New("bond engine: collateral custody underfunded")
	errInvalidSnapshot     = errors.New("bond engine: unknown snapshot id")
	errZeroOraclePrice     = errors.New("bond engine: oracle returned non-positive price")
)

// Oracle exposes the aggregated price feed consumed by the engine. Prices are
// USD wei (18 decimals) per whole token.
type Oracle interface {
	PriceOf(asset common.Address) (*big.Int, error)
}

// Engine implements the collateralized debt ledger of the fixed-income
// protocol: collateral custody, debt issuance against listed bonds, and the
// liquidation entry point consumed by the flash-swap adapters.
type Engine struct {
	ledger            *state.Ledger
	oracle            Oracle
	moduleAddress     common.Address
	collateralAddress common.Address
	params            RiskParameters
	policy            nativecommon.PolicyView
	emitter           events.Emitter
	now               int64

	bonds       map[common.Address]Bond
	collaterals map[common.Address]Collateral
	positions   map[common.Address]*Position
	snaps       []map[common.Address]*Position
}

// NewEngine constructs a bond engine wired to the shared token ledger and
// price oracle. moduleAddr custodies repaid underlying, collateralAddr
// custodies locked collateral.
func NewEngine(ledger *state.Ledger, oracle Oracle, moduleAddr, collateralAddr common.Address, params RiskParameters) *Engine {
	return &Engine{
		ledger:            ledger,
		oracle:            oracle,
		moduleAddress:     moduleAddr,
		collateralAddress: collateralAddr,
		params:            params,
		emitter:           events.NoopEmitter{},
		bonds:             make(map[common.Address]Bond),
		collaterals:       make(map[common.Address]Collateral),
		positions:         make(map[common.Address]*Position),
	}
}

// SetPolicy wires the policy registry consulted before state-changing flows.
func (e *Engine) SetPolicy(p nativecommon.PolicyView) { e.policy = p }

// SetEmitter wires the event sink. A nil emitter silently discards events.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetTime records the timestamp used for maturity checks.
func (e *Engine) SetTime(now int64) { e.now = now }

// ListBond registers a debt instrument.
func (e *Engine) ListBond(b Bond) error {
	if _, ok := e.bonds[b.Token]; ok {
		return errBondAlreadyListed
	}
	e.bonds[b.Token] = b
	return nil
}

// ListCollateral registers an asset accepted as collateral.
func (e *Engine) ListCollateral(c Collateral) error {
	if c.RatioBps == 0 {
		return errors.New("bond engine: collateral ratio must be positive")
	}
	e.collaterals[c.Token] = c
	return nil
}

// BondUnderlying resolves the underlying asset of a listed bond.
func (e *Engine) BondUnderlying(bondToken common.Address) (common.Address, error) {
	b, ok := e.bonds[bondToken]
	if !ok {
		return common.Address{}, ErrBondNotListed
	}
	return b.Underlying, nil
}

// DepositCollateral locks collateral for the borrower inside the protocol
// custody account.
func (e *Engine) DepositCollateral(borrower, asset common.Address, amount *big.Int) error {
	if e.ledger == nil {
		return errNilLedger
	}
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	if _, ok := e.collaterals[asset]; !ok {
		return ErrCollateralNotListed
	}
	if err := e.ledger.Transfer(asset, borrower, e.collateralAddress, amount); err != nil {
		return err
	}
	position := e.ensurePosition(borrower)
	locked := position.CollateralAmounts[asset]
	if locked == nil {
		locked = big.NewInt(0)
	}
	position.CollateralAmounts[asset] = new(big.Int).Add(locked, amount)
	return nil
}

// Borrow issues debt against the borrower's collateral and pays out the
// underlying from the module treasury. The bond must not be past maturity and
// the resulting position must retain its required collateralization ratio.
func (e *Engine) Borrow(borrower, bondToken common.Address, amount *big.Int) error {
	if e.ledger == nil {
		return errNilLedger
	}
	if amount == nil || amount.Sign() <= 0 {
		return errInvalidAmount
	}
	b, ok := e.bonds[bondToken]
	if !ok {
		return ErrBondNotListed
	}
	if err := nativecommon.Guard(e.policy, nativecommon.ActionBorrow, bondToken); err != nil {
		return err
	}
	if b.Maturity != 0 && e.now >= b.Maturity {
		return errBondMatured
	}

	position := e.ensurePosition(borrower)
	debt := position.DebtAmounts[bondToken]
	if debt == nil {
		debt = big.NewInt(0)
	}
	projected := new(big.Int).Add(debt, amount)

	capacity, debtValue, err := e.accountLimits(position, bondToken, projected)
	if err != nil {
		return err
	}
	if debtValue.Cmp(capacity) > 0 {
		return errBorrowCapacity
	}

	if err := e.ledger.Transfer(b.Underlying, e.moduleAddress, borrower, amount); err != nil {
		return err
	}
	position.DebtAmounts[bondToken] = projected
	return nil
}

// Repay reduces the borrower's outstanding debt, clamping to the amount owed.
// The actually repaid amount is returned.
func (e *Engine) Repay(borrower, bondToken common.Address, amount *big.Int) (*big.Int, error) {
	if e.ledger == nil {
		return nil, errNilLedger
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, errInvalidAmount
	}
	b, ok := e.bonds[bondToken]
	if !ok {
		return nil, ErrBondNotListed
	}
	if err := nativecommon.Guard(e.policy, nativecommon.ActionRepay, bondToken); err != nil {
		return nil, err
	}
	position := e.ensurePosition(borrower)
	debt := position.DebtAmounts[bondToken]
	if debt == nil || debt.Sign() == 0 {
		return nil, errNoDebtToRepay
	}
	repay := new(big.Int).Set(amount)
	if repay.Cmp(debt) > 0 {
		repay = new(big.Int).Set(debt)
	}
	if err := e.ledger.Transfer(b.Underlying, borrower, e.moduleAddress, repay); err != nil {
		return nil, err
	}
	position.DebtAmounts[bondToken] = new(big.Int).Sub(debt, repay)
	return repay, nil
}

// AccountShortfall returns the signed USD (18 decimals) amount by which the
// borrower's debt value exceeds their risk-adjusted borrow capacity. A
// positive result means the position is eligible for liquidation.
func (e *Engine) AccountShortfall(borrower common.Address) (*big.Int, error) {
	position := e.ensurePosition(borrower)
	capacity, debtValue, err := e.accountLimits(position, common.Address{}, nil)
	if err != nil {
		return nil, err
	}
	return debtValue.Sub(debtValue, capacity), nil
}

// SeizableCollateralAmount mirrors the liquidation-incentive formula: the
// collateral a liquidator is entitled to for repaying repayAmount of the
// bond's underlying. Rounds down so the protocol never over-releases
// collateral.
func (e *Engine) SeizableCollateralAmount(bondToken common.Address, repayAmount *big.Int, collateral common.Address) (*big.Int, error) {
	if repayAmount == nil || repayAmount.Sign() <= 0 {
		return nil, errInvalidAmount
	}
	b, ok := e.bonds[bondToken]
	if !ok {
		return nil, ErrBondNotListed
	}
	c, ok := e.collaterals[collateral]
	if !ok {
		return nil, ErrCollateralNotListed
	}
	underlyingPrice, collateralPrice, err := e.pairPrices(b.Underlying, collateral)
	if err != nil {
		return nil, err
	}
	incentive := new(big.Int).SetUint64(e.params.LiquidationIncentiveBps)
	numerator := new(big.Int).Mul(normalize(repayAmount, b.UnderlyingDecimals), underlyingPrice)
	numerator.Mul(numerator, incentive)
	denominator := new(big.Int).Mul(collateralPrice, basisPoints)
	denominator.Mul(denominator, precisionScalar(c.Decimals))
	return floorDiv(numerator, denominator), nil
}

// RepayAmount is the inverse query: the underlying needed to be entitled to
// seize seizableAmount of collateral. Rounds up so liquidators can never
// underpay for a target seizure.
func (e *Engine) RepayAmount(collateral common.Address, seizableAmount *big.Int, bondToken common.Address) (*big.Int, error) {
	if seizableAmount == nil || seizableAmount.Sign() <= 0 {
		return nil, errInvalidAmount
	}
	b, ok := e.bonds[bondToken]
	if !ok {
		return nil, ErrBondNotListed
	}
	c, ok := e.collaterals[collateral]
	if !ok {
		return nil, ErrCollateralNotListed
	}
	underlyingPrice, collateralPrice, err := e.pairPrices(b.Underlying, collateral)
	if err != nil {
		return nil, err
	}
	incentive := new(big.Int).SetUint64(e.params.LiquidationIncentiveBps)
	numerator := new(big.Int).Mul(normalize(seizableAmount, c.Decimals), collateralPrice)
	numerator.Mul(numerator, basisPoints)
	denominator := new(big.Int).Mul(underlyingPrice, incentive)
	denominator.Mul(denominator, precisionScalar(b.UnderlyingDecimals))
	return ceilDiv(numerator, denominator), nil
}

// Liquidate lets a third party repay part of an undercollateralized
// borrower's debt in exchange for a discounted amount of their collateral.
// The seized collateral amount is returned. Fails when the position has no
// shortfall, the bond or collateral is not listed, or policy disallows
// liquidation.
func (e *Engine) Liquidate(liquidator, borrower, bondToken common.Address, repayAmount *big.Int, collateral common.Address) (*big.Int, error) {
	if e.ledger == nil {
		return nil, errNilLedger
	}
	if repayAmount == nil || repayAmount.Sign() <= 0 {
		return nil, errInvalidAmount
	}
	b, ok := e.bonds[bondToken]
	if !ok {
		return nil, ErrBondNotListed
	}
	if _, ok := e.collaterals[collateral]; !ok {
		return nil, ErrCollateralNotListed
	}
	if err := nativecommon.Guard(e.policy, nativecommon.ActionLiquidate, bondToken); err != nil {
		return nil, err
	}

	position := e.ensurePosition(borrower)
	debt := position.DebtAmounts[bondToken]
	if debt == nil || debt.Sign() == 0 {
		return nil, errNoDebtToRepay
	}
	shortfall, err := e.AccountShortfall(borrower)
	if err != nil {
		return nil, err
	}
	if shortfall.Sign() <= 0 {
		return nil, ErrNoShortfall
	}

	repay := new(big.Int).Set(repayAmount)
	if repay.Cmp(debt) > 0 {
		repay = new(big.Int).Set(debt)
	}
	seize, err := e.SeizableCollateralAmount(bondToken, repay, collateral)
	if err != nil {
		return nil, err
	}
	locked := position.CollateralAmounts[collateral]
	if locked == nil {
		locked = big.NewInt(0)
	}
	if seize.Cmp(locked) > 0 {
		// Clamp to the collateral actually locked and shrink the repay
		// obligation accordingly.
		seize = new(big.Int).Set(locked)
		clamped, err := e.RepayAmount(collateral, seize, bondToken)
		if err != nil {
			return nil, err
		}
		if clamped.Cmp(repay) < 0 {
			repay = clamped
		}
	}
	if seize.Sign() == 0 {
		return nil, errInsufficientCustody
	}

	if err := e.ledger.Transfer(b.Underlying, liquidator, e.moduleAddress, repay); err != nil {
		return nil, err
	}
	if err := e.ledger.Transfer(collateral, e.collateralAddress, liquidator, seize); err != nil {
		return nil, err
	}

	position.DebtAmounts[bondToken] = new(big.Int).Sub(debt, repay)
	position.CollateralAmounts[collateral] = new(big.Int).Sub(locked, seize)

	e.emitter.Emit(NewLiquidationEvent(liquidator, borrower, bondToken, repay, collateral, seize))
	return seize, nil
}

// Snapshot captures the current position set so a failed downstream
// settlement can undo the liquidation itself.
func (e *Engine) Snapshot() int {
	copied := make(map[common.Address]*Position, len(e.positions))
	for addr, position := range e.positions {
		copied[addr] = position.Clone()
	}
	e.snaps = append(e.snaps, copied)
	return len(e.snaps) - 1
}

// RevertToSnapshot restores the position set captured by Snapshot. Later
// snapshots are discarded.
func (e *Engine) RevertToSnapshot(id int) error {
	if id < 0 || id >= len(e.snaps) {
		return errInvalidSnapshot
	}
	e.positions = e.snaps[id]
	e.snaps = e.snaps[:id]
	return nil
}

// DiscardSnapshot drops the captured position set once the settlement it
// guarded has committed. Each snapshot holds a full copy, so earlier ones
// stay usable.
func (e *Engine) DiscardSnapshot(id int) error {
	if id < 0 || id >= len(e.snaps) {
		return errInvalidSnapshot
	}
	e.snaps = e.snaps[:id]
	return nil
}

func (e *Engine) ensurePosition(borrower common.Address) *Position {
	position, ok := e.positions[borrower]
	if !ok {
		position = &Position{
			Borrower:          borrower,
			CollateralAmounts: make(map[common.Address]*big.Int),
			DebtAmounts:       make(map[common.Address]*big.Int),
		}
		e.positions[borrower] = position
	}
	return position
}

// accountLimits values the position and returns (capacity, debtValue) in USD
// wei. When projectedBond is non-zero the projected debt amount replaces the
// recorded debt for that bond.
func (e *Engine) accountLimits(position *Position, projectedBond common.Address, projectedDebt *big.Int) (*big.Int, *big.Int, error) {
	if e.oracle == nil {
		return nil, nil, errNilOracle
	}
	capacity := big.NewInt(0)
	for token, amount := range position.CollateralAmounts {
		if amount.Sign() == 0 {
			continue
		}
		c, ok := e.collaterals[token]
		if !ok {
			return nil, nil, ErrCollateralNotListed
		}
		price, err := e.assetPrice(token)
		if err != nil {
			return nil, nil, err
		}
		value := usdValue(amount, c.Decimals, price)
		value.Mul(value, basisPoints)
		value.Quo(value, new(big.Int).SetUint64(c.RatioBps))
		capacity.Add(capacity, value)
	}

	debtValue := big.NewInt(0)
	seen := false
	for token, amount := range position.DebtAmounts {
		debt := amount
		if token == projectedBond && projectedDebt != nil {
			debt = projectedDebt
			seen = true
		}
		if debt.Sign() == 0 {
			continue
		}
		b, ok := e.bonds[token]
		if !ok {
			return nil, nil, ErrBondNotListed
		}
		price, err := e.assetPrice(b.Underlying)
		if err != nil {
			return nil, nil, err
		}
		debtValue.Add(debtValue, usdValue(debt, b.UnderlyingDecimals, price))
	}
	if !seen && projectedDebt != nil && projectedDebt.Sign() > 0 {
		b, ok := e.bonds[projectedBond]
		if !ok {
			return nil, nil, ErrBondNotListed
		}
		price, err := e.assetPrice(b.Underlying)
		if err != nil {
			return nil, nil, err
		}
		debtValue.Add(debtValue, usdValue(projectedDebt, b.UnderlyingDecimals, price))
	}
	return capacity, debtValue, nil
}

func (e *Engine) assetPrice(asset common.Address) (*big.Int, error) {
	price, err := e.oracle.PriceOf(asset)
	if err != nil {
		return nil, err
	}
	if price == nil || price.Sign() <= 0 {
		return nil, errZeroOraclePrice
	}
	return price, nil
}

func (e *Engine) pairPrices(underlying, collateral common.Address) (*big.Int, *big.Int, error) {
	if e.oracle == nil {
		return nil, nil, errNilOracle
	}
	underlyingPrice, err := e.assetPrice(underlying)
	if err != nil {
		return nil, nil, err
	}
	collateralPrice, err := e.assetPrice(collateral)
	if err != nil {
		return nil, nil, err
	}
	return underlyingPrice, collateralPrice, nil
}
