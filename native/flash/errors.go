package flash

import "errors"

var (
	// ErrUnauthorizedCaller is returned when a callback does not originate
	// from the canonical pool for the expected token pair.
	ErrUnauthorizedCaller = errors.New("flash adapter: call not authorized")
	// ErrInvalidPayload is returned when the callback payload has the wrong
	// length or cannot be decoded.
	ErrInvalidPayload = errors.New("flash adapter: malformed callback payload")
	// ErrFlashBorrowWrongToken is returned when the pool delivered a leg the
	// adapter did not expect, or delivered nothing at all.
	ErrFlashBorrowWrongToken = errors.New("flash adapter: flash borrow wrong token")
	// ErrFlashBorrowBothTokens is returned when both legs of the flash swap
	// are non-zero.
	ErrFlashBorrowBothTokens = errors.New("flash adapter: flash borrow both tokens")
	// ErrUnderlyingNotInPool is returned when the bond's underlying is not
	// one of the pool's two tokens.
	ErrUnderlyingNotInPool = errors.New("flash adapter: underlying not in pool")
	// ErrCollateralMismatch is returned on the underlying-settled path when
	// the stated collateral differs from the bond's underlying.
	ErrCollateralMismatch = errors.New("flash adapter: collateral must equal underlying")
	// ErrTurnoutNotSatisfied is returned when the realized outcome of the
	// liquidation falls below the caller's declared threshold.
	ErrTurnoutNotSatisfied = errors.New("flash adapter: turnout not satisfied")
	// ErrAmountMismatch is returned when the payload-declared flash amount
	// does not reconcile with what the pool actually charged.
	ErrAmountMismatch = errors.New("flash adapter: declared amount does not match flash loan")
	// ErrPoolInvariant is returned when the locally computed repay amount
	// fails the pool's own post-swap invariant check.
	ErrPoolInvariant = errors.New("flash adapter: computed repay violates pool invariant")
	// ErrSubsidyUnavailable is returned when settlement requires a subsidy
	// and neither the adapter float nor the subsidizer can cover it.
	ErrSubsidyUnavailable = errors.New("flash adapter: subsidy source unavailable")
	// ErrNotOwner is returned when a non-owner tries to reclaim the
	// pre-funded subsidy float.
	ErrNotOwner = errors.New("flash adapter: caller is not the owner")

	errZeroReserves          = errors.New("flash adapter: pool reserves must be positive")
	errExcessiveBorrow       = errors.New("flash adapter: borrow exceeds pool reserves")
	errInvalidAmount         = errors.New("flash adapter: amount must be positive")
	errSwapVenueUnconfigured = errors.New("flash adapter: swap venue not configured")
	errPriceOverflow         = errors.New("flash adapter: sqrt price outside uint256 range")
	errZeroLiquidity         = errors.New("flash adapter: pool liquidity must be positive")
	errVenueTokenMissing     = errors.New("flash adapter: venue pool does not hold swap token")
)
