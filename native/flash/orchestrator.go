package flash

import (
	"errors"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"tenorfi/core/events"
	"tenorfi/core/state"
)

// Variant labels for logging and metrics.
const (
	VariantV2Collateral = "v2-collateral"
	VariantV2Underlying = "v2-underlying"
	VariantV3           = "v3"
)

// Metrics receives one observation per callback with the variant and the
// coarse outcome class.
type Metrics interface {
	ObserveLiquidation(variant, outcome string)
}

// AdapterConfig pins the adapter identity and the factory parameters used to
// recompute pool addresses during caller authentication.
type AdapterConfig struct {
	// Adapter is the ledger account that receives flash borrows and holds
	// any pre-funded float.
	Adapter common.Address
	// Owner may reclaim float from the adapter account.
	Owner common.Address
	// Subsidizer, when set, covers settlement shortfalls the adapter's own
	// float cannot.
	Subsidizer common.Address

	V2Factory      common.Address
	V2InitCodeHash common.Hash
	V3Factory      common.Address
	V3InitCodeHash common.Hash
}

// Orchestrator drives flash-swap liquidations against the lending protocol.
// Each callback runs atomically: any failure reverts both the token ledger
// and the protocol's positions.
type Orchestrator struct {
	cfg      AdapterConfig
	ledger   *state.Ledger
	protocol LendingProtocol
	v2Pools  V2PoolSource
	v3Pools  V3PoolSource
	venue    SwapVenue
	logger   *slog.Logger
	emitter  events.Emitter
	metrics  Metrics
}

// New wires an orchestrator over the ledger and protocol. Pool sources may be
// nil when the corresponding variant is unused.
func New(cfg AdapterConfig, ledger *state.Ledger, protocol LendingProtocol, v2Pools V2PoolSource, v3Pools V3PoolSource) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		ledger:   ledger,
		protocol: protocol,
		v2Pools:  v2Pools,
		v3Pools:  v3Pools,
		logger:   slog.Default(),
		emitter:  events.NoopEmitter{},
	}
}

// SetSwapVenue installs the venue used to rotate seized collateral into the
// borrowed asset on the V3 path.
func (o *Orchestrator) SetSwapVenue(venue SwapVenue) { o.venue = venue }

// SetLogger overrides the default structured logger.
func (o *Orchestrator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		o.logger = logger
	}
}

// SetEmitter overrides the default no-op event emitter.
func (o *Orchestrator) SetEmitter(emitter events.Emitter) {
	if emitter != nil {
		o.emitter = emitter
	}
}

// SetMetrics installs the liquidation metrics sink.
func (o *Orchestrator) SetMetrics(metrics Metrics) { o.metrics = metrics }

// settlement is the state a variant hands back for the shared settlement
// tail. All amounts are denominated in settleAsset.
type settlement struct {
	variant     string
	pool        common.Address
	sender      common.Address
	borrower    common.Address
	bond        common.Address
	settleAsset common.Address
	// entryFloat is the adapter's settle-asset balance at callback entry
	// minus the flash-borrowed portion, i.e. the pre-funded float.
	entryFloat  *big.Int
	repayPool   *big.Int
	turnout     *big.Int
	swapAmount  *big.Int
	seizeAmount *big.Int
}

// run executes a variant callback atomically. fn performs authentication,
// liquidation, and any venue swap, then returns the settlement inputs; run
// finishes with the shared turnout/subsidy/repay/profit tail, reverts
// everything on any error, and releases the snapshots once settlement
// commits.
func (o *Orchestrator) run(variant string, fn func() (*settlement, error)) error {
	ledgerSnap := o.ledger.Snapshot()
	protocolSnap := o.protocol.Snapshot()
	s, err := fn()
	if err == nil {
		err = o.settle(s)
	}
	if err != nil {
		if revertErr := o.ledger.RevertToSnapshot(ledgerSnap); revertErr != nil {
			err = errors.Join(err, revertErr)
		}
		if revertErr := o.protocol.RevertToSnapshot(protocolSnap); revertErr != nil {
			err = errors.Join(err, revertErr)
		}
		o.observe(variant, err)
		o.logger.Warn("flash liquidation reverted", "variant", variant, "error", err)
		return err
	}
	if discardErr := o.ledger.DiscardSnapshot(ledgerSnap); discardErr != nil {
		err = errors.Join(err, discardErr)
	}
	if discardErr := o.protocol.DiscardSnapshot(protocolSnap); discardErr != nil {
		err = errors.Join(err, discardErr)
	}
	o.observe(variant, err)
	return err
}

func (o *Orchestrator) settle(s *settlement) error {
	balance := o.ledger.BalanceOf(s.settleAsset, o.cfg.Adapter)
	outcome := new(big.Int).Sub(balance, s.entryFloat)
	outcome.Sub(outcome, s.repayPool)
	if outcome.Cmp(s.turnout) < 0 {
		return ErrTurnoutNotSatisfied
	}

	profit := big.NewInt(0)
	subsidy := big.NewInt(0)
	if outcome.Sign() > 0 {
		profit = outcome
	} else if outcome.Sign() < 0 {
		subsidy = new(big.Int).Neg(outcome)
	}

	// The adapter's own float absorbs a shortfall first; only the part the
	// float cannot cover is drawn from the subsidizer.
	if shortfall := new(big.Int).Sub(s.repayPool, balance); shortfall.Sign() > 0 {
		if o.cfg.Subsidizer == (common.Address{}) {
			return ErrSubsidyUnavailable
		}
		if err := o.ledger.Transfer(s.settleAsset, o.cfg.Subsidizer, o.cfg.Adapter, shortfall); err != nil {
			return ErrSubsidyUnavailable
		}
	}
	if err := o.ledger.Transfer(s.settleAsset, o.cfg.Adapter, s.pool, s.repayPool); err != nil {
		return err
	}
	if profit.Sign() > 0 {
		if err := o.ledger.Transfer(s.settleAsset, o.cfg.Adapter, s.sender, profit); err != nil {
			return err
		}
	}

	o.emitter.Emit(NewSettlementEvent(s.variant, s.sender, s.borrower, s.bond, s.swapAmount, s.seizeAmount, s.repayPool, subsidy, profit))
	o.logger.Info("flash liquidation settled",
		"variant", s.variant,
		"borrower", s.borrower.Hex(),
		"bond", s.bond.Hex(),
		"swapAmount", s.swapAmount.String(),
		"seizeAmount", s.seizeAmount.String(),
		"repayAmount", s.repayPool.String(),
		"subsidyAmount", subsidy.String(),
		"profitAmount", profit.String(),
	)
	return nil
}

// ReclaimSubsidy lets the configured owner withdraw float from the adapter
// account between transactions.
func (o *Orchestrator) ReclaimSubsidy(caller, token common.Address, amount *big.Int) error {
	if caller != o.cfg.Owner {
		return ErrNotOwner
	}
	return o.ledger.Transfer(token, o.cfg.Adapter, caller, amount)
}

func (o *Orchestrator) observe(variant string, err error) {
	if o.metrics == nil {
		return
	}
	o.metrics.ObserveLiquidation(variant, outcomeLabel(err))
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "settled"
	case errors.Is(err, ErrUnauthorizedCaller):
		return "unauthorized"
	case errors.Is(err, ErrInvalidPayload), errors.Is(err, ErrAmountMismatch):
		return "malformed"
	case errors.Is(err, ErrUnderlyingNotInPool), errors.Is(err, ErrCollateralMismatch),
		errors.Is(err, ErrFlashBorrowWrongToken), errors.Is(err, ErrFlashBorrowBothTokens):
		return "membership"
	case errors.Is(err, ErrTurnoutNotSatisfied):
		return "turnout"
	default:
		return "protocol"
	}
}
