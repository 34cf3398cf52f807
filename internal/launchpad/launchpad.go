// Package launchpad is the facade over the contract gateway: it ties token
// discovery, market snapshots, trade quoting and the per-action transaction
// trackers into the surface the HTTP layer serves. All write actions pass
// the network guard first and run exactly one transaction per logical action.
package launchpad

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/fairpraem-client/internal/codec"
	"github.com/yourorg/fairpraem-client/internal/config"
	"github.com/yourorg/fairpraem-client/internal/discovery"
	"github.com/yourorg/fairpraem-client/internal/estimator"
	"github.com/yourorg/fairpraem-client/internal/gateway"
	"github.com/yourorg/fairpraem-client/internal/model"
	"github.com/yourorg/fairpraem-client/internal/netguard"
	"github.com/yourorg/fairpraem-client/internal/notify"
	"github.com/yourorg/fairpraem-client/internal/snapshot"
	"github.com/yourorg/fairpraem-client/internal/txtracker"
	"github.com/yourorg/fairpraem-client/internal/types"
)

var (
	// ErrGraduated blocks curve sells on tokens that have moved to the DEX.
	ErrGraduated = errors.New("token has graduated, sell on the DEX instead")

	// ErrMissingField signals an empty required launch parameter.
	ErrMissingField = errors.New("name and symbol are required")

	// ErrBadDirection rejects a trade side that is neither buy nor sell.
	ErrBadDirection = errors.New("direction must be buy or sell")
)

// FactoryStats is the protocol-level dashboard state of the core contract.
// Pointer fields are nil when the underlying read failed.
type FactoryStats struct {
	Name                  string
	Symbol                string
	TotalSupply           *big.Int
	SignerBalance         *big.Int
	GovernanceVault       *common.Address
	InitialLiquidityAdded *bool
	DeployTime            *big.Int
	ReleasedIncentive     *big.Int
	Incomplete            bool
}

// Gateway is the slice of the contract access layer the facade consumes.
// *gateway.Client satisfies it.
type Gateway interface {
	gateway.ReceiptSource

	Factory(addr common.Address) gateway.Factory
	Token(addr common.Address) gateway.BondingToken
	ChainID() *big.Int
	SignerAddress() common.Address
}

// Client aggregates the launchpad state for one factory contract.
type Client struct {
	cfg      config.Config
	gw       Gateway
	factory  gateway.Factory
	guard    *netguard.Guard
	engine   *discovery.Engine
	reader   *snapshot.Reader
	notifier *notify.Notifier
	log      *logrus.Entry

	// trackCtx outlives individual requests so confirmation polling is not
	// cut short when an HTTP handler returns.
	trackCtx context.Context

	mu         sync.Mutex
	estimators map[common.Address]*estimator.Estimator
	trackers   map[string]*txtracker.Tracker
	known      map[common.Address]struct{}
}

// New wires the facade over an already-dialed gateway client.
func New(ctx context.Context, cfg config.Config, gw Gateway, notifier *notify.Notifier) *Client {
	c := &Client{
		cfg:        cfg,
		gw:         gw,
		factory:    gw.Factory(common.HexToAddress(cfg.CoreAddress)),
		guard:      netguard.New(cfg.SupportedChain),
		notifier:   notifier,
		log:        logrus.WithField("component", "launchpad"),
		trackCtx:   ctx,
		estimators: make(map[common.Address]*estimator.Estimator),
		trackers:   make(map[string]*txtracker.Tracker),
		known:      make(map[common.Address]struct{}),
	}
	c.reader = snapshot.New(func(addr common.Address) gateway.BondingToken {
		return gw.Token(addr)
	})
	c.engine = discovery.New(c.factory, discovery.Options{
		MaxProbeIndex:   cfg.MaxProbeIndex,
		RefreshInterval: cfg.RefreshInterval,
		EventDebounce:   cfg.EventDebounce,
		OnUpdate:        c.onDiscoveryUpdate,
	})
	return c
}

// Run drives the discovery loop until ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	return c.engine.Run(ctx)
}

// Refresh forces one discovery pass.
func (c *Client) Refresh(ctx context.Context) {
	c.engine.Refresh(ctx)
}

// onDiscoveryUpdate pushes a notification for each address not seen before.
func (c *Client) onDiscoveryUpdate(tokens []common.Address) {
	c.mu.Lock()
	var fresh []common.Address
	for _, addr := range tokens {
		if _, seen := c.known[addr]; !seen {
			c.known[addr] = struct{}{}
			fresh = append(fresh, addr)
		}
	}
	c.mu.Unlock()

	if len(fresh) > 0 {
		c.log.WithField("new_tokens", len(fresh)).Info("New tokens discovered")
	}
	for _, addr := range fresh {
		c.notifier.TokenDiscovered(addr.Hex())
	}
}

// TokenAddresses returns the discovered token list, newest-first.
func (c *Client) TokenAddresses() []common.Address {
	return c.engine.Tokens()
}

// ListTokens reads one snapshot per discovered token, in parallel,
// preserving the newest-first ordering.
func (c *Client) ListTokens(ctx context.Context) []model.TokenSnapshot {
	addrs := c.engine.Tokens()
	snaps := make([]model.TokenSnapshot, len(addrs))

	var wg sync.WaitGroup
	for i, addr := range addrs {
		wg.Add(1)
		go func(i int, addr common.Address) {
			defer wg.Done()
			snaps[i] = c.reader.Read(ctx, addr)
		}(i, addr)
	}
	wg.Wait()
	return snaps
}

// Token reads the market snapshot of a single token address.
func (c *Client) Token(ctx context.Context, addr common.Address) model.TokenSnapshot {
	return c.reader.Read(ctx, addr)
}

// Quote estimates the outcome of a trade against addr's bonding curve. The
// human-readable amount is scaled through the codec; the returned quote is
// guaranteed to correspond to exactly this (direction, amount) pair.
func (c *Client) Quote(ctx context.Context, addr common.Address, direction model.TradeDirection, amount string) (model.TradeQuote, error) {
	if !direction.Valid() {
		return model.TradeQuote{}, ErrBadDirection
	}
	return c.estimatorFor(addr).QuoteSync(ctx, direction, amount)
}

// Estimator exposes the per-token estimator for callers that drive input
// incrementally instead of requesting a one-shot quote.
func (c *Client) Estimator(addr common.Address) *estimator.Estimator {
	return c.estimatorFor(addr)
}

func (c *Client) estimatorFor(addr common.Address) *estimator.Estimator {
	c.mu.Lock()
	defer c.mu.Unlock()
	est, ok := c.estimators[addr]
	if !ok {
		est = estimator.New(c.gw.Token(addr))
		c.estimators[addr] = est
	}
	return est
}

// Buy spends the given ETH amount on addr's curve.
func (c *Client) Buy(ctx context.Context, addr common.Address, amountETH string) (model.TransactionState, error) {
	if err := c.checkNetwork(); err != nil {
		return model.TransactionState{}, err
	}
	value, err := positiveScaled(amountETH)
	if err != nil {
		return model.TransactionState{}, err
	}
	token := c.gw.Token(addr)
	return c.start("buy:"+strings.ToLower(addr.Hex()), func(ctx context.Context) (common.Hash, error) {
		return token.Buy(ctx, value)
	})
}

// Sell swaps the given token amount back into ETH on addr's curve. Selling
// a graduated token is refused before any transaction is built.
func (c *Client) Sell(ctx context.Context, addr common.Address, amountTokens string) (model.TransactionState, error) {
	if err := c.checkNetwork(); err != nil {
		return model.TransactionState{}, err
	}
	amount, err := positiveScaled(amountTokens)
	if err != nil {
		return model.TransactionState{}, err
	}
	token := c.gw.Token(addr)
	if graduated, err := token.IsGraduated(ctx); err == nil && graduated {
		return model.TransactionState{}, ErrGraduated
	}
	return c.start("sell:"+strings.ToLower(addr.Hex()), func(ctx context.Context) (common.Hash, error) {
		return token.Sell(ctx, amount)
	})
}

// Launch deploys a new sub-token. A confirmed launch schedules a discovery
// refresh so the new token appears without waiting for the backstop tick.
func (c *Client) Launch(ctx context.Context, name, symbol string) (model.TransactionState, error) {
	if err := c.checkNetwork(); err != nil {
		return model.TransactionState{}, err
	}
	name, symbol = strings.TrimSpace(name), strings.TrimSpace(symbol)
	if name == "" || symbol == "" {
		return model.TransactionState{}, ErrMissingField
	}
	return c.start("launch", func(ctx context.Context) (common.Hash, error) {
		return c.factory.LaunchToken(ctx, name, symbol)
	})
}

// Claim releases the caller's vested governance tokens.
func (c *Client) Claim(ctx context.Context) (model.TransactionState, error) {
	if err := c.checkNetwork(); err != nil {
		return model.TransactionState{}, err
	}
	return c.start("claim", func(ctx context.Context) (common.Hash, error) {
		return c.factory.ClaimGovernanceTokens(ctx)
	})
}

// SeedLiquidity sends the initial ETH liquidity and burns the LP tokens.
func (c *Client) SeedLiquidity(ctx context.Context, amountETH string) (model.TransactionState, error) {
	if err := c.checkNetwork(); err != nil {
		return model.TransactionState{}, err
	}
	value, err := positiveScaled(amountETH)
	if err != nil {
		return model.TransactionState{}, err
	}
	return c.start("liquidity", func(ctx context.Context) (common.Hash, error) {
		return c.factory.AddInitialLiquidityAndBurnLP(ctx, value)
	})
}

// SetVault points the factory at a new governance vault address.
func (c *Client) SetVault(ctx context.Context, vault common.Address) (model.TransactionState, error) {
	if err := c.checkNetwork(); err != nil {
		return model.TransactionState{}, err
	}
	if vault == (common.Address{}) {
		return model.TransactionState{}, ErrMissingField
	}
	return c.start("vault", func(ctx context.Context) (common.Hash, error) {
		return c.factory.SetGovernanceVault(ctx, vault)
	})
}

// Buyback triggers a manual protocol buyback with a slippage floor.
func (c *Client) Buyback(ctx context.Context, minAmountOut string) (model.TransactionState, error) {
	if err := c.checkNetwork(); err != nil {
		return model.TransactionState{}, err
	}
	minOut, err := codec.ToScaled(minAmountOut)
	if err != nil {
		return model.TransactionState{}, err
	}
	return c.start("buyback", func(ctx context.Context) (common.Hash, error) {
		return c.factory.ManualBuyback(ctx, minOut)
	})
}

// ActionState reports the lifecycle state of a logical action, if the
// action has ever been started.
func (c *Client) ActionState(action string) (model.TransactionState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tr, ok := c.trackers[action]
	if !ok {
		return model.TransactionState{}, false
	}
	return tr.State(), true
}

// FactoryStats assembles the protocol dashboard state from parallel reads.
// Like token snapshots, one failed read degrades its field, not the whole.
func (c *Client) FactoryStats(ctx context.Context) FactoryStats {
	var (
		wg    sync.WaitGroup
		stats FactoryStats

		nameOK, symbolOK bool
	)

	read := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	read(func() {
		if v, err := c.factory.Name(ctx); err == nil {
			stats.Name, nameOK = v, true
		}
	})
	read(func() {
		if v, err := c.factory.Symbol(ctx); err == nil {
			stats.Symbol, symbolOK = v, true
		}
	})
	read(func() {
		if v, err := c.factory.TotalSupply(ctx); err == nil {
			stats.TotalSupply = v
		}
	})
	read(func() {
		if v, err := c.factory.GovernanceVault(ctx); err == nil {
			stats.GovernanceVault = &v
		}
	})
	read(func() {
		if v, err := c.factory.InitialLiquidityAdded(ctx); err == nil {
			stats.InitialLiquidityAdded = &v
		}
	})
	read(func() {
		if v, err := c.factory.DeployTime(ctx); err == nil {
			stats.DeployTime = v
		}
	})
	read(func() {
		if v, err := c.factory.ReleasedIncentive(ctx); err == nil {
			stats.ReleasedIncentive = v
		}
	})
	if !c.cfg.ReadOnly() {
		read(func() {
			if v, err := c.factory.BalanceOf(ctx, c.gw.SignerAddress()); err == nil {
				stats.SignerBalance = v
			}
		})
	}
	wg.Wait()

	stats.Incomplete = !nameOK || !symbolOK || stats.TotalSupply == nil
	return stats
}

// SupportedChain is the chain this client trusts.
func (c *Client) SupportedChain() types.ChainID {
	return c.guard.Supported()
}

// checkNetwork compares the dialed node's chain against the supported one.
// Dial already pins the chain, so this only fires when the provider behind
// the endpoint changed identity after startup.
func (c *Client) checkNetwork() error {
	return c.guard.Require(types.ChainID(c.gw.ChainID().Uint64()))
}

// start launches the tracker pipeline for one action in the background and
// returns the immediately observable state. A second start while the action
// is in flight returns the current state and ErrActionInFlight.
func (c *Client) start(action string, submit txtracker.SubmitFunc) (model.TransactionState, error) {
	tr := c.trackerFor(action)
	state, ok := tr.Begin()
	if !ok {
		return state, txtracker.ErrActionInFlight
	}

	go func() {
		state := tr.Execute(c.trackCtx, submit)
		if state.Status == model.TxFailed {
			c.notifier.TransactionFailed(action, string(state.Failure))
		}
	}()

	return state, nil
}

func (c *Client) trackerFor(action string) *txtracker.Tracker {
	c.mu.Lock()
	defer c.mu.Unlock()
	tr, ok := c.trackers[action]
	if !ok {
		tr = txtracker.New(action, c.gw, c.cfg.ConfirmTimeout, c.cfg.ReceiptPoll)
		tr.OnConfirmed(func(hash common.Hash) {
			c.notifier.TransactionConfirmed(action, hash.Hex())
			if action == "launch" {
				go c.engine.Refresh(c.trackCtx)
			}
		})
		c.trackers[action] = tr
	}
	return tr
}

func positiveScaled(raw string) (*big.Int, error) {
	v, err := codec.ToScaled(raw)
	if err != nil {
		return nil, err
	}
	if v.Sign() == 0 {
		return nil, codec.ErrInvalidAmount
	}
	return v, nil
}
