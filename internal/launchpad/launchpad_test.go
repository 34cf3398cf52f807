package launchpad

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/fairpraem-client/internal/codec"
	"github.com/yourorg/fairpraem-client/internal/config"
	"github.com/yourorg/fairpraem-client/internal/gateway"
	"github.com/yourorg/fairpraem-client/internal/model"
	"github.com/yourorg/fairpraem-client/internal/netguard"
	"github.com/yourorg/fairpraem-client/internal/notify"
	"github.com/yourorg/fairpraem-client/internal/txtracker"
	"github.com/yourorg/fairpraem-client/internal/types"
)

var (
	tokenA = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	txHash = common.HexToHash("0x01")
)

// fakeToken overrides the methods a test exercises; anything else hitting
// the embedded interface is a test bug.
type fakeToken struct {
	gateway.BondingToken

	graduated bool
	gradErr   error
	buy       func(ctx context.Context, value *big.Int) (common.Hash, error)
	sell      func(ctx context.Context, amount *big.Int) (common.Hash, error)
}

func (f *fakeToken) IsGraduated(context.Context) (bool, error) {
	return f.graduated, f.gradErr
}

func (f *fakeToken) GetBuyAmount(_ context.Context, ethIn *big.Int) (*big.Int, error) {
	return new(big.Int).Mul(ethIn, big.NewInt(2)), nil
}

func (f *fakeToken) GetSellAmount(_ context.Context, tokenIn *big.Int) (*big.Int, error) {
	return new(big.Int).Div(tokenIn, big.NewInt(2)), nil
}

func (f *fakeToken) Buy(ctx context.Context, value *big.Int) (common.Hash, error) {
	return f.buy(ctx, value)
}

func (f *fakeToken) Sell(ctx context.Context, amount *big.Int) (common.Hash, error) {
	return f.sell(ctx, amount)
}

type fakeFactory struct {
	gateway.Factory

	launch func(ctx context.Context, name, symbol string) (common.Hash, error)
}

func (f *fakeFactory) LaunchToken(ctx context.Context, name, symbol string) (common.Hash, error) {
	return f.launch(ctx, name, symbol)
}

func (f *fakeFactory) FilterLaunches(context.Context) ([]gateway.LaunchEvent, error) {
	return []gateway.LaunchEvent{{Token: tokenA, BlockNumber: 1}}, nil
}

type fakeGateway struct {
	factory *fakeFactory
	token   *fakeToken
	chainID *big.Int
	receipt func(ctx context.Context, hash common.Hash) (*ethtypes.Receipt, error)
}

func (g *fakeGateway) Factory(common.Address) gateway.Factory    { return g.factory }
func (g *fakeGateway) Token(common.Address) gateway.BondingToken { return g.token }
func (g *fakeGateway) ChainID() *big.Int                         { return g.chainID }
func (g *fakeGateway) SignerAddress() common.Address             { return common.Address{} }
func (g *fakeGateway) Receipt(ctx context.Context, hash common.Hash) (*ethtypes.Receipt, error) {
	return g.receipt(ctx, hash)
}

func confirmedReceipt(ctx context.Context, hash common.Hash) (*ethtypes.Receipt, error) {
	return &ethtypes.Receipt{TxHash: hash, Status: ethtypes.ReceiptStatusSuccessful}, nil
}

func testConfig() config.Config {
	return config.Config{
		CoreAddress:    "0x80a4A65e0cd7ddcD9E6ad257F0bF7D7CcE66881e",
		SupportedChain: types.DefaultSupportedChain,
		ConfirmTimeout: time.Second,
		ReceiptPoll:    5 * time.Millisecond,
		PrivateKey:     "sentinel",
	}
}

func newTestClient(t *testing.T, gw *fakeGateway) *Client {
	t.Helper()
	if gw.chainID == nil {
		gw.chainID = new(big.Int).SetUint64(uint64(types.DefaultSupportedChain))
	}
	if gw.receipt == nil {
		gw.receipt = confirmedReceipt
	}
	return New(context.Background(), testConfig(), gw, notify.NewNotifier(notify.Options{}))
}

func TestBuy_ConfirmedLifecycle(t *testing.T) {
	gw := &fakeGateway{
		token: &fakeToken{
			buy: func(_ context.Context, value *big.Int) (common.Hash, error) {
				require.Equal(t, "1.5", codec.ToDisplay(value))
				return txHash, nil
			},
		},
	}
	c := newTestClient(t, gw)

	state, err := c.Buy(context.Background(), tokenA, "1.5")
	require.NoError(t, err)
	assert.Equal(t, model.TxAwaitingSignature, state.Status)

	require.Eventually(t, func() bool {
		s, ok := c.ActionState("buy:" + "0x00000000000000000000000000000000000000aa")
		return ok && s.Status == model.TxConfirmed
	}, time.Second, 5*time.Millisecond)

	s, _ := c.ActionState("buy:" + "0x00000000000000000000000000000000000000aa")
	assert.Equal(t, txHash, s.Hash)
	assert.Equal(t, model.FailureNone, s.Failure)
}

func TestSell_GraduatedTokenRefusedLocally(t *testing.T) {
	gw := &fakeGateway{
		token: &fakeToken{
			graduated: true,
			sell: func(context.Context, *big.Int) (common.Hash, error) {
				t.Error("sell must not reach the network for a graduated token")
				return common.Hash{}, nil
			},
		},
	}
	c := newTestClient(t, gw)

	_, err := c.Sell(context.Background(), tokenA, "10")
	assert.ErrorIs(t, err, ErrGraduated)

	_, started := c.ActionState("sell:" + "0x00000000000000000000000000000000000000aa")
	assert.False(t, started)
}

func TestSell_ProceedsWhenNotGraduated(t *testing.T) {
	gw := &fakeGateway{
		token: &fakeToken{
			sell: func(_ context.Context, amount *big.Int) (common.Hash, error) {
				require.Equal(t, "10", codec.ToDisplay(amount))
				return txHash, nil
			},
		},
	}
	c := newTestClient(t, gw)

	_, err := c.Sell(context.Background(), tokenA, "10")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		s, ok := c.ActionState("sell:" + "0x00000000000000000000000000000000000000aa")
		return ok && s.Status == model.TxConfirmed
	}, time.Second, 5*time.Millisecond)
}

func TestBuy_InvalidAmountRejected(t *testing.T) {
	c := newTestClient(t, &fakeGateway{token: &fakeToken{}})

	for _, raw := range []string{"", "abc", "1.2.3", "-5", "0"} {
		_, err := c.Buy(context.Background(), tokenA, raw)
		assert.ErrorIs(t, err, codec.ErrInvalidAmount, "input %q", raw)
	}
}

func TestWrite_WrongChainBlocked(t *testing.T) {
	gw := &fakeGateway{token: &fakeToken{}, chainID: big.NewInt(1)}
	c := newTestClient(t, gw)

	_, err := c.Buy(context.Background(), tokenA, "1")
	var switchErr *netguard.SwitchNetworkError
	require.ErrorAs(t, err, &switchErr)
	assert.Equal(t, types.DefaultSupportedChain, switchErr.Required)
	assert.Equal(t, types.ChainID(1), switchErr.Active)
}

func TestLaunch_RequiresNameAndSymbol(t *testing.T) {
	c := newTestClient(t, &fakeGateway{token: &fakeToken{}, factory: &fakeFactory{}})

	for _, pair := range [][2]string{{"", "TKN"}, {"Token", ""}, {"  ", "  "}} {
		_, err := c.Launch(context.Background(), pair[0], pair[1])
		assert.ErrorIs(t, err, ErrMissingField)
	}
}

func TestLaunch_Confirmed(t *testing.T) {
	gw := &fakeGateway{
		token: &fakeToken{},
		factory: &fakeFactory{
			launch: func(_ context.Context, name, symbol string) (common.Hash, error) {
				require.Equal(t, "My Token", name)
				require.Equal(t, "MTK", symbol)
				return txHash, nil
			},
		},
	}
	c := newTestClient(t, gw)

	state, err := c.Launch(context.Background(), "  My Token ", " MTK ")
	require.NoError(t, err)
	assert.Equal(t, model.TxAwaitingSignature, state.Status)

	require.Eventually(t, func() bool {
		s, ok := c.ActionState("launch")
		return ok && s.Status == model.TxConfirmed
	}, time.Second, 5*time.Millisecond)
}

func TestBuy_SecondCallWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	gw := &fakeGateway{
		token: &fakeToken{
			buy: func(ctx context.Context, _ *big.Int) (common.Hash, error) {
				<-release
				return txHash, nil
			},
		},
	}
	c := newTestClient(t, gw)

	_, err := c.Buy(context.Background(), tokenA, "1")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		s, ok := c.ActionState("buy:" + "0x00000000000000000000000000000000000000aa")
		return ok && s.InFlight()
	}, time.Second, 5*time.Millisecond)

	_, err = c.Buy(context.Background(), tokenA, "2")
	assert.ErrorIs(t, err, txtracker.ErrActionInFlight)

	close(release)
}

func TestBuy_BackToBackSecondCallRejected(t *testing.T) {
	release := make(chan struct{})
	gw := &fakeGateway{
		token: &fakeToken{
			buy: func(ctx context.Context, _ *big.Int) (common.Hash, error) {
				<-release
				return txHash, nil
			},
		},
	}
	c := newTestClient(t, gw)

	// The slot is reserved before the first call returns, so the second
	// call is refused even when no background work has run yet.
	first, err := c.Buy(context.Background(), tokenA, "1")
	require.NoError(t, err)
	assert.Equal(t, model.TxAwaitingSignature, first.Status)

	second, err := c.Buy(context.Background(), tokenA, "2")
	assert.ErrorIs(t, err, txtracker.ErrActionInFlight)
	assert.True(t, second.InFlight())

	close(release)
}

func TestQuote_BuyAndSell(t *testing.T) {
	c := newTestClient(t, &fakeGateway{token: &fakeToken{}})

	quote, err := c.Quote(context.Background(), tokenA, model.Buy, "2")
	require.NoError(t, err)
	assert.Equal(t, "4", codec.ToDisplay(quote.Output))

	quote, err = c.Quote(context.Background(), tokenA, model.Sell, "2")
	require.NoError(t, err)
	assert.Equal(t, "1", codec.ToDisplay(quote.Output))

	_, err = c.Quote(context.Background(), tokenA, model.TradeDirection("swap"), "2")
	assert.ErrorIs(t, err, ErrBadDirection)
}

func TestListTokens_UsesDiscoveredSet(t *testing.T) {
	c := newTestClient(t, &fakeGateway{token: &fakeToken{}, factory: &fakeFactory{}})

	c.Refresh(context.Background())
	require.Equal(t, []common.Address{tokenA}, c.TokenAddresses())
}
