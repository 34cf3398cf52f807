package gateway

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourorg/fairpraem-client/internal/circuitbreaker"
	"github.com/yourorg/fairpraem-client/internal/config"
	"github.com/yourorg/fairpraem-client/internal/wallet"
)

// Client is the concrete gateway adapter over a single JSON-RPC connection.
// All contract roles share it; it is safe for concurrent use.
type Client struct {
	ec         *ethclient.Client
	chainID    *big.Int
	signer     wallet.Signer // nil in read-only mode
	limiter    *rate.Limiter
	breaker    *circuitbreaker.CircuitBreaker
	watchEvery time.Duration
	log        *logrus.Entry
}

// Dial connects to the configured node, pins the supported chain and refuses
// to proceed if the node reports any other chain id.
func Dial(ctx context.Context, cfg config.Config, signer wallet.Signer, breaker *circuitbreaker.CircuitBreaker) (*Client, error) {
	rpcClient, err := rpc.DialOptions(ctx, cfg.RPCEndpoint, rpc.WithHTTPClient(newRetryHTTPClient()))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.RPCEndpoint, err)
	}
	ec := ethclient.NewClient(rpcClient)

	reported, err := ec.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("query chain id: %w", err)
	}
	pinned := new(big.Int).SetUint64(uint64(cfg.SupportedChain))
	if reported.Cmp(pinned) != 0 {
		return nil, fmt.Errorf("%w: node reports %s, supported is %s", ErrWrongNetwork, reported, pinned)
	}

	return &Client{
		ec:         ec,
		chainID:    pinned,
		signer:     signer,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RPCRateLimit), cfg.RPCRateBurst),
		breaker:    breaker,
		watchEvery: cfg.WatchInterval,
		log: logrus.WithFields(logrus.Fields{
			"component": "gateway",
			"chain_id":  pinned.String(),
		}),
	}, nil
}

// newRetryHTTPClient builds the HTTP transport under the RPC connection,
// with bounded retries for transient provider errors.
func newRetryHTTPClient() *http.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 3
	c.RetryWaitMin = 500 * time.Millisecond
	c.RetryWaitMax = 3 * time.Second
	c.Logger = nil
	return c.StandardClient()
}

// ChainID returns the pinned chain identifier
func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// SignerAddress returns the local signer's account, or the zero address in
// read-only mode.
func (c *Client) SignerAddress() common.Address {
	if c.signer == nil {
		return common.Address{}
	}
	return c.signer.Address()
}

// Factory returns the typed core-contract role bound to addr
func (c *Client) Factory(addr common.Address) Factory {
	return &factory{client: c, addr: addr}
}

// Token returns the typed sub-token role bound to addr
func (c *Client) Token(addr common.Address) BondingToken {
	return &bondingToken{client: c, addr: addr}
}

// Receipt implements ReceiptSource. A transaction that is not yet mined
// surfaces as ethereum.NotFound from the underlying client.
func (c *Client) Receipt(ctx context.Context, hash common.Hash) (*ethtypes.Receipt, error) {
	if err := c.gate(ctx); err != nil {
		return nil, err
	}
	r, err := c.ec.TransactionReceipt(ctx, hash)
	c.record(err)
	return r, err
}

// gate applies the circuit breaker and the rate limiter before a call
func (c *Client) gate(ctx context.Context) error {
	if err := c.breaker.Allow(); err != nil {
		return err
	}
	return c.limiter.Wait(ctx)
}

// record feeds the call outcome to the circuit breaker. Contract-level
// reverts are successful transport round trips and do not count against the
// node.
func (c *Client) record(err error) {
	if err == nil || isRevert(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		c.breaker.RecordSuccess()
		return
	}
	c.breaker.RecordFailure(err)
}

// callView encodes and issues an eth_call, retrying transient failures with
// a small backoff that widens when the provider throttles.
func (c *Client) callView(ctx context.Context, to common.Address, contract abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	if err := c.gate(ctx); err != nil {
		return nil, err
	}
	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	msg := ethereum.CallMsg{To: &to, Data: data}
	ret, err := c.callWithRetry(ctx, msg)
	c.record(err)
	if err != nil {
		if isRevert(err) {
			return nil, fmt.Errorf("%w: %s: %s", ErrReverted, method, revertReason(err))
		}
		return nil, fmt.Errorf("call %s on %s: %w", method, to.Hex(), err)
	}

	out, err := contract.Unpack(method, ret)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return out, nil
}

func (c *Client) callWithRetry(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	const maxAttempts = 3
	backoff := 200 * time.Millisecond
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ret, err := c.ec.CallContract(ctx, msg, nil)
		if err == nil {
			return ret, nil
		}
		lastErr = err
		if isRevert(err) || ctx.Err() != nil {
			break
		}
		if attempt < maxAttempts {
			if isRateLimited(err) {
				backoff *= 2
			}
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}

// submit builds, signs and sends one state-changing call and returns its
// hash. Failure mapping: signer refusal passes through as
// wallet.ErrSigningDeclined, estimate-stage reverts become ErrReverted,
// everything else is a transport error.
func (c *Client) submit(ctx context.Context, to common.Address, contract abi.ABI, method string, value *big.Int, args ...interface{}) (common.Hash, error) {
	if c.signer == nil {
		return common.Hash{}, ErrNoSigner
	}
	if err := c.gate(ctx); err != nil {
		return common.Hash{}, err
	}

	data, err := contract.Pack(method, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pack %s: %w", method, err)
	}
	from := c.signer.Address()
	if value == nil {
		value = new(big.Int)
	}

	nonce, err := c.ec.PendingNonceAt(ctx, from)
	if err != nil {
		c.record(err)
		return common.Hash{}, fmt.Errorf("nonce for %s: %w", from.Hex(), err)
	}

	tip, err := c.ec.SuggestGasTipCap(ctx)
	if err != nil {
		c.record(err)
		return common.Hash{}, fmt.Errorf("suggest tip: %w", err)
	}
	head, err := c.ec.HeaderByNumber(ctx, nil)
	if err != nil {
		c.record(err)
		return common.Hash{}, fmt.Errorf("latest header: %w", err)
	}
	// feeCap = 2*baseFee + tip, the usual headroom against base-fee drift.
	feeCap := new(big.Int).Add(new(big.Int).Mul(head.BaseFee, big.NewInt(2)), tip)

	gas, err := c.ec.EstimateGas(ctx, ethereum.CallMsg{
		From: from, To: &to, Value: value, Data: data,
		GasTipCap: tip, GasFeeCap: feeCap,
	})
	c.record(err)
	if err != nil {
		if isRevert(err) {
			return common.Hash{}, fmt.Errorf("%w: %s: %s", ErrReverted, method, revertReason(err))
		}
		return common.Hash{}, fmt.Errorf("estimate %s: %w", method, err)
	}

	tx := ethtypes.NewTx(&ethtypes.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas + gas/10,
		To:        &to,
		Value:     value,
		Data:      data,
	})

	signed, err := c.signer.SignTx(tx, c.chainID)
	if err != nil {
		// Signer refusal is the wallet saying no, not an RPC problem.
		return common.Hash{}, err
	}

	if err := c.ec.SendTransaction(ctx, signed); err != nil {
		c.record(err)
		if isRevert(err) {
			return common.Hash{}, fmt.Errorf("%w: %s: %s", ErrReverted, method, revertReason(err))
		}
		return common.Hash{}, fmt.Errorf("send %s: %w", method, err)
	}
	c.record(nil)

	c.log.WithFields(logrus.Fields{
		"method": method,
		"to":     to.Hex(),
		"tx":     signed.Hash().Hex(),
	}).Info("Transaction submitted")
	return signed.Hash(), nil
}
