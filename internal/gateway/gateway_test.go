package gateway

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/fairpraem-client/internal/circuitbreaker"
)

func TestABIsCoverConsumedSurface(t *testing.T) {
	for _, m := range []string{
		"name", "symbol", "decimals", "totalSupply", "balanceOf", "allowance",
		"allSubTokens", "governanceVault", "initialLiquidityAdded",
		"launchToken", "claimGovernanceTokens", "addInitialLiquidityAndBurnLP",
		"setGovernanceVault", "manualBuyback",
	} {
		_, ok := coreABI.Methods[m]
		assert.True(t, ok, "core ABI missing %s", m)
	}
	for _, m := range []string{
		"name", "symbol", "totalSupply", "totalMinted", "isGraduated",
		"getCurrentPrice", "getProgress", "getBuyAmount", "getSellAmount",
		"buy", "sell",
	} {
		_, ok := subTokenABI.Methods[m]
		assert.True(t, ok, "sub-token ABI missing %s", m)
	}

	ev, ok := coreABI.Events["OrgLaunched"]
	require.True(t, ok)
	assert.Equal(t, 2, len(ev.Inputs))
	assert.True(t, ev.Inputs[0].Indexed)
	assert.True(t, ev.Inputs[1].Indexed)
}

func TestErc20SelectorsMatchStandard(t *testing.T) {
	// Known EIP-20 selectors; a drift here means the ABI JSON was mistyped.
	assert.Equal(t, []byte{0x70, 0xa0, 0x82, 0x31}, coreABI.Methods["balanceOf"].ID)
	assert.Equal(t, []byte{0x18, 0x16, 0x0d, 0xdd}, coreABI.Methods["totalSupply"].ID)
	assert.Equal(t, []byte{0xdd, 0x62, 0xed, 0x3e}, coreABI.Methods["allowance"].ID)
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, isRateLimited(errors.New("429 Too Many Requests")))
	assert.True(t, isRateLimited(errors.New("rpc error -32005: limit exceeded")))
	assert.False(t, isRateLimited(errors.New("connection refused")))
	assert.False(t, isRateLimited(nil))

	revert := errors.New("execution reverted: ReentrancyGuardReentrantCall")
	assert.True(t, isRevert(revert))
	assert.False(t, isRevert(errors.New("i/o timeout")))
	assert.Equal(t, "execution reverted: ReentrancyGuardReentrantCall", revertReason(revert))
}

func TestRecord_CallerCancellationIsNotNodeFailure(t *testing.T) {
	c := &Client{breaker: circuitbreaker.New(1)}

	// Context errors arrive wrapped by the rpc layer; neither form may
	// count against the node.
	c.record(context.Canceled)
	c.record(fmt.Errorf("call aborted: %w", context.Canceled))
	c.record(fmt.Errorf("call aborted: %w", context.DeadlineExceeded))
	assert.Equal(t, circuitbreaker.StateClosed, c.breaker.GetState())

	c.record(errors.New("connection refused"))
	assert.Equal(t, circuitbreaker.StateOpen, c.breaker.GetState())
}
