package netguard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/fairpraem-client/internal/types"
)

func TestGuard_MatchingChain(t *testing.T) {
	g := New(types.ChainBaseSepolia)

	assert.True(t, g.IsSupported(types.ChainBaseSepolia))
	assert.NoError(t, g.Require(types.ChainBaseSepolia))
}

func TestGuard_MismatchedChainAsksForSwitch(t *testing.T) {
	g := New(types.ChainBaseSepolia)

	assert.False(t, g.IsSupported(types.ChainEthereum))

	err := g.Require(types.ChainEthereum)
	require.Error(t, err)

	var switchErr *SwitchNetworkError
	require.ErrorAs(t, err, &switchErr)
	assert.Equal(t, types.ChainEthereum, switchErr.Active)
	assert.Equal(t, types.ChainBaseSepolia, switchErr.Required)
	assert.Contains(t, err.Error(), "switch to 84532")
}
