package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourorg/fairpraem-client/internal/types"
)

func TestChain_DescribesSupportedNetwork(t *testing.T) {
	cfg := Config{
		RPCEndpoint:    "https://sepolia.base.org",
		SupportedChain: types.ChainBaseSepolia,
	}

	chain := cfg.Chain()

	assert.Equal(t, types.ChainBaseSepolia, chain.ChainID)
	assert.Equal(t, "base-sepolia", chain.Name)
	assert.Equal(t, "https://sepolia.base.org", chain.RPCEndpoint)
	assert.Equal(t, "https://sepolia.basescan.org", chain.Explorer)
}

func TestChain_UnknownNetworkHasNoExplorer(t *testing.T) {
	cfg := Config{
		RPCEndpoint:    "http://localhost:8545",
		SupportedChain: types.ChainID(31337),
	}

	chain := cfg.Chain()

	assert.Equal(t, "unknown", chain.Name)
	assert.Empty(t, chain.Explorer)
}

func TestReadOnly(t *testing.T) {
	assert.True(t, Config{}.ReadOnly())
	assert.False(t, Config{PrivateKey: "ab"}.ReadOnly())
}
