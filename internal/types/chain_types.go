// Package types contains shared type definitions used across multiple packages
package types

// ChainID identifies an EVM network by its numeric chain identifier
type ChainID uint64

// Networks the client knows about. Exactly one of these is the supported
// chain at runtime; every other chain context is rejected for writes.
const (
	ChainEthereum    ChainID = 1
	ChainSepolia     ChainID = 11155111
	ChainBase        ChainID = 8453
	ChainBaseSepolia ChainID = 84532
)

// DefaultSupportedChain is the network the launchpad factory is deployed on
const DefaultSupportedChain = ChainBaseSepolia

// ChainConfig holds configuration for a specific blockchain network
type ChainConfig struct {
	ChainID     ChainID `json:"chain_id"`
	Name        string  `json:"name"`
	RPCEndpoint string  `json:"rpc_endpoint"`
	Explorer    string  `json:"explorer,omitempty"`
}

// Explorer returns the block explorer base URL for known networks
func (c ChainID) Explorer() string {
	switch c {
	case ChainEthereum:
		return "https://etherscan.io"
	case ChainSepolia:
		return "https://sepolia.etherscan.io"
	case ChainBase:
		return "https://basescan.org"
	case ChainBaseSepolia:
		return "https://sepolia.basescan.org"
	default:
		return ""
	}
}

// Name returns a human-readable label for known networks
func (c ChainID) Name() string {
	switch c {
	case ChainEthereum:
		return "ethereum"
	case ChainSepolia:
		return "sepolia"
	case ChainBase:
		return "base"
	case ChainBaseSepolia:
		return "base-sepolia"
	default:
		return "unknown"
	}
}
