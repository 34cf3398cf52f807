// Package gateway is the typed contract access layer: every consumed view
// function, write function and event of the factory and sub-token contracts
// is a method on one of the role interfaces below, backed by a single shared
// RPC connection. The gateway owns no domain state.
package gateway

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// LaunchEvent is one decoded OrgLaunched log entry
type LaunchEvent struct {
	Token       common.Address
	Creator     common.Address
	BlockNumber uint64
	TxHash      common.Hash
}

// Factory is the launchpad core contract: the sub-token registry, the
// governance token and the protocol-level actions.
type Factory interface {
	Address() common.Address

	Name(ctx context.Context) (string, error)
	Symbol(ctx context.Context) (string, error)
	Decimals(ctx context.Context) (uint8, error)
	TotalSupply(ctx context.Context) (*big.Int, error)
	BalanceOf(ctx context.Context, account common.Address) (*big.Int, error)
	Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error)
	SubTokenAt(ctx context.Context, index uint64) (common.Address, error)
	GovernanceVault(ctx context.Context) (common.Address, error)
	InitialLiquidityAdded(ctx context.Context) (bool, error)
	DeployTime(ctx context.Context) (*big.Int, error)
	ReleasedIncentive(ctx context.Context) (*big.Int, error)

	LaunchToken(ctx context.Context, name, symbol string) (common.Hash, error)
	ClaimGovernanceTokens(ctx context.Context) (common.Hash, error)
	AddInitialLiquidityAndBurnLP(ctx context.Context, value *big.Int) (common.Hash, error)
	SetGovernanceVault(ctx context.Context, vault common.Address) (common.Hash, error)
	ManualBuyback(ctx context.Context, minAmountOut *big.Int) (common.Hash, error)

	// FilterLaunches replays OrgLaunched over the full historical range,
	// oldest-first as delivered by the node.
	FilterLaunches(ctx context.Context) ([]LaunchEvent, error)

	// WatchLaunches invokes onEvent for each newly mined OrgLaunched log
	// until the returned stop function is called or ctx is cancelled.
	WatchLaunches(ctx context.Context, onEvent func(LaunchEvent)) (stop func(), err error)
}

// BondingToken is one factory-deployed sub-token trading on its curve
type BondingToken interface {
	Address() common.Address

	Name(ctx context.Context) (string, error)
	Symbol(ctx context.Context) (string, error)
	Decimals(ctx context.Context) (uint8, error)
	TotalSupply(ctx context.Context) (*big.Int, error)
	TotalMinted(ctx context.Context) (*big.Int, error)
	BalanceOf(ctx context.Context, account common.Address) (*big.Int, error)
	IsGraduated(ctx context.Context) (bool, error)
	GetCurrentPrice(ctx context.Context) (*big.Int, error)
	GetProgress(ctx context.Context) (*big.Int, error)
	GetBuyAmount(ctx context.Context, ethIn *big.Int) (*big.Int, error)
	GetSellAmount(ctx context.Context, tokenIn *big.Int) (*big.Int, error)

	Buy(ctx context.Context, value *big.Int) (common.Hash, error)
	Sell(ctx context.Context, amount *big.Int) (common.Hash, error)
}

// ReceiptSource looks up mined transaction receipts for lifecycle tracking
type ReceiptSource interface {
	Receipt(ctx context.Context, hash common.Hash) (*ethtypes.Receipt, error)
}
