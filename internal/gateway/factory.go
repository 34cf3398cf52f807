package gateway

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

type factory struct {
	client *Client
	addr   common.Address
}

func (f *factory) Address() common.Address { return f.addr }

func (f *factory) Name(ctx context.Context) (string, error) {
	out, err := f.client.callView(ctx, f.addr, coreABI, "name")
	if err != nil {
		return "", err
	}
	return asString(out)
}

func (f *factory) Symbol(ctx context.Context) (string, error) {
	out, err := f.client.callView(ctx, f.addr, coreABI, "symbol")
	if err != nil {
		return "", err
	}
	return asString(out)
}

func (f *factory) Decimals(ctx context.Context) (uint8, error) {
	out, err := f.client.callView(ctx, f.addr, coreABI, "decimals")
	if err != nil {
		return 0, err
	}
	return asUint8(out)
}

func (f *factory) TotalSupply(ctx context.Context) (*big.Int, error) {
	out, err := f.client.callView(ctx, f.addr, coreABI, "totalSupply")
	if err != nil {
		return nil, err
	}
	return asBig(out)
}

func (f *factory) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	out, err := f.client.callView(ctx, f.addr, coreABI, "balanceOf", account)
	if err != nil {
		return nil, err
	}
	return asBig(out)
}

func (f *factory) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	out, err := f.client.callView(ctx, f.addr, coreABI, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	return asBig(out)
}

func (f *factory) SubTokenAt(ctx context.Context, index uint64) (common.Address, error) {
	out, err := f.client.callView(ctx, f.addr, coreABI, "allSubTokens", new(big.Int).SetUint64(index))
	if err != nil {
		return common.Address{}, err
	}
	return asAddress(out)
}

func (f *factory) GovernanceVault(ctx context.Context) (common.Address, error) {
	out, err := f.client.callView(ctx, f.addr, coreABI, "governanceVault")
	if err != nil {
		return common.Address{}, err
	}
	return asAddress(out)
}

func (f *factory) InitialLiquidityAdded(ctx context.Context) (bool, error) {
	out, err := f.client.callView(ctx, f.addr, coreABI, "initialLiquidityAdded")
	if err != nil {
		return false, err
	}
	return asBool(out)
}

func (f *factory) DeployTime(ctx context.Context) (*big.Int, error) {
	out, err := f.client.callView(ctx, f.addr, coreABI, "deployTime")
	if err != nil {
		return nil, err
	}
	return asBig(out)
}

func (f *factory) ReleasedIncentive(ctx context.Context) (*big.Int, error) {
	out, err := f.client.callView(ctx, f.addr, coreABI, "releasedIncentive")
	if err != nil {
		return nil, err
	}
	return asBig(out)
}

func (f *factory) LaunchToken(ctx context.Context, name, symbol string) (common.Hash, error) {
	return f.client.submit(ctx, f.addr, coreABI, "launchToken", nil, name, symbol)
}

func (f *factory) ClaimGovernanceTokens(ctx context.Context) (common.Hash, error) {
	return f.client.submit(ctx, f.addr, coreABI, "claimGovernanceTokens", nil)
}

func (f *factory) AddInitialLiquidityAndBurnLP(ctx context.Context, value *big.Int) (common.Hash, error) {
	return f.client.submit(ctx, f.addr, coreABI, "addInitialLiquidityAndBurnLP", value)
}

func (f *factory) SetGovernanceVault(ctx context.Context, vault common.Address) (common.Hash, error) {
	return f.client.submit(ctx, f.addr, coreABI, "setGovernanceVault", nil, vault)
}

func (f *factory) ManualBuyback(ctx context.Context, minAmountOut *big.Int) (common.Hash, error) {
	return f.client.submit(ctx, f.addr, coreABI, "manualBuyback", nil, minAmountOut)
}

// FilterLaunches replays OrgLaunched over the full block range. Log order
// from the node is oldest-first and is preserved here; presentation ordering
// is the discovery engine's job.
func (f *factory) FilterLaunches(ctx context.Context) ([]LaunchEvent, error) {
	if err := f.client.gate(ctx); err != nil {
		return nil, err
	}
	q := ethereum.FilterQuery{
		Addresses: []common.Address{f.addr},
		Topics:    [][]common.Hash{{coreABI.Events["OrgLaunched"].ID}},
	}
	logs, err := f.client.ec.FilterLogs(ctx, q)
	f.client.record(err)
	if err != nil {
		return nil, fmt.Errorf("filter OrgLaunched: %w", err)
	}

	events := make([]LaunchEvent, 0, len(logs))
	for _, l := range logs {
		if l.Removed || len(l.Topics) < 3 {
			continue
		}
		events = append(events, LaunchEvent{
			Token:       common.BytesToAddress(l.Topics[1].Bytes()),
			Creator:     common.BytesToAddress(l.Topics[2].Bytes()),
			BlockNumber: l.BlockNumber,
			TxHash:      l.TxHash,
		})
	}
	return events, nil
}

// WatchLaunches polls for new OrgLaunched logs past the current head. HTTP
// providers rarely offer real subscriptions, so polling is the portable
// watch primitive here.
func (f *factory) WatchLaunches(ctx context.Context, onEvent func(LaunchEvent)) (func(), error) {
	head, err := f.client.ec.BlockNumber(ctx)
	if err != nil {
		f.client.record(err)
		return nil, fmt.Errorf("head block: %w", err)
	}
	f.client.record(nil)

	watchCtx, cancel := context.WithCancel(ctx)
	go f.pollLaunches(watchCtx, head, onEvent)
	return cancel, nil
}

func (f *factory) pollLaunches(ctx context.Context, from uint64, onEvent func(LaunchEvent)) {
	interval := f.client.watchEvery
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	eventID := coreABI.Events["OrgLaunched"].ID
	next := from + 1

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if err := f.client.gate(ctx); err != nil {
			continue
		}
		head, err := f.client.ec.BlockNumber(ctx)
		f.client.record(err)
		if err != nil || head < next {
			continue
		}

		q := ethereum.FilterQuery{
			Addresses: []common.Address{f.addr},
			Topics:    [][]common.Hash{{eventID}},
			FromBlock: new(big.Int).SetUint64(next),
			ToBlock:   new(big.Int).SetUint64(head),
		}
		logs, err := f.client.ec.FilterLogs(ctx, q)
		f.client.record(err)
		if err != nil {
			f.client.log.WithError(err).Debug("Launch watch poll failed")
			continue
		}
		for _, l := range logs {
			if l.Removed || len(l.Topics) < 3 {
				continue
			}
			onEvent(LaunchEvent{
				Token:       common.BytesToAddress(l.Topics[1].Bytes()),
				Creator:     common.BytesToAddress(l.Topics[2].Bytes()),
				BlockNumber: l.BlockNumber,
				TxHash:      l.TxHash,
			})
		}
		next = head + 1
	}
}
