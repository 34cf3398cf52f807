package gateway

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type bondingToken struct {
	client *Client
	addr   common.Address
}

func (t *bondingToken) Address() common.Address { return t.addr }

func (t *bondingToken) Name(ctx context.Context) (string, error) {
	out, err := t.client.callView(ctx, t.addr, subTokenABI, "name")
	if err != nil {
		return "", err
	}
	return asString(out)
}

func (t *bondingToken) Symbol(ctx context.Context) (string, error) {
	out, err := t.client.callView(ctx, t.addr, subTokenABI, "symbol")
	if err != nil {
		return "", err
	}
	return asString(out)
}

func (t *bondingToken) Decimals(ctx context.Context) (uint8, error) {
	out, err := t.client.callView(ctx, t.addr, subTokenABI, "decimals")
	if err != nil {
		return 0, err
	}
	return asUint8(out)
}

func (t *bondingToken) TotalSupply(ctx context.Context) (*big.Int, error) {
	out, err := t.client.callView(ctx, t.addr, subTokenABI, "totalSupply")
	if err != nil {
		return nil, err
	}
	return asBig(out)
}

func (t *bondingToken) TotalMinted(ctx context.Context) (*big.Int, error) {
	out, err := t.client.callView(ctx, t.addr, subTokenABI, "totalMinted")
	if err != nil {
		return nil, err
	}
	return asBig(out)
}

func (t *bondingToken) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	out, err := t.client.callView(ctx, t.addr, subTokenABI, "balanceOf", account)
	if err != nil {
		return nil, err
	}
	return asBig(out)
}

func (t *bondingToken) IsGraduated(ctx context.Context) (bool, error) {
	out, err := t.client.callView(ctx, t.addr, subTokenABI, "isGraduated")
	if err != nil {
		return false, err
	}
	return asBool(out)
}

func (t *bondingToken) GetCurrentPrice(ctx context.Context) (*big.Int, error) {
	out, err := t.client.callView(ctx, t.addr, subTokenABI, "getCurrentPrice")
	if err != nil {
		return nil, err
	}
	return asBig(out)
}

func (t *bondingToken) GetProgress(ctx context.Context) (*big.Int, error) {
	out, err := t.client.callView(ctx, t.addr, subTokenABI, "getProgress")
	if err != nil {
		return nil, err
	}
	return asBig(out)
}

func (t *bondingToken) GetBuyAmount(ctx context.Context, ethIn *big.Int) (*big.Int, error) {
	out, err := t.client.callView(ctx, t.addr, subTokenABI, "getBuyAmount", ethIn)
	if err != nil {
		return nil, err
	}
	return asBig(out)
}

func (t *bondingToken) GetSellAmount(ctx context.Context, tokenIn *big.Int) (*big.Int, error) {
	out, err := t.client.callView(ctx, t.addr, subTokenABI, "getSellAmount", tokenIn)
	if err != nil {
		return nil, err
	}
	return asBig(out)
}

func (t *bondingToken) Buy(ctx context.Context, value *big.Int) (common.Hash, error) {
	return t.client.submit(ctx, t.addr, subTokenABI, "buy", value)
}

func (t *bondingToken) Sell(ctx context.Context, amount *big.Int) (common.Hash, error) {
	return t.client.submit(ctx, t.addr, subTokenABI, "sell", nil, amount)
}

// Decode helpers for single-value returns.

func asBig(out []interface{}) (*big.Int, error) {
	if len(out) != 1 {
		return nil, fmt.Errorf("unexpected return arity %d", len(out))
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected return type %T", out[0])
	}
	return v, nil
}

func asAddress(out []interface{}) (common.Address, error) {
	if len(out) != 1 {
		return common.Address{}, fmt.Errorf("unexpected return arity %d", len(out))
	}
	v, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected return type %T", out[0])
	}
	return v, nil
}

func asBool(out []interface{}) (bool, error) {
	if len(out) != 1 {
		return false, fmt.Errorf("unexpected return arity %d", len(out))
	}
	v, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected return type %T", out[0])
	}
	return v, nil
}

func asString(out []interface{}) (string, error) {
	if len(out) != 1 {
		return "", fmt.Errorf("unexpected return arity %d", len(out))
	}
	v, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("unexpected return type %T", out[0])
	}
	return v, nil
}

func asUint8(out []interface{}) (uint8, error) {
	if len(out) != 1 {
		return 0, fmt.Errorf("unexpected return arity %d", len(out))
	}
	v, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected return type %T", out[0])
	}
	return v, nil
}
