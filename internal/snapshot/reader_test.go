package snapshot

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/fairpraem-client/internal/gateway"
	"github.com/yourorg/fairpraem-client/internal/model"
)

var errRPC = errors.New("rpc: connection reset")

// fakeToken returns canned values; a nil pointer field simulates a failed read.
type fakeToken struct {
	gateway.BondingToken

	name, symbol *string
	supply       *big.Int
	price        *big.Int
	progress     *big.Int
	graduated    *bool
}

func str(s string) *string { return &s }
func boolean(b bool) *bool { return &b }

func (f *fakeToken) Name(context.Context) (string, error) {
	if f.name == nil {
		return "", errRPC
	}
	return *f.name, nil
}

func (f *fakeToken) Symbol(context.Context) (string, error) {
	if f.symbol == nil {
		return "", errRPC
	}
	return *f.symbol, nil
}

func (f *fakeToken) TotalSupply(context.Context) (*big.Int, error) {
	if f.supply == nil {
		return nil, errRPC
	}
	return f.supply, nil
}

func (f *fakeToken) GetCurrentPrice(context.Context) (*big.Int, error) {
	if f.price == nil {
		return nil, errRPC
	}
	return f.price, nil
}

func (f *fakeToken) GetProgress(context.Context) (*big.Int, error) {
	if f.progress == nil {
		return nil, errRPC
	}
	return f.progress, nil
}

func (f *fakeToken) IsGraduated(context.Context) (bool, error) {
	if f.graduated == nil {
		return false, errRPC
	}
	return *f.graduated, nil
}

func readerFor(tok *fakeToken) *Reader {
	return New(func(common.Address) gateway.BondingToken { return tok })
}

var tokenAddr = common.HexToAddress("0x00000000000000000000000000000000000000aa")

func scaled(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), model.ScalingFactor)
}

func TestRead_CompleteSnapshot(t *testing.T) {
	tok := &fakeToken{
		name:      str("Pepe Moon"),
		symbol:    str("PEPE"),
		supply:    scaled(1000),
		price:     big.NewInt(2e15), // 0.002 in scale
		progress:  big.NewInt(42),
		graduated: boolean(false),
	}

	snap := readerFor(tok).Read(context.Background(), tokenAddr)

	assert.False(t, snap.Incomplete)
	assert.Equal(t, "Pepe Moon", snap.Name)
	assert.Equal(t, "PEPE", snap.Symbol)
	require.NotNil(t, snap.Progress)
	assert.Equal(t, uint8(42), *snap.Progress)
	assert.False(t, snap.IsGraduated())

	// marketCap = price * supply / 1e18
	want := new(big.Int).Div(new(big.Int).Mul(tok.price, tok.supply), model.ScalingFactor)
	assert.Equal(t, 0, want.Cmp(snap.MarketCap()))
}

func TestRead_PartialFailureIsIncompleteNotFatal(t *testing.T) {
	tok := &fakeToken{
		name:      str("Pepe Moon"),
		symbol:    str("PEPE"),
		supply:    scaled(1000),
		price:     nil, // price read fails
		progress:  big.NewInt(10),
		graduated: boolean(false),
	}

	snap := readerFor(tok).Read(context.Background(), tokenAddr)

	assert.True(t, snap.Incomplete)
	assert.Equal(t, "Pepe Moon", snap.Name)
	assert.Nil(t, snap.Price)
	assert.Nil(t, snap.MarketCap(), "market cap must not be a partial product")
}

func TestRead_ProgressClamped(t *testing.T) {
	tok := &fakeToken{
		name:      str("T"),
		symbol:    str("T"),
		supply:    scaled(1),
		price:     big.NewInt(1),
		progress:  big.NewInt(250),
		graduated: boolean(true),
	}

	snap := readerFor(tok).Read(context.Background(), tokenAddr)

	require.NotNil(t, snap.Progress)
	assert.Equal(t, uint8(100), *snap.Progress)
}

func TestRead_GraduationNeverReverts(t *testing.T) {
	tok := &fakeToken{
		name:      str("T"),
		symbol:    str("T"),
		supply:    scaled(1),
		price:     big.NewInt(1),
		progress:  big.NewInt(100),
		graduated: boolean(true),
	}
	r := readerFor(tok)

	first := r.Read(context.Background(), tokenAddr)
	require.True(t, first.IsGraduated())

	// A lagging node serves a stale false afterwards.
	tok.graduated = boolean(false)
	second := r.Read(context.Background(), tokenAddr)
	assert.True(t, second.IsGraduated(), "graduation is one-way")

	// Even a failed graduation read keeps the latch.
	tok.graduated = nil
	third := r.Read(context.Background(), tokenAddr)
	assert.True(t, third.IsGraduated())
}

func TestRead_GraduationLatchIsPerAddress(t *testing.T) {
	tok := &fakeToken{
		name:      str("T"),
		symbol:    str("T"),
		supply:    scaled(1),
		price:     big.NewInt(1),
		progress:  big.NewInt(100),
		graduated: boolean(true),
	}
	r := readerFor(tok)
	r.Read(context.Background(), tokenAddr)

	tok.graduated = boolean(false)
	other := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	snap := r.Read(context.Background(), other)

	assert.False(t, snap.IsGraduated(), "latch for one token must not leak to another")
}
