// Package snapshot assembles per-token market state from parallel view
// reads. A failed sub-read leaves its field unknown; the snapshot as a whole
// never fails because one read did.
package snapshot

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/fairpraem-client/internal/gateway"
	"github.com/yourorg/fairpraem-client/internal/model"
)

// TokenSource resolves a typed sub-token role for an address
type TokenSource func(common.Address) gateway.BondingToken

// Reader issues the fixed set of view reads for a token and remembers
// graduation per address: once a token has been observed graduated, no later
// snapshot may report it un-graduated, whatever a lagging node claims.
type Reader struct {
	tokens TokenSource
	log    *logrus.Entry

	mu        sync.Mutex
	graduated map[common.Address]bool
}

// New creates a snapshot reader
func New(tokens TokenSource) *Reader {
	return &Reader{
		tokens:    tokens,
		log:       logrus.WithField("component", "snapshot"),
		graduated: make(map[common.Address]bool),
	}
}

// Read fetches one TokenSnapshot with all sub-reads issued in parallel
func (r *Reader) Read(ctx context.Context, addr common.Address) model.TokenSnapshot {
	token := r.tokens(addr)

	var (
		wg sync.WaitGroup

		name, symbol       string
		nameOK, symbolOK   bool
		supply, price      *big.Int
		progress           *big.Int
		grad               bool
		gradOK, progressOK bool
	)

	read := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	read(func() {
		if v, err := token.Name(ctx); err == nil {
			name, nameOK = v, true
		}
	})
	read(func() {
		if v, err := token.Symbol(ctx); err == nil {
			symbol, symbolOK = v, true
		}
	})
	read(func() {
		if v, err := token.TotalSupply(ctx); err == nil {
			supply = v
		}
	})
	read(func() {
		if v, err := token.GetCurrentPrice(ctx); err == nil {
			price = v
		}
	})
	read(func() {
		if v, err := token.GetProgress(ctx); err == nil {
			progress, progressOK = v, true
		}
	})
	read(func() {
		if v, err := token.IsGraduated(ctx); err == nil {
			grad, gradOK = v, true
		}
	})
	wg.Wait()

	snap := model.TokenSnapshot{Address: addr}
	if nameOK {
		snap.Name = name
	}
	if symbolOK {
		snap.Symbol = symbol
	}
	snap.TotalSupply = supply
	snap.Price = price
	if progressOK {
		p := clampPercent(progress)
		snap.Progress = &p
	}

	latched := r.latchGraduation(addr, gradOK, grad)
	if gradOK || latched {
		g := grad || latched
		snap.Graduated = &g
	}

	snap.Incomplete = !nameOK || !symbolOK || supply == nil || price == nil || !progressOK || !gradOK
	if snap.Incomplete {
		r.log.WithField("token", addr.Hex()).Debug("Snapshot incomplete, some reads failed")
	}
	return snap
}

// latchGraduation records a true reading and returns whether the address
// was already latched. Graduation is one-way; a false reading after a true
// one is a stale node, not a reverted token.
func (r *Reader) latchGraduation(addr common.Address, ok, graduated bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	was := r.graduated[addr]
	if ok && graduated {
		r.graduated[addr] = true
	}
	return was
}

// clampPercent reduces the contract's uint256 progress to 0..100
func clampPercent(v *big.Int) uint8 {
	if v == nil || v.Sign() < 0 {
		return 0
	}
	if v.Cmp(big.NewInt(100)) > 0 {
		return 100
	}
	return uint8(v.Uint64())
}
