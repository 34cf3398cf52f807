// Package discovery finds the set of factory-deployed sub-tokens and keeps
// it live. Two strategies exist because no node provider guarantees a cheap
// enumerable index: replaying OrgLaunched logs over the full range, and
// sequentially probing the allSubTokens array. Log replay is primary; probing
// is the fallback when the provider rejects full-range log queries.
package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/fairpraem-client/internal/gateway"
)

// Options tunes the engine
type Options struct {
	// MaxProbeIndex bounds sequential probing; the contract has no length getter
	MaxProbeIndex int

	// RefreshInterval is the periodic full-refresh backstop against missed events
	RefreshInterval time.Duration

	// EventDebounce is the delay between a live launch event and the re-run it
	// schedules, to tolerate node propagation lag
	EventDebounce time.Duration

	// OnUpdate, when set, receives a copy of each newly authoritative list
	OnUpdate func([]common.Address)
}

// Engine owns the single discovery state. Refresh runs are serialized: a
// trigger while one is in flight is coalesced into exactly one follow-up
// run, and only the most recently completed run's result is authoritative.
type Engine struct {
	factory gateway.Factory
	opts    Options
	log     *logrus.Entry

	mu         sync.Mutex
	tokens     []common.Address // newest-first, deduplicated
	refreshing bool
	queued     bool

	debounceMu    sync.Mutex
	debounceTimer *time.Timer
}

// New creates a discovery engine over the factory contract
func New(factory gateway.Factory, opts Options) *Engine {
	if opts.MaxProbeIndex <= 0 {
		opts.MaxProbeIndex = 50
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 30 * time.Second
	}
	if opts.EventDebounce <= 0 {
		opts.EventDebounce = 2 * time.Second
	}
	return &Engine{
		factory: factory,
		opts:    opts,
		log:     logrus.WithField("component", "discovery"),
	}
}

// Tokens returns a copy of the authoritative list, newest-first
func (e *Engine) Tokens() []common.Address {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]common.Address, len(e.tokens))
	copy(out, e.tokens)
	return out
}

// Refresh runs one full discovery pass. If a pass is already in flight the
// call is coalesced into a single queued follow-up and returns immediately;
// results from overlapping runs are never merged.
func (e *Engine) Refresh(ctx context.Context) {
	e.mu.Lock()
	if e.refreshing {
		e.queued = true
		e.mu.Unlock()
		return
	}
	e.refreshing = true
	e.mu.Unlock()

	for {
		tokens, err := e.discover(ctx)

		e.mu.Lock()
		if err == nil {
			e.tokens = tokens
		}
		// A dead context cannot serve the queued follow-up; drop it and
		// release the slot so a later Refresh with a live context runs.
		again := e.queued && ctx.Err() == nil
		e.queued = false
		if !again {
			e.refreshing = false
		}
		e.mu.Unlock()

		if err != nil {
			e.log.WithError(err).Warn("Discovery refresh failed, keeping last result")
		} else {
			e.log.WithField("tokens", len(tokens)).Debug("Discovery refresh complete")
			if e.opts.OnUpdate != nil {
				snapshot := make([]common.Address, len(tokens))
				copy(snapshot, tokens)
				e.opts.OnUpdate(snapshot)
			}
		}

		if !again {
			return
		}
	}
}

// Run performs an initial refresh, subscribes to live launch events and
// keeps the periodic backstop ticking until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	e.Refresh(ctx)

	stop, err := e.factory.WatchLaunches(ctx, func(ev gateway.LaunchEvent) {
		e.log.WithFields(logrus.Fields{
			"token":   ev.Token.Hex(),
			"creator": ev.Creator.Hex(),
			"block":   ev.BlockNumber,
		}).Info("Live token launch observed")
		e.scheduleEventRefresh(ctx)
	})
	if err != nil {
		e.log.WithError(err).Warn("Live launch watch unavailable, relying on periodic refresh")
	} else {
		defer stop()
	}

	ticker := time.NewTicker(e.opts.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.Refresh(ctx)
		}
	}
}

// scheduleEventRefresh debounces a full re-run after a live event instead of
// naively appending the new address: the node may not yet serve a consistent
// view, and a full run re-derives a deduplicated list. Bursts of events
// collapse into one run.
func (e *Engine) scheduleEventRefresh(ctx context.Context) {
	e.debounceMu.Lock()
	defer e.debounceMu.Unlock()
	if e.debounceTimer != nil {
		e.debounceTimer.Stop()
	}
	e.debounceTimer = time.AfterFunc(e.opts.EventDebounce, func() {
		if ctx.Err() != nil {
			return
		}
		e.Refresh(ctx)
	})
}

// discover runs the strategy policy: log replay first, sequential probing
// only when the log query fails outright.
func (e *Engine) discover(ctx context.Context) ([]common.Address, error) {
	events, err := e.factory.FilterLaunches(ctx)
	if err == nil {
		return newestFirst(events), nil
	}
	e.log.WithError(err).Warn("Log replay failed, falling back to sequential probing")
	return e.probe(ctx)
}

// probe reads allSubTokens(i) for i = 0, 1, 2, ... up to the bound. The
// first zero address or failed read is treated as end-of-array.
func (e *Engine) probe(ctx context.Context) ([]common.Address, error) {
	var collected []common.Address
	for i := 0; i < e.opts.MaxProbeIndex; i++ {
		if ctx.Err() != nil {
			// A torn-down caller must not overwrite the authoritative list.
			return nil, ctx.Err()
		}
		addr, err := e.factory.SubTokenAt(ctx, uint64(i))
		if err != nil || addr == (common.Address{}) {
			break
		}
		collected = append(collected, addr)
	}
	// Contract order is oldest-first; present newest-first.
	reverse(collected)
	return collected, nil
}

// newestFirst deduplicates log entries by token address keeping the first
// occurrence, then reverses the oldest-first node ordering.
func newestFirst(events []gateway.LaunchEvent) []common.Address {
	seen := make(map[common.Address]struct{}, len(events))
	var ordered []common.Address
	for _, ev := range events {
		if _, dup := seen[ev.Token]; dup {
			continue
		}
		seen[ev.Token] = struct{}{}
		ordered = append(ordered, ev.Token)
	}
	reverse(ordered)
	return ordered
}

func reverse(addrs []common.Address) {
	for i, j := 0, len(addrs)-1; i < j; i, j = i+1, j-1 {
		addrs[i], addrs[j] = addrs[j], addrs[i]
	}
}
