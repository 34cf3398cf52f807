// Package txtracker drives one outgoing transaction per logical action
// through submit, pending and settlement, exposing the explicit state
// machine the UI layer renders instead of ad hoc pending flags.
package txtracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/fairpraem-client/internal/gateway"
	"github.com/yourorg/fairpraem-client/internal/model"
	"github.com/yourorg/fairpraem-client/internal/wallet"
)

// ErrActionInFlight is returned when a write is attempted while the previous
// one for the same action has not reached a terminal state.
var ErrActionInFlight = errors.New("a transaction for this action is already in flight")

// SubmitFunc performs the actual signed submission and returns the tx hash
type SubmitFunc func(ctx context.Context) (common.Hash, error)

// Tracker owns the lifecycle of one logical action's transactions. Only one
// non-terminal transaction exists at a time; confirmation polling always
// terminates, by receipt or by timeout.
type Tracker struct {
	receipts       gateway.ReceiptSource
	confirmTimeout time.Duration
	pollInterval   time.Duration
	log            *logrus.Entry

	mu          sync.Mutex
	state       model.TransactionState
	onConfirmed []func(common.Hash)
}

// New creates a tracker for one logical action
func New(action string, receipts gateway.ReceiptSource, confirmTimeout, pollInterval time.Duration) *Tracker {
	if confirmTimeout <= 0 {
		confirmTimeout = 2 * time.Minute
	}
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}
	return &Tracker{
		receipts:       receipts,
		confirmTimeout: confirmTimeout,
		pollInterval:   pollInterval,
		log:            logrus.WithFields(logrus.Fields{"component": "txtracker", "action": action}),
	}
}

// OnConfirmed registers a side effect to run on the Confirmed transition,
// such as a dependent balance or flag refresh. Hooks run synchronously in
// transition order before Track returns.
func (t *Tracker) OnConfirmed(fn func(common.Hash)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onConfirmed = append(t.onConfirmed, fn)
}

// State returns the current transaction state
func (t *Tracker) State() model.TransactionState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Begin atomically reserves the single non-terminal slot for this action.
// On success it moves the state to AwaitingSignature and returns true; the
// caller then owns the lifecycle and must drive it with Execute. If a
// previous transaction is still in flight it returns that state and false.
func (t *Tracker) Begin() (model.TransactionState, bool) {
	t.mu.Lock()
	if t.state.InFlight() {
		current := t.state
		t.mu.Unlock()
		t.log.Warn("Rejected re-submission while transaction in flight")
		return current, false
	}
	t.state = model.TransactionState{Status: model.TxAwaitingSignature}
	current := t.state
	t.mu.Unlock()
	return current, true
}

// Execute drives a reserved lifecycle to its terminal state: Submitted on
// hash, Confirming while polling for the receipt, then Confirmed or Failed.
// It must only be called after a successful Begin.
func (t *Tracker) Execute(ctx context.Context, submit SubmitFunc) model.TransactionState {
	hash, err := submit(ctx)
	if err != nil {
		return t.fail(common.Hash{}, err)
	}
	t.transition(model.TransactionState{Status: model.TxSubmitted, Hash: hash})

	return t.awaitReceipt(ctx, hash)
}

// Track runs one full lifecycle: AwaitingSignature while submit is asked to
// sign and send, Submitted on hash, Confirming while polling for the
// receipt, then Confirmed or Failed. It refuses to start while a previous
// transaction for this action is non-terminal.
func (t *Tracker) Track(ctx context.Context, submit SubmitFunc) model.TransactionState {
	if current, ok := t.Begin(); !ok {
		return current
	}
	return t.Execute(ctx, submit)
}

// awaitReceipt polls until the receipt is mined, the timeout elapses or ctx
// is cancelled. A missing receipt keeps the Confirming state; transport
// errors during polling are tolerated until the deadline.
func (t *Tracker) awaitReceipt(ctx context.Context, hash common.Hash) model.TransactionState {
	t.transition(model.TransactionState{Status: model.TxConfirming, Hash: hash})

	deadline := time.NewTimer(t.confirmTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return t.failWith(hash, model.FailureTimeout, "confirmation abandoned: "+ctx.Err().Error())
		case <-deadline.C:
			return t.failWith(hash, model.FailureTimeout, "transaction not mined within "+t.confirmTimeout.String())
		case <-ticker.C:
		}

		receipt, err := t.receipts.Receipt(ctx, hash)
		if err != nil {
			if !errors.Is(err, ethereum.NotFound) {
				t.log.WithError(err).Debug("Receipt poll failed, retrying")
			}
			continue
		}
		if receipt.Status == ethtypes.ReceiptStatusFailed {
			return t.failWith(hash, model.FailureReverted, "transaction reverted on chain")
		}
		return t.confirm(hash)
	}
}

func (t *Tracker) confirm(hash common.Hash) model.TransactionState {
	state := model.TransactionState{Status: model.TxConfirmed, Hash: hash}
	t.mu.Lock()
	t.state = state
	hooks := make([]func(common.Hash), len(t.onConfirmed))
	copy(hooks, t.onConfirmed)
	t.mu.Unlock()

	t.log.WithField("tx", hash.Hex()).Info("Transaction confirmed")
	for _, hook := range hooks {
		hook(hash)
	}
	return state
}

// fail classifies the submission error into the user-facing categories:
// wallet refusal, contract revert, or transport trouble.
func (t *Tracker) fail(hash common.Hash, err error) model.TransactionState {
	switch {
	case errors.Is(err, wallet.ErrSigningDeclined):
		return t.failWith(hash, model.FailureUserRejected, "signing declined in wallet")
	case errors.Is(err, gateway.ErrReverted):
		return t.failWith(hash, model.FailureReverted, err.Error())
	default:
		return t.failWith(hash, model.FailureTransport, err.Error())
	}
}

func (t *Tracker) failWith(hash common.Hash, kind model.FailureKind, reason string) model.TransactionState {
	state := model.TransactionState{
		Status:  model.TxFailed,
		Hash:    hash,
		Failure: kind,
		Reason:  reason,
	}
	t.transition(state)
	if kind == model.FailureUserRejected {
		t.log.Info("Transaction cancelled by user")
	} else {
		t.log.WithFields(logrus.Fields{"kind": kind, "reason": reason}).Warn("Transaction failed")
	}
	return state
}

func (t *Tracker) transition(state model.TransactionState) {
	t.mu.Lock()
	t.state = state
	t.mu.Unlock()
}
