// Package model defines the core data structures for the fairpraem client.
package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ScalingFactor is the fixed-point scale the contracts use: human value v is
// stored on chain as v * 10^18.
var ScalingFactor = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// TradeDirection is the side of a bonding-curve trade
type TradeDirection string

// Trade directions
const (
	Buy  TradeDirection = "buy"
	Sell TradeDirection = "sell"
)

// Valid reports whether d is one of the two known directions
func (d TradeDirection) Valid() bool {
	return d == Buy || d == Sell
}

// TokenSnapshot is the view-function state of a single sub-token assembled
// from parallel reads. Each pointer field is nil when the underlying read
// failed; the snapshot as a whole is still usable (Incomplete is set).
type TokenSnapshot struct {
	Address common.Address `json:"address"`

	Name        string   `json:"name,omitempty"`
	Symbol      string   `json:"symbol,omitempty"`
	TotalSupply *big.Int `json:"total_supply,omitempty"`
	Price       *big.Int `json:"current_price,omitempty"`
	Progress    *uint8   `json:"progress,omitempty"`
	Graduated   *bool    `json:"is_graduated,omitempty"`

	// Incomplete is true when at least one sub-read failed and the
	// corresponding field is unknown.
	Incomplete bool `json:"incomplete"`
}

// MarketCap computes price * supply / 10^18. It returns nil when either
// input is unknown so a partial product is never reported.
func (s TokenSnapshot) MarketCap() *big.Int {
	if s.Price == nil || s.TotalSupply == nil {
		return nil
	}
	mc := new(big.Int).Mul(s.Price, s.TotalSupply)
	return mc.Div(mc, ScalingFactor)
}

// IsGraduated returns the graduation flag, false when unknown
func (s TokenSnapshot) IsGraduated() bool {
	return s.Graduated != nil && *s.Graduated
}

// TradeQuote is the contract's quoted output for one exact (direction,
// input) pair. A quote is stale the moment either half of its key changes.
type TradeQuote struct {
	Direction TradeDirection `json:"direction"`
	Input     *big.Int       `json:"input"`
	Output    *big.Int       `json:"output"`
}

// Matches reports whether the quote was computed for the given key
func (q TradeQuote) Matches(dir TradeDirection, input *big.Int) bool {
	if q.Direction != dir || q.Input == nil || input == nil {
		return false
	}
	return q.Input.Cmp(input) == 0
}

// TxStatus is the lifecycle phase of a tracked transaction
type TxStatus int

// Transaction lifecycle states
const (
	TxIdle TxStatus = iota
	TxAwaitingSignature
	TxSubmitted
	TxConfirming
	TxConfirmed
	TxFailed
)

// String renders the status for logs and API responses
func (s TxStatus) String() string {
	switch s {
	case TxIdle:
		return "idle"
	case TxAwaitingSignature:
		return "awaiting_signature"
	case TxSubmitted:
		return "submitted"
	case TxConfirming:
		return "confirming"
	case TxConfirmed:
		return "confirmed"
	case TxFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can occur
func (s TxStatus) Terminal() bool {
	return s == TxConfirmed || s == TxFailed
}

// FailureKind categorizes a failed transaction so the caller can offer an
// actionable next step instead of a generic error.
type FailureKind string

// Failure categories
const (
	FailureNone         FailureKind = ""
	FailureUserRejected FailureKind = "user_rejected"
	FailureReverted     FailureKind = "reverted"
	FailureTimeout      FailureKind = "timeout"
	FailureTransport    FailureKind = "transport"
)

// TransactionState is the externally visible state of one tracked write
type TransactionState struct {
	Status  TxStatus    `json:"status"`
	Hash    common.Hash `json:"hash,omitempty"`
	Failure FailureKind `json:"failure,omitempty"`
	Reason  string      `json:"reason,omitempty"`
}

// InFlight reports whether a new write for the same action must be refused
func (t TransactionState) InFlight() bool {
	return t.Status == TxAwaitingSignature || t.Status == TxSubmitted || t.Status == TxConfirming
}
