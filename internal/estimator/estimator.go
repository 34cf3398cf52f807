// Package estimator keeps the displayed trade outcome synchronized with the
// user's input. Every (direction, amount) pair is a distinct query key; a
// response is applied only while its key is still current, so a slow quote
// for an old input can never overwrite the estimate for the new one.
package estimator

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yourorg/fairpraem-client/internal/codec"
	"github.com/yourorg/fairpraem-client/internal/model"
)

// ErrNoQuote signals that no quote exists for the requested input, either
// because the amount is zero or because a newer input superseded it.
var ErrNoQuote = errors.New("no quote for this input")

// Quoter is the pricing surface of a bonding token
type Quoter interface {
	GetBuyAmount(ctx context.Context, ethIn *big.Int) (*big.Int, error)
	GetSellAmount(ctx context.Context, tokenIn *big.Int) (*big.Int, error)
}

// Estimator tracks one trade form: current direction, current raw input and
// the last quote that still matches them.
type Estimator struct {
	quoter Quoter
	log    *logrus.Entry

	mu        sync.Mutex
	direction model.TradeDirection
	input     *big.Int // nil while the raw input does not parse
	quote     *model.TradeQuote
}

// New creates an estimator over the given quoter
func New(quoter Quoter) *Estimator {
	return &Estimator{
		quoter:    quoter,
		log:       logrus.WithField("component", "estimator"),
		direction: model.Buy,
	}
}

// SetInput records a new (direction, raw amount) pair and, when the amount
// parses to a positive quantity, issues the matching quote query in the
// background. Unparseable input resets the estimate to zero and issues no
// network call at all.
func (e *Estimator) SetInput(ctx context.Context, direction model.TradeDirection, raw string) {
	scaled, err := codec.ToScaled(raw)

	e.mu.Lock()
	e.direction = direction
	e.quote = nil
	if err != nil || scaled.Sign() == 0 {
		e.input = nil
		e.mu.Unlock()
		return
	}
	e.input = scaled
	e.mu.Unlock()

	go func() {
		if err := e.query(ctx, direction, scaled); err != nil {
			e.log.WithError(err).Debug("Quote query failed")
		}
	}()
}

// QuoteSync sets the input like SetInput but performs the quote query in the
// caller's goroutine and returns the result. The same supersession rule
// applies: if a concurrent SetInput replaced the key before the response
// arrived, ErrNoQuote is returned rather than a quote for a stale input.
func (e *Estimator) QuoteSync(ctx context.Context, direction model.TradeDirection, raw string) (model.TradeQuote, error) {
	scaled, err := codec.ToScaled(raw)

	e.mu.Lock()
	e.direction = direction
	e.quote = nil
	if err != nil || scaled.Sign() == 0 {
		e.input = nil
		e.mu.Unlock()
		if err == nil {
			err = ErrNoQuote
		}
		return model.TradeQuote{}, err
	}
	e.input = scaled
	e.mu.Unlock()

	if err := e.query(ctx, direction, scaled); err != nil {
		return model.TradeQuote{}, err
	}

	quote, ok := e.Quote()
	if !ok || !quote.Matches(direction, scaled) {
		return model.TradeQuote{}, ErrNoQuote
	}
	return quote, nil
}

// Estimate returns the output for the current input, or zero while a query
// is outstanding or the input is unparseable. The value always corresponds
// to the presently entered amount and direction, never a superseded one.
func (e *Estimator) Estimate() *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.quote == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(e.quote.Output)
}

// Quote returns the current valid quote, if one exists
func (e *Estimator) Quote() (model.TradeQuote, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.quote == nil {
		return model.TradeQuote{}, false
	}
	return *e.quote, true
}

func (e *Estimator) query(ctx context.Context, direction model.TradeDirection, input *big.Int) error {
	var (
		out *big.Int
		err error
	)
	switch direction {
	case model.Sell:
		out, err = e.quoter.GetSellAmount(ctx, input)
	default:
		out, err = e.quoter.GetBuyAmount(ctx, input)
	}
	if err != nil {
		return err
	}
	e.apply(direction, input, out)
	return nil
}

// apply installs a response only if its key still matches the current
// input; superseded responses are discarded.
func (e *Estimator) apply(direction model.TradeDirection, input, output *big.Int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if direction != e.direction || e.input == nil || e.input.Cmp(input) != 0 {
		return
	}
	e.quote = &model.TradeQuote{
		Direction: direction,
		Input:     new(big.Int).Set(input),
		Output:    output,
	}
}
