// Package codec converts between the contracts' 18-decimal fixed-point
// integers and human-facing decimal strings. All arithmetic is exact; values
// never pass through floats.
package codec

import (
	"errors"
	"math/big"
	"strings"
)

// Decimals is the fixed scale of every quantity the contracts expose
const Decimals = 18

// ErrInvalidAmount is returned for non-numeric or negative input
var ErrInvalidAmount = errors.New("invalid amount")

var scale = new(big.Int).Exp(big.NewInt(10), big.NewInt(Decimals), nil)

// ToScaled parses a decimal string into a scaled integer. Digits beyond the
// 18th decimal place are truncated. Negative and non-numeric input fails
// with ErrInvalidAmount.
func ToScaled(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return nil, ErrInvalidAmount
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
		if strings.IndexByte(frac, '.') >= 0 {
			return nil, ErrInvalidAmount
		}
	}
	if whole == "" && frac == "" {
		return nil, ErrInvalidAmount
	}
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || (frac != "" && !isDigits(frac)) {
		return nil, ErrInvalidAmount
	}

	// Truncate, never round, past the scale.
	if len(frac) > Decimals {
		frac = frac[:Decimals]
	}
	frac += strings.Repeat("0", Decimals-len(frac))

	out, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, ErrInvalidAmount
	}
	return out, nil
}

// ToDisplay renders a scaled integer as a decimal string with trailing
// zeros trimmed. nil renders as "0".
func ToDisplay(v *big.Int) string {
	if v == nil || v.Sign() == 0 {
		return "0"
	}
	neg := v.Sign() < 0
	abs := new(big.Int).Abs(v)

	whole, frac := new(big.Int).QuoRem(abs, scale, new(big.Int))
	out := whole.String()
	if frac.Sign() != 0 {
		digits := frac.String()
		digits = strings.Repeat("0", Decimals-len(digits)) + digits
		digits = strings.TrimRight(digits, "0")
		out += "." + digits
	}
	if neg {
		out = "-" + out
	}
	return out
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
