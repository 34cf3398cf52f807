package gateway

import (
	"errors"
	"strings"
)

// Sentinel errors for the failure categories callers branch on. Transport
// failures are everything else and stay generic wrapped errors.
var (
	// ErrReverted marks a contract-level revert, distinct from transport trouble
	ErrReverted = errors.New("execution reverted")

	// ErrNoSigner is returned from write calls when the client runs read-only
	ErrNoSigner = errors.New("no signer configured")

	// ErrWrongNetwork is returned when the node reports a chain id other than
	// the supported one
	ErrWrongNetwork = errors.New("node chain id does not match supported chain")
)

// isRateLimited detects provider throttling so the retry backoff can widen
func isRateLimited(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "Too Many Requests") || strings.Contains(s, "-32005") || strings.Contains(s, "429")
}

// isRevert detects a contract-level revert in an RPC error
func isRevert(err error) bool {
	return err != nil && strings.Contains(err.Error(), "execution reverted")
}

// revertReason extracts the human-readable part of a revert error
func revertReason(err error) string {
	s := err.Error()
	if i := strings.Index(s, "execution reverted"); i >= 0 {
		return s[i:]
	}
	return s
}
