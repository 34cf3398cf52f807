// Package netguard gates every write path on the wallet's active chain
// matching the single supported chain. Read paths do not consult the guard;
// they pin the supported chain explicitly at the gateway.
package netguard

import (
	"fmt"

	"github.com/yourorg/fairpraem-client/internal/types"
)

// Guard compares a reported chain id against the supported one
type Guard struct {
	supported types.ChainID
}

// New creates a guard for the given supported chain
func New(supported types.ChainID) *Guard {
	return &Guard{supported: supported}
}

// Supported returns the single chain the client trusts
func (g *Guard) Supported() types.ChainID {
	return g.supported
}

// IsSupported reports whether the active chain matches the supported one
func (g *Guard) IsSupported(active types.ChainID) bool {
	return active == g.supported
}

// Require returns a switch-network error when the active chain does not
// match. Callers must not attempt the underlying write in that case.
func (g *Guard) Require(active types.ChainID) error {
	if g.IsSupported(active) {
		return nil
	}
	return &SwitchNetworkError{Active: active, Required: g.supported}
}

// SwitchNetworkError tells the caller which chain to switch to instead of
// letting the write fail remotely.
type SwitchNetworkError struct {
	Active   types.ChainID
	Required types.ChainID
}

func (e *SwitchNetworkError) Error() string {
	return fmt.Sprintf("unsupported chain %d (%s): switch to %d (%s)",
		e.Active, e.Active.Name(), e.Required, e.Required.Name())
}
