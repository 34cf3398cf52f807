package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/fairpraem-client/internal/codec"
	"github.com/yourorg/fairpraem-client/internal/model"
)

// Helper functions for JSON shaping and per-endpoint metrics

// writeJSON sends a JSON response with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Warnf("Failed to encode response: %v", err)
	}
}

// snapshotJSON shapes a token snapshot for the API. Unknown fields are
// omitted rather than zero-filled so a degraded snapshot is visible as such.
func snapshotJSON(snap model.TokenSnapshot) map[string]interface{} {
	out := map[string]interface{}{
		"address":    snap.Address.Hex(),
		"name":       snap.Name,
		"symbol":     snap.Symbol,
		"incomplete": snap.Incomplete,
	}
	if snap.TotalSupply != nil {
		out["total_supply"] = codec.ToDisplay(snap.TotalSupply)
	}
	if snap.Price != nil {
		out["price"] = codec.ToDisplay(snap.Price)
	}
	if mc := snap.MarketCap(); mc != nil {
		out["market_cap"] = codec.ToDisplay(mc)
	}
	if snap.Progress != nil {
		out["progress"] = *snap.Progress
	}
	if snap.Graduated != nil {
		out["graduated"] = *snap.Graduated
	}
	return out
}

// stateJSON shapes a transaction lifecycle state for the API
func stateJSON(state model.TransactionState) map[string]interface{} {
	out := map[string]interface{}{
		"status": state.Status.String(),
	}
	if state.Hash != (common.Hash{}) {
		out["tx_hash"] = state.Hash.Hex()
	}
	if state.Failure != model.FailureNone {
		out["failure"] = string(state.Failure)
	}
	if state.Reason != "" {
		out["reason"] = state.Reason
	}
	return out
}

// errorResponse returns a formatted JSON error
func (s *Server) errorResponse(w http.ResponseWriter, endpoint string, statusCode int, errorMsg string) {
	logrus.Warn(errorMsg)
	s.count(endpoint, "error")
	writeJSON(w, statusCode, map[string]interface{}{
		"status": "error",
		"error":  errorMsg,
	})
}

// count increments the request counter for one endpoint
func (s *Server) count(endpoint, status string) {
	s.metrics.requestCounter.WithLabelValues(endpoint, status).Inc()
}

// observe records a request duration; use with defer at handler entry
func (s *Server) observe(endpoint string, start time.Time) {
	s.metrics.requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
