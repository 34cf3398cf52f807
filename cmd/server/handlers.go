package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yourorg/fairpraem-client/internal/codec"
	"github.com/yourorg/fairpraem-client/internal/launchpad"
	"github.com/yourorg/fairpraem-client/internal/model"
	"github.com/yourorg/fairpraem-client/internal/netguard"
	"github.com/yourorg/fairpraem-client/internal/txtracker"
)

// handleHealth is a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"version":   "1.0.0",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleStatus provides detailed service status information
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "operational",
		"uptime":        time.Since(startTime).String(),
		"version":       "1.0.0",
		"chain":         s.cfg.Chain(),
		"tokens":        len(s.pad.TokenAddresses()),
		"read_only":     s.cfg.ReadOnly(),
		"circuit_state": s.breaker.GetState().String(),
	})
}

// handleMetrics exposes Prometheus metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.metrics.tokenCount.Set(float64(len(s.pad.TokenAddresses())))
	promhttp.Handler().ServeHTTP(w, r)
}

// handleCircuit allows viewing and resetting the RPC circuit breaker
func (s *Server) handleCircuit(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"state": s.breaker.GetState().String(),
	}

	if r.Method == http.MethodPost && r.URL.Query().Get("action") == "reset" {
		s.breaker.Reset()
		s.metrics.breakerState.Set(0)
		response["message"] = "Circuit breaker reset"
		response["state"] = s.breaker.GetState().String()
	}

	writeJSON(w, http.StatusOK, response)
}

// handleFactory serves the protocol-level dashboard state
func (s *Server) handleFactory(w http.ResponseWriter, r *http.Request) {
	defer s.observe("factory", time.Now())

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	stats := s.pad.FactoryStats(ctx)
	out := map[string]interface{}{
		"name":       stats.Name,
		"symbol":     stats.Symbol,
		"incomplete": stats.Incomplete,
	}
	if stats.TotalSupply != nil {
		out["total_supply"] = codec.ToDisplay(stats.TotalSupply)
	}
	if stats.SignerBalance != nil {
		out["signer_balance"] = codec.ToDisplay(stats.SignerBalance)
	}
	if stats.GovernanceVault != nil {
		out["governance_vault"] = stats.GovernanceVault.Hex()
	}
	if stats.InitialLiquidityAdded != nil {
		out["initial_liquidity_added"] = *stats.InitialLiquidityAdded
	}
	if stats.DeployTime != nil {
		out["deploy_time"] = stats.DeployTime.String()
	}
	if stats.ReleasedIncentive != nil {
		out["released_incentive"] = codec.ToDisplay(stats.ReleasedIncentive)
	}

	s.count("factory", "success")
	writeJSON(w, http.StatusOK, out)
}

// handleTokens lists discovered tokens with their market snapshots,
// newest first
func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	defer s.observe("tokens", time.Now())

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	snaps := s.pad.ListTokens(ctx)
	out := make([]map[string]interface{}, len(snaps))
	for i, snap := range snaps {
		out[i] = snapshotJSON(snap)
	}

	s.metrics.tokenCount.Set(float64(len(snaps)))
	s.count("tokens", "success")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(out),
		"tokens": out,
	})
}

// handleToken serves the market snapshot of one token address
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	defer s.observe("token", time.Now())

	raw := strings.TrimPrefix(r.URL.Path, "/tokens/")
	if !common.IsHexAddress(raw) {
		s.errorResponse(w, "token", http.StatusBadRequest, "invalid token address")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	snap := s.pad.Token(ctx, common.HexToAddress(raw))
	s.count("token", "success")
	writeJSON(w, http.StatusOK, snapshotJSON(snap))
}

// TradeRequest is the body of POST /quote and POST /trade
type TradeRequest struct {
	Token     string `json:"token"`
	Direction string `json:"direction"`
	Amount    string `json:"amount"`
}

// handleQuote estimates a trade outcome without submitting anything
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	defer s.observe("quote", time.Now())

	var req TradeRequest
	addr, ok := s.decodeTradeRequest(w, "quote", r, &req)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	quote, err := s.pad.Quote(ctx, addr, model.TradeDirection(req.Direction), req.Amount)
	if err != nil {
		s.errorResponse(w, "quote", quoteStatus(err), err.Error())
		return
	}

	s.count("quote", "success")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"direction": string(quote.Direction),
		"input":     codec.ToDisplay(quote.Input),
		"output":    codec.ToDisplay(quote.Output),
	})
}

// handleTrade submits a buy or sell. GET with ?action=buy:0x..|sell:0x..
// reports the current lifecycle state of that trade.
func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	defer s.observe("trade", time.Now())

	if r.Method == http.MethodGet {
		s.handleActionState(w, "trade", r.URL.Query().Get("action"))
		return
	}

	var req TradeRequest
	addr, ok := s.decodeTradeRequest(w, "trade", r, &req)
	if !ok {
		return
	}

	var (
		state model.TransactionState
		err   error
	)
	switch model.TradeDirection(req.Direction) {
	case model.Buy:
		state, err = s.pad.Buy(r.Context(), addr, req.Amount)
	case model.Sell:
		state, err = s.pad.Sell(r.Context(), addr, req.Amount)
	default:
		s.errorResponse(w, "trade", http.StatusBadRequest, launchpad.ErrBadDirection.Error())
		return
	}
	s.writeActionOutcome(w, "trade", req.Direction, state, err)
}

// LaunchRequest is the body of POST /launch
type LaunchRequest struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// handleLaunch deploys a new sub-token through the factory
func (s *Server) handleLaunch(w http.ResponseWriter, r *http.Request) {
	defer s.observe("launch", time.Now())

	if r.Method == http.MethodGet {
		s.handleActionState(w, "launch", "launch")
		return
	}
	if r.Method != http.MethodPost {
		s.errorResponse(w, "launch", http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req LaunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, "launch", http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := s.pad.Launch(r.Context(), req.Name, req.Symbol)
	s.writeActionOutcome(w, "launch", "launch", state, err)
}

// handleClaim releases vested governance tokens for the signer
func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	defer s.observe("claim", time.Now())

	if r.Method == http.MethodGet {
		s.handleActionState(w, "claim", "claim")
		return
	}
	if r.Method != http.MethodPost {
		s.errorResponse(w, "claim", http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	state, err := s.pad.Claim(r.Context())
	s.writeActionOutcome(w, "claim", "claim", state, err)
}

// AmountRequest is the body of POST /liquidity and POST /buyback
type AmountRequest struct {
	Amount string `json:"amount"`
}

// handleLiquidity seeds the initial DEX liquidity and burns the LP tokens
func (s *Server) handleLiquidity(w http.ResponseWriter, r *http.Request) {
	defer s.observe("liquidity", time.Now())

	if r.Method == http.MethodGet {
		s.handleActionState(w, "liquidity", "liquidity")
		return
	}
	if r.Method != http.MethodPost {
		s.errorResponse(w, "liquidity", http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, "liquidity", http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := s.pad.SeedLiquidity(r.Context(), req.Amount)
	s.writeActionOutcome(w, "liquidity", "liquidity", state, err)
}

// handleBuyback triggers a manual protocol buyback
func (s *Server) handleBuyback(w http.ResponseWriter, r *http.Request) {
	defer s.observe("buyback", time.Now())

	if r.Method == http.MethodGet {
		s.handleActionState(w, "buyback", "buyback")
		return
	}
	if r.Method != http.MethodPost {
		s.errorResponse(w, "buyback", http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, "buyback", http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := s.pad.Buyback(r.Context(), req.Amount)
	s.writeActionOutcome(w, "buyback", "buyback", state, err)
}

// VaultRequest is the body of POST /vault
type VaultRequest struct {
	Vault string `json:"vault"`
}

// handleVault repoints the factory's governance vault
func (s *Server) handleVault(w http.ResponseWriter, r *http.Request) {
	defer s.observe("vault", time.Now())

	if r.Method == http.MethodGet {
		s.handleActionState(w, "vault", "vault")
		return
	}
	if r.Method != http.MethodPost {
		s.errorResponse(w, "vault", http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req VaultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, "vault", http.StatusBadRequest, "invalid request body")
		return
	}
	if !common.IsHexAddress(req.Vault) {
		s.errorResponse(w, "vault", http.StatusBadRequest, "invalid vault address")
		return
	}

	state, err := s.pad.SetVault(r.Context(), common.HexToAddress(req.Vault))
	s.writeActionOutcome(w, "vault", "vault", state, err)
}

// handleActionState reports the lifecycle state of one logical action
func (s *Server) handleActionState(w http.ResponseWriter, endpoint, action string) {
	state, ok := s.pad.ActionState(action)
	if !ok {
		s.errorResponse(w, endpoint, http.StatusNotFound, "no transaction for this action")
		return
	}
	s.count(endpoint, "success")
	writeJSON(w, http.StatusOK, stateJSON(state))
}

// decodeTradeRequest parses and validates the shared quote/trade body
func (s *Server) decodeTradeRequest(w http.ResponseWriter, endpoint string, r *http.Request, req *TradeRequest) (common.Address, bool) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, endpoint, http.StatusMethodNotAllowed, "method not allowed")
		return common.Address{}, false
	}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		s.errorResponse(w, endpoint, http.StatusBadRequest, "invalid request body")
		return common.Address{}, false
	}
	if !common.IsHexAddress(req.Token) {
		s.errorResponse(w, endpoint, http.StatusBadRequest, "invalid token address")
		return common.Address{}, false
	}
	return common.HexToAddress(req.Token), true
}

// writeActionOutcome maps a facade write result onto HTTP and records the
// submission in metrics
func (s *Server) writeActionOutcome(w http.ResponseWriter, endpoint, action string, state model.TransactionState, err error) {
	if err != nil {
		s.errorResponse(w, endpoint, actionStatus(err), err.Error())
		return
	}

	s.metrics.txSubmitted.WithLabelValues(action).Inc()
	s.count(endpoint, "success")
	writeJSON(w, http.StatusAccepted, stateJSON(state))
}

// actionStatus maps facade write errors onto HTTP status codes
func actionStatus(err error) int {
	var switchErr *netguard.SwitchNetworkError
	switch {
	case errors.As(err, &switchErr):
		return http.StatusConflict
	case errors.Is(err, txtracker.ErrActionInFlight):
		return http.StatusConflict
	case errors.Is(err, launchpad.ErrGraduated):
		return http.StatusConflict
	case errors.Is(err, codec.ErrInvalidAmount),
		errors.Is(err, launchpad.ErrMissingField):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// quoteStatus maps quote errors onto HTTP status codes
func quoteStatus(err error) int {
	switch {
	case errors.Is(err, codec.ErrInvalidAmount),
		errors.Is(err, launchpad.ErrBadDirection):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
