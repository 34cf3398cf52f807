// Package main is the entry point for the fairpraem launchpad client, a
// headless service that discovers factory-deployed tokens, serves their
// market state and executes curve trades against the core contract.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/fairpraem-client/internal/circuitbreaker"
	"github.com/yourorg/fairpraem-client/internal/config"
	"github.com/yourorg/fairpraem-client/internal/gateway"
	"github.com/yourorg/fairpraem-client/internal/launchpad"
	"github.com/yourorg/fairpraem-client/internal/notify"
	"github.com/yourorg/fairpraem-client/internal/otel"
	"github.com/yourorg/fairpraem-client/internal/wallet"
)

// startTime records when the service was initialized for uptime reporting
var startTime = time.Now()

// Server is the HTTP adapter over the launchpad facade
type Server struct {
	cfg     config.Config
	pad     *launchpad.Client
	breaker *circuitbreaker.CircuitBreaker
	metrics *serverMetrics
	server  *http.Server
	cancel  context.CancelFunc
}

// serverMetrics holds Prometheus metrics for the server
type serverMetrics struct {
	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	tokenCount      prometheus.Gauge
	txSubmitted     *prometheus.CounterVec
	breakerState    prometheus.Gauge
}

// registerMetrics sets up Prometheus metrics collection
func registerMetrics() *serverMetrics {
	m := &serverMetrics{
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fairpraem_requests_total",
				Help: "Total number of HTTP requests processed",
			},
			[]string{"endpoint", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fairpraem_request_duration_seconds",
				Help:    "Request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		tokenCount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "fairpraem_discovered_tokens",
				Help: "Number of tokens in the discovered set",
			},
		),
		txSubmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fairpraem_tx_submitted_total",
				Help: "Transactions submitted per action",
			},
			[]string{"action"},
		),
		breakerState: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "fairpraem_rpc_breaker_state",
				Help: "RPC circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
		),
	}

	prometheus.MustRegister(
		m.requestCounter,
		m.requestDuration,
		m.tokenCount,
		m.txSubmitted,
		m.breakerState,
	)

	return m
}

// main is the entry point for the application
func main() {
	_ = godotenv.Load()

	setupLogging()

	cfg := config.Load()

	shutdownTracing := otel.InitTracer(cfg.OtelEndpoint)
	defer shutdownTracing()

	server, err := NewServer(context.Background(), cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize: %v", err)
	}
	server.Start()
}

// setupLogging configures the logging for the application
func setupLogging() {
	logFormat := strings.ToLower(os.Getenv("LOG_FORMAT"))
	logLevel := strings.ToLower(os.Getenv("LOG_LEVEL"))

	switch logFormat {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	switch logLevel {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "warn", "warning":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}

	logrus.Info("Logging configured")
}

// NewServer dials the chain, wires the launchpad facade and registers
// metrics. The discovery loop starts immediately in the background.
func NewServer(ctx context.Context, cfg config.Config) (*Server, error) {
	metrics := registerMetrics()

	breaker := circuitbreaker.New(cfg.MaxRPCFailures).
		WithResetDelay(cfg.CircuitResetDelay).
		WithTripCallback(func(reason string) {
			logrus.Warnf("RPC circuit breaker tripped: %s", reason)
			metrics.breakerState.Set(1)
		})

	var signer wallet.Signer
	if !cfg.ReadOnly() {
		keySigner, err := wallet.NewKeySigner(cfg.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("invalid private key: %w", err)
		}
		signer = keySigner
		logrus.Infof("Signer loaded: %s", keySigner.Address().Hex())
	} else {
		logrus.Info("No private key configured, running read-only")
	}

	gw, err := gateway.Dial(ctx, cfg, signer, breaker)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", cfg.RPCEndpoint, err)
	}

	notifier := notify.NewNotifier(notify.Options{
		Enabled:       cfg.WebhookURL != "",
		WebhookURL:    cfg.WebhookURL,
		WebhookAPIKey: cfg.WebhookAPIKey,
	})

	runCtx, cancel := context.WithCancel(ctx)
	pad := launchpad.New(runCtx, cfg, gw, notifier)

	go func() {
		if err := pad.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			logrus.Errorf("Discovery loop stopped: %v", err)
		}
	}()

	logrus.WithFields(logrus.Fields{
		"port":      cfg.Port,
		"chain":     cfg.SupportedChain,
		"core":      cfg.CoreAddress,
		"endpoint":  cfg.RPCEndpoint,
		"read_only": cfg.ReadOnly(),
	}).Info("Server initialized")

	return &Server{
		cfg:     cfg,
		pad:     pad,
		breaker: breaker,
		metrics: metrics,
		cancel:  cancel,
	}, nil
}

// Start begins the HTTP server and sets up graceful shutdown
func (s *Server) Start() {
	s.server = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("Server starting on port %s", s.cfg.Port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Error starting server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Server shutting down...")
	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		logrus.Fatalf("Server shutdown failed: %v", err)
	}

	logrus.Info("Server stopped")
}

// routes registers all API endpoints
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/circuit", s.handleCircuit)
	mux.HandleFunc("/factory", s.handleFactory)
	mux.HandleFunc("/tokens", s.handleTokens)
	mux.HandleFunc("/tokens/", s.handleToken)
	mux.HandleFunc("/quote", s.handleQuote)
	mux.HandleFunc("/trade", s.handleTrade)
	mux.HandleFunc("/launch", s.handleLaunch)
	mux.HandleFunc("/claim", s.handleClaim)
	mux.HandleFunc("/liquidity", s.handleLiquidity)
	mux.HandleFunc("/buyback", s.handleBuyback)
	mux.HandleFunc("/vault", s.handleVault)

	return mux
}
