// Package config provides configuration loading and management for the application.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yourorg/fairpraem-client/internal/types"
)

// Config holds all application configuration
type Config struct {
	// HTTP server port
	Port string

	// JSON-RPC endpoint of the node provider
	RPCEndpoint string

	// Address of the launchpad factory (core) contract
	CoreAddress string

	// The single chain the client trusts for reads and writes
	SupportedChain types.ChainID

	// Hex private key for the local signer; empty means read-only mode
	PrivateKey string

	// Discovery settings
	MaxProbeIndex   int           // upper bound for sequential index probing
	RefreshInterval time.Duration // periodic full-refresh backstop
	EventDebounce   time.Duration // delay between a live launch event and the re-run it schedules
	WatchInterval   time.Duration // poll interval of the log watcher

	// OpenTelemetry endpoint for observability
	OtelEndpoint string

	// Timeouts and circuit breaker settings
	RequestTimeout    time.Duration
	ConfirmTimeout    time.Duration
	ReceiptPoll       time.Duration
	RPCRateLimit      float64 // outbound RPC calls per second
	RPCRateBurst      int
	MaxRPCFailures    int // consecutive failures before the circuit opens
	CircuitResetDelay time.Duration

	// Optional webhook for discovery / confirmation notifications
	WebhookURL    string
	WebhookAPIKey string
}

// Load creates a new Config from environment variables
func Load() Config {
	return Config{
		Port:              GetEnvOrDefault("PORT", "8080"),
		RPCEndpoint:       GetEnvOrDefault("RPC_ENDPOINT", "https://sepolia.base.org"),
		CoreAddress:       GetEnvOrDefault("CORE_ADDRESS", "0x80a4A65e0cd7ddcD9E6ad257F0bF7D7CcE66881e"),
		SupportedChain:    types.ChainID(GetEnvAsUint("SUPPORTED_CHAIN_ID", uint64(types.DefaultSupportedChain))),
		PrivateKey:        strings.TrimPrefix(os.Getenv("PRIVATE_KEY"), "0x"),
		MaxProbeIndex:     GetEnvAsInt("MAX_PROBE_INDEX", 50),
		RefreshInterval:   GetEnvAsDuration("REFRESH_INTERVAL", 30*time.Second),
		EventDebounce:     GetEnvAsDuration("EVENT_DEBOUNCE", 2*time.Second),
		WatchInterval:     GetEnvAsDuration("WATCH_INTERVAL", 5*time.Second),
		OtelEndpoint:      GetEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		RequestTimeout:    GetEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),
		ConfirmTimeout:    GetEnvAsDuration("CONFIRM_TIMEOUT", 2*time.Minute),
		ReceiptPoll:       GetEnvAsDuration("RECEIPT_POLL", 3*time.Second),
		RPCRateLimit:      GetEnvAsFloat("RPC_RATE_LIMIT", 10.0),
		RPCRateBurst:      GetEnvAsInt("RPC_RATE_BURST", 20),
		MaxRPCFailures:    GetEnvAsInt("MAX_RPC_FAILURES", 5),
		CircuitResetDelay: GetEnvAsDuration("CIRCUIT_RESET_DELAY", time.Minute),
		WebhookURL:        os.Getenv("WEBHOOK_URL"),
		WebhookAPIKey:     os.Getenv("WEBHOOK_API_KEY"),
	}
}

// ReadOnly reports whether the client runs without a signer
func (c Config) ReadOnly() bool {
	return c.PrivateKey == ""
}

// Chain describes the supported network as it is surfaced to callers
func (c Config) Chain() types.ChainConfig {
	return types.ChainConfig{
		ChainID:     c.SupportedChain,
		Name:        c.SupportedChain.Name(),
		RPCEndpoint: c.RPCEndpoint,
		Explorer:    c.SupportedChain.Explorer(),
	}
}

// GetEnv retrieves an environment variable and whether it exists
func GetEnv(key string) (string, bool) {
	value, exists := os.LookupEnv(key)
	return value, exists
}

// GetEnvOrDefault retrieves an environment variable or returns the default value if not set
func GetEnvOrDefault(key, defaultValue string) string {
	if value, exists := GetEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt retrieves an environment variable as an integer with a default value
func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := GetEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetEnvAsUint retrieves an environment variable as a uint64 with a default value
func GetEnvAsUint(key string, defaultValue uint64) uint64 {
	if value, exists := GetEnv(key); exists {
		if uintValue, err := strconv.ParseUint(value, 10, 64); err == nil {
			return uintValue
		}
	}
	return defaultValue
}

// GetEnvAsFloat retrieves an environment variable as a float with a default value
func GetEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := GetEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// GetEnvAsDuration retrieves an environment variable as a duration with a default value
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := GetEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
