// Package notify pushes launchpad events to an external webhook endpoint.
package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Event is a single webhook payload entry.
type Event struct {
	Kind      string `json:"kind"`
	Token     string `json:"token,omitempty"`
	TxHash    string `json:"tx_hash,omitempty"`
	Detail    string `json:"detail,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Options holds configuration for the webhook notifier.
type Options struct {
	Enabled       bool
	BatchSize     int
	FlushInterval time.Duration
	WebhookURL    string
	WebhookAPIKey string
}

// Notifier batches launchpad events and exports them to a webhook in the
// background. A disabled notifier is safe to use; all methods are no-ops.
type Notifier struct {
	opts       Options
	httpClient *http.Client
	mutex      sync.Mutex
	batch      []Event
	lastFlush  time.Time
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewNotifier creates a notifier. When opts.Enabled is false the returned
// notifier discards all events.
func NewNotifier(opts Options) *Notifier {
	if !opts.Enabled || opts.WebhookURL == "" {
		return &Notifier{opts: Options{Enabled: false}}
	}

	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = time.Minute
	}

	n := &Notifier{
		opts: opts,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
				IdleConnTimeout: 90 * time.Second,
			},
		},
		batch: make([]Event, 0, opts.BatchSize),
	}

	n.ctx, n.cancel = context.WithCancel(context.Background())
	go n.periodicFlush()

	logrus.Info("Webhook notifier initialized")
	return n
}

// TokenDiscovered records a discovery event for the given token address.
func (n *Notifier) TokenDiscovered(token string) {
	n.add(Event{
		Kind:      "token_discovered",
		Token:     token,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// TransactionConfirmed records a confirmed transaction for the given action.
func (n *Notifier) TransactionConfirmed(action, txHash string) {
	n.add(Event{
		Kind:      "transaction_confirmed",
		Detail:    action,
		TxHash:    txHash,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// TransactionFailed records a failed transaction with its failure detail.
func (n *Notifier) TransactionFailed(action, detail string) {
	n.add(Event{
		Kind:      "transaction_failed",
		Detail:    action + ": " + detail,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (n *Notifier) add(ev Event) {
	if !n.opts.Enabled {
		return
	}

	n.mutex.Lock()
	defer n.mutex.Unlock()

	n.batch = append(n.batch, ev)

	// Flush immediately once the batch is full.
	if len(n.batch) >= n.opts.BatchSize {
		go n.flush()
	}
}

// periodicFlush runs a background task to periodically export events
func (n *Notifier) periodicFlush() {
	ticker := time.NewTicker(n.opts.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n.flush()
		case <-n.ctx.Done():
			return
		}
	}
}

// flush exports the current batch of events
func (n *Notifier) flush() {
	n.mutex.Lock()

	if len(n.batch) == 0 {
		n.mutex.Unlock()
		return
	}

	events := make([]Event, len(n.batch))
	copy(events, n.batch)
	n.batch = make([]Event, 0, n.opts.BatchSize)
	n.lastFlush = time.Now()

	n.mutex.Unlock()

	if err := n.post(events); err != nil {
		logrus.Errorf("Failed to export events to webhook: %v", err)
		return
	}

	logrus.Debugf("Exported %d events to webhook", len(events))
}

// post sends a batch of events to the configured webhook endpoint
func (n *Notifier) post(events []Event) error {
	payload := struct {
		Events     []Event `json:"events"`
		ExportTime string  `json:"export_time"`
		Count      int     `json:"count"`
	}{
		Events:     events,
		ExportTime: time.Now().UTC().Format(time.RFC3339),
		Count:      len(events),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal events: %w", err)
	}

	req, err := http.NewRequest("POST", n.opts.WebhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if n.opts.WebhookAPIKey != "" {
		req.Header.Set("Authorization", "Bearer "+n.opts.WebhookAPIKey)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned error status: %d", resp.StatusCode)
	}

	return nil
}

// Stop cleanly stops the notifier, exporting any remaining events.
func (n *Notifier) Stop() {
	if n.cancel != nil {
		n.cancel()
	}
	n.flush()
}

// Status reports the notifier state for diagnostics endpoints.
func (n *Notifier) Status() map[string]interface{} {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	status := map[string]interface{}{
		"enabled":       n.opts.Enabled,
		"batch_size":    n.opts.BatchSize,
		"current_batch": len(n.batch),
	}
	if n.opts.Enabled {
		status["flush_interval"] = n.opts.FlushInterval.String()
	}
	if !n.lastFlush.IsZero() {
		status["last_flush"] = n.lastFlush.Format(time.RFC3339)
	}
	return status
}
