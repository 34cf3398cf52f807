package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedBatch struct {
	Events []Event `json:"events"`
	Count  int     `json:"count"`
}

type webhookRecorder struct {
	mu      sync.Mutex
	batches []capturedBatch
	auth    []string
}

func (w *webhookRecorder) handler(t *testing.T) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		var batch capturedBatch
		if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
			t.Errorf("decoding webhook body: %v", err)
			rw.WriteHeader(http.StatusBadRequest)
			return
		}

		w.mu.Lock()
		w.batches = append(w.batches, batch)
		w.auth = append(w.auth, r.Header.Get("Authorization"))
		w.mu.Unlock()

		rw.WriteHeader(http.StatusOK)
	}
}

func (w *webhookRecorder) snapshot() ([]capturedBatch, []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]capturedBatch(nil), w.batches...), append([]string(nil), w.auth...)
}

func TestBatchSizeTriggersImmediateExport(t *testing.T) {
	rec := &webhookRecorder{}
	srv := httptest.NewServer(rec.handler(t))
	defer srv.Close()

	n := NewNotifier(Options{
		Enabled:       true,
		BatchSize:     2,
		FlushInterval: time.Hour, // only the size trigger should fire
		WebhookURL:    srv.URL,
		WebhookAPIKey: "secret",
	})
	defer n.Stop()

	n.TokenDiscovered("0xaa")
	n.TransactionConfirmed("buy", "0x01")

	require.Eventually(t, func() bool {
		batches, _ := rec.snapshot()
		return len(batches) == 1
	}, time.Second, 10*time.Millisecond)

	batches, auth := rec.snapshot()
	require.Len(t, batches[0].Events, 2)
	assert.Equal(t, 2, batches[0].Count)
	assert.Equal(t, "token_discovered", batches[0].Events[0].Kind)
	assert.Equal(t, "0xaa", batches[0].Events[0].Token)
	assert.Equal(t, "transaction_confirmed", batches[0].Events[1].Kind)
	assert.Equal(t, "0x01", batches[0].Events[1].TxHash)
	assert.Equal(t, "Bearer secret", auth[0])
}

func TestStopFlushesRemainingEvents(t *testing.T) {
	rec := &webhookRecorder{}
	srv := httptest.NewServer(rec.handler(t))
	defer srv.Close()

	n := NewNotifier(Options{
		Enabled:       true,
		BatchSize:     100,
		FlushInterval: time.Hour,
		WebhookURL:    srv.URL,
	})

	n.TransactionFailed("sell", "reverted")
	n.Stop()

	batches, _ := rec.snapshot()
	require.Len(t, batches, 1)
	require.Len(t, batches[0].Events, 1)
	assert.Equal(t, "transaction_failed", batches[0].Events[0].Kind)
	assert.Equal(t, "sell: reverted", batches[0].Events[0].Detail)
}

func TestDisabledNotifierIsInert(t *testing.T) {
	n := NewNotifier(Options{})

	n.TokenDiscovered("0xaa")
	n.TransactionConfirmed("buy", "0x01")
	n.Stop()

	status := n.Status()
	assert.Equal(t, false, status["enabled"])
	assert.Equal(t, 0, status["current_batch"])
}
