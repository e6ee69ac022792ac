package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playbill/playbill/internal/notify"
)

func TestNoop(t *testing.T) {
	assert.NoError(t, notify.Noop{}.Notify(context.Background(), "any"))
}

func TestWebhookNotify(t *testing.T) {
	var received struct {
		StoreID string `json:"store_id"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	hook := notify.NewWebhook(server.URL, time.Second)
	require.NoError(t, hook.Notify(context.Background(), "favorites"))
	assert.Equal(t, "favorites", received.StoreID)
}

func TestWebhookNotifyErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	hook := notify.NewWebhook(server.URL, time.Second)
	assert.Error(t, hook.Notify(context.Background(), "favorites"))
}

func TestWebhookNotifyUnreachable(t *testing.T) {
	hook := notify.NewWebhook("http://127.0.0.1:1/refresh", 100*time.Millisecond)
	assert.Error(t, hook.Notify(context.Background(), "favorites"))
}
