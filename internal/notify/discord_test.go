package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tcgindex/internal/config"
)

func TestNotifier_SendsEmbed(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := New(config.DiscordConfig{WebhookURL: srv.URL, Timeout: 5 * time.Second}, nil)
	n.Success(context.Background(), "Index Calculation", "5 indexes updated")

	require.Len(t, got.Embeds, 1)
	assert.Equal(t, "Index Calculation", got.Embeds[0].Title)
	assert.Equal(t, colorGreen, got.Embeds[0].Color)
	assert.Equal(t, footerText, got.Embeds[0].Footer.Text)
}

func TestNotifier_FailureUsesRed(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := New(config.DiscordConfig{WebhookURL: srv.URL, Timeout: 5 * time.Second}, nil)
	n.Failure(context.Background(), "Healthcheck", "price data is stale")

	require.Len(t, got.Embeds, 1)
	assert.Equal(t, colorRed, got.Embeds[0].Color)
}

func TestNotifier_DisabledWithoutWebhook(t *testing.T) {
	n := New(config.DiscordConfig{}, nil)
	// Must not panic or attempt any network call.
	n.Success(context.Background(), "noop", "noop")
}
