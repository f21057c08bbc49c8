package tracker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AsifaBeedi/jewel-site-booster/internal/models"
)

func TestHTTPTransportDeliversEnvelope(t *testing.T) {
	var (
		got    models.Envelope
		apikey string
		auth   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apikey = r.Header.Get("apikey")
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	transport := NewHTTPTransport(srv.URL, WithHTTPClient(srv.Client()), WithAPIKey("anon-key"))
	outcome := transport.Send(context.Background(), models.EventPageVisit, models.EventData{
		PagePath:  "/shop",
		SessionID: "s1",
		UTMSource: "newsletter",
	})

	require.NoError(t, outcome.Err)
	assert.True(t, outcome.Delivered)
	assert.Equal(t, http.StatusOK, outcome.StatusCode)
	assert.Equal(t, models.EventPageVisit, got.Type)
	assert.Equal(t, "/shop", got.Data.PagePath)
	assert.Equal(t, "newsletter", got.Data.UTMSource)
	assert.Equal(t, "anon-key", apikey)
	assert.Equal(t, "Bearer anon-key", auth)
}

func TestHTTPTransportNeverRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"insert failed"}`))
	}))
	defer srv.Close()

	transport := NewHTTPTransport(srv.URL, WithHTTPClient(srv.Client()))
	outcome := transport.Send(context.Background(), models.EventClick, models.EventData{ButtonID: "hero-cta"})

	require.Error(t, outcome.Err)
	assert.False(t, outcome.Delivered)
	assert.Equal(t, http.StatusInternalServerError, outcome.StatusCode)
	assert.Contains(t, outcome.Err.Error(), "insert failed")
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPTransportNetworkFailureIsReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	outcome := NewHTTPTransport(endpoint).Send(context.Background(), models.EventPageVisit, models.EventData{})
	require.Error(t, outcome.Err)
	assert.False(t, outcome.Delivered)
	assert.Zero(t, outcome.StatusCode)
}

func TestHTTPTransportRespectsTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := srv.Client()
	client.Timeout = 50 * time.Millisecond

	start := time.Now()
	outcome := NewHTTPTransport(srv.URL, WithHTTPClient(client)).
		Send(context.Background(), models.EventPageVisit, models.EventData{})
	require.Error(t, outcome.Err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNewHTTPTransportDefaults(t *testing.T) {
	transport := NewHTTPTransport("http://localhost/track-event", WithHeader("x-client-info", "booster-cli"), WithAPIKey(""))
	assert.Equal(t, DefaultTimeout, transport.client.Timeout)
	assert.Equal(t, map[string]string{"x-client-info": "booster-cli"}, transport.headers)
}
