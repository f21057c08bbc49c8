package tracker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AsifaBeedi/jewel-site-booster/internal/httpx"
	"github.com/AsifaBeedi/jewel-site-booster/internal/logging"
	"github.com/AsifaBeedi/jewel-site-booster/internal/models"
)

// DefaultTimeout bounds one delivery attempt so a slow endpoint cannot
// hold a wrapped click handler indefinitely.
const DefaultTimeout = 3 * time.Second

// Outcome reports what happened to one event. Callers may ignore it.
type Outcome struct {
	Delivered  bool
	StatusCode int
	Err        error
}

// Sender delivers a single event. It never retries.
type Sender interface {
	Send(ctx context.Context, eventType models.EventType, data models.EventData) Outcome
}

// HTTPTransport posts events to the ingestion endpoint.
type HTTPTransport struct {
	endpoint string
	client   *http.Client
	headers  map[string]string
}

// TransportOption configures an HTTPTransport.
type TransportOption func(*HTTPTransport)

// WithHTTPClient replaces the default client (and its timeout).
func WithHTTPClient(client *http.Client) TransportOption {
	return func(t *HTTPTransport) {
		t.client = client
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) TransportOption {
	return func(t *HTTPTransport) {
		t.headers[key] = value
	}
}

// WithAPIKey sends key the way hosted function gateways expect it.
func WithAPIKey(key string) TransportOption {
	return func(t *HTTPTransport) {
		if key == "" {
			return
		}
		t.headers["apikey"] = key
		t.headers["Authorization"] = "Bearer " + key
	}
}

// NewHTTPTransport returns a transport posting to endpoint.
func NewHTTPTransport(endpoint string, opts ...TransportOption) *HTTPTransport {
	t := &HTTPTransport{
		endpoint: endpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
		headers:  map[string]string{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Send makes exactly one delivery attempt. Failures are logged and
// reported in the Outcome, never returned or retried.
func (t *HTTPTransport) Send(ctx context.Context, eventType models.EventType, data models.EventData) Outcome {
	envelope := models.Envelope{Type: eventType, Data: data}

	resp, err := httpx.PostJSON(ctx, t.client, t.endpoint, envelope, t.headers)
	if err != nil {
		logging.L().Warn("failed to track event", "type", eventType, "error", err)
		return Outcome{Err: err}
	}
	defer httpx.DrainAndClose(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		err := fmt.Errorf("ingest rejected event: status %d: %s", resp.StatusCode, httpx.ErrorMessage(body))
		logging.L().Warn("failed to track event", "type", eventType, "status", resp.StatusCode, "error", err)
		return Outcome{StatusCode: resp.StatusCode, Err: err}
	}

	logging.L().Debug("event tracked", "type", eventType, "status", resp.StatusCode)
	return Outcome{Delivered: true, StatusCode: resp.StatusCode}
}
