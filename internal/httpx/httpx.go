// Package httpx holds the outbound net/http helpers shared by the tracker
// transport and the CLI.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/AsifaBeedi/jewel-site-booster/internal/logging"
)

// PostJSON encodes payload as JSON and posts it to url with the extra
// headers. The caller owns the response body.
func PostJSON(ctx context.Context, client *http.Client, url string, payload any, headers map[string]string) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return client.Do(req)
}

// GetStatus performs a GET and returns only the status code.
func GetStatus(ctx context.Context, client *http.Client, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	DrainAndClose(resp)
	return resp.StatusCode, nil
}

// ErrorMessage extracts the "error" field of a JSON error envelope, falling
// back to the raw body.
func ErrorMessage(body []byte) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return string(bytes.TrimSpace(body))
}

// DrainAndClose discards the rest of the body so the connection can be reused.
func DrainAndClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	if err := resp.Body.Close(); err != nil {
		logging.L().Debug("failed to close response body", "error", err)
	}
}
