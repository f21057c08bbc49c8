package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostJSONSendsBodyAndHeaders(t *testing.T) {
	var (
		gotBody   map[string]string
		gotHeader string
		gotType   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("apikey")
		gotType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	resp, err := PostJSON(context.Background(), srv.Client(), srv.URL, map[string]string{"hello": "world"},
		map[string]string{"apikey": "anon"})
	require.NoError(t, err)
	DrainAndClose(resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "anon", gotHeader)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, map[string]string{"hello": "world"}, gotBody)
}

func TestPostJSONEncodeError(t *testing.T) {
	_, err := PostJSON(context.Background(), http.DefaultClient, "http://127.0.0.1:1", make(chan int), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode payload")
}

func TestGetStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	status, err := GetStatus(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "boom", ErrorMessage([]byte(`{"error":"boom"}`)))
	assert.Equal(t, "plain text", ErrorMessage([]byte(" plain text\n")))
}

func TestDrainAndCloseNil(t *testing.T) {
	assert.NotPanics(t, func() { DrainAndClose(nil) })
}
