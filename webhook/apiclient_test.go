package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallRunCompletionAPI(t *testing.T) {
	var got map[string]any

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	ok := NewAPIClient(ts.URL).CallRunCompletionAPI(context.Background(), RunCompletion{
		RunID:      "run-1",
		Categories: map[string]int{"companies_active": 20},
		Records:    20,
	})
	require.True(t, ok)

	assert.Equal(t, "run-1", got["runId"])
	assert.Equal(t, float64(20), got["records"])
	assert.Equal(t, map[string]any{"companies_active": float64(20)}, got["categories"])
	assert.NotContains(t, got, "failed")
}

func TestCallRunCompletionAPIFailures(t *testing.T) {
	assert.False(t, NewAPIClient("").CallRunCompletionAPI(context.Background(), RunCompletion{}))

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	assert.False(t, NewAPIClient(ts.URL).CallRunCompletionAPI(context.Background(), RunCompletion{RunID: "r"}))

	closed := httptest.NewServer(http.NotFoundHandler())
	url := closed.URL
	closed.Close()

	c := NewAPIClient(url)
	assert.False(t, c.CallRunCompletionAPI(context.Background(), RunCompletion{RunID: "r"}))
	assert.Equal(t, url, c.CompletionURL())
}
