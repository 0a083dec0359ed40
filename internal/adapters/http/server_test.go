package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/lathe/internal/adapters/memory"
	"github.com/aretw0/lathe/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthz(t *testing.T) {
	handler := NewHandler(memory.New(), nil, nil)

	rr := serve(t, handler, "/healthz")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["ok"])
}

func TestStatusReflectsChannel(t *testing.T) {
	ch := memory.New()
	handler := NewHandler(ch, nil, nil)

	rr := serve(t, handler, "/status")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	st := domain.NewStatus("test-run")
	st.LastProcessedID = 42
	require.NoError(t, ch.WriteStatus(context.Background(), st))

	rr = serve(t, handler, "/status")
	assert.Equal(t, http.StatusOK, rr.Code)

	var loaded domain.Status
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &loaded))
	assert.Equal(t, int64(42), loaded.LastProcessedID)
	assert.Equal(t, "test-run", loaded.InstanceID)
}

func TestResultReflectsChannel(t *testing.T) {
	ch := memory.New()
	handler := NewHandler(ch, nil, nil)

	rr := serve(t, handler, "/result")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	require.NoError(t, ch.WriteResult(context.Background(), domain.Fail(7, "boom")))

	rr = serve(t, handler, "/result")
	assert.Equal(t, http.StatusOK, rr.Code)

	var loaded domain.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &loaded))
	assert.Equal(t, int64(7), loaded.ID)
	assert.Equal(t, "boom", loaded.ErrorMessage())
}

func TestActionsListing(t *testing.T) {
	handler := NewHandler(memory.New(), []string{"extrude", "ping"}, nil)

	rr := serve(t, handler, "/actions")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Actions []string `json:"actions"`
		Count   int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []string{"extrude", "ping"}, resp.Actions)
	assert.Equal(t, 2, resp.Count)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	handler := NewHandler(memory.New(), nil, reg)

	rr := serve(t, handler, "/metrics")
	assert.Equal(t, http.StatusOK, rr.Code)

	// Without a gatherer the endpoint does not exist.
	bare := NewHandler(memory.New(), nil, nil)
	rr = serve(t, bare, "/metrics")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
