package ui

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"slicefinder/adapters/stats/slicing"
	"slicefinder/app"
	domain "slicefinder/domain/slicing"
	"slicefinder/internal/config"
	"slicefinder/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	service := app.NewSliceDiscoveryService(testkit.NewInMemoryRunRepository(), slicing.DefaultOptions(), 2)
	return NewServer(service, config.ServerConfig{GinMode: "test", MaxBodyBytes: 1 << 20})
}

func metricsArrayJSON() string {
	lines := strings.Split(strings.TrimSpace(testkit.AutoSlicingMetricsJSON), "\n")
	return "[" + strings.Join(lines, ",") + "]"
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func findBody(t *testing.T, metrics json.RawMessage, comparison string, extra map[string]interface{}) string {
	t.Helper()
	body := map[string]interface{}{
		"metrics":    metrics,
		"statistics": json.RawMessage(testkit.AutoSlicingStatisticsJSON),
		"metric_key": testkit.AccuracyMetric,
		"comparison": comparison,
	}
	for k, v := range extra {
		body[k] = v
	}
	data, err := json.Marshal(body)
	require.NoError(t, err)
	return string(data)
}

func TestHealth(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestFindTopSlices_Lower(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodPost, "/api/slices/top", findBody(t, json.RawMessage(metricsArrayJSON()), "lower", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var run domain.Run
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	require.Len(t, run.Results, 1)
	assert.Equal(t, "age:[1.0, 6.0]", run.Results[0].SliceKey)
	assert.Equal(t, domain.Lower, run.Comparison)

	// The run is retrievable afterwards.
	w = do(t, s, http.MethodGet, "/api/runs/"+run.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "age:[1.0, 6.0]")

	w = do(t, s, http.MethodGet, "/api/runs", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
}

func TestFindTopSlices_NDJSONStringAndOptions(t *testing.T) {
	ndjson, err := json.Marshal(testkit.AutoSlicingMetricsJSON)
	require.NoError(t, err)

	body := findBody(t, ndjson, "HIGHER", map[string]interface{}{"top_k": 1})
	w := do(t, newTestServer(t), http.MethodPost, "/api/slices/top", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var run domain.Run
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	require.Len(t, run.Results, 1)
	assert.Equal(t, "age:[12.0, 18.0]", run.Results[0].SliceKey)
}

func TestFindTopSlices_BadRequests(t *testing.T) {
	s := newTestServer(t)
	metrics := json.RawMessage(metricsArrayJSON())

	tests := map[string]string{
		"malformed body":     `{"metrics":`,
		"missing metric":     `{"metrics":[],"comparison":"LOWER"}`,
		"bad comparison":     findBody(t, metrics, "SIDEWAYS", nil),
		"bad alpha":          findBody(t, metrics, "LOWER", map[string]interface{}{"alpha": 2}),
		"bad rank_by":        findBody(t, metrics, "LOWER", map[string]interface{}{"rank_by": "size"}),
		"unknown metric key": strings.Replace(findBody(t, metrics, "LOWER", nil), `"metric_key":"accuracy"`, `"metric_key":"auc"`, 1),
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/api/slices/top", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"code":"INVALID_INPUT"`)
		})
	}
}

func TestFindTopSlices_BodyTooLarge(t *testing.T) {
	service := app.NewSliceDiscoveryService(testkit.NewInMemoryRunRepository(), slicing.DefaultOptions(), 1)
	s := NewServer(service, config.ServerConfig{GinMode: "test", MaxBodyBytes: 512})
	body := findBody(t, json.RawMessage(metricsArrayJSON()), "LOWER", nil)
	require.Greater(t, len(body), 512)

	for _, path := range []string{"/api/slices/top", "/api/slices/batch"} {
		payload := body
		if path == "/api/slices/batch" {
			payload = `{"requests":[` + body + `]}`
		}
		w := do(t, s, http.MethodPost, path, payload)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, path)
		assert.Contains(t, w.Body.String(), `"code":"PAYLOAD_TOO_LARGE"`, path)
	}

	w := do(t, s, http.MethodPost, "/api/slices/top", `{"metrics":`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "a short malformed body is still a bad request")
}

func TestFindTopSlicesBatch(t *testing.T) {
	metrics := json.RawMessage(metricsArrayJSON())
	var lower, higher map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(findBody(t, metrics, "LOWER", nil)), &lower))
	require.NoError(t, json.Unmarshal([]byte(findBody(t, metrics, "HIGHER", nil)), &higher))
	body, err := json.Marshal(map[string]interface{}{"requests": []interface{}{lower, higher}})
	require.NoError(t, err)

	w := do(t, newTestServer(t), http.MethodPost, "/api/slices/batch", string(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Runs []domain.Run `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Runs, 2)
	assert.Len(t, resp.Runs[0].Results, 1)
	assert.Len(t, resp.Runs[1].Results, 2)
}

func TestGetRun_Errors(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/api/runs/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodGet, "/api/runs/0190a5c4-7f3e-7000-8000-000000000001", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"NOT_FOUND"`)

	w = do(t, s, http.MethodGet, "/api/runs?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReports(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodPost, "/api/slices/top", findBody(t, json.RawMessage(metricsArrayJSON()), "BOTH", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var run domain.Run
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))

	w = do(t, s, http.MethodGet, "/reports/"+run.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<table>")
	assert.Contains(t, w.Body.String(), "country:USA")

	w = do(t, s, http.MethodGet, "/reports/"+run.ID.String()+"/markdown", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("# Slices different than overall accuracy")))

	w = do(t, s, http.MethodGet, "/reports/0190a5c4-7f3e-7000-8000-000000000001", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
