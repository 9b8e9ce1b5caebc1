package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydpy-dev/hydronet"
	"github.com/hydpy-dev/hydronet/pkg/adapters/yamlcfg"
	"github.com/hydpy-dev/hydronet/pkg/observability"
)

const projectYAML = `
simulation:
  start: 0
  step: 1
  steps: 10
  maxabserror: 0.001
models:
  - name: head
    type: storage.linear
    params: {k: 0.5, initial: 4}
  - name: outlet
    type: storage.gauged
    params: {k: 0.5}
links:
  - from: head.outlet
    to: outlet.inlet
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	project, err := yamlcfg.Parse([]byte(projectYAML))
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	sim, err := hydronet.New(project, hydronet.WithRecorder(metrics))
	require.NoError(t, err)

	return New(sim, WithGatherer(reg))
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStatusReportsProgress(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		Now       float64  `json:"now"`
		StepsDone int      `json:"stepsDone"`
		Models    []string `json:"models"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 0.0, status.Now)
	assert.Equal(t, 0, status.StepsDone)
	assert.Equal(t, []string{"head", "outlet"}, status.Models)
}

func TestRunAdvancesSteps(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(`{"steps":3}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Now       float64 `json:"now"`
		StepsDone int     `json:"stepsDone"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3.0, resp.Now)
	assert.Equal(t, 3, resp.StepsDone)

	// An empty body advances a single step.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/run", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.StepsDone)
}

func TestRunRejectsBadRequests(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(`{"steps":0}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsExposeSolverCounters(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(`{"steps":2}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `hydronet_substeps_accepted_total{model="head"}`)
	assert.Contains(t, body, `hydronet_part_ode_evaluations_total{model="outlet"}`)
}
