package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"garage-tracker/internal/garages"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	telemetry := garages.NewTelemetryProviderFrom("garage-tracker-test", tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider())
	fleet, err := garages.NewInstrumentedFleet(telemetry)
	require.NoError(t, err)

	return NewServer("0", fleet, "garage-tracker").Router()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()

	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestHealthCheck(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "garage-tracker", resp.Service)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, w.Header().Get("X-Request-ID"), resp.Meta.RequestID)
}

func TestRegisterVehicle(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, http.MethodPost, "/api/vehicles", `{"plate":"AB-123-CD"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decode(t, w).Success)

	w = do(t, h, http.MethodPost, "/api/vehicles", `{"plate":"AB-123-CD"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, http.MethodPost, "/api/vehicles", `{"plate":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/api/vehicles", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", decode(t, w).Error)
}

func TestVehicleLifecycle(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, http.MethodPost, "/api/vehicles/AB-123-CD/enter", `{"garage":"Alpha"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodPost, "/api/vehicles/AB-123-CD/enter", `{"garage":"Beta"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decode(t, w).Error, "already parked")

	w = do(t, h, http.MethodPost, "/api/vehicles/AB-123-CD/exit", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodPost, "/api/vehicles/AB-123-CD/exit", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decode(t, w).Error, "not parked")

	w = do(t, h, http.MethodPost, "/api/vehicles/AB-123-CD/enter", `{"garage":"Beta"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/api/vehicles/AB-123-CD", "")
	require.Equal(t, http.StatusOK, w.Code)

	var snapResp struct {
		Data garages.VehicleSnapshot `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&snapResp))
	assert.True(t, snapResp.Data.Parked)
	assert.Equal(t, "Beta", snapResp.Data.CurrentGarage)
	assert.Equal(t, []string{"Alpha", "Beta"}, snapResp.Data.VisitedGarages)
	require.Len(t, snapResp.Data.History, 2)
	assert.True(t, snapResp.Data.History[1].Stays[0].Ongoing)

	w = do(t, h, http.MethodGet, "/api/vehicles/AB-123-CD/garages", "")
	require.Equal(t, http.StatusOK, w.Code)
	var garagesResp struct {
		Data VisitedGaragesResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&garagesResp))
	assert.Equal(t, []string{"Alpha", "Beta"}, garagesResp.Data.Garages)

	w = do(t, h, http.MethodGet, "/api/vehicles/AB-123-CD/report", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	report := w.Body.String()
	assert.True(t, strings.HasPrefix(report, "Garage(name=Alpha):\n\tentry="))
	assert.Contains(t, report, "Garage(name=Beta):\n\tentry=")
	assert.True(t, strings.HasSuffix(report, ", ongoing\n"))

	w = do(t, h, http.MethodGet, "/api/vehicles", "")
	require.Equal(t, http.StatusOK, w.Code)
	var listResp struct {
		Data []garages.VehicleSnapshot `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&listResp))
	require.Len(t, listResp.Data, 1)
	assert.Equal(t, "AB-123-CD", listResp.Data[0].Plate)
}

func TestEnterGarageValidation(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, http.MethodPost, "/api/vehicles/AB-123-CD/enter", `{"garage":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Garage is required", decode(t, w).Error)

	w = do(t, h, http.MethodPost, "/api/vehicles/AB-123-CD/enter", `{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnknownVehicle(t *testing.T) {
	h := newTestServer(t)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/vehicles/ZZ-000-ZZ"},
		{http.MethodPost, "/api/vehicles/ZZ-000-ZZ/exit"},
		{http.MethodGet, "/api/vehicles/ZZ-000-ZZ/garages"},
		{http.MethodGet, "/api/vehicles/ZZ-000-ZZ/report"},
	} {
		w := do(t, h, tc.method, tc.path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, tc.path)
		assert.Equal(t, "Vehicle not found", decode(t, w).Error, tc.path)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t)

	do(t, h, http.MethodGet, "/health", "")
	do(t, h, http.MethodGet, "/api/vehicles/ZZ-000-ZZ", "")

	w := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `garage_tracker_http_requests_total{method="GET",route="/health",status="200"} 1`)
	assert.Contains(t, body, `route="/api/vehicles/{plate}`)
	assert.NotContains(t, body, "ZZ-000-ZZ")
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, http.MethodOptions, "/api/vehicles", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
