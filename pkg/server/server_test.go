package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/de-tools/medical-reports/pkg/models/api"
	"github.com/de-tools/medical-reports/pkg/models/domain"
	"github.com/de-tools/medical-reports/pkg/store/filesystem"
	reportstore "github.com/de-tools/medical-reports/pkg/store/report"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const allowedOrigin = "http://localhost:5173"

type testEnv struct {
	dir    *filesystem.Directory
	store  *reportstore.Store
	server *httptest.Server
}

func newTestEnv(t *testing.T, rateLimit float64, burst int) *testEnv {
	t.Helper()

	dir, err := filesystem.NewDirectory(t.TempDir())
	require.NoError(t, err)
	store := reportstore.NewStore(1)

	config := Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		RateLimit:       rateLimit,
		RateLimitBurst:  burst,
		AllowedOrigins:  []string{allowedOrigin},
		Dependencies: Dependencies{
			Reports: store,
			Files:   dir,
			Logger:  zerolog.Nop(),
		},
	}
	router := ConfigureRouter(config)
	testServer := httptest.NewServer(router)
	t.Cleanup(testServer.Close)

	return &testEnv{dir: dir, store: store, server: testServer}
}

func (e *testEnv) generate(t *testing.T) string {
	t.Helper()
	path, err := e.dir.WriteAtomic(domain.ReportFileName(e.store.NextSequence()), []byte("%PDF-test"))
	require.NoError(t, err)
	e.store.RecordGeneration(path)
	return path
}

func TestWebAPI_Endpoints(t *testing.T) {
	env := newTestEnv(t, 1000, 1000)

	tests := []struct {
		name           string
		path           string
		setup          func(t *testing.T)
		expectedStatus int
		expected       interface{}
		parseResponse  func([]byte) (interface{}, error)
	}{
		{
			name:           "Test",
			path:           "/api/test",
			expectedStatus: http.StatusOK,
			expected:       api.Message{Message: "Backend is working!"},
			parseResponse:  unmarshalResponse[api.Message](),
		},
		{
			name:           "LatestReport_BeforeFirstGeneration",
			path:           "/api/latest-report",
			expectedStatus: http.StatusNotFound,
			expected:       api.Error{Error: "report not found"},
			parseResponse:  unmarshalResponse[api.Error](),
		},
		{
			name:           "ReportInfo_BeforeFirstGeneration",
			path:           "/api/report-info",
			expectedStatus: http.StatusNotFound,
			expected:       api.Error{Error: "report info not found"},
			parseResponse:  unmarshalResponse[api.Error](),
		},
		{
			name:           "Ready_BeforeFirstGeneration",
			path:           "/ready",
			expectedStatus: http.StatusServiceUnavailable,
			expected:       api.Health{Status: "not ready"},
			parseResponse:  unmarshalResponse[api.Health](),
		},
		{
			name:           "Health",
			path:           "/health",
			expectedStatus: http.StatusOK,
			expected:       api.Health{Status: "ok"},
			parseResponse:  unmarshalResponse[api.Health](),
		},
		{
			name:           "LatestReport_AfterFirstGeneration",
			path:           "/api/latest-report",
			setup:          func(t *testing.T) { env.generate(t) },
			expectedStatus: http.StatusOK,
			expected:       "%PDF-test",
			parseResponse:  rawResponse,
		},
		{
			name:           "Ready_AfterFirstGeneration",
			path:           "/ready",
			expectedStatus: http.StatusOK,
			expected:       api.Health{Status: "ok"},
			parseResponse:  unmarshalResponse[api.Health](),
		},
		{
			name:           "DownloadReport_Traversal",
			path:           "/api/download-report/..%2F..%2Fetc%2Fpasswd",
			expectedStatus: http.StatusNotFound,
			expected:       api.Error{Error: "report not found"},
			parseResponse:  unmarshalResponse[api.Error](),
		},
		{
			name:           "DownloadReport_PlainTraversal",
			path:           "/api/download-report/../../etc/passwd",
			expectedStatus: http.StatusNotFound,
			expected:       api.Error{Error: "not found"},
			parseResponse:  unmarshalResponse[api.Error](),
		},
		{
			name:           "UnknownRoute",
			path:           "/api/nope",
			expectedStatus: http.StatusNotFound,
			expected:       api.Error{Error: "not found"},
			parseResponse:  unmarshalResponse[api.Error](),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setup != nil {
				tc.setup(t)
			}
			resp, err := http.Get(env.server.URL + tc.path)
			require.NoError(t, err, "Failed to send request")
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode, "Status code mismatch")

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "Failed to read response body")

			actual, err := tc.parseResponse(body)
			require.NoError(t, err, "Failed to parse response")

			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestWebAPI_ReadyAfterExternalDeletion(t *testing.T) {
	env := newTestEnv(t, 1000, 1000)
	path := env.generate(t)
	require.NoError(t, os.Remove(path))

	resp, err := http.Get(env.server.URL + "/ready")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestWebAPI_MethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, 1000, 1000)

	resp, err := http.Post(env.server.URL+"/api/test", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestWebAPI_Headers(t *testing.T) {
	env := newTestEnv(t, 1000, 1000)

	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/api/test", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", allowedOrigin)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", resp.Header.Get("X-XSS-Protection"))
	assert.Equal(t, allowedOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestWebAPI_CORSRejectsUnknownOrigin(t *testing.T) {
	env := newTestEnv(t, 1000, 1000)

	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/api/test", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://evil.example")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestWebAPI_RateLimit(t *testing.T) {
	env := newTestEnv(t, 0.001, 1)

	first, err := http.Get(env.server.URL + "/api/test")
	require.NoError(t, err)
	first.Body.Close()
	assert.Equal(t, http.StatusOK, first.StatusCode)

	second, err := http.Get(env.server.URL + "/api/test")
	require.NoError(t, err)
	defer second.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
	assert.Equal(t, "1", second.Header.Get("Retry-After"))

	// probes are not rate limited
	health, err := http.Get(env.server.URL + "/health")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestWebAPI_Metrics(t *testing.T) {
	env := newTestEnv(t, 1000, 1000)

	warmup, err := http.Get(env.server.URL + "/api/test")
	require.NoError(t, err)
	warmup.Body.Close()

	resp, err := http.Get(env.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "medical_reports_http_requests_total")
	assert.Contains(t, string(body), `route="/api/test"`)
}

func unmarshalResponse[T any]() func([]byte) (interface{}, error) {
	return func(data []byte) (interface{}, error) {
		var response T
		err := json.Unmarshal(data, &response)
		return response, err
	}
}

func rawResponse(data []byte) (interface{}, error) {
	return string(data), nil
}
