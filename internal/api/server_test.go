package api_test

import (
	"context"
	"mapslinks/internal/api"
	"mapslinks/internal/api/handler/webhandler"
	mockbatch "mapslinks/internal/batch/mock"
	"mapslinks/pkg/domain"
	"mapslinks/pkg/logger"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

func newTestServer(t *testing.T, requestTimeout time.Duration) (*httptest.Server, *mockbatch.MockRunner) {
	t.Helper()

	runner := mockbatch.NewMockRunner(gomock.NewController(t))

	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "mapslinks_test_requests_total"})
	registry.MustRegister(counter)
	counter.Inc()

	srv := httptest.NewServer(api.NewHandler(
		api.Deps{Deps: webhandler.Deps{Runner: runner}},
		api.Options{
			Handler:        webhandler.Options{MaxBodyBytes: 1 << 16},
			RequestTimeout: requestTimeout,
			MetricsPath:    "/metrics",
			Gatherer:       registry,
		}))
	t.Cleanup(srv.Close)

	return srv, runner
}

func do(t *testing.T, method, url, contentType, body string) (*http.Response, string) {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, url, strings.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var sb strings.Builder
	_, err = sb.ReadFrom(res.Body)
	require.NoError(t, err)

	return res, sb.String()
}

func TestRoutes(t *testing.T) {
	srv, _ := newTestServer(t, time.Minute)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"index", http.MethodGet, "/", http.StatusOK, `action="/extract"`},
		{"unknown path", http.MethodGet, "/nope", http.StatusNotFound, ""},
		{"extract needs post", http.MethodGet, "/extract", http.StatusMethodNotAllowed, ""},
		{"download needs post", http.MethodGet, "/download", http.StatusMethodNotAllowed, ""},
		{"openapi document", http.MethodGet, "/specs/v1.yaml", http.StatusOK, "openapi: 3.0.3"},
		{"swagger ui", http.MethodGet, "/docs/", http.StatusOK, ""},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK, "mapslinks_test_requests_total 1"},
		{"pprof", http.MethodGet, "/debug/pprof/cmdline", http.StatusOK, ""},
		{"preflight", http.MethodOptions, "/extract", http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, body := do(t, tt.method, srv.URL+tt.path, "", "")
			require.Equal(t, tt.wantStatus, res.StatusCode)
			require.NotEmpty(t, res.Header.Get("X-Request-Id"))
			require.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
			if tt.wantBody != "" {
				require.Contains(t, body, tt.wantBody)
			}
		})
	}
}

func TestExtractThenDownload(t *testing.T) {
	srv, runner := newTestServer(t, time.Minute)

	c := domain.NewCoordinates(48.8583701, 2.2944813)
	runner.EXPECT().Run(gomock.Any(), []string{"https://maps.app.goo.gl/eiffel", "https://maps.app.goo.gl/bad-link"}).
		Return([]domain.ResolvedLocation{
			{
				OriginalLink: "https://maps.app.goo.gl/eiffel",
				FinalURL:     "https://www.google.com/maps/place/Eiffel/data=!3d48.8583701!4d2.2944813",
				Coordinates:  &c,
			},
			{OriginalLink: "https://maps.app.goo.gl/bad-link", Error: "NavigationError: timeout"},
		}, nil)

	res, body := do(t, http.MethodPost, srv.URL+"/extract", "application/json",
		`{"links":["https://maps.app.goo.gl/eiffel","https://maps.app.goo.gl/bad-link"]}`)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, csv := do(t, http.MethodPost, srv.URL+"/download", "application/json", body)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "attachment; filename=coordinates.csv", res.Header.Get("Content-Disposition"))
	require.Equal(t, "Link,Latitude,Longitude\n"+
		"https://maps.app.goo.gl/eiffel,48.8583701,2.2944813\n"+
		"https://maps.app.goo.gl/bad-link,,\n", csv)
}

func TestRequestTimeout(t *testing.T) {
	srv, runner := newTestServer(t, 50*time.Millisecond)

	runner.EXPECT().Run(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ []string) ([]domain.ResolvedLocation, error) {
			<-ctx.Done()

			return nil, ctx.Err()
		})

	res, body := do(t, http.MethodPost, srv.URL+"/extract", "application/json", `{"links":["a"]}`)
	require.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	require.JSONEq(t, `{"code":"TIMEOUT","message":"request timed out"}`, body)
}
