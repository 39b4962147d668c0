package v1_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	v1 "github.com/relicta-dev/version-check-api/internal/api/v1"
	"github.com/relicta-dev/version-check-api/internal/manifest"
	"github.com/relicta-dev/version-check-api/internal/service"
	"github.com/relicta-dev/version-check-api/internal/service/mocks"
)

func doRequest(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	// Health must not touch the service.
	svc := mocks.NewMockVersionService(ctrl)
	server := v1.NewServer(svc)

	rec := doRequest(t, server, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeBody[v1.HealthResponse](t, rec)
	assert.True(t, body.OK)
}

func TestReadinessEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("ready", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		t.Cleanup(ctrl.Finish)

		svc := mocks.NewMockVersionService(ctrl)
		svc.EXPECT().CheckReadiness(gomock.Any()).Return(nil)

		rec := doRequest(t, v1.NewServer(svc), "/readiness")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not ready", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		t.Cleanup(ctrl.Finish)

		svc := mocks.NewMockVersionService(ctrl)
		svc.EXPECT().CheckReadiness(gomock.Any()).Return(service.ErrUpstreamUnavailable)

		rec := doRequest(t, v1.NewServer(svc), "/readiness")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		body := decodeBody[v1.ErrorResponse](t, rec)
		assert.False(t, body.OK)
		assert.Contains(t, body.Error, "not ready")
	})
}

func TestGetVersionEndpoint(t *testing.T) {
	t.Parallel()

	resolved := &service.ResolvedVersion{
		Version: manifest.Version{
			Major: 1, Minor: 16, Patch: 1, Build: 1,
			Raw: "1.16.1+1",
		},
		Source:        service.SourceGitHub,
		FetchedAt:     time.Unix(1717243200, 0),
		LastCheckedAt: time.Unix(1717243200, 0),
	}

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		t.Cleanup(ctrl.Finish)

		svc := mocks.NewMockVersionService(ctrl)
		svc.EXPECT().GetCurrentVersion(gomock.Any(), false).Return(resolved, nil)
		svc.EXPECT().CacheTTL().Return(time.Minute)

		rec := doRequest(t, v1.NewServer(svc), "/version")
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody[v1.VersionResponse](t, rec)
		assert.True(t, body.OK)
		assert.Equal(t, "1.16.1", body.Version)
		assert.Equal(t, uint64(1), body.Build)
		assert.Equal(t, "1.16.1+1", body.Raw)
		assert.Equal(t, service.SourceGitHub, body.Source)
		assert.Equal(t, int64(1717243200), body.LastCheckedAt)
		assert.Equal(t, 60, body.CacheTTLSeconds)
		assert.Empty(t, body.Error)
	})

	t.Run("force bypasses cache", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		t.Cleanup(ctrl.Finish)

		svc := mocks.NewMockVersionService(ctrl)
		svc.EXPECT().GetCurrentVersion(gomock.Any(), true).Return(resolved, nil)
		svc.EXPECT().CacheTTL().Return(time.Minute)

		rec := doRequest(t, v1.NewServer(svc), "/version?force=1")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("stale serve reports fetch error", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		t.Cleanup(ctrl.Finish)

		stale := *resolved
		stale.Source = service.SourceCache
		stale.FetchError = "github api error: 500"

		svc := mocks.NewMockVersionService(ctrl)
		svc.EXPECT().GetCurrentVersion(gomock.Any(), false).Return(&stale, nil)
		svc.EXPECT().CacheTTL().Return(time.Minute)

		rec := doRequest(t, v1.NewServer(svc), "/version")
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody[v1.VersionResponse](t, rec)
		assert.True(t, body.OK)
		assert.Equal(t, service.SourceCache, body.Source)
		assert.Equal(t, "github api error: 500", body.Error)
	})

	t.Run("upstream unavailable", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		t.Cleanup(ctrl.Finish)

		svc := mocks.NewMockVersionService(ctrl)
		svc.EXPECT().GetCurrentVersion(gomock.Any(), false).
			Return(nil, fmt.Errorf("%w: connection refused", service.ErrUpstreamUnavailable))

		rec := doRequest(t, v1.NewServer(svc), "/version")
		assert.Equal(t, http.StatusBadGateway, rec.Code)

		body := decodeBody[v1.ErrorResponse](t, rec)
		assert.False(t, body.OK)
		assert.NotEmpty(t, body.Error)
	})
}

func TestCheckEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("update available", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		t.Cleanup(ctrl.Finish)

		svc := mocks.NewMockVersionService(ctrl)
		svc.EXPECT().CheckUpdate(gomock.Any(), "1.16.0+5").Return(&service.UpdateCheck{
			UpdateAvailable: true,
			Current:         manifest.Version{Major: 1, Minor: 16, Build: 5, Raw: "1.16.0+5"},
			Latest:          manifest.Version{Major: 1, Minor: 16, Patch: 1, Build: 1, Raw: "1.16.1+1"},
		}, nil)

		rec := doRequest(t, v1.NewServer(svc), "/check?current=1.16.0%2B5")
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody[v1.CheckResponse](t, rec)
		assert.True(t, body.OK)
		assert.True(t, body.UpdateAvailable)
		assert.Equal(t, "1.16.0+5", body.Current)
		assert.Equal(t, "1.16.1+1", body.Latest)
	})

	t.Run("missing current param", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		t.Cleanup(ctrl.Finish)

		// The service must not be consulted for an empty parameter.
		svc := mocks.NewMockVersionService(ctrl)

		rec := doRequest(t, v1.NewServer(svc), "/check")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		body := decodeBody[v1.ErrorResponse](t, rec)
		assert.False(t, body.OK)
		assert.Contains(t, body.Error, "current")
	})

	t.Run("malformed current version", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		t.Cleanup(ctrl.Finish)

		svc := mocks.NewMockVersionService(ctrl)
		svc.EXPECT().CheckUpdate(gomock.Any(), "not-a-version").
			Return(nil, fmt.Errorf("%w: %q", manifest.ErrInvalidVersion, "not-a-version"))

		rec := doRequest(t, v1.NewServer(svc), "/check?current=not-a-version")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("upstream failure maps to bad gateway", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		t.Cleanup(ctrl.Finish)

		svc := mocks.NewMockVersionService(ctrl)
		svc.EXPECT().CheckUpdate(gomock.Any(), "1.0.0").
			Return(nil, errors.New("github api error: 500"))

		rec := doRequest(t, v1.NewServer(svc), "/check?current=1.0.0")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestBuildInfoEndpoint(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	svc := mocks.NewMockVersionService(ctrl)

	rec := doRequest(t, v1.NewServer(svc), "/buildinfo")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body, "version")
	assert.Contains(t, body, "go_version")
}

func TestUnknownRouteReturns404(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	svc := mocks.NewMockVersionService(ctrl)

	rec := doRequest(t, v1.NewServer(svc), "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerAppliesMiddlewares(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	svc := mocks.NewMockVersionService(ctrl)

	var touched bool
	marker := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			touched = true
			next.ServeHTTP(w, r)
		})
	}

	rec := doRequest(t, v1.NewServer(svc, v1.WithMiddlewares(marker)), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, touched)
}

func TestServerMountsMetricsHandler(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	svc := mocks.NewMockVersionService(ctrl)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})

	rec := doRequest(t, v1.NewServer(svc, v1.WithMetricsHandler(metrics)), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics", rec.Body.String())
}
