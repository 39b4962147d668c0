// Package v1 provides the REST API handlers for version check access.
package v1

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/relicta-dev/version-check-api/internal/manifest"
	"github.com/relicta-dev/version-check-api/internal/service"
	"github.com/relicta-dev/version-check-api/pkg/logger"
	"github.com/relicta-dev/version-check-api/pkg/versions"
)

// Response models for API consistency

// HealthResponse represents the health check response
type HealthResponse struct {
	OK bool `json:"ok"`
}

// VersionResponse represents the current-version lookup response
type VersionResponse struct {
	OK              bool   `json:"ok"`
	Version         string `json:"version"`
	Build           uint64 `json:"build"`
	Raw             string `json:"raw"`
	Source          string `json:"source"`
	LastCheckedAt   int64  `json:"last_checked_at"`
	CacheTTLSeconds int    `json:"cache_ttl_seconds"`

	// Error reports the most recent upstream failure when a stale cached
	// version is being served.
	Error string `json:"error,omitempty"`
}

// CheckResponse represents the version comparison response
type CheckResponse struct {
	OK              bool   `json:"ok"`
	UpdateAvailable bool   `json:"update_available"`
	Current         string `json:"current"`
	Latest          string `json:"latest"`
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Routes defines the routes for the version check API with dependency injection
type Routes struct {
	service service.VersionService
}

// NewRoutes creates a new Routes instance with the provided service
func NewRoutes(svc service.VersionService) *Routes {
	return &Routes{
		service: svc,
	}
}

// Router creates a new router for the version check API
func Router(svc service.VersionService) http.Handler {
	routes := NewRoutes(svc)

	r := chi.NewRouter()

	r.Get("/health", routes.health)
	r.Get("/readiness", routes.readiness)
	r.Get("/version", routes.getVersion)
	r.Get("/check", routes.checkUpdate)
	r.Get("/buildinfo", routes.buildInfo)

	return r
}

// health handles GET /health
//
//	@Summary		Health check
//	@Description	Check if the version check API is healthy
//	@Tags			system
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Router			/health [get]
func (rr *Routes) health(w http.ResponseWriter, _ *http.Request) {
	rr.writeJSONResponse(w, http.StatusOK, HealthResponse{OK: true})
}

// readiness handles GET /readiness
//
//	@Summary		Readiness check
//	@Description	Check if a version can be resolved from cache or upstream
//	@Tags			system
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/readiness [get]
func (rr *Routes) readiness(w http.ResponseWriter, r *http.Request) {
	if err := rr.service.CheckReadiness(r.Context()); err != nil {
		rr.writeErrorResponse(w, "service not ready: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	rr.writeJSONResponse(w, http.StatusOK, HealthResponse{OK: true})
}

// getVersion handles GET /version
//
//	@Summary		Get current application version
//	@Description	Get the latest version resolved from the upstream manifest
//	@Tags			version
//	@Produce		json
//	@Param			force	query		string	false	"Set to 1 to bypass the cache TTL"
//	@Success		200		{object}	VersionResponse
//	@Failure		502		{object}	ErrorResponse
//	@Router			/version [get]
func (rr *Routes) getVersion(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "1"

	resolved, err := rr.service.GetCurrentVersion(r.Context(), force)
	if err != nil {
		logger.Errorf("Failed to resolve current version: %v", err)
		rr.writeErrorResponse(w, err.Error(), http.StatusBadGateway)
		return
	}

	rr.writeJSONResponse(w, http.StatusOK, VersionResponse{
		OK:              true,
		Version:         resolved.Version.Core(),
		Build:           resolved.Version.Build,
		Raw:             resolved.Version.Raw,
		Source:          resolved.Source,
		LastCheckedAt:   resolved.LastCheckedAt.Unix(),
		CacheTTLSeconds: int(rr.service.CacheTTL().Seconds()),
		Error:           resolved.FetchError,
	})
}

// checkUpdate handles GET /check
//
//	@Summary		Check for updates
//	@Description	Compare a client version against the latest resolved version
//	@Tags			version
//	@Produce		json
//	@Param			current	query		string	true	"Client version, e.g. 1.16.0+5"
//	@Success		200		{object}	CheckResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Router			/check [get]
func (rr *Routes) checkUpdate(w http.ResponseWriter, r *http.Request) {
	current := strings.TrimSpace(r.URL.Query().Get("current"))
	if current == "" {
		rr.writeErrorResponse(w, "Missing 'current' query param", http.StatusBadRequest)
		return
	}

	result, err := rr.service.CheckUpdate(r.Context(), current)
	if err != nil {
		if errors.Is(err, manifest.ErrInvalidVersion) {
			rr.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Errorf("Failed to check update for %s: %v", current, err)
		rr.writeErrorResponse(w, err.Error(), http.StatusBadGateway)
		return
	}

	rr.writeJSONResponse(w, http.StatusOK, CheckResponse{
		OK:              true,
		UpdateAvailable: result.UpdateAvailable,
		Current:         result.Current.Raw,
		Latest:          result.Latest.Raw,
	})
}

// buildInfo handles GET /buildinfo
//
//	@Summary		Server build information
//	@Description	Get build version information about the version check API binary
//	@Tags			system
//	@Produce		json
//	@Success		200	{object}	versions.BuildInfo
//	@Router			/buildinfo [get]
func (rr *Routes) buildInfo(w http.ResponseWriter, _ *http.Request) {
	rr.writeJSONResponse(w, http.StatusOK, versions.GetBuildInfo())
}

// writeJSONResponse writes a JSON response with the given status and data
func (*Routes) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Errorf("Failed to encode JSON response: %v", err)
	}
}

// writeErrorResponse writes a standardized error response
func (rr *Routes) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	rr.writeJSONResponse(w, statusCode, ErrorResponse{OK: false, Error: message})
}
