package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/relicta-dev/version-check-api/internal/manifest"
	"github.com/relicta-dev/version-check-api/internal/telemetry"
	"github.com/relicta-dev/version-check-api/pkg/logger"
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go VersionService

// ErrUpstreamUnavailable is returned when no version has ever been resolved
// and the upstream cannot be reached or returns unusable data.
var ErrUpstreamUnavailable = errors.New("upstream version unavailable")

// Source values reported on resolved versions.
const (
	// SourceGitHub marks a version resolved by a fresh upstream fetch,
	// including an ETag revalidation.
	SourceGitHub = "github"

	// SourceCache marks a version served from the cache, either still
	// fresh within the TTL or stale after a failed refresh.
	SourceCache = "cache"
)

// failureBackoffCap bounds how long a failed refresh suppresses further
// refresh attempts while a stale value is being served.
const failureBackoffCap = 30 * time.Second

// ResolvedVersion is the version cache's answer to a lookup.
type ResolvedVersion struct {
	Version manifest.Version

	// Source is SourceGitHub or SourceCache.
	Source string

	// FetchedAt is when the version content was last fetched upstream.
	FetchedAt time.Time

	// LastCheckedAt is when the upstream was last contacted, successfully
	// or not.
	LastCheckedAt time.Time

	// FetchError carries the most recent refresh failure when a stale
	// value is being served. Empty after a successful refresh.
	FetchError string
}

// UpdateCheck is the result of comparing a client's version against the
// latest resolved version.
type UpdateCheck struct {
	UpdateAvailable bool
	Current         manifest.Version
	Latest          manifest.Version
}

// VersionService defines the interface for version lookup and comparison
// operations.
type VersionService interface {
	// CheckReadiness checks if the service is ready to serve requests
	CheckReadiness(ctx context.Context) error

	// GetCurrentVersion returns the latest known version, refreshing from
	// upstream when the cache is empty or expired. With force set the TTL
	// is ignored and a refresh is always attempted.
	GetCurrentVersion(ctx context.Context, force bool) (*ResolvedVersion, error)

	// CheckUpdate parses currentRaw and reports whether the latest
	// resolved version is newer.
	CheckUpdate(ctx context.Context, currentRaw string) (*UpdateCheck, error)

	// CacheTTL returns the configured cache TTL.
	CacheTTL() time.Duration
}

// Option configures the version service.
type Option func(*versionService)

// WithTTL sets the cache TTL. Zero or negative means every lookup refreshes.
func WithTTL(ttl time.Duration) Option {
	return func(s *versionService) {
		s.ttl = ttl
	}
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *versionService) {
		s.now = now
	}
}

// WithMetrics attaches manifest metrics instruments. A nil metrics value is
// a no-op.
func WithMetrics(m *telemetry.ManifestMetrics) Option {
	return func(s *versionService) {
		s.metrics = m
	}
}

// cachedManifest holds the last successfully resolved version. It is owned
// exclusively by the service and only ever replaced wholesale under the
// mutex, never mutated in place, so readers cannot observe a partial update.
type cachedManifest struct {
	version       manifest.Version
	fetchedAt     time.Time
	lastCheckedAt time.Time
	expiresAt     time.Time
	lastErr       string
}

type versionService struct {
	provider ManifestProvider
	ttl      time.Duration
	now      func() time.Time
	metrics  *telemetry.ManifestMetrics

	// group collapses concurrent refreshes into a single upstream call.
	group singleflight.Group

	mu     sync.RWMutex
	cached *cachedManifest
}

// NewService creates a new version service backed by the given provider.
func NewService(provider ManifestProvider, opts ...Option) VersionService {
	s := &versionService{
		provider: provider,
		ttl:      time.Minute,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CacheTTL implements VersionService.CacheTTL.
func (s *versionService) CacheTTL() time.Duration {
	return s.ttl
}

// CheckReadiness implements VersionService.CheckReadiness. The service is
// ready once a version can be resolved, from cache or upstream.
func (s *versionService) CheckReadiness(ctx context.Context) error {
	if s.provider == nil {
		return fmt.Errorf("no manifest provider configured")
	}
	_, err := s.GetCurrentVersion(ctx, false)
	return err
}

// GetCurrentVersion implements VersionService.GetCurrentVersion.
func (s *versionService) GetCurrentVersion(ctx context.Context, force bool) (*ResolvedVersion, error) {
	if !force {
		if resolved := s.fromFreshCache(); resolved != nil {
			s.metrics.RecordCacheHit(ctx)
			return resolved, nil
		}
	}

	// Concurrent callers share one in-flight refresh; callers that raced a
	// just-finished refresh pick up its result from the fresh cache check
	// inside the flight.
	v, err, _ := s.group.Do("refresh", func() (any, error) {
		if !force {
			if resolved := s.fromFreshCache(); resolved != nil {
				return resolved, nil
			}
		}
		return s.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*ResolvedVersion), nil
}

// fromFreshCache returns the cached version if it is still within its TTL,
// or nil when a refresh is due.
func (s *versionService) fromFreshCache() *ResolvedVersion {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cached == nil {
		return nil
	}
	if s.ttl <= 0 || !s.now().Before(s.cached.expiresAt) {
		return nil
	}
	return s.cached.resolved(SourceCache)
}

// refresh fetches the manifest, parses it, and swaps the cache. On failure
// it degrades to the previously cached value when one exists.
func (s *versionService) refresh(ctx context.Context) (*ResolvedVersion, error) {
	start := s.now()

	result, err := s.provider.FetchManifest(ctx)
	if err == nil && result.Unchanged {
		if resolved := s.confirmUnchanged(); resolved != nil {
			s.metrics.RecordFetch(ctx, telemetry.FetchResultUnchanged, s.now().Sub(start))
			return resolved, nil
		}
		// A 304 with nothing cached means the provider and cache state
		// diverged; treat it as an unusable response.
		err = fmt.Errorf("upstream reported not-modified but no version is cached")
	}

	var version manifest.Version
	if err == nil {
		version, err = manifest.ExtractVersion(result.Content)
	}

	if err != nil {
		s.metrics.RecordFetch(ctx, telemetry.FetchResultError, s.now().Sub(start))
		return s.degrade(ctx, err)
	}

	s.metrics.RecordFetch(ctx, telemetry.FetchResultSuccess, s.now().Sub(start))

	now := s.now()
	fresh := &cachedManifest{
		version:       version,
		fetchedAt:     now,
		lastCheckedAt: now,
		expiresAt:     now.Add(s.ttl),
	}

	s.mu.Lock()
	s.cached = fresh
	s.mu.Unlock()

	logger.Debugf("Resolved version %s from %s", version.Raw, s.provider.GetSource())
	return fresh.resolved(SourceGitHub), nil
}

// confirmUnchanged extends the freshness of the cached value after the
// upstream confirmed it has not changed. Returns nil when nothing is cached.
func (s *versionService) confirmUnchanged() *ResolvedVersion {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached == nil {
		return nil
	}
	revalidated := *s.cached
	revalidated.lastCheckedAt = now
	revalidated.expiresAt = now.Add(s.ttl)
	revalidated.lastErr = ""
	s.cached = &revalidated

	return revalidated.resolved(SourceGitHub)
}

// degrade handles a failed refresh: serve the stale cached value when one
// exists, otherwise surface the failure.
func (s *versionService) degrade(ctx context.Context, fetchErr error) (*ResolvedVersion, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached == nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, fetchErr)
	}

	stale := *s.cached
	stale.lastCheckedAt = now
	stale.lastErr = fetchErr.Error()
	// Back off before the next attempt so a dead upstream is not hammered
	// on every request, but never longer than the regular TTL.
	if backoff := min(s.ttl, failureBackoffCap); backoff > 0 {
		stale.expiresAt = now.Add(backoff)
	}
	s.cached = &stale

	logger.Warnf("Refresh from %s failed, serving stale version %s: %v",
		s.provider.GetSource(), stale.version.Raw, fetchErr)
	s.metrics.RecordStaleServe(ctx)

	return stale.resolved(SourceCache), nil
}

// CheckUpdate implements VersionService.CheckUpdate.
func (s *versionService) CheckUpdate(ctx context.Context, currentRaw string) (*UpdateCheck, error) {
	current, err := manifest.ParseVersion(currentRaw)
	if err != nil {
		return nil, err
	}

	latest, err := s.GetCurrentVersion(ctx, false)
	if err != nil {
		return nil, err
	}

	return &UpdateCheck{
		UpdateAvailable: latest.Version.IsNewerThan(current),
		Current:         current,
		Latest:          latest.Version,
	}, nil
}

func (c *cachedManifest) resolved(source string) *ResolvedVersion {
	return &ResolvedVersion{
		Version:       c.version,
		Source:        source,
		FetchedAt:     c.fetchedAt,
		LastCheckedAt: c.lastCheckedAt,
		FetchError:    c.lastErr,
	}
}
