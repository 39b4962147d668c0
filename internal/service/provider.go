// Package service provides the business logic for the version check API
package service

import "context"

//go:generate mockgen -destination=mocks/mock_provider.go -package=mocks -source=provider.go ManifestProvider

// FetchResult is the outcome of one upstream manifest fetch.
type FetchResult struct {
	// Content is the raw text of the manifest. Empty when Unchanged is set.
	Content string

	// Unchanged reports that the upstream confirmed the manifest has not
	// changed since the last successful fetch (HTTP 304 against the
	// remembered ETag). The caller should keep its previously parsed value.
	Unchanged bool
}

// ManifestProvider abstracts the source of the version manifest.
// Implementations perform exactly one network round trip per call and apply
// no retry policy of their own.
type ManifestProvider interface {
	// FetchManifest fetches the current manifest text.
	FetchManifest(ctx context.Context) (*FetchResult, error)

	// GetSource returns a descriptive string about where the manifest
	// comes from, e.g. "github:owner/repo@main/pubspec.yaml".
	GetSource() string
}
