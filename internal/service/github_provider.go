package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/relicta-dev/version-check-api/pkg/httpclient"
)

// DefaultGitHubAPIBaseURL is the base URL of the GitHub REST API.
const DefaultGitHubAPIBaseURL = "https://api.github.com"

// Sentinel errors classifying upstream fetch failures.
var (
	// ErrManifestNotFound is returned when the manifest path or branch
	// does not exist upstream (HTTP 404).
	ErrManifestNotFound = errors.New("manifest not found upstream")

	// ErrUpstreamAuth is returned when the upstream rejects the credential
	// (HTTP 401 or 403).
	ErrUpstreamAuth = errors.New("upstream rejected credentials")

	// ErrUpstreamDecode is returned when the upstream payload cannot be
	// decoded into manifest text.
	ErrUpstreamDecode = errors.New("cannot decode upstream payload")
)

// GitHubProviderConfig configures a GitHubManifestProvider.
type GitHubProviderConfig struct {
	Owner        string
	Repo         string
	Branch       string
	ManifestPath string

	// Token is the bearer credential. Empty means anonymous access.
	Token string

	// BaseURL overrides the GitHub API base URL. Used in tests.
	BaseURL string
}

// GitHubManifestProvider fetches the manifest through the GitHub Contents
// API. It remembers the ETag of the last successful fetch and issues
// conditional requests, reporting an upstream 304 as FetchResult.Unchanged.
type GitHubManifestProvider struct {
	client httpclient.Client
	cfg    GitHubProviderConfig

	mu   sync.Mutex
	etag string
}

// NewGitHubManifestProvider creates a provider for the given repository
// coordinates using the supplied HTTP client.
func NewGitHubManifestProvider(client httpclient.Client, cfg GitHubProviderConfig) *GitHubManifestProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGitHubAPIBaseURL
	}
	return &GitHubManifestProvider{
		client: client,
		cfg:    cfg,
	}
}

// contentsEnvelope mirrors the GitHub Contents API response fields we need.
type contentsEnvelope struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// FetchManifest implements ManifestProvider.FetchManifest.
func (p *GitHubManifestProvider) FetchManifest(ctx context.Context) (*FetchResult, error) {
	headers := map[string]string{
		"Accept": "application/vnd.github+json",
	}
	if p.cfg.Token != "" {
		headers["Authorization"] = "Bearer " + p.cfg.Token
	}

	p.mu.Lock()
	if p.etag != "" {
		headers["If-None-Match"] = p.etag
	}
	p.mu.Unlock()

	resp, err := p.client.Get(ctx, p.contentsURL(), headers)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			switch httpErr.StatusCode {
			case http.StatusNotFound:
				return nil, fmt.Errorf("%w: %v", ErrManifestNotFound, err)
			case http.StatusUnauthorized, http.StatusForbidden:
				return nil, fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
			}
			return nil, fmt.Errorf("github api error: %w", err)
		}
		return nil, fmt.Errorf("failed to reach github api: %w", err)
	}

	if resp.NotModified {
		return &FetchResult{Unchanged: true}, nil
	}

	content, err := decodeContentsEnvelope(resp.Body)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.etag = resp.ETag
	p.mu.Unlock()

	return &FetchResult{Content: content}, nil
}

// decodeContentsEnvelope decodes the base64 envelope returned by the
// Contents API into manifest text. It is a pure function, independent of
// the network call.
func decodeContentsEnvelope(body []byte) (string, error) {
	var envelope contentsEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("%w: invalid JSON envelope: %v", ErrUpstreamDecode, err)
	}

	if envelope.Encoding != "base64" || envelope.Content == "" {
		return "", fmt.Errorf("%w: missing base64 content (encoding=%q)", ErrUpstreamDecode, envelope.Encoding)
	}

	// The Contents API wraps base64 content with newlines.
	raw := strings.ReplaceAll(envelope.Content, "\n", "")
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamDecode, err)
	}

	return string(decoded), nil
}

// contentsURL builds the Contents API URL for the configured coordinates.
func (p *GitHubManifestProvider) contentsURL() string {
	segments := strings.Split(strings.Trim(p.cfg.ManifestPath, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	return fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		p.cfg.BaseURL,
		url.PathEscape(p.cfg.Owner),
		url.PathEscape(p.cfg.Repo),
		strings.Join(segments, "/"),
		url.QueryEscape(p.cfg.Branch),
	)
}

// GetSource implements ManifestProvider.GetSource.
func (p *GitHubManifestProvider) GetSource() string {
	return fmt.Sprintf("github:%s/%s@%s/%s", p.cfg.Owner, p.cfg.Repo, p.cfg.Branch, p.cfg.ManifestPath)
}
