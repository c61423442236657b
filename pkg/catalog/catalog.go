// Package catalog fetches the remote package index and answers standard
// library membership questions. The catalog must be fetched in full before
// any install decision is made against it.
package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/picoforge/picoforge/pkg/config"
	"github.com/picoforge/picoforge/pkg/errors"
	"github.com/picoforge/picoforge/pkg/logging"
)

// maxResponseBytes bounds index responses to keep malformed servers from
// exhausting memory (10 MB)
const maxResponseBytes = 10 << 20

// userAgent identifies picoforge to the index server
const userAgent = "picoforge"

// Entry is one row of the package catalog, immutable once fetched
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// indexPayload is the JSON wire format of the catalog endpoint
type indexPayload struct {
	Packages []Entry `json:"packages"`
}

// Index holds the fetched catalog and the derived standard library set
type Index struct {
	httpClient   *http.Client
	baseURL      string
	stdlibPrefix string

	entries []Entry
	stdlib  map[string]bool
	fetched bool
}

// Option configures an Index during construction
type Option func(*Index)

// WithHTTPClient sets a custom HTTP client, useful for tests
func WithHTTPClient(c *http.Client) Option {
	return func(ix *Index) {
		ix.httpClient = c
	}
}

// WithBaseURL overrides the index base URL, primarily for test servers
func WithBaseURL(base string) Option {
	return func(ix *Index) {
		ix.baseURL = strings.TrimRight(base, "/")
	}
}

// WithStdlibPrefix overrides the catalog path prefix that marks standard
// library packages
func WithStdlibPrefix(prefix string) Option {
	return func(ix *Index) {
		ix.stdlibPrefix = prefix
	}
}

// New creates an Index using the configured defaults
func New(opts ...Option) *Index {
	idx := config.GetIndex()
	ix := &Index{
		httpClient:   http.DefaultClient,
		baseURL:      strings.TrimRight(idx.URL, "/"),
		stdlibPrefix: idx.StdlibPrefix,
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// BaseURL returns the resolved index base URL
func (ix *Index) BaseURL() string {
	return ix.baseURL
}

// Fetch downloads and decodes the full catalog
func (ix *Index) Fetch(ctx context.Context) error {
	logger := logging.GetLogger("catalog")
	indexURL := ix.baseURL + "/index.json"

	logger.Debug().Str("url", indexURL).Msg("Fetching package index")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, indexURL, http.NoBody)
	if err != nil {
		return errors.Wrap(err, errors.ErrTransport, "failed to build index request").
			WithDetail("url", indexURL)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := ix.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.ErrTransport, "failed to fetch package index").
			WithDetail("url", indexURL)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return errors.Newf(errors.ErrTransport, "index server returned %d", resp.StatusCode).
			WithDetail("url", indexURL).
			WithDetail("status", resp.StatusCode).
			WithDetail("reason", resp.Status)
	}

	var payload indexPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return errors.Wrap(err, errors.ErrParse, "malformed package index").
			WithDetail("url", indexURL)
	}

	ix.entries = payload.Packages
	ix.stdlib = nil
	ix.fetched = true

	logger.Info().Int("packages", len(ix.entries)).Msg("Package index fetched")
	return nil
}

// Fetched reports whether the catalog has been downloaded
func (ix *Index) Fetched() bool {
	return ix.fetched
}

// Entries returns the raw catalog rows
func (ix *Index) Entries() []Entry {
	return ix.entries
}

// StandardLibrary returns the set of names whose catalog path marks them as
// standard library. The set is computed once per fetch and cached.
func (ix *Index) StandardLibrary() map[string]bool {
	if ix.stdlib != nil {
		return ix.stdlib
	}

	stdlib := make(map[string]bool)
	for _, entry := range ix.entries {
		if strings.HasPrefix(entry.Path, ix.stdlibPrefix) {
			stdlib[entry.Name] = true
		}
	}
	ix.stdlib = stdlib
	return stdlib
}

// IsStandardLibrary reports whether name belongs to the standard library
func (ix *Index) IsStandardLibrary(name string) bool {
	return ix.StandardLibrary()[name]
}
