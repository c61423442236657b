// Package installer provisions third-party packages from the remote index
// into a target directory. File content is addressed by hash bucket: the
// first two hex characters of the hash name the directory, the full hash
// names the file. That layout is a fixed wire contract with the content
// store.
package installer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/picoforge/picoforge/pkg/catalog"
	"github.com/picoforge/picoforge/pkg/errors"
	"github.com/picoforge/picoforge/pkg/logging"
)

// maxResponseBytes bounds manifest responses (10 MB)
const maxResponseBytes = 10 << 20

// userAgent identifies picoforge to the index server
const userAgent = "picoforge"

// FileHash is one manifest row: a target-relative path and its content hash
type FileHash struct {
	Path string
	Hash string
}

// Manifest lists the files of one package, in manifest order. It is fetched
// per install call and never cached across packages.
type Manifest struct {
	Package string
	Hashes  []FileHash
}

// manifestPayload is the JSON wire format of the per-package endpoint:
// hashes come as [relativePath, hexHash] pairs
type manifestPayload struct {
	Hashes [][]string `json:"hashes"`
}

// Installer fetches manifests and file content for packages
type Installer struct {
	index      *catalog.Index
	httpClient *http.Client
	baseURL    string
}

// Option configures an Installer during construction
type Option func(*Installer)

// WithHTTPClient sets a custom HTTP client, useful for tests
func WithHTTPClient(c *http.Client) Option {
	return func(in *Installer) {
		in.httpClient = c
	}
}

// WithBaseURL overrides the content store base URL, primarily for test
// servers. It defaults to the catalog's base URL.
func WithBaseURL(base string) Option {
	return func(in *Installer) {
		in.baseURL = strings.TrimRight(base, "/")
	}
}

// New creates an Installer over a fetched catalog
func New(index *catalog.Index, opts ...Option) *Installer {
	in := &Installer{
		index:      index,
		httpClient: http.DefaultClient,
		baseURL:    index.BaseURL(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// FetchManifest downloads the latest manifest for a package. A 404 means the
// package does not exist in the index.
func (in *Installer) FetchManifest(ctx context.Context, pkg string) (*Manifest, error) {
	logger := logging.GetLogger("installer")
	manifestURL := fmt.Sprintf("%s/package/py/%s/latest.json", in.baseURL, pkg)

	logger.Debug().Str("url", manifestURL).Msg("Fetching package manifest")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, manifestURL, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTransport, "failed to build manifest request").
			WithDetail("url", manifestURL)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := in.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTransport, "failed to fetch manifest for '%s'", pkg).
			WithDetail("url", manifestURL)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.Newf(errors.ErrPackageNotFound, "'%s' not found in package index", pkg).
			WithDetail("url", manifestURL)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.ErrTransport, "manifest server returned %d for '%s'", resp.StatusCode, pkg).
			WithDetail("status", resp.StatusCode).
			WithDetail("reason", resp.Status)
	}

	var payload manifestPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, errors.Wrapf(err, errors.ErrParse, "malformed manifest for '%s'", pkg)
	}

	manifest := &Manifest{Package: pkg}
	for _, pair := range payload.Hashes {
		if len(pair) < 2 {
			return nil, errors.Newf(errors.ErrParse, "malformed manifest entry for '%s'", pkg).
				WithDetail("entry", pair)
		}
		manifest.Hashes = append(manifest.Hashes, FileHash{Path: pair[0], Hash: pair[1]})
	}

	logger.Debug().Str("package", pkg).Int("files", len(manifest.Hashes)).Msg("Manifest fetched")
	return manifest, nil
}

// Install provisions one package into targetDir.
//
// Standard library handling happens before any download: a requested name
// that is itself standard library fails the whole call, and files owned by
// other standard library packages are skipped as already satisfied by the
// runtime. A transport failure mid-download aborts this package's remaining
// files; files already written remain on disk. No retries are attempted.
func (in *Installer) Install(ctx context.Context, pkg, targetDir string) error {
	logger := logging.GetLogger("installer")
	defer logging.Timed(logger, "install "+pkg)()

	info, err := os.Stat(targetDir)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Newf(errors.ErrConfig, "target directory %s is missing", targetDir)
		}
		return errors.Wrap(err, errors.ErrFileAccess, "cannot access target directory").
			WithDetail("path", targetDir)
	}
	if !info.IsDir() {
		return errors.Newf(errors.ErrConfig, "target %s is not a directory", targetDir)
	}

	// The requested name is checked against the catalog before the manifest
	// is even fetched, so the conflict never depends on endpoint contents
	stdlib := in.index.StandardLibrary()
	if stdlib[pkg] {
		return errors.Newf(errors.ErrStdlibConflict, "'%s' is part of the MicroPython standard library", pkg)
	}

	manifest, err := in.FetchManifest(ctx, pkg)
	if err != nil {
		return err
	}

	// Classify the whole manifest first so a conflict surfaces before any
	// file is written
	var planned []FileHash
	for _, fh := range manifest.Hashes {
		owner := owningName(fh.Path)
		if stdlib[owner] {
			if owner == pkg {
				return errors.Newf(errors.ErrStdlibConflict, "'%s' is part of the MicroPython standard library", owner)
			}
			logger.Trace().Str("file", fh.Path).Str("owner", owner).
				Msg("Skipping file provided by the standard library")
			continue
		}
		planned = append(planned, fh)
	}

	for _, fh := range planned {
		if err := in.fetchFile(ctx, fh, targetDir); err != nil {
			return err
		}
	}

	logger.Info().Str("package", pkg).Int("files", len(planned)).Str("target", targetDir).
		Msg("Package installed")
	return nil
}

// owningName derives the package that owns a manifest path: the immediate
// parent directory name, or the bare filename without its extension when
// the path has no parent.
func owningName(relPath string) string {
	p := path.Clean(filepath.ToSlash(relPath))
	dir := path.Dir(p)
	if dir == "." || dir == "/" {
		base := path.Base(p)
		return strings.TrimSuffix(base, path.Ext(base))
	}
	return path.Base(dir)
}

// fetchFile downloads one content blob by hash bucket and writes it under
// targetDir
func (in *Installer) fetchFile(ctx context.Context, fh FileHash, targetDir string) error {
	logger := logging.GetLogger("installer")

	if len(fh.Hash) < 2 {
		return errors.Newf(errors.ErrParse, "content hash '%s' is too short", fh.Hash).
			WithDetail("path", fh.Path)
	}

	dest := filepath.Join(targetDir, filepath.FromSlash(fh.Path))
	if !within(targetDir, dest) {
		return errors.Newf(errors.ErrInvalidInput, "manifest path '%s' escapes the target directory", fh.Path)
	}

	fileURL := fmt.Sprintf("%s/file/%s/%s", in.baseURL, fh.Hash[:2], fh.Hash)
	logger.Trace().Str("url", fileURL).Str("dest", dest).Msg("Fetching file content")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, http.NoBody)
	if err != nil {
		return errors.Wrap(err, errors.ErrTransport, "failed to build content request").
			WithDetail("url", fileURL)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := in.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, errors.ErrTransport, "failed to fetch '%s'", fh.Path).
			WithDetail("url", fileURL)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return errors.Newf(errors.ErrTransport, "content store returned %d for '%s'", resp.StatusCode, fh.Path).
			WithDetail("status", resp.StatusCode).
			WithDetail("reason", resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create directory for '%s'", fh.Path)
	}

	out, err := os.Create(dest)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot create '%s'", dest)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed writing '%s'", dest)
	}

	return nil
}

// within reports whether dest stays inside root after cleaning
func within(root, dest string) bool {
	rel, err := filepath.Rel(root, dest)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
