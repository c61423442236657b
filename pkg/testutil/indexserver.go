package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
)

// IndexEntry is one package listed in the fake index catalog.
type IndexEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// IndexServer simulates a MicroPython package index. It serves the catalog
// listing at /index.json, package manifests at /package/py/<name>/latest.json,
// and content-addressed blobs at /file/<prefix>/<hash>, matching the URL
// layout of the live index. Blob requests whose bucket prefix does not match
// the first two characters of the hash are rejected.
type IndexServer struct {
	t         *testing.T
	server    *httptest.Server
	entries   []IndexEntry
	manifests map[string][]byte
	blobs     map[string][]byte
}

// NewIndexServer starts a fake package index. The server is shut down when
// the test completes.
func NewIndexServer(t *testing.T) *IndexServer {
	t.Helper()

	s := &IndexServer{
		t:         t,
		manifests: make(map[string][]byte),
		blobs:     make(map[string][]byte),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.server.Close)

	return s
}

// URL returns the server's base URL.
func (s *IndexServer) URL() string {
	return s.server.URL
}

// AddEntry lists a package in the catalog. The path determines standard
// library membership, so tests control it explicitly.
func (s *IndexServer) AddEntry(name, path string) {
	s.entries = append(s.entries, IndexEntry{Name: name, Path: path})
}

// AddPackage registers a manifest for name built from files (relative path
// to content) and stores each file's content as a blob under its checksum.
// It does not touch the catalog listing; combine with AddEntry as needed.
func (s *IndexServer) AddPackage(name string, files map[string]string) {
	s.t.Helper()

	rels := make([]string, 0, len(files))
	for rel := range files {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	hashes := make([][]string, 0, len(rels))
	for _, rel := range rels {
		sum := Checksum(files[rel])
		s.blobs[sum] = []byte(files[rel])
		hashes = append(hashes, []string{rel, sum})
	}

	doc, err := json.Marshal(map[string]interface{}{"hashes": hashes})
	if err != nil {
		s.t.Fatalf("Failed to marshal manifest for %s: %v", name, err)
	}
	s.manifests[name] = doc
}

// SetManifestJSON registers a raw manifest document for name, for tests
// that need malformed or unusual payloads.
func (s *IndexServer) SetManifestJSON(name, doc string) {
	s.manifests[name] = []byte(doc)
}

// DropBlob removes the blob for content, making subsequent fetches of it
// fail. Used to simulate a download breaking partway through a package.
func (s *IndexServer) DropBlob(content string) {
	delete(s.blobs, Checksum(content))
}

func (s *IndexServer) handle(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/index.json":
		payload := struct {
			Packages []IndexEntry `json:"packages"`
		}{Packages: s.entries}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)

	case strings.HasPrefix(r.URL.Path, "/package/py/") && strings.HasSuffix(r.URL.Path, "/latest.json"):
		name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/package/py/"), "/latest.json")
		doc, ok := s.manifests[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(doc)

	case strings.HasPrefix(r.URL.Path, "/file/"):
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/file/"), "/")
		if len(parts) != 2 || len(parts[1]) < 2 || parts[0] != parts[1][:2] {
			http.Error(w, "bad bucket", http.StatusBadRequest)
			return
		}
		blob, ok := s.blobs[parts[1]]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(blob)

	default:
		http.NotFound(w, r)
	}
}
