// pkg/catalog/catalog_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: httptest server
// PURPOSE: Test catalog fetching, wire format decoding, and stdlib membership

package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picoforge/picoforge/pkg/catalog"
	"github.com/picoforge/picoforge/pkg/errors"
)

func serveIndex(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/index.json" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	srv := serveIndex(t, `{
		"v": 2,
		"packages": [
			{"name": "base64", "path": "python-stdlib/base64", "version": "0.1"},
			{"name": "umqtt.simple", "path": "micropython/umqtt.simple"}
		]
	}`, http.StatusOK)

	ix := catalog.New(catalog.WithBaseURL(srv.URL))
	require.False(t, ix.Fetched())

	err := ix.Fetch(context.Background())
	require.NoError(t, err)

	assert.True(t, ix.Fetched())
	entries := ix.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "base64", entries[0].Name)
	assert.Equal(t, "python-stdlib/base64", entries[0].Path)
}

func TestStandardLibrary(t *testing.T) {
	srv := serveIndex(t, `{"packages": [
		{"name": "base64", "path": "python-stdlib/base64"},
		{"name": "os-path", "path": "python-stdlib/os.path"},
		{"name": "umqtt.simple", "path": "micropython/umqtt.simple"},
		{"name": "aioble", "path": "micropython/bluetooth/aioble"}
	]}`, http.StatusOK)

	ix := catalog.New(catalog.WithBaseURL(srv.URL))
	require.NoError(t, ix.Fetch(context.Background()))

	stdlib := ix.StandardLibrary()
	assert.Len(t, stdlib, 2)
	assert.True(t, ix.IsStandardLibrary("base64"))
	assert.True(t, ix.IsStandardLibrary("os-path"))
	assert.False(t, ix.IsStandardLibrary("umqtt.simple"))
	assert.False(t, ix.IsStandardLibrary("aioble"))
	assert.False(t, ix.IsStandardLibrary("umqtt"),
		"names absent from the catalog are not stdlib")
}

func TestStandardLibraryCustomPrefix(t *testing.T) {
	srv := serveIndex(t, `{"packages": [
		{"name": "base64", "path": "stdlib/base64"},
		{"name": "umqtt.simple", "path": "micropython/umqtt.simple"}
	]}`, http.StatusOK)

	ix := catalog.New(catalog.WithBaseURL(srv.URL), catalog.WithStdlibPrefix("stdlib"))
	require.NoError(t, ix.Fetch(context.Background()))

	assert.True(t, ix.IsStandardLibrary("base64"))
	assert.False(t, ix.IsStandardLibrary("umqtt.simple"))
}

func TestFetchServerError(t *testing.T) {
	srv := serveIndex(t, "gone wrong", http.StatusBadGateway)

	ix := catalog.New(catalog.WithBaseURL(srv.URL))
	err := ix.Fetch(context.Background())

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTransport))
	details := errors.GetErrorDetails(err)
	assert.Equal(t, http.StatusBadGateway, details["status"])
	assert.False(t, ix.Fetched(), "a failed fetch leaves the index unfetched")
}

func TestFetchConnectionRefused(t *testing.T) {
	srv := serveIndex(t, "{}", http.StatusOK)
	base := srv.URL
	srv.Close()

	ix := catalog.New(catalog.WithBaseURL(base))
	err := ix.Fetch(context.Background())

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTransport))
}

func TestFetchMalformedPayload(t *testing.T) {
	srv := serveIndex(t, `{"packages": [{`, http.StatusOK)

	ix := catalog.New(catalog.WithBaseURL(srv.URL))
	err := ix.Fetch(context.Background())

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrParse))
}

func TestRefetchResetsStdlibCache(t *testing.T) {
	srv := serveIndex(t, `{"packages": [
		{"name": "base64", "path": "python-stdlib/base64"}
	]}`, http.StatusOK)

	ix := catalog.New(catalog.WithBaseURL(srv.URL))
	require.NoError(t, ix.Fetch(context.Background()))
	assert.True(t, ix.IsStandardLibrary("base64"))

	srv2 := serveIndex(t, `{"packages": [
		{"name": "base64", "path": "micropython/base64"}
	]}`, http.StatusOK)
	ix2 := catalog.New(catalog.WithBaseURL(srv2.URL))
	require.NoError(t, ix2.Fetch(context.Background()))
	assert.False(t, ix2.IsStandardLibrary("base64"))

	// Refetching the same index recomputes the set too
	require.NoError(t, ix.Fetch(context.Background()))
	assert.True(t, ix.IsStandardLibrary("base64"))
}
