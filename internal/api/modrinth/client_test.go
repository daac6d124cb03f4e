package modrinth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestListProjectVersions_SendsFiltersAndDecodes checks the request shape and the decoded releases.
func TestListProjectVersions_SendsFiltersAndDecodes(t *testing.T) {
	t.Parallel()

	requests := make(chan *http.Request, 1)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests <- r

		_, _ = w.Write([]byte(`[
			{
				"id": "v2",
				"version_number": "0.5.1",
				"game_versions": ["1.20.1"],
				"loaders": ["fabric"],
				"files": [
					{"url": "https://cdn.test/sodium-0.5.1.jar", "filename": "sodium-0.5.1.jar", "primary": true,
					 "hashes": {"sha1": "aa", "sha512": "bb"}}
				]
			},
			{"id": "v1", "version_number": "0.5", "game_versions": ["1.20"], "loaders": ["fabric"], "files": []}
		]`))
	}))
	defer ts.Close()

	client := NewClient(WithBaseURL(ts.URL+"/"), WithUserAgent("tester/1.0"), WithTimeout(time.Second))

	versions, err := client.ListProjectVersions(context.Background(), "sodium", []string{"fabric", "quilt"}, []string{"1.20.1"})
	require.NoError(t, err)

	req := <-requests

	var gotLoaders []string
	require.NoError(t, json.Unmarshal([]byte(req.URL.Query().Get("loaders")), &gotLoaders))

	require.Equal(t, "/project/sodium/version", req.URL.Path)
	require.Equal(t, `["1.20.1"]`, req.URL.Query().Get("game_versions"))
	require.Equal(t, []string{"fabric", "quilt"}, gotLoaders)
	require.Equal(t, "tester/1.0", req.Header.Get("User-Agent"))

	require.Len(t, versions, 2)
	require.Equal(t, "0.5.1", versions[0].VersionNumber)
	require.Equal(t, "https://cdn.test/sodium-0.5.1.jar", versions[0].Files[0].URL)
	require.Equal(t, "bb", versions[0].Files[0].Hashes.SHA512)
	require.Equal(t, "0.5", versions[1].VersionNumber)
}

// TestListProjectVersions_NoFilters omits empty filters from the query.
func TestListProjectVersions_NoFilters(t *testing.T) {
	t.Parallel()

	queries := make(chan string, 1)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries <- r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	versions, err := NewClient(WithBaseURL(ts.URL)).ListProjectVersions(context.Background(), "lithium", nil, nil)
	require.NoError(t, err)
	require.Empty(t, versions)
	require.Empty(t, <-queries)
}

// TestListProjectVersions_Errors covers the failure modes the resolver degrades on.
func TestListProjectVersions_Errors(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/project/missing/version", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
	})
	mux.HandleFunc("/project/empty/version", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/project/garbage/version", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := NewClient(WithBaseURL(ts.URL))
	ctx := context.Background()

	_, err := client.ListProjectVersions(ctx, "missing", nil, nil)
	require.ErrorIs(t, err, ErrUnexpectedStatus)
	require.ErrorContains(t, err, "404")

	_, err = client.ListProjectVersions(ctx, "empty", nil, nil)
	require.ErrorIs(t, err, ErrEmptyResponse)

	_, err = client.ListProjectVersions(ctx, "garbage", nil, nil)
	require.Error(t, err)

	_, err = client.ListProjectVersions(ctx, " ", nil, nil)
	require.ErrorIs(t, err, errProjectRequired)
}

// TestListProjectVersions_Timeout ensures a stalled catalog does not block forever.
func TestListProjectVersions_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})

	ts := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	client := NewClient(WithBaseURL(ts.URL), WithTimeout(50*time.Millisecond))

	_, err := client.ListProjectVersions(context.Background(), "slow", nil, nil)
	require.Error(t, err)
}
