package updater

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oriontv/orion-updater/pkg/backoff"
	"github.com/oriontv/orion-updater/pkg/updater/notify"
)

// testNotifier counts notifications instead of showing them.
type testNotifier struct {
	count  int
	titles []string
}

func (n *testNotifier) Notify(title, _ string) {
	n.count++
	n.titles = append(n.titles, title)
}

// newTestUpdater builds an updater against the given server with instant,
// recorded backoff delays.
func newTestUpdater(t *testing.T, serverURL string, delays *[]time.Duration, n notify.Notifier, extra ...func(*Updater)) *Updater {
	t.Helper()
	opts := []func(*Updater){
		WithServerURL(serverURL),
		WithArtifactDir(t.TempDir()),
		WithCurrentVersion("1.0.0"),
		WithNotifier(n),
		WithBackoffFactory(func(base time.Duration, maxAttempts uint) backoff.Strategy {
			return backoff.NewLinearWithSleep(base, maxAttempts, func(d time.Duration) {
				*delays = append(*delays, d)
			})
		}),
	}
	opts = append(opts, extra...)
	u, err := NewUpdater(opts...)
	require.NoError(t, err)
	return u
}

func TestCheckVersionSucceedsAfterTransientFailures(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		// unknown fields must be tolerated
		_, _ = w.Write([]byte(`{"version": "9.9.9", "notes": "irrelevant"}`))
	}))
	defer srv.Close()

	var delays []time.Duration
	n := &testNotifier{}
	u := newTestUpdater(t, srv.URL, &delays, n)

	info, err := u.CheckVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "9.9.9", info.Version)
	assert.Equal(t, srv.URL+"/api/v1/artifacts/OrionTV-9.9.9.apk", info.DownloadURL)
	assert.EqualValues(t, 3, attempts.Load())
	// linear backoff: 2s then 4s between the three attempts
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, delays)
	assert.Zero(t, n.count)
}

func TestCheckVersionExhaustsRetries(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	var delays []time.Duration
	n := &testNotifier{}
	u := newTestUpdater(t, srv.URL, &delays, n)

	_, err := u.CheckVersion(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.ErrorIs(t, err, ErrNetworkFailure)
	assert.EqualValues(t, 3, attempts.Load())
	assert.Equal(t, 1, n.count, "exactly one failure notification expected")
}

func TestCheckVersionMalformedManifest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	var delays []time.Duration
	n := &testNotifier{}
	u := newTestUpdater(t, srv.URL, &delays, n)

	_, err := u.CheckVersion(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.ErrorIs(t, err, ErrParseFailure)
	assert.Equal(t, 1, n.count)
}

func TestCheckVersionMissingVersionField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"notes": "no version here"}`))
	}))
	defer srv.Close()

	var delays []time.Duration
	n := &testNotifier{}
	u := newTestUpdater(t, srv.URL, &delays, n)

	_, err := u.CheckVersion(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParseFailure)
}

func TestIsUpdateAvailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	var delays []time.Duration
	u := newTestUpdater(t, srv.URL, &delays, &testNotifier{})

	assert.True(t, u.IsUpdateAvailable("1.0.1"))
	assert.False(t, u.IsUpdateAvailable("1.0.0"))
	assert.False(t, u.IsUpdateAvailable("1.0"))
	assert.False(t, u.IsUpdateAvailable("0.9.9"))
}

func TestDownloadCleansStaleArtifacts(t *testing.T) {
	payload := []byte("apk payload")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	var delays []time.Duration
	n := &testNotifier{}
	u := newTestUpdater(t, srv.URL, &delays, n)

	dir := u.opts.ArtifactDir
	for i := 1; i <= 5; i++ {
		name := fmt.Sprintf("OrionTV_v%d.apk", 1000*i)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("old"), 0644))
	}

	path, err := u.DownloadApk(context.Background(), srv.URL+"/artifact")
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	// 2 previously-newest retained + 1 newly downloaded
	assert.Len(t, names, 3, "expected exactly 3 artifacts, got %v", names)
	assert.Contains(t, names, "OrionTV_v4000.apk")
	assert.Contains(t, names, "OrionTV_v5000.apk")
	assert.Contains(t, names, filepath.Base(path))
}

func TestDownloadPublishesProgress(t *testing.T) {
	payload := make([]byte, 64*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprint(len(payload)))
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	var delays []time.Duration
	u := newTestUpdater(t, srv.URL, &delays, &testNotifier{})

	var percentages []int
	sub := u.SubscribeProgress(func(p int) {
		percentages = append(percentages, p)
	})
	defer sub.Unsubscribe()

	_, err := u.DownloadApk(context.Background(), srv.URL+"/artifact")
	require.NoError(t, err)

	require.NotEmpty(t, percentages)
	assert.Equal(t, 100, percentages[len(percentages)-1])
	for i := 1; i < len(percentages); i++ {
		assert.LessOrEqual(t, percentages[i-1], percentages[i], "progress must not go backwards")
	}
}

func TestDownloadExhaustsRetries(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	var delays []time.Duration
	n := &testNotifier{}
	u := newTestUpdater(t, srv.URL, &delays, n)

	_, err := u.DownloadApk(context.Background(), srv.URL+"/artifact")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.ErrorIs(t, err, ErrNetworkFailure)
	assert.EqualValues(t, 3, attempts.Load())
	assert.Equal(t, []time.Duration{3 * time.Second, 6 * time.Second}, delays)
	assert.Equal(t, 1, n.count)

	// a failed download leaves no partial artifact behind
	entries, readErr := os.ReadDir(u.opts.ArtifactDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestDownloadReleaseVerifiesDigest(t *testing.T) {
	payload := []byte("apk payload")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	var delays []time.Duration
	n := &testNotifier{}
	u := newTestUpdater(t, srv.URL, &delays, n)

	t.Run("matching digest", func(t *testing.T) {
		info := &VersionInfo{
			Version:     "2.0.0",
			DownloadURL: srv.URL + "/artifact",
			Digest:      digest.FromBytes(payload),
		}
		path, err := u.DownloadRelease(context.Background(), info)
		require.NoError(t, err)
		assert.FileExists(t, path)
	})

	t.Run("mismatching digest", func(t *testing.T) {
		info := &VersionInfo{
			Version:     "2.0.0",
			DownloadURL: srv.URL + "/artifact",
			Digest:      digest.FromBytes([]byte("something else")),
		}
		_, err := u.DownloadRelease(context.Background(), info)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRetriesExhausted)
		assert.ErrorIs(t, err, ErrDigestMismatch)
	})
}

func TestNewUpdaterValidatesOptions(t *testing.T) {
	_, err := NewUpdater()
	require.Error(t, err)

	_, err = NewUpdater(WithManifestURL("http://example.org/version"))
	require.Error(t, err, "missing download URL template must be rejected")

	_, err = NewUpdater(
		WithManifestURL("http://example.org/version"),
		WithDownloadURLFunc(func(v string) string { return "http://example.org/" + v }),
	)
	require.Error(t, err, "missing artifact directory must be rejected")

	u, err := NewUpdater(
		WithServerURL("http://example.org"),
		WithArtifactDir(t.TempDir()),
	)
	require.NoError(t, err)
	assert.NotEmpty(t, u.CurrentVersion(), "current version must default to the build-time version")
}

func TestCheckVersionRespectsCallerContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	var delays []time.Duration
	n := &testNotifier{}
	u := newTestUpdater(t, srv.URL, &delays, n)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	_, err := u.CheckVersion(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRetriesExhausted))
}
