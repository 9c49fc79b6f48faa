// Package updater implements the OrionTV update workflow: remote version
// discovery, version comparison against the running build, artifact download
// with progress and retry, stale-artifact cleanup and the installer handoff.
//
// The workflow is strictly linear and caller-driven: CheckVersion, then
// DownloadRelease (or DownloadApk) if IsUpdateAvailable, then InstallApk on
// the returned path. Each call is an independent, retryable operation; the
// coordinator holds no scheduling state between calls.
package updater

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/opencontainers/go-digest"
	log "github.com/sirupsen/logrus"

	"github.com/oriontv/orion-updater/internal/pkg/api/apicommon"
	"github.com/oriontv/orion-updater/internal/pkg/utils/fileutils"
	"github.com/oriontv/orion-updater/internal/pkg/utils/funcutils"
	"github.com/oriontv/orion-updater/internal/pkg/utils/observer"
	"github.com/oriontv/orion-updater/internal/pkg/utils/writerutils"
	"github.com/oriontv/orion-updater/pkg/backoff"
	"github.com/oriontv/orion-updater/pkg/updater/installer"
	"github.com/oriontv/orion-updater/pkg/updater/notify"
	"github.com/oriontv/orion-updater/pkg/version"
)

const (
	checkAttempts    = 3
	downloadAttempts = 3

	checkBackoffBase    = 2 * time.Second
	downloadBackoffBase = 3 * time.Second

	checkTimeout = 10 * time.Second
)

// VersionInfo describes the latest release announced by the manifest.
type VersionInfo struct {
	// Version is the dotted numeric version string from the manifest.
	Version string
	// DownloadURL is derived from Version via the configured URL template.
	DownloadURL string
	// Digest is the announced artifact checksum, empty when the manifest
	// carries none.
	Digest digest.Digest
}

// Updater owns the update lifecycle for one client instance.
type Updater struct {
	opts       updaterOpts
	httpClient *http.Client
	notifier   notify.Notifier
	installer  installer.Installer
	newBackoff func(base time.Duration, maxAttempts uint) backoff.Strategy
	progress   *observer.Hub[int]
	// mu serializes cleanup-then-download so one instance never interleaves
	// its cleanup pass with its own artifact write.
	mu sync.Mutex
}

// CheckVersion fetches the remote version manifest and returns the latest
// release. It retries up to three times with linearly increasing backoff; on
// exhaustion it emits one failure notification and returns an error wrapping
// ErrRetriesExhausted.
func (u *Updater) CheckVersion(ctx context.Context) (*VersionInfo, error) {
	var info *VersionInfo
	strategy := u.newBackoff(checkBackoffBase, checkAttempts-1)
	err := backoff.Retry(func() error {
		v, err := u.fetchManifest(ctx)
		if err != nil {
			return err
		}
		info = v
		return nil
	}, strategy)
	if err != nil {
		u.notifier.Notify("Update check failed", "Could not reach the update server, check network connectivity.")
		return nil, NewUpdaterError(ErrRetriesExhausted, err)
	}
	log.Debugf("latest published version is %s", info.Version)
	return info, nil
}

// IsUpdateAvailable reports whether remoteVersion orders strictly after the
// version of the running client.
func (u *Updater) IsUpdateAvailable(remoteVersion string) bool {
	return version.IsNewer(remoteVersion, u.opts.CurrentVersion)
}

// CurrentVersion returns the version the coordinator compares against.
func (u *Updater) CurrentVersion() string {
	return u.opts.CurrentVersion
}

// SubscribeProgress registers f to receive integer download percentages.
// Delivery happens on the transfer goroutine; callers must unsubscribe via
// the returned handle once they are done observing.
func (u *Updater) SubscribeProgress(f func(percent int)) *observer.Subscription[int] {
	return u.progress.Subscribe(f)
}

// DownloadApk downloads the artifact at url into the artifact directory and
// returns the absolute path of the downloaded file. Before downloading it
// removes all but the two most recent previously downloaded artifacts
// (best-effort). Retries up to three times with linearly increasing backoff;
// on exhaustion it emits one failure notification and returns an error
// wrapping ErrRetriesExhausted.
func (u *Updater) DownloadApk(ctx context.Context, url string) (string, error) {
	return u.download(ctx, url, "")
}

// DownloadRelease is DownloadApk for a checked release; when the manifest
// announced a checksum the downloaded artifact is verified against it and a
// mismatch counts as a failed attempt.
func (u *Updater) DownloadRelease(ctx context.Context, info *VersionInfo) (string, error) {
	return u.download(ctx, info.DownloadURL, info.Digest)
}

func (u *Updater) download(ctx context.Context, url string, expected digest.Digest) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.cleanupStaleArtifacts()

	targetPath, err := filepath.Abs(filepath.Join(u.opts.ArtifactDir, artifactName(time.Now())))
	if err != nil {
		return "", err
	}
	strategy := u.newBackoff(downloadBackoffBase, downloadAttempts-1)
	err = backoff.Retry(func() error {
		return u.downloadTo(ctx, url, targetPath, expected)
	}, strategy)
	if err != nil {
		u.notifier.Notify("Update download failed", "Could not download the update, check network connectivity.")
		return "", NewUpdaterError(ErrRetriesExhausted, fmt.Errorf("download failed after %d attempts: %w", downloadAttempts, err))
	}
	log.Infof("downloaded artifact to %s", targetPath)
	return targetPath, nil
}

// downloadTo performs a single download attempt. A failed attempt leaves no
// partial file behind.
func (u *Updater) downloadTo(ctx context.Context, url, targetPath string, expected digest.Digest) (err error) {
	attemptCtx, cancel := context.WithTimeout(ctx, u.opts.DownloadTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return NewUpdaterError(ErrNetworkFailure, err)
	}
	resp, err := u.httpClient.Do(req)
	if err != nil {
		return NewUpdaterError(ErrNetworkFailure, err)
	}
	defer funcutils.PanicOrLogOnErr(resp.Body.Close, false, "failed to close response body")
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return NewUpdaterError(ErrNetworkFailure, errors.New(resp.Status))
	}

	fp, err := os.Create(targetPath)
	if err != nil {
		return err
	}
	w := writerutils.NewSafeFileWriter(fp)
	defer func() {
		if err != nil {
			_ = os.Remove(targetPath)
		}
	}()

	writers := []io.Writer{w, &progressWriter{total: resp.ContentLength, publish: u.progress.Publish}}
	var verifier digest.Verifier
	if expected != "" {
		verifier = expected.Verifier()
		writers = append(writers, verifier)
	}
	_, err = io.Copy(io.MultiWriter(writers...), resp.Body)
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return NewUpdaterError(ErrNetworkFailure, err)
	}
	if verifier != nil && !verifier.Verified() {
		err = NewUpdaterError(ErrDigestMismatch, fmt.Errorf("artifact does not match announced digest %s", expected))
		return err
	}
	return nil
}

// InstallApk hands the artifact at filePath to the platform installer. A
// missing file and a denied unknown-sources permission fail immediately
// without retry; an inconclusive permission state does not block the
// handoff. Every failure emits a notification before it is returned.
func (u *Updater) InstallApk(filePath string) error {
	if err := u.installApk(filePath); err != nil {
		u.notifier.Notify("Install failed", err.Error())
		return err
	}
	return nil
}

func (u *Updater) installApk(filePath string) error {
	exists, isFile, err := fileutils.ExistsAndIsFile(filePath)
	if err != nil {
		return NewUpdaterError(ErrInstallerFailure, err)
	}
	if !exists || !isFile {
		return NewUpdaterError(ErrFileMissing, fmt.Errorf("no installable file at %s", filePath))
	}
	allowed, known := u.installer.UnknownSourcesAllowed()
	if known && !allowed {
		if settingsErr := u.installer.OpenInstallSettings(); settingsErr != nil {
			log.WithError(settingsErr).Warn("failed to open install settings")
		}
		return NewUpdaterError(ErrPermissionDenied, errors.New("installing from unknown sources is disabled, grant the permission in system settings"))
	}
	if err := u.installer.Install(filePath); err != nil {
		return NewUpdaterError(ErrInstallerFailure, err)
	}
	log.Infof("handed %s to the platform installer", filePath)
	return nil
}

// fetchManifest performs a single version-check attempt.
func (u *Updater) fetchManifest(ctx context.Context) (*VersionInfo, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, u.opts.ManifestURL, nil)
	if err != nil {
		return nil, NewUpdaterError(ErrNetworkFailure, err)
	}
	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, NewUpdaterError(ErrNetworkFailure, err)
	}
	defer funcutils.PanicOrLogOnErr(resp.Body.Close, false, "failed to close response body")
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, NewUpdaterError(ErrNetworkFailure, errors.New(resp.Status))
	}

	var manifest apicommon.VersionManifest
	if err := json.NewDecoder(resp.Body).Decode(&manifest); err != nil {
		return nil, NewUpdaterError(ErrParseFailure, err)
	}
	if manifest.Version == "" {
		return nil, NewUpdaterError(ErrParseFailure, errors.New("manifest has no version field"))
	}
	info := &VersionInfo{
		Version:     manifest.Version,
		DownloadURL: u.opts.DownloadURLFunc(manifest.Version),
	}
	if manifest.Sha256 != "" {
		info.Digest = digest.NewDigestFromEncoded(digest.SHA256, manifest.Sha256)
	}
	return info, nil
}
