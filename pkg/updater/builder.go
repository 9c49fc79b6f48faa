package updater

import (
	"errors"
	"net/http"
	"time"

	"github.com/oriontv/orion-updater/common"
	"github.com/oriontv/orion-updater/internal/pkg/api/apicommon"
	"github.com/oriontv/orion-updater/internal/pkg/utils/buildurl"
	"github.com/oriontv/orion-updater/internal/pkg/utils/observer"
	"github.com/oriontv/orion-updater/pkg/backoff"
	"github.com/oriontv/orion-updater/pkg/updater/installer"
	"github.com/oriontv/orion-updater/pkg/updater/notify"
)

type updaterOpts struct {
	ManifestURL     string
	DownloadURLFunc func(version string) string
	ArtifactDir     string
	CurrentVersion  string
	DownloadTimeout time.Duration
}

// NewUpdater creates an update coordinator with the provided options.
// Construct one instance at application start and pass it to consumers.
func NewUpdater(options ...func(*Updater)) (*Updater, error) {
	u := &Updater{
		opts: updaterOpts{
			CurrentVersion:  common.Version(),
			DownloadTimeout: 5 * time.Minute,
		},
		httpClient: &http.Client{},
		notifier:   notify.NewLogNotifier(),
		installer:  &installer.ExecInstaller{},
		newBackoff: backoff.NewLinear,
		progress:   observer.NewHub[int](),
	}
	for _, option := range options {
		option(u)
	}
	if u.opts.ManifestURL == "" {
		return nil, errors.New("no manifest URL configured")
	}
	if u.opts.DownloadURLFunc == nil {
		return nil, errors.New("no download URL template configured")
	}
	if u.opts.ArtifactDir == "" {
		return nil, errors.New("no artifact directory configured")
	}
	return u, nil
}

// WithServerURL points the updater at an Orion release server. It derives
// both the manifest URL and the artifact download URL template from the base
// URL.
func WithServerURL(serverURL string) func(*Updater) {
	return func(u *Updater) {
		u.opts.ManifestURL = buildurl.New(
			buildurl.WithBasePath(serverURL),
			buildurl.WithPathElement(apicommon.ApiBasePathV1),
			buildurl.WithPathElement(apicommon.VersionApiPath),
		)
		u.opts.DownloadURLFunc = func(version string) string {
			return buildurl.New(
				buildurl.WithBasePath(serverURL),
				buildurl.WithPathElement(apicommon.ApiBasePathV1),
				buildurl.WithPathElement(apicommon.ArtifactsApiPath),
				buildurl.WithPathElement(apicommon.ReleaseArtifactName(version)),
			)
		}
	}
}

// WithManifestURL sets the URL the version manifest is fetched from.
func WithManifestURL(manifestURL string) func(*Updater) {
	return func(u *Updater) {
		u.opts.ManifestURL = manifestURL
	}
}

// WithDownloadURLFunc sets the template function that derives an artifact
// download URL from a version string.
func WithDownloadURLFunc(f func(version string) string) func(*Updater) {
	return func(u *Updater) {
		u.opts.DownloadURLFunc = f
	}
}

// WithArtifactDir sets the directory downloaded artifacts are written to.
// On device this is the application's private document directory.
func WithArtifactDir(dir string) func(*Updater) {
	return func(u *Updater) {
		u.opts.ArtifactDir = dir
	}
}

// WithCurrentVersion overrides the build-time version of the running client.
func WithCurrentVersion(v string) func(*Updater) {
	return func(u *Updater) {
		u.opts.CurrentVersion = v
	}
}

// WithDownloadTimeout bounds a single download attempt.
func WithDownloadTimeout(d time.Duration) func(*Updater) {
	return func(u *Updater) {
		u.opts.DownloadTimeout = d
	}
}

// WithHTTPClient replaces the HTTP client used for manifest and artifact
// requests.
func WithHTTPClient(c *http.Client) func(*Updater) {
	return func(u *Updater) {
		u.httpClient = c
	}
}

// WithNotifier replaces the user-facing failure notifier.
func WithNotifier(n notify.Notifier) func(*Updater) {
	return func(u *Updater) {
		u.notifier = n
	}
}

// WithInstaller replaces the platform installer handoff.
func WithInstaller(i installer.Installer) func(*Updater) {
	return func(u *Updater) {
		u.installer = i
	}
}

// WithBackoffFactory replaces how per-operation retry strategies are built.
// Tests use it to observe backoff delays instead of sleeping.
func WithBackoffFactory(f func(base time.Duration, maxAttempts uint) backoff.Strategy) func(*Updater) {
	return func(u *Updater) {
		u.newBackoff = f
	}
}
