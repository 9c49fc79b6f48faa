// Package storage resolves installable releases from a directory on disk.
// The release server publishes whatever artifacts are placed there; the file
// name carries the version.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/opencontainers/go-digest"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/oriontv/orion-updater/internal/pkg/utils/funcutils"
	"github.com/oriontv/orion-updater/pkg/version"
)

// ErrNoReleases is returned when the release directory holds no artifacts.
var ErrNoReleases = errors.New("no releases available")

// ErrUnknownArtifact is returned for artifact names that are not published.
var ErrUnknownArtifact = errors.New("unknown artifact")

// releaseFilePattern matches published release files; the capture group is
// the version string.
var releaseFilePattern = regexp.MustCompile(`^OrionTV-([0-9][0-9.]*)\.apk$`)

// Release describes one installable release available on the server.
type Release struct {
	Version  string
	FileName string
}

// FilesystemReleaseStorage serves releases from BasePath.
type FilesystemReleaseStorage struct {
	BasePath string
}

// ListReleases returns all published releases in no particular order.
func (s *FilesystemReleaseStorage) ListReleases() ([]Release, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		return nil, fmt.Errorf("could not list release directory %q: %w", s.BasePath, err)
	}
	releases := lo.FilterMap(entries, func(e os.DirEntry, _ int) (Release, bool) {
		if e.IsDir() {
			return Release{}, false
		}
		m := releaseFilePattern.FindStringSubmatch(e.Name())
		if m == nil {
			return Release{}, false
		}
		return Release{Version: m[1], FileName: e.Name()}, true
	})
	return releases, nil
}

// Latest returns the release with the highest version.
func (s *FilesystemReleaseStorage) Latest() (*Release, error) {
	releases, err := s.ListReleases()
	if err != nil {
		return nil, err
	}
	if len(releases) == 0 {
		return nil, ErrNoReleases
	}
	latest := lo.MaxBy(releases, func(a, b Release) bool {
		return version.Compare(a.Version, b.Version) > 0
	})
	return &latest, nil
}

// Digest computes the sha256 digest of a published release.
func (s *FilesystemReleaseStorage) Digest(r *Release) (digest.Digest, error) {
	fp, err := os.Open(filepath.Join(s.BasePath, r.FileName))
	if err != nil {
		return "", err
	}
	defer funcutils.PanicOrLogOnErr(fp.Close, false, "failed to close release file")
	d, err := digest.FromReader(fp)
	if err != nil {
		return "", err
	}
	return d, nil
}

// Resolve maps a requested artifact file name to its path on disk. Only
// names matching the release pattern resolve, which also keeps requests from
// escaping the release directory.
func (s *FilesystemReleaseStorage) Resolve(fileName string) (string, error) {
	if !releaseFilePattern.MatchString(fileName) {
		return "", ErrUnknownArtifact
	}
	p := filepath.Join(s.BasePath, fileName)
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrUnknownArtifact
		}
		return "", err
	}
	log.Debugf("resolved artifact %q to %q", fileName, p)
	return p, nil
}
