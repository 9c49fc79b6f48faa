package updater

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// keepArtifacts is how many previously downloaded artifacts survive a
// cleanup pass.
const keepArtifacts = 2

// artifactPattern matches downloaded artifact files; the capture group is
// the unix-millisecond timestamp embedded at download time.
var artifactPattern = regexp.MustCompile(`^OrionTV_v(\d+)\.apk$`)

// artifactName returns the file name for an artifact downloaded at ts.
func artifactName(ts time.Time) string {
	return fmt.Sprintf("OrionTV_v%d.apk", ts.UnixMilli())
}

type staleArtifact struct {
	name      string
	timestamp int64
}

// cleanupStaleArtifacts removes all but the two most recently downloaded
// artifacts from the artifact directory. Cleanup is best-effort: deletion
// failures are logged and swallowed, they never block a download.
func (u *Updater) cleanupStaleArtifacts() {
	entries, err := os.ReadDir(u.opts.ArtifactDir)
	if err != nil {
		log.WithError(err).Warn("could not list artifact directory, skipping cleanup")
		return
	}
	artifacts := lo.FilterMap(entries, func(e os.DirEntry, _ int) (staleArtifact, bool) {
		if e.IsDir() {
			return staleArtifact{}, false
		}
		m := artifactPattern.FindStringSubmatch(e.Name())
		if m == nil {
			return staleArtifact{}, false
		}
		ts, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return staleArtifact{}, false
		}
		return staleArtifact{name: e.Name(), timestamp: ts}, true
	})
	if len(artifacts) <= keepArtifacts {
		return
	}
	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].timestamp > artifacts[j].timestamp
	})
	for _, a := range artifacts[keepArtifacts:] {
		p := filepath.Join(u.opts.ArtifactDir, a.name)
		if err := os.Remove(p); err != nil {
			log.WithError(err).Warnf("failed to delete stale artifact %s", a.name)
			continue
		}
		log.Debugf("deleted stale artifact %s", a.name)
	}
}
