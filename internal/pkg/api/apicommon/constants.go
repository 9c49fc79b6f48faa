package apicommon

import "fmt"

// ApiBasePathV1 is the base path for version 1 of the release API.
const ApiBasePathV1 = "api/v1"

// VersionApiPath is the sub path that serves the version manifest.
const VersionApiPath = "version"

// ArtifactsApiPath is the sub path that serves installable artifacts.
const ArtifactsApiPath = "artifacts"

// ReleaseArtifactName returns the file name under which a release of the
// given version is published.
func ReleaseArtifactName(version string) string {
	return fmt.Sprintf("OrionTV-%s.apk", version)
}
