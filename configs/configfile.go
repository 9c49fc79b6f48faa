package configs

import (
	"fmt"
	"os"

	"github.com/oriontv/orion-updater/internal/pkg/utils/fileutils"
)

// UpdaterConfigFile configures the update client.
type UpdaterConfigFile struct {
	Server    ServerConfiguration    `yaml:"server"`
	Artifacts ArtifactConfiguration  `yaml:"artifacts"`
	Installer InstallerConfiguration `yaml:"installer"`
}

// ServerConfiguration points the updater at a release server.
type ServerConfiguration struct {
	URL string `yaml:"url"`
}

// ArtifactConfiguration configures where downloaded artifacts are stored.
type ArtifactConfiguration struct {
	Directory string `yaml:"directory"`
}

// InstallerConfiguration configures the platform installer handoff.
type InstallerConfiguration struct {
	InstallCommand []string `yaml:"install-command"`
	ProbeCommand   []string `yaml:"probe-command"`
	SettingsTarget string   `yaml:"settings-target"`
}

// ReleaseServerConfigFile configures the release server.
type ReleaseServerConfigFile struct {
	Host              string `yaml:"host"`
	ReleasesDirectory string `yaml:"releases-directory"`
}

// LoadUpdaterConfig reads an updater config file from the provided path.
func LoadUpdaterConfig(path string) (*UpdaterConfigFile, error) {
	var cfg UpdaterConfigFile
	ok, err := fileutils.SafeReadYAML(path, &cfg, os.FileMode(0644))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("config file %q is empty", path)
	}
	return &cfg, nil
}

// LoadReleaseServerConfig reads a release server config file from the
// provided path.
func LoadReleaseServerConfig(path string) (*ReleaseServerConfigFile, error) {
	var cfg ReleaseServerConfigFile
	ok, err := fileutils.SafeReadYAML(path, &cfg, os.FileMode(0644))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("config file %q is empty", path)
	}
	return &cfg, nil
}
