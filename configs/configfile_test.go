package configs

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/oriontv/orion-updater/examples"
)

func Test_UpdaterConfigExample(t *testing.T) {
	configYAML := examples.UpdaterExampleConfig()
	var cfg UpdaterConfigFile
	decoder := yaml.NewDecoder(strings.NewReader(configYAML))
	decoder.KnownFields(true)
	err := decoder.Decode(&cfg)
	if err != nil {
		t.Fatalf("Error parsing updater config file: %v", err)
	}
	if cfg.Server.URL == "" {
		t.Error("expected example config to set a server URL")
	}
	if cfg.Artifacts.Directory == "" {
		t.Error("expected example config to set an artifact directory")
	}
}

func Test_ReleaseServerConfigExample(t *testing.T) {
	configYAML := examples.ReleaseServerExampleConfig()
	var cfg ReleaseServerConfigFile
	decoder := yaml.NewDecoder(strings.NewReader(configYAML))
	decoder.KnownFields(true)
	err := decoder.Decode(&cfg)
	if err != nil {
		t.Fatalf("Error parsing release server config file: %v", err)
	}
	if cfg.Host == "" {
		t.Error("expected example config to set a host")
	}
}
