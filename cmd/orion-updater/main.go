package main

import (
	"context"
	"os"

	"github.com/alecthomas/kingpin/v2"
	log "github.com/sirupsen/logrus"

	"github.com/oriontv/orion-updater/configs"
	"github.com/oriontv/orion-updater/internal/pkg/utils/logutils"
	"github.com/oriontv/orion-updater/pkg/updater"
	"github.com/oriontv/orion-updater/pkg/updater/installer"
)

func main() {
	var (
		app = kingpin.New("orion-updater", "Check for, download and install OrionTV updates")

		configPath  = app.Flag("config", "Path to an updater config file").Envar("ORION_CONFIG").ExistingFile()
		serverURL   = app.Flag("server-url", "Base URL of the release server").Envar("ORION_SERVER_URL").String()
		artifactDir = app.Flag("artifact-dir", "Directory downloaded artifacts are written to").Envar("ORION_ARTIFACT_DIR").String()

		// commands
		check       = app.Command("check", "Check whether a newer version is published")
		download    = app.Command("download", "Download the latest artifact if it is newer than the running version")
		install     = app.Command("install", "Hand a downloaded artifact to the platform installer")
		installFile = install.Arg("file", "path to the artifact").Required().String()
		update      = app.Command("update", "Check, download and install in one go")

		// Logging
		logLevel  = app.Flag("log-level", "Log-Level, must be one of [DEBUG, INFO, WARN, ERROR]").Default("INFO").Envar("LOG_LEVEL").Enum("DEBUG", "INFO", "WARN", "ERROR", "debug", "info", "warn", "error")
		logFormat = app.Flag("log-format", "Log-Format, must be one of [TEXT, JSON]").Default("TEXT").Envar("LOG_FORMAT").Enum("TEXT", "JSON")
	)
	app.HelpFlag.Short('h')

	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	logutils.SetLogLevel(*logLevel)
	logutils.SetLogFormat(*logFormat)

	u, err := buildUpdater(*configPath, *serverURL, *artifactDir)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	switch cmd {
	case check.FullCommand():
		if _, ok := checkForUpdate(ctx, u); !ok {
			return
		}
	case download.FullCommand():
		info, ok := checkForUpdate(ctx, u)
		if !ok {
			return
		}
		downloadRelease(ctx, u, info)
	case install.FullCommand():
		if err := u.InstallApk(*installFile); err != nil {
			log.Fatal(err)
		}
	case update.FullCommand():
		info, ok := checkForUpdate(ctx, u)
		if !ok {
			return
		}
		path := downloadRelease(ctx, u, info)
		if err := u.InstallApk(path); err != nil {
			log.Fatal(err)
		}
	}
}

// checkForUpdate fetches the manifest and reports whether the published
// version is newer than the running one.
func checkForUpdate(ctx context.Context, u *updater.Updater) (*updater.VersionInfo, bool) {
	info, err := u.CheckVersion(ctx)
	if err != nil {
		log.Fatal(err)
	}
	if !u.IsUpdateAvailable(info.Version) {
		log.Infof("already up to date (current %s, published %s)", u.CurrentVersion(), info.Version)
		return info, false
	}
	log.Infof("update available: %s -> %s", u.CurrentVersion(), info.Version)
	return info, true
}

func downloadRelease(ctx context.Context, u *updater.Updater, info *updater.VersionInfo) string {
	sub := u.SubscribeProgress(func(percent int) {
		log.Debugf("download progress: %d%%", percent)
	})
	defer sub.Unsubscribe()
	path, err := u.DownloadRelease(ctx, info)
	if err != nil {
		log.Fatal(err)
	}
	log.Infof("artifact written to %s", path)
	return path
}

func buildUpdater(configPath, serverURL, artifactDir string) (*updater.Updater, error) {
	var opts []func(*updater.Updater)
	if configPath != "" {
		cfg, err := configs.LoadUpdaterConfig(configPath)
		if err != nil {
			return nil, err
		}
		if cfg.Server.URL != "" {
			opts = append(opts, updater.WithServerURL(cfg.Server.URL))
		}
		if cfg.Artifacts.Directory != "" {
			opts = append(opts, updater.WithArtifactDir(cfg.Artifacts.Directory))
		}
		opts = append(opts, updater.WithInstaller(&installer.ExecInstaller{
			InstallCommand: cfg.Installer.InstallCommand,
			ProbeCommand:   cfg.Installer.ProbeCommand,
			SettingsTarget: cfg.Installer.SettingsTarget,
		}))
	}
	// flags override the config file
	if serverURL != "" {
		opts = append(opts, updater.WithServerURL(serverURL))
	}
	if artifactDir != "" {
		opts = append(opts, updater.WithArtifactDir(artifactDir))
	}
	return updater.NewUpdater(opts...)
}
