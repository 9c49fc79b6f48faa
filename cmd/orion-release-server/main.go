package main

import (
	"os"

	"github.com/alecthomas/kingpin/v2"
	log "github.com/sirupsen/logrus"

	"github.com/oriontv/orion-updater/configs"
	"github.com/oriontv/orion-updater/internal/pkg/api"
	"github.com/oriontv/orion-updater/internal/pkg/storage"
	"github.com/oriontv/orion-updater/internal/pkg/utils/logutils"
)

func main() {
	var (
		app = kingpin.New("orion-release-server", "Serve OrionTV version manifests and release artifacts")

		configPath  = app.Flag("config", "Path to a release server config file").Envar("ORION_CONFIG").ExistingFile()
		host        = app.Flag("host", "Address the server listens on").Default(":8080").Envar("ORION_HOST").String()
		releasesDir = app.Flag("releases-dir", "Directory release artifacts are published from").Default("./releases").Envar("ORION_RELEASES_DIR").String()

		logLevel  = app.Flag("log-level", "Log-Level, must be one of [DEBUG, INFO, WARN, ERROR]").Default("INFO").Envar("LOG_LEVEL").Enum("DEBUG", "INFO", "WARN", "ERROR", "debug", "info", "warn", "error")
		logFormat = app.Flag("log-format", "Log-Format, must be one of [TEXT, JSON]").Default("TEXT").Envar("LOG_FORMAT").Enum("TEXT", "JSON")
	)
	app.HelpFlag.Short('h')

	kingpin.MustParse(app.Parse(os.Args[1:]))

	logutils.SetLogLevel(*logLevel)
	logutils.SetLogFormat(*logFormat)

	listenHost, dir := *host, *releasesDir
	if *configPath != "" {
		cfg, err := configs.LoadReleaseServerConfig(*configPath)
		if err != nil {
			log.Fatal(err)
		}
		if cfg.Host != "" {
			listenHost = cfg.Host
		}
		if cfg.ReleasesDirectory != "" {
			dir = cfg.ReleasesDirectory
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatal(err)
	}
	r := api.BuildApp(&storage.FilesystemReleaseStorage{BasePath: dir})
	log.Infof("serving releases from %q on %q", dir, listenHost)
	if err := r.Run(listenHost); err != nil {
		log.Fatal(err)
	}
}
