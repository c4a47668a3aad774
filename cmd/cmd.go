// Package cmd wires the protocol engine to a terminal frontend.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/SprintFox/Kitsunet-Share/config"
	"github.com/SprintFox/Kitsunet-Share/core"
	"github.com/SprintFox/Kitsunet-Share/logger"
	"github.com/common-nighthawk/go-figure"
	"github.com/urfave/cli/v3"
)

func New() *cli.Command {
	return &cli.Command{
		Name:    "kitsunet",
		Usage:   "peer-to-peer local area network file sharing",
		Version: core.VERSION,
		Action:  rootAction,
		Commands: []*cli.Command{
			serveCommand(),
			sendCommand(),
			peersCommand(),
			interfacesCommand(),
			configCommand(),
		},
	}
}

func rootAction(ctx context.Context, cmd *cli.Command) error {
	figure.NewFigure("kitsunet", "", true).Print()

	fmt.Println()

	return cli.ShowAppHelp(cmd)
}

// newLogger builds a file-backed logger. With no explicit path it logs
// under the home directory, staying off the terminal the prompts and
// bars draw on.
func newLogger(path string) logger.Logger {
	log := logger.New()

	if path == "" {
		defaultPath, err := logger.LogPath("logs")
		if err != nil {
			return log
		}
		path = defaultPath
	}

	log.Init(path)
	return log
}

func loadSettings(log logger.Logger) core.Settings {
	path, err := config.DefaultPath()
	if err != nil {
		log.WithStr("error", err.Error()).Warn("failed to resolve settings path, using defaults")
		return core.DefaultSettings()
	}

	settings, err := config.Load(path)
	if err != nil {
		log.WithStr("error", err.Error()).Warn("failed to load settings, using defaults")
	}

	return settings
}

func homeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "./"
	}

	return homeDir
}

func defaultDownloadDir() string {
	return filepath.Join(homeDir(), "Downloads")
}
