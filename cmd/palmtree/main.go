package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli/v3"

	"github.com/brokentusk/palmtree/pkg/gcal"
	"github.com/brokentusk/palmtree/pkg/httpserver"
	"github.com/brokentusk/palmtree/pkg/slackbot"
	"github.com/tzrikka/xdg"
)

const (
	ConfigDirName  = "palmtree"
	ConfigFileName = "config.toml"
)

func main() {
	buildInfo, _ := debug.ReadBuildInfo()
	configFilePath := configFile()

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:  "dev",
			Usage: "simple setup, but unsafe for production",
		},
	}
	flags = append(flags, httpserver.Flags(configFilePath)...)
	flags = append(flags, slackbot.Flags(configFilePath)...)
	flags = append(flags, gcal.Flags(configFilePath)...)

	cmd := &cli.Command{
		Name:    "palmtree",
		Usage:   "Turn Slack /ooo commands into events on a shared Google Calendar",
		Version: buildInfo.Main.Version,
		Flags:   flags,
		Action:  httpserver.Start,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// configFile returns the path to the app's configuration file.
// It also creates an empty file if it doesn't already exist.
func configFile() altsrc.StringSourcer {
	path, err := xdg.CreateFile(xdg.ConfigHome, ConfigDirName, ConfigFileName)
	if err != nil {
		log.Fatal().Err(err).Caller().Send()
	}
	return altsrc.StringSourcer(path)
}
