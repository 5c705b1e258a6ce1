package httpserver

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

const DefaultPort = 8080

// Flags defines CLI flags to configure the HTTP server. These flags can
// also be set using environment variables and the application's
// configuration file.
func Flags(configFilePath altsrc.StringSourcer) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "http-port",
			Usage: "port for inbound Slack webhooks",
			Value: DefaultPort,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("PORT"),
				toml.TOML("server.port", configFilePath),
			),
		},
	}
}
