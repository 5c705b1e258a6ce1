package slackbot

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

// Flags defines CLI flags to configure the Slack client. These flags can
// also be set using environment variables and the application's
// configuration file.
func Flags(configFilePath altsrc.StringSourcer) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "slack-bot-token",
			Usage: "Slack bot token for Web API calls",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("SLACK_TOKEN"),
				toml.TOML("slack.bot_token", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "slack-signing-secret",
			Usage: "secret used to verify inbound request signatures",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("BOT_SIGNING_SECRET"),
				toml.TOML("slack.signing_secret", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "slack-broadcast-channel",
			Usage: "channel to announce new OOO events in (empty disables the broadcast)",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("OOO_BROADCAST_CHANNEL"),
				toml.TOML("slack.broadcast_channel", configFilePath),
			),
		},
	}
}
