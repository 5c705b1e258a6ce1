package gcal

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

// Flags defines CLI flags to configure the Google Calendar client. These
// flags can also be set using environment variables and the
// application's configuration file.
func Flags(configFilePath altsrc.StringSourcer) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "calendar-id",
			Usage: "ID of the shared OOO calendar",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("OOO_CALENDAR_ID"),
				toml.TOML("google.calendar_id", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "google-service-account-key",
			Usage: "base64-encoded service account key (JSON)",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("B64_SA_KEY_FILE"),
				toml.TOML("google.service_account_key", configFilePath),
			),
		},
	}
}
