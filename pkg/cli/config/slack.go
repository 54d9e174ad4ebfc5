package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	slacksvc "github.com/andystumpf/CalendarToSlack/pkg/service/slack"
)

type Slack struct {
	botToken string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (for user profile lookup and replies)",
			Category:    "Slack",
			Sources:     cli.EnvVars("CTS_SLACK_BOT_TOKEN"),
			Destination: &x.botToken,
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
	)
}

// Configure creates the Slack service from the bot token
func (x *Slack) Configure() (slacksvc.Service, error) {
	if x.botToken == "" {
		return nil, goerr.New("Slack bot token is required: set --slack-bot-token")
	}
	return slacksvc.New(x.botToken)
}
