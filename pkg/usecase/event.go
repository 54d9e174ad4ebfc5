package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack/slackevents"

	"github.com/andystumpf/CalendarToSlack/pkg/domain/interfaces"
	"github.com/andystumpf/CalendarToSlack/pkg/domain/model/command"
	slacksvc "github.com/andystumpf/CalendarToSlack/pkg/service/slack"
	"github.com/andystumpf/CalendarToSlack/pkg/utils/logging"
)

const msgProfileRetry = "Sorry, I couldn't look up your profile right now. Please try again in a moment."

// EventUseCases handles Slack event callbacks: direct-message commands that
// read and mutate the user's status mappings.
type EventUseCases struct {
	repo         interfaces.Repository
	slackService slacksvc.Service
	installURL   string
}

func NewEventUseCases(repo interfaces.Repository, slackService slacksvc.Service, installURL string) *EventUseCases {
	return &EventUseCases{
		repo:         repo,
		slackService: slackService,
		installURL:   installURL,
	}
}

// HandleCallbackEvent processes one event_callback payload. Only message
// events typed by a human in a direct-message channel are handled; anything
// else is logged and skipped. The returned bool reports whether the event
// was processed, so the controller can acknowledge skipped events with an
// empty body.
//
// User-facing problems (unresolvable profile, missing authorization) are
// answered in the DM and are not errors: the webhook delivery itself
// succeeded.
func (uc *EventUseCases) HandleCallbackEvent(ctx context.Context, event *slackevents.EventsAPIEvent) (bool, error) {
	logger := logging.From(ctx)

	msg, ok := event.InnerEvent.Data.(*slackevents.MessageEvent)
	if !ok {
		logger.Info("ignoring non-message event", "inner_type", event.InnerEvent.Type)
		return false, nil
	}

	if msg.ChannelType != "im" {
		logger.Info("ignoring message outside direct-message channel",
			"channel", msg.Channel,
			"channel_type", msg.ChannelType,
		)
		return false, nil
	}

	// Messages with a subtype (bot_message, message_changed, ...) or without
	// an originating user are not user commands. Replying to our own replies
	// would loop forever.
	if msg.SubType != "" || msg.BotID != "" || msg.User == "" {
		logger.Info("ignoring non-user message",
			"subtype", msg.SubType,
			"bot_id", msg.BotID,
		)
		return false, nil
	}

	profile, err := uc.slackService.GetUserProfile(ctx, msg.User)
	if err != nil || profile == nil || profile.Email == "" {
		if err != nil {
			logger.Warn("failed to resolve user profile", "user", msg.User, "error", err.Error())
		}
		if err := uc.slackService.PostMessage(ctx, msg.Channel, msgProfileRetry); err != nil {
			return true, goerr.Wrap(err, "failed to post profile-retry reply", goerr.V("channel", msg.Channel))
		}
		return true, nil
	}

	settingsList, err := uc.repo.Settings().GetByEmails(ctx, []string{profile.Email})
	if err != nil {
		return true, goerr.Wrap(err, "failed to get user settings", goerr.V("email", profile.Email))
	}

	if len(settingsList) == 0 || !settingsList[0].Authorized() {
		prompt := fmt.Sprintf("Looks like you haven't connected your calendar yet. Visit %s to get set up.", uc.installURL)
		if err := uc.slackService.PostMessage(ctx, msg.Channel, prompt); err != nil {
			return true, goerr.Wrap(err, "failed to post authorization prompt", goerr.V("channel", msg.Channel))
		}
		return true, nil
	}

	settings := settingsList[0]

	reply, err := uc.ExecuteCommand(ctx, settings, command.Parse(msg.Text))
	if err != nil {
		return true, goerr.Wrap(err, "failed to execute command",
			goerr.V("email", profile.Email),
			goerr.V("text", msg.Text),
		)
	}

	if err := uc.slackService.PostMessage(ctx, msg.Channel, reply); err != nil {
		return true, goerr.Wrap(err, "failed to post command reply", goerr.V("channel", msg.Channel))
	}

	logger.Info("handled command message",
		"user", msg.User,
		"channel", msg.Channel,
	)
	return true, nil
}
