package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/andystumpf/CalendarToSlack/pkg/domain/model"
	"github.com/andystumpf/CalendarToSlack/pkg/domain/model/command"
)

const (
	msgNoMappings = "You don't have any status mappings yet. Try `set meeting=\"Team Sync\" message=\"In team sync\" emoji=🗓` to create one."

	msgSetGuidance = "Please tell me which meeting this status is for. " +
		"Example: `set meeting=\"Team Sync\" message=\"In team sync\" emoji=🗓`"

	msgRemoveGuidance = "Please tell me which meeting to remove. " +
		"Example: `remove meeting=\"Team Sync\"`"

	msgSetDefaultGuidance = "Please provide a `message` and/or `emoji` for your default status. " +
		"Example: `set-default message=\"Working\" emoji=💻`"

	msgDefaultRemoved = "Your default status has been removed."

	msgHelp = "Sorry, I don't understand that. Here's what I can do:\n" +
		"• `show`\n" +
		"• `set meeting=\"Team Sync\" message=\"In team sync\" emoji=🗓`\n" +
		"• `remove meeting=\"Team Sync\"`\n" +
		"• `set-default message=\"Working\" emoji=💻`\n" +
		"• `remove-default`"
)

// ExecuteCommand runs a parsed command against the user's settings and
// returns the reply text. Validation failures produce a guidance reply and
// leave the settings untouched; only persistence failures surface as errors.
func (uc *EventUseCases) ExecuteCommand(ctx context.Context, settings *model.UserSettings, cmd command.Command) (string, error) {
	switch cmd.Kind {
	case command.KindShow:
		return renderMappings(settings), nil

	case command.KindSet:
		return uc.setMapping(ctx, settings, cmd.Args)

	case command.KindRemove:
		return uc.removeMapping(ctx, settings, cmd.Args)

	case command.KindSetDefault:
		return uc.setDefaultStatus(ctx, settings, cmd.Args)

	case command.KindRemoveDefault:
		return uc.removeDefaultStatus(ctx, settings)

	default:
		return msgHelp, nil
	}
}

func (uc *EventUseCases) setMapping(ctx context.Context, settings *model.UserSettings, args command.Arguments) (string, error) {
	if args.Meeting == "" {
		return msgSetGuidance, nil
	}

	// A mapping always displays some text: fall back to the meeting name
	// when no message is given.
	text := args.Message
	if text == "" {
		text = args.Meeting
	}

	settings.UpsertMapping(args.Meeting, model.SlackStatus{
		Text:  text,
		Emoji: args.Emoji,
	})

	updated, err := uc.repo.Settings().PutStatusMappings(ctx, settings)
	if err != nil {
		return "", goerr.Wrap(err, "failed to persist status mappings", goerr.V("email", settings.Email))
	}

	return renderMappings(updated), nil
}

func (uc *EventUseCases) removeMapping(ctx context.Context, settings *model.UserSettings, args command.Arguments) (string, error) {
	if args.Meeting == "" {
		return msgRemoveGuidance, nil
	}

	if !settings.RemoveMapping(args.Meeting) {
		return fmt.Sprintf("You don't have a status mapping for `%s`.", args.Meeting), nil
	}

	if _, err := uc.repo.Settings().PutStatusMappings(ctx, settings); err != nil {
		return "", goerr.Wrap(err, "failed to persist status mappings", goerr.V("email", settings.Email))
	}

	return fmt.Sprintf("Removed the status mapping for `%s`.", args.Meeting), nil
}

func (uc *EventUseCases) setDefaultStatus(ctx context.Context, settings *model.UserSettings, args command.Arguments) (string, error) {
	status := model.SlackStatus{
		Text:  args.Message,
		Emoji: args.Emoji,
	}
	if status.IsEmpty() {
		return msgSetDefaultGuidance, nil
	}

	settings.SetDefaultStatus(status)

	updated, err := uc.repo.Settings().PutDefaultStatus(ctx, settings)
	if err != nil {
		return "", goerr.Wrap(err, "failed to persist default status", goerr.V("email", settings.Email))
	}

	return fmt.Sprintf("Your default status is now %s `%s`.", updated.DefaultStatus.Emoji, updated.DefaultStatus.Text), nil
}

func (uc *EventUseCases) removeDefaultStatus(ctx context.Context, settings *model.UserSettings) (string, error) {
	settings.ClearDefaultStatus()

	if _, err := uc.repo.Settings().PutDefaultStatus(ctx, settings); err != nil {
		return "", goerr.Wrap(err, "failed to persist default status", goerr.V("email", settings.Email))
	}

	return msgDefaultRemoved, nil
}

// renderMappings serializes the mappings in insertion order, one line per
// mapping. The "uses status" clause is omitted when the status text is
// empty.
func renderMappings(settings *model.UserSettings) string {
	if len(settings.StatusMappings) == 0 {
		return msgNoMappings
	}

	lines := make([]string, 0, len(settings.StatusMappings))
	for _, m := range settings.StatusMappings {
		line := fmt.Sprintf("%s `%s`", m.Status.Emoji, m.CalendarText)
		if m.Status.Text != "" {
			line += fmt.Sprintf(" uses status `%s`", m.Status.Text)
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}
