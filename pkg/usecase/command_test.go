package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/andystumpf/CalendarToSlack/pkg/domain/model"
	"github.com/andystumpf/CalendarToSlack/pkg/domain/model/command"
	"github.com/andystumpf/CalendarToSlack/pkg/repository/memory"
	"github.com/andystumpf/CalendarToSlack/pkg/usecase"
)

func seedSettings(t *testing.T, repo *memory.Repository, settings *model.UserSettings) {
	t.Helper()
	gt.NoError(t, repo.Settings().Put(context.Background(), settings)).Required()
}

func TestExecuteCommand_Show(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)
	ctx := context.Background()

	t.Run("empty mappings", func(t *testing.T) {
		settings := &model.UserSettings{Email: "dev@example.com", SlackToken: "xoxp-1"}
		reply, err := uc.Event.ExecuteCommand(ctx, settings, command.Parse("show"))
		gt.NoError(t, err).Required()
		gt.True(t, strings.Contains(reply, "don't have any status mappings yet"))
	})

	t.Run("one line per mapping in insertion order", func(t *testing.T) {
		settings := &model.UserSettings{
			Email:      "dev@example.com",
			SlackToken: "xoxp-1",
			StatusMappings: []model.StatusMapping{
				{CalendarText: "Standup", Status: model.SlackStatus{Text: "In standup", Emoji: "🧍"}},
				{CalendarText: "Focus", Status: model.SlackStatus{Emoji: "🎧"}},
			},
		}
		reply, err := uc.Event.ExecuteCommand(ctx, settings, command.Parse("show"))
		gt.NoError(t, err).Required()

		lines := strings.Split(reply, "\n")
		gt.Array(t, lines).Length(2)
		gt.Value(t, lines[0]).Equal("🧍 `Standup` uses status `In standup`")
		// Status clause omitted when the text is empty
		gt.Value(t, lines[1]).Equal("🎧 `Focus`")
	})
}

func TestExecuteCommand_Set(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a mapping and confirms with the listing", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)
		settings := &model.UserSettings{Email: "dev@example.com", SlackToken: "xoxp-1"}
		seedSettings(t, repo, settings)

		reply, err := uc.Event.ExecuteCommand(ctx, settings, command.Parse(`set meeting="Team Sync" message="In team sync" emoji=📅`))
		gt.NoError(t, err).Required()
		gt.True(t, strings.Contains(reply, "📅 `Team Sync` uses status `In team sync`"))

		stored, err := repo.Settings().GetByEmails(ctx, []string{"dev@example.com"})
		gt.NoError(t, err).Required()
		gt.Array(t, stored).Length(1).Required()
		gt.Array(t, stored[0].StatusMappings).Length(1)
	})

	t.Run("status text falls back to the meeting name", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)
		settings := &model.UserSettings{Email: "dev@example.com", SlackToken: "xoxp-1"}
		seedSettings(t, repo, settings)

		reply, err := uc.Event.ExecuteCommand(ctx, settings, command.Parse(`set meeting="Standup"`))
		gt.NoError(t, err).Required()
		gt.True(t, strings.Contains(reply, "`Standup` uses status `Standup`"))
	})

	t.Run("case-insensitive update does not duplicate", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)
		settings := &model.UserSettings{Email: "dev@example.com", SlackToken: "xoxp-1"}
		seedSettings(t, repo, settings)

		_, err := uc.Event.ExecuteCommand(ctx, settings, command.Parse(`set meeting="Standup"`))
		gt.NoError(t, err).Required()
		_, err = uc.Event.ExecuteCommand(ctx, settings, command.Parse(`set meeting="standup" emoji=🧍`))
		gt.NoError(t, err).Required()

		stored, err := repo.Settings().GetByEmails(ctx, []string{"dev@example.com"})
		gt.NoError(t, err).Required()
		gt.Array(t, stored).Length(1).Required()
		gt.Array(t, stored[0].StatusMappings).Length(1).Required()
		gt.Value(t, stored[0].StatusMappings[0].CalendarText).Equal("Standup")
		gt.Value(t, stored[0].StatusMappings[0].Status.Emoji).Equal("🧍")
	})

	t.Run("missing meeting mutates nothing and returns guidance", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)
		settings := &model.UserSettings{Email: "dev@example.com", SlackToken: "xoxp-1"}
		seedSettings(t, repo, settings)

		reply, err := uc.Event.ExecuteCommand(ctx, settings, command.Parse(`set message="No meeting here"`))
		gt.NoError(t, err).Required()
		gt.True(t, strings.Contains(reply, "which meeting"))

		stored, err := repo.Settings().GetByEmails(ctx, []string{"dev@example.com"})
		gt.NoError(t, err).Required()
		gt.Array(t, stored).Length(1).Required()
		gt.Array(t, stored[0].StatusMappings).Length(0)
	})
}

func TestExecuteCommand_Remove(t *testing.T) {
	ctx := context.Background()

	t.Run("removes case-insensitively", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)
		settings := &model.UserSettings{
			Email:      "dev@example.com",
			SlackToken: "xoxp-1",
			StatusMappings: []model.StatusMapping{
				{CalendarText: "Team Sync", Status: model.SlackStatus{Text: "Syncing"}},
			},
		}
		seedSettings(t, repo, settings)

		reply, err := uc.Event.ExecuteCommand(ctx, settings, command.Parse(`remove meeting="team sync"`))
		gt.NoError(t, err).Required()
		gt.True(t, strings.Contains(reply, "Removed"))

		stored, err := repo.Settings().GetByEmails(ctx, []string{"dev@example.com"})
		gt.NoError(t, err).Required()
		gt.Array(t, stored[0].StatusMappings).Length(0)
	})

	t.Run("absent mapping is a confirmed no-op", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)
		settings := &model.UserSettings{Email: "dev@example.com", SlackToken: "xoxp-1"}
		seedSettings(t, repo, settings)

		reply, err := uc.Event.ExecuteCommand(ctx, settings, command.Parse(`remove meeting="Retro"`))
		gt.NoError(t, err).Required()
		gt.True(t, strings.Contains(reply, "don't have a status mapping for `Retro`"))
	})
}

func TestExecuteCommand_Defaults(t *testing.T) {
	ctx := context.Background()

	t.Run("set-default overwrites wholesale and persists", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)
		settings := &model.UserSettings{
			Email:         "dev@example.com",
			SlackToken:    "xoxp-1",
			DefaultStatus: &model.SlackStatus{Text: "Old", Emoji: "🕰"},
		}
		seedSettings(t, repo, settings)

		_, err := uc.Event.ExecuteCommand(ctx, settings, command.Parse(`set-default emoji=💻`))
		gt.NoError(t, err).Required()

		stored, err := repo.Settings().GetByEmails(ctx, []string{"dev@example.com"})
		gt.NoError(t, err).Required()
		gt.Value(t, stored[0].DefaultStatus).NotNil().Required()
		gt.Value(t, stored[0].DefaultStatus.Text).Equal("")
		gt.Value(t, stored[0].DefaultStatus.Emoji).Equal("💻")
	})

	t.Run("set-default with no arguments mutates nothing", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)
		settings := &model.UserSettings{Email: "dev@example.com", SlackToken: "xoxp-1"}
		seedSettings(t, repo, settings)

		reply, err := uc.Event.ExecuteCommand(ctx, settings, command.Parse("set-default"))
		gt.NoError(t, err).Required()
		gt.True(t, strings.Contains(reply, "`message` and/or `emoji`"))

		stored, err := repo.Settings().GetByEmails(ctx, []string{"dev@example.com"})
		gt.NoError(t, err).Required()
		gt.Value(t, stored[0].DefaultStatus).Nil()
	})

	t.Run("remove-default is idempotent", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)
		settings := &model.UserSettings{
			Email:         "dev@example.com",
			SlackToken:    "xoxp-1",
			DefaultStatus: &model.SlackStatus{Text: "Working"},
		}
		seedSettings(t, repo, settings)

		for range 2 {
			reply, err := uc.Event.ExecuteCommand(ctx, settings, command.Parse("remove-default"))
			gt.NoError(t, err).Required()
			gt.Value(t, reply).Equal("Your default status has been removed.")

			stored, err := repo.Settings().GetByEmails(ctx, []string{"dev@example.com"})
			gt.NoError(t, err).Required()
			gt.Value(t, stored[0].DefaultStatus).Nil()
		}
	})
}

func TestExecuteCommand_Unknown(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)
	settings := &model.UserSettings{Email: "dev@example.com", SlackToken: "xoxp-1"}

	reply, err := uc.Event.ExecuteCommand(context.Background(), settings, command.Parse("dance"))
	gt.NoError(t, err).Required()
	for _, name := range []string{"show", "set", "remove", "set-default", "remove-default"} {
		gt.True(t, strings.Contains(reply, name))
	}
}
