package interfaces

import (
	"context"

	"github.com/andystumpf/CalendarToSlack/pkg/domain/model"
)

// Repository defines the interface for data persistence
type Repository interface {
	Settings() SettingsRepository
	Close() error
}

// SettingsRepository persists per-user settings. The backing store provides
// per-user read-modify-write consistency; the core only hands it already
// mutated in-memory settings.
type SettingsRepository interface {
	// GetByEmails returns the settings for the given emails. Users without
	// stored settings are simply absent from the result.
	GetByEmails(ctx context.Context, emails []string) ([]*model.UserSettings, error)

	// PutStatusMappings persists the status mappings of the given settings
	// and returns the stored state. Idempotent under retry.
	PutStatusMappings(ctx context.Context, settings *model.UserSettings) (*model.UserSettings, error)

	// PutDefaultStatus persists the default status of the given settings,
	// writing an explicit null when it is cleared, and returns the stored
	// state. Idempotent under retry.
	PutDefaultStatus(ctx context.Context, settings *model.UserSettings) (*model.UserSettings, error)

	// Put writes the full settings document. Used by the external
	// authorization flow on first sign-in.
	Put(ctx context.Context, settings *model.UserSettings) error
}
