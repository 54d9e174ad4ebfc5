package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/andystumpf/CalendarToSlack/pkg/domain/model"
)

type settingsRepository struct {
	mu       sync.RWMutex
	settings map[string]*model.UserSettings
}

func newSettingsRepository() *settingsRepository {
	return &settingsRepository{
		settings: make(map[string]*model.UserSettings),
	}
}

func (r *settingsRepository) GetByEmails(ctx context.Context, emails []string) ([]*model.UserSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]*model.UserSettings, 0, len(emails))
	for _, email := range emails {
		if s, ok := r.settings[email]; ok {
			results = append(results, s.Clone())
		}
	}
	return results, nil
}

func (r *settingsRepository) PutStatusMappings(ctx context.Context, settings *model.UserSettings) (*model.UserSettings, error) {
	if err := settings.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid user settings")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.settings[settings.Email]
	if !ok {
		stored = &model.UserSettings{Email: settings.Email}
		r.settings[settings.Email] = stored
	}
	stored.StatusMappings = settings.Clone().StatusMappings

	return stored.Clone(), nil
}

func (r *settingsRepository) PutDefaultStatus(ctx context.Context, settings *model.UserSettings) (*model.UserSettings, error) {
	if err := settings.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid user settings")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.settings[settings.Email]
	if !ok {
		stored = &model.UserSettings{Email: settings.Email}
		r.settings[settings.Email] = stored
	}
	stored.DefaultStatus = settings.Clone().DefaultStatus

	return stored.Clone(), nil
}

func (r *settingsRepository) Put(ctx context.Context, settings *model.UserSettings) error {
	if err := settings.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user settings")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.settings[settings.Email] = settings.Clone()
	return nil
}
