package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/andystumpf/CalendarToSlack/pkg/domain/model"
)

const settingsCollection = "user_settings"

type settingsRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newSettingsRepository(client *firestore.Client) *settingsRepository {
	return &settingsRepository{client: client}
}

func (r *settingsRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + settingsCollection)
}

// GetByEmails fetches settings documents by ID. Documents are keyed by the
// user's email; missing users are skipped, not an error.
func (r *settingsRepository) GetByEmails(ctx context.Context, emails []string) ([]*model.UserSettings, error) {
	results := make([]*model.UserSettings, 0, len(emails))

	for _, email := range emails {
		doc, err := r.collection().Doc(email).Get(ctx)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				continue
			}
			return nil, goerr.Wrap(err, "failed to get user settings from firestore", goerr.V("email", email))
		}

		var settings model.UserSettings
		if err := doc.DataTo(&settings); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal user settings", goerr.V("email", email))
		}
		settings.Email = email
		results = append(results, &settings)
	}

	return results, nil
}

// PutStatusMappings merges only the status_mappings field so concurrent
// writers of other fields are not clobbered. The write is a plain overwrite
// of the field, so retries are idempotent.
func (r *settingsRepository) PutStatusMappings(ctx context.Context, settings *model.UserSettings) (*model.UserSettings, error) {
	if err := settings.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid user settings")
	}

	mappings := settings.StatusMappings
	if mappings == nil {
		mappings = []model.StatusMapping{}
	}

	docRef := r.collection().Doc(settings.Email)
	if _, err := docRef.Set(ctx, map[string]any{
		"email":           settings.Email,
		"status_mappings": mappings,
	}, firestore.MergeAll); err != nil {
		return nil, goerr.Wrap(err, "failed to put status mappings to firestore", goerr.V("email", settings.Email))
	}

	return r.getOne(ctx, settings.Email)
}

// PutDefaultStatus merges only the default_status field. A cleared default
// is written as an explicit null, never left dangling half-populated.
func (r *settingsRepository) PutDefaultStatus(ctx context.Context, settings *model.UserSettings) (*model.UserSettings, error) {
	if err := settings.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid user settings")
	}

	var defaultStatus any
	if settings.DefaultStatus != nil {
		defaultStatus = *settings.DefaultStatus
	}

	docRef := r.collection().Doc(settings.Email)
	if _, err := docRef.Set(ctx, map[string]any{
		"email":          settings.Email,
		"default_status": defaultStatus,
	}, firestore.MergeAll); err != nil {
		return nil, goerr.Wrap(err, "failed to put default status to firestore", goerr.V("email", settings.Email))
	}

	return r.getOne(ctx, settings.Email)
}

func (r *settingsRepository) Put(ctx context.Context, settings *model.UserSettings) error {
	if err := settings.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user settings")
	}

	if _, err := r.collection().Doc(settings.Email).Set(ctx, settings); err != nil {
		return goerr.Wrap(err, "failed to put user settings to firestore", goerr.V("email", settings.Email))
	}
	return nil
}

func (r *settingsRepository) getOne(ctx context.Context, email string) (*model.UserSettings, error) {
	doc, err := r.collection().Doc(email).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "user settings not found", goerr.V("email", email))
		}
		return nil, goerr.Wrap(err, "failed to get user settings from firestore", goerr.V("email", email))
	}

	var settings model.UserSettings
	if err := doc.DataTo(&settings); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal user settings", goerr.V("email", email))
	}
	settings.Email = email
	return &settings, nil
}
