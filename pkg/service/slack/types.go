package slack

import "context"

// UserProfile is the subset of a Slack user profile the bot needs. Email is
// the identity key that settings are stored under.
type UserProfile struct {
	ID    string
	Name  string
	Email string
}

// Service is the narrow contract to the Slack Web API
type Service interface {
	// GetUserProfile resolves a Slack user ID to a profile. A user the API
	// cannot resolve yields an error; a resolvable user without an email
	// yields a profile with an empty Email.
	GetUserProfile(ctx context.Context, userID string) (*UserProfile, error)

	// PostMessage sends a plain-text message to the given channel
	PostMessage(ctx context.Context, channelID, text string) error
}
