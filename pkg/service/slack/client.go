package slack

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// client implements Service interface
type client struct {
	api *slack.Client
}

// New creates a new Slack service with the provided bot token
func New(token string) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	return &client{api: slack.New(token)}, nil
}

func (c *client) GetUserProfile(ctx context.Context, userID string) (*UserProfile, error) {
	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get user info", goerr.V("user_id", userID))
	}

	return &UserProfile{
		ID:    user.ID,
		Name:  user.RealName,
		Email: user.Profile.Email,
	}, nil
}

func (c *client) PostMessage(ctx context.Context, channelID, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return goerr.Wrap(err, "failed to post message", goerr.V("channel_id", channelID))
	}
	return nil
}
