package usecase

import (
	"github.com/andystumpf/CalendarToSlack/pkg/domain/interfaces"
	slacksvc "github.com/andystumpf/CalendarToSlack/pkg/service/slack"
)

type UseCases struct {
	repo         interfaces.Repository
	slackService slacksvc.Service
	installURL   string

	Event *EventUseCases
}

type Option func(*UseCases)

func WithSlackService(svc slacksvc.Service) Option {
	return func(uc *UseCases) {
		uc.slackService = svc
	}
}

// WithInstallURL sets the authorization URL sent to users who have not
// connected their calendar yet. Used verbatim in the prompt.
func WithInstallURL(url string) Option {
	return func(uc *UseCases) {
		uc.installURL = url
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Event = NewEventUseCases(repo, uc.slackService, uc.installURL)

	return uc
}
