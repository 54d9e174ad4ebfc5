package secret

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/andystumpf/CalendarToSlack/pkg/domain/interfaces"
)

// Static serves a fixed signing secret from process configuration. Meant for
// development and tests.
type Static string

var _ interfaces.SecretSource = Static("")

func (x Static) SigningSecret(ctx context.Context) (string, error) {
	if x == "" {
		return "", goerr.New("signing secret is not configured")
	}
	return string(x), nil
}
