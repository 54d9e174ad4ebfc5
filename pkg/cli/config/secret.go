package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/andystumpf/CalendarToSlack/pkg/domain/interfaces"
	"github.com/andystumpf/CalendarToSlack/pkg/service/secret"
	"github.com/andystumpf/CalendarToSlack/pkg/utils/logging"
)

// Secret configures where the webhook signing secret comes from: Google
// Secret Manager (production) or a static value (development). Exactly one
// source must be set.
type Secret struct {
	secretName   string
	staticSecret string
}

func (x *Secret) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "signing-secret-name",
			Usage:       "Secret Manager resource of the signing secret (projects/<project>/secrets/<name>)",
			Category:    "Secret",
			Sources:     cli.EnvVars("CTS_SIGNING_SECRET_NAME"),
			Destination: &x.secretName,
		},
		&cli.StringFlag{
			Name:        "signing-secret",
			Usage:       "Static signing secret (development only)",
			Category:    "Secret",
			Sources:     cli.EnvVars("CTS_SIGNING_SECRET"),
			Destination: &x.staticSecret,
		},
	}
}

func (x Secret) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("secret-name", x.secretName),
		slog.Int("static-secret.len", len(x.staticSecret)),
	)
}

// Configure builds the secret source. Both sources sit behind the TTL cache
// so a burst of deliveries shares one upstream fetch.
func (x *Secret) Configure(ctx context.Context) (interfaces.SecretSource, error) {
	switch {
	case x.secretName != "" && x.staticSecret != "":
		return nil, goerr.New("only one of --signing-secret-name and --signing-secret can be set")

	case x.secretName != "":
		src, err := secret.NewGoogleSecretManager(ctx, x.secretName)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize secret manager source")
		}
		logging.Default().Info("Using Secret Manager signing secret", "name", x.secretName)
		return secret.NewCache(src), nil

	case x.staticSecret != "":
		logging.Default().Warn("Using static signing secret (development only)")
		return secret.NewCache(secret.Static(x.staticSecret)), nil

	default:
		return nil, goerr.New("signing secret is not configured: set --signing-secret-name or --signing-secret")
	}
}
