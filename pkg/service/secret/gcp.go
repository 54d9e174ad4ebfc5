package secret

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	secretmanager "google.golang.org/api/secretmanager/v1"

	"github.com/andystumpf/CalendarToSlack/pkg/domain/interfaces"
)

// GoogleSecretManager retrieves the signing secret from Google Secret
// Manager. The secret name is the full resource path
// (projects/<project>/secrets/<name>); the latest version is accessed on
// each fetch.
type GoogleSecretManager struct {
	svc  *secretmanager.Service
	name string
}

var _ interfaces.SecretSource = &GoogleSecretManager{}

func NewGoogleSecretManager(ctx context.Context, name string) (*GoogleSecretManager, error) {
	if name == "" {
		return nil, goerr.New("secret name is required")
	}

	svc, err := secretmanager.NewService(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create secret manager service")
	}

	return &GoogleSecretManager{
		svc:  svc,
		name: strings.TrimSuffix(name, "/"),
	}, nil
}

func (x *GoogleSecretManager) SigningSecret(ctx context.Context) (string, error) {
	version := x.name + "/versions/latest"

	resp, err := x.svc.Projects.Secrets.Versions.Access(version).Context(ctx).Do()
	if err != nil {
		return "", goerr.Wrap(err, "failed to access secret version", goerr.V("name", x.name))
	}
	if resp.Payload == nil {
		return "", goerr.New("secret version has no payload", goerr.V("name", x.name))
	}

	data, err := base64.StdEncoding.DecodeString(resp.Payload.Data)
	if err != nil {
		return "", goerr.Wrap(err, "failed to decode secret payload", goerr.V("name", x.name))
	}

	return string(data), nil
}
