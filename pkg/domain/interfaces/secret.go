package interfaces

import "context"

// SecretSource retrieves the webhook signing secret. Retrieval failures must
// be treated by callers as authentication failures, never as a pass.
type SecretSource interface {
	SigningSecret(ctx context.Context) (string, error)
}
