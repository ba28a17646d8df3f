package secrets

import "context"

// SecretProvider retrieves secrets from one backend.
type SecretProvider interface {
	// GetSecret returns the value of the named secret.
	GetSecret(ctx context.Context, name string) (string, error)

	// Provider names the backend ("env", "file").
	Provider() string

	// Supports reports whether the provider can serve name.
	Supports(name string) bool
}
