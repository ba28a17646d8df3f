package main

import (
	"context"
	"errors"
	"fmt"

	"mercator-hq/relay/pkg/config"
	"mercator-hq/relay/pkg/security/auth"
	"mercator-hq/relay/pkg/security/secrets"
)

// newSecretManager resolves from the secrets directory first, when one is
// configured, then from prefixed environment variables.
func newSecretManager(cfg *config.SecretsConfig) (*secrets.Manager, error) {
	var providers []secrets.SecretProvider
	if cfg.Dir != "" {
		fp, err := secrets.NewFileProvider(cfg.Dir)
		if err != nil {
			return nil, err
		}
		providers = append(providers, fp)
	}
	providers = append(providers, secrets.NewEnvProvider(cfg.EnvPrefix))
	return secrets.NewManager(providers...), nil
}

// resolveCredentials replaces ${secret:name} references in the upstream
// credentials and the API keys in place.
func resolveCredentials(ctx context.Context, cfg *config.Config) error {
	manager, err := newSecretManager(&cfg.Security.Secrets)
	if err != nil {
		return err
	}

	fields := []struct {
		name  string
		value *string
	}{
		{"upstream.username", &cfg.Upstream.Username},
		{"upstream.password", &cfg.Upstream.Password},
	}
	for i := range cfg.Security.Auth.APIKeys {
		fields = append(fields, struct {
			name  string
			value *string
		}{fmt.Sprintf("security.auth.api_keys[%d].key", i), &cfg.Security.Auth.APIKeys[i].Key})
	}

	var errs []error
	for _, f := range fields {
		if !secrets.HasReference(*f.value) {
			continue
		}
		resolved, err := manager.ResolveReferences(ctx, *f.value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.name, err))
			continue
		}
		*f.value = resolved
	}
	return errors.Join(errs...)
}

// newAuthValidator returns nil when no API keys are configured.
func newAuthValidator(cfg *config.AuthConfig) *auth.APIKeyValidator {
	if len(cfg.APIKeys) == 0 {
		return nil
	}
	keys := make([]auth.APIKey, 0, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		keys = append(keys, auth.APIKey{Name: k.Name, Key: k.Key, Enabled: !k.Disabled})
	}
	return auth.NewAPIKeyValidator(keys)
}
