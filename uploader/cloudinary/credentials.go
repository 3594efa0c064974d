package cloudinary

import (
	"errors"
	"fmt"

	"github.com/ryanwalloh/assetkit/logger"
	"github.com/zalando/go-keyring"
)

// KeyringService is the service name the API secret is stored under.
const KeyringService = "assetkit-cloudinary"

// ErrMissingCredentials is returned when the cloud name, API key or secret is unset.
var ErrMissingCredentials = errors.New("cloudinary credentials are missing")

// Credentials identify a Cloudinary account.
type Credentials struct {
	CloudName string
	APIKey    string
	APISecret string
}

// Validate reports which credential values are missing.
func (c Credentials) Validate() error {
	var missing []string
	if c.CloudName == "" {
		missing = append(missing, "CLOUDINARY_CLOUD_NAME")
	}
	if c.APIKey == "" {
		missing = append(missing, "CLOUDINARY_API_KEY")
	}
	if c.APISecret == "" {
		missing = append(missing, "CLOUDINARY_API_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrMissingCredentials, missing)
	}
	return nil
}

// WithKeyringSecret fills an empty secret from the OS keyring, keyed by the API key.
func (c Credentials) WithKeyringSecret() Credentials {
	if c.APISecret != "" || c.APIKey == "" {
		return c
	}
	secret, err := keyring.Get(KeyringService, c.APIKey)
	if err != nil {
		// Not found is the normal first-run case
		if !errors.Is(err, keyring.ErrNotFound) {
			logger.Warn("Failed to read API secret from keyring: %v", err)
		}
		return c
	}
	c.APISecret = secret
	return c
}

// StoreSecret saves the API secret for apiKey in the OS keyring.
func StoreSecret(apiKey string, secret string) error {
	if apiKey == "" {
		return fmt.Errorf("%w: api key is required to store a secret", ErrMissingCredentials)
	}
	if err := keyring.Set(KeyringService, apiKey, secret); err != nil {
		return fmt.Errorf("failed to store API secret in keyring: %w", err)
	}
	return nil
}

// DeleteSecret removes the stored API secret for apiKey. A missing entry is not an error.
func DeleteSecret(apiKey string) error {
	err := keyring.Delete(KeyringService, apiKey)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete API secret from keyring: %w", err)
	}
	return nil
}
