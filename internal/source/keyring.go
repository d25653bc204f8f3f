package source

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/rebeliceyang/lazylist/internal/models"
)

// KeyringService is the OS keyring service name for stored database passwords
const KeyringService = "lazylist"

// KeyringAccount identifies a connection's password in the keyring
func KeyringAccount(c models.ConnectionConfig) string {
	return fmt.Sprintf("%s@%s:%d/%s", c.User, c.Host, c.Port, c.Database)
}

// ResolvePassword returns the configured password, falling back to the OS keyring.
// A missing keyring entry is not an error.
func ResolvePassword(c models.ConnectionConfig) (string, error) {
	if c.Password != "" {
		return c.Password, nil
	}

	password, err := keyring.Get(KeyringService, KeyringAccount(c))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read password from keyring: %w", err)
	}
	return password, nil
}

// StorePassword saves a connection's password in the OS keyring
func StorePassword(c models.ConnectionConfig, password string) error {
	if err := keyring.Set(KeyringService, KeyringAccount(c), password); err != nil {
		return fmt.Errorf("failed to store password in keyring: %w", err)
	}
	return nil
}

// ForgetPassword removes a connection's password from the OS keyring
func ForgetPassword(c models.ConnectionConfig) error {
	err := keyring.Delete(KeyringService, KeyringAccount(c))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete password from keyring: %w", err)
	}
	return nil
}
