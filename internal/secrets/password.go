package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// “Service” groups the engine’s secrets in the OS keychain.
	KeyringService = "leadscout"
)

// GetProxyPassword loads the shared proxy credential from the keychain.
func GetProxyPassword(keyringAccount string) (string, error) {
	if strings.TrimSpace(keyringAccount) != "" {
		pw, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}

	return "", errors.New("proxy password not found (set it in keychain via the API)")
}

func SetProxyPassword(keyringAccount string, password string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, password)
}

func DeleteProxyPassword(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}

// ProxyKeyringAccount derives the keychain account for a proxy username.
func ProxyKeyringAccount(username string) string {
	return fmt.Sprintf("leadscout:proxy:%s", username)
}
