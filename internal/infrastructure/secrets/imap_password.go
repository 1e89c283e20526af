package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups the tracker's secrets in the OS keychain
const KeyringService = "flight-price-tracker"

// IMAPPassword returns password when set, else the keychain entry for keyringAccount
func IMAPPassword(password, keyringAccount string) (string, error) {
	if strings.TrimSpace(password) != "" {
		return password, nil
	}
	if strings.TrimSpace(keyringAccount) == "" {
		return "", errors.New("IMAP password not found (set IMAP_PASSWORD or IMAP_KEYRING_ACCOUNT)")
	}

	pw, err := keyring.Get(KeyringService, keyringAccount)
	if err != nil {
		return "", fmt.Errorf("read IMAP password from keychain: %w", err)
	}
	if strings.TrimSpace(pw) == "" {
		return "", fmt.Errorf("keychain entry %q is empty", keyringAccount)
	}
	return pw, nil
}

// SetIMAPPassword stores password in the OS keychain under keyringAccount
func SetIMAPPassword(keyringAccount, password string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, password)
}
