package bootstrap

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/target/order-notify/internal/data/cryptoutil"
)

var errMissingEncryptionKey = errors.New("SECRETS_ENCRYPTION_KEY is required outside development")

// CreateEncryptor creates an AES-GCM encryptor from the configured secret.
// It falls back to the noop encryptor in development when no secret is set.
// Outside development a missing or unusable secret is an error.
//
//nolint:ireturn // Returning interface is intentional for encryptor abstraction
func CreateEncryptor(secret string, isDev bool, logger *slog.Logger) (cryptoutil.Encryptor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(secret) == "" {
		if !isDev {
			return nil, errMissingEncryptionKey
		}
		logger.Warn("encryption key is empty, store tokens are stored unencrypted")
		return cryptoutil.NoopEncryptor{}, nil
	}

	enc, err := cryptoutil.NewFromSecret(secret)
	if err != nil {
		return nil, err
	}
	return enc, nil
}
