// Package cryptoutil seals store access tokens at rest and in the credential cache.
package cryptoutil

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Encryptor seals and opens opaque values.
type Encryptor interface {
	Encrypt(plaintext []byte) (string, error)
	Decrypt(ciphertext string) ([]byte, error)
}

const (
	// Versioned prefix to allow future key/algorithm rotations without data migrations.
	prefixV1   = "v1:"
	noopPrefix = "noop:"

	keySize = 32
)

// ErrUnknownCiphertext is returned for values that carry no recognised prefix.
var ErrUnknownCiphertext = errors.New("unknown ciphertext version")

// DeriveKey turns the configured secret into an AES-256 key. A 64 character
// hex string is used as-is; anything else is hashed with SHA-256.
func DeriveKey(secret string) ([]byte, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("encryption key is required")
	}
	if decoded, err := hex.DecodeString(secret); err == nil && len(decoded) == keySize {
		return decoded, nil
	}
	sum := sha256.Sum256([]byte(secret))
	return sum[:], nil
}

// AESGCMEncryptor implements Encryptor using AES-256-GCM.
type AESGCMEncryptor struct {
	aead cipher.AEAD
}

// NewAESGCMEncryptor constructs a new AESGCMEncryptor. Key must be 32 bytes (AES-256).
func NewAESGCMEncryptor(key []byte) (*AESGCMEncryptor, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("aes-gcm key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AESGCMEncryptor{aead: aead}, nil
}

// NewFromSecret derives a key from secret and returns an AES-GCM encryptor.
func NewFromSecret(secret string) (*AESGCMEncryptor, error) {
	key, err := DeriveKey(secret)
	if err != nil {
		return nil, err
	}
	return NewAESGCMEncryptor(key)
}

// Encrypt seals plaintext with a random nonce and returns "v1:" + base64(nonce||ciphertext).
func (e *AESGCMEncryptor) Encrypt(plaintext []byte) (string, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := e.aead.Seal(nonce, nonce, plaintext, nil)
	return prefixV1 + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt. Values written by NoopEncryptor
// are still readable so tokens stored before a key was configured keep working.
func (e *AESGCMEncryptor) Decrypt(ciphertext string) ([]byte, error) {
	switch {
	case strings.HasPrefix(ciphertext, noopPrefix):
		return NoopEncryptor{}.Decrypt(ciphertext)
	case !strings.HasPrefix(ciphertext, prefixV1):
		return nil, fmt.Errorf("%w (prefix: %s)", ErrUnknownCiphertext, shortPrefix(ciphertext))
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext[len(prefixV1):])
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}
	nonceSize := e.aead.NonceSize()
	if len(data) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}
	return e.aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
}

// NoopEncryptor stores plaintext behind a marker prefix. Used in tests and
// when no encryption key is configured.
type NoopEncryptor struct{}

// Encrypt implements Encryptor.
func (NoopEncryptor) Encrypt(plaintext []byte) (string, error) {
	return noopPrefix + base64.StdEncoding.EncodeToString(plaintext), nil
}

// Decrypt implements Encryptor.
func (NoopEncryptor) Decrypt(ciphertext string) ([]byte, error) {
	if !strings.HasPrefix(ciphertext, noopPrefix) {
		return nil, fmt.Errorf("%w (prefix: %s)", ErrUnknownCiphertext, shortPrefix(ciphertext))
	}
	return base64.StdEncoding.DecodeString(ciphertext[len(noopPrefix):])
}

func shortPrefix(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
