// Package secrets encrypts the Bitpanda API key at rest with fernet tokens.
package secrets

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fernet/fernet-go"
)

// ErrInvalidToken is returned when a token cannot be verified with the key.
var ErrInvalidToken = errors.New("invalid or tampered token")

// tokens are long lived; a stored key does not expire
const tokenTTL = 100 * 365 * 24 * time.Hour

// GenerateKey returns a new base64 encoded fernet key.
func GenerateKey() (string, error) {
	var k fernet.Key
	if err := k.Generate(); err != nil {
		return "", fmt.Errorf("generating key: %w", err)
	}
	return k.Encode(), nil
}

// Encrypt returns a fernet token for plaintext.
func Encrypt(key, plaintext string) (string, error) {
	k, err := fernet.DecodeKey(strings.TrimSpace(key))
	if err != nil {
		return "", fmt.Errorf("decoding key: %w", err)
	}
	tok, err := fernet.EncryptAndSign([]byte(plaintext), k)
	if err != nil {
		return "", fmt.Errorf("encrypting: %w", err)
	}
	return string(tok), nil
}

// Decrypt verifies token with key and returns the plaintext.
func Decrypt(key, token string) (string, error) {
	k, err := fernet.DecodeKey(strings.TrimSpace(key))
	if err != nil {
		return "", fmt.Errorf("decoding key: %w", err)
	}
	msg := fernet.VerifyAndDecrypt([]byte(strings.TrimSpace(token)), tokenTTL, []*fernet.Key{k})
	if msg == nil {
		return "", ErrInvalidToken
	}
	return string(msg), nil
}
