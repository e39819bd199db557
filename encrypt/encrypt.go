// Package encrypt provides reversible AES-256-GCM encryption and decryption
// utilities for securing provider credentials at rest.
package encrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/arcanahq/arcana/schemas"
	"golang.org/x/crypto/argon2"
)

var encryptionKey []byte
var logger schemas.Logger

var ErrEncryptionKeyNotInitialized = errors.New("encryption key is not initialized")

// Init initializes the encryption key using Argon2id KDF to derive a secure
// 32-byte key from the provided passphrase. This ensures strong entropy
// regardless of passphrase length. An empty passphrase leaves encryption
// disabled: values are stored as plaintext and flagged accordingly.
func Init(key string, _logger schemas.Logger) {
	logger = _logger
	if key == "" {
		logger.Warn("encryption key is not set, provider credentials will be stored as plaintext. Set the ARCANA_ENCRYPTION_KEY environment variable to enable encryption at rest. Once set, the key cannot be changed without re-saving stored credentials.")
		return
	}

	if len(key) < 16 {
		logger.Warn("encryption passphrase is shorter than 16 bytes, consider using a longer passphrase for better security")
	}

	// Fixed salt: this derives a system-wide key, not per-user passwords.
	// Argon2id parameters: time=1, memory=64MB, threads=4, keyLen=32.
	salt := []byte("arcana-encryption-v1-salt-2025")
	encryptionKey = argon2.IDKey([]byte(key), salt, 1, 64*1024, 4, 32)
}

// IsEnabled reports whether an encryption key has been initialized.
func IsEnabled() bool {
	return encryptionKey != nil
}

// Reset clears the encryption key. Intended for tests.
func Reset() {
	encryptionKey = nil
}

// Encrypt encrypts a plaintext string using AES-256-GCM and returns a
// base64-encoded ciphertext. When encryption is disabled the plaintext is
// returned unchanged.
func Encrypt(plaintext string) (string, error) {
	if encryptionKey == nil {
		return plaintext, nil
	}
	if plaintext == "" {
		return "", nil
	}

	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return plaintext, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return plaintext, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return plaintext, fmt.Errorf("failed to read nonce: %w", err)
	}

	ciphertext := aesGCM.Seal(nonce, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt decrypts a base64-encoded ciphertext using AES-256-GCM and returns
// the plaintext.
func Decrypt(ciphertext string) (string, error) {
	if encryptionKey == nil {
		return ciphertext, ErrEncryptionKeyNotInitialized
	}
	if ciphertext == "" {
		return ciphertext, nil
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}

	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonceSize := aesGCM.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertextBytes := data[:nonceSize], data[nonceSize:]

	plaintext, err := aesGCM.Open(nil, nonce, ciphertextBytes, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}

	return string(plaintext), nil
}
