package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// Sealer encrypts the user code carried by the identity cookie so a
// returning browser can be re-attached to its account without storing
// the code in the clear.
type Sealer struct {
	key []byte
}

// NewSealer derives the sealing key from the first 32 bytes of the
// application secret.
func NewSealer(secret string) (*Sealer, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("sealer secret must be at least 32 bytes")
	}
	return &Sealer{key: []byte(secret[:32])}, nil
}

// Seal encrypts plaintext with AES-CFB under a fresh IV and returns
// base64(iv + ciphertext).
func (s *Sealer) Seal(plaintext string) (string, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to init cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	data := []byte(plaintext)
	out := make([]byte, aes.BlockSize+len(data))
	copy(out, iv)
	cipher.NewCFBEncrypter(block, iv).XORKeyStream(out[aes.BlockSize:], data)

	return base64.URLEncoding.EncodeToString(out), nil
}

// Open decrypts a sealed value. Tampered or truncated values error.
func (s *Sealer) Open(sealed string) (string, error) {
	raw, err := base64.URLEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("failed to decode sealed value: %w", err)
	}
	if len(raw) < aes.BlockSize {
		return "", fmt.Errorf("sealed value too short")
	}

	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to init cipher: %w", err)
	}

	iv, ciphertext := raw[:aes.BlockSize], raw[aes.BlockSize:]
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCFBDecrypter(block, iv).XORKeyStream(plaintext, ciphertext)

	return string(plaintext), nil
}
