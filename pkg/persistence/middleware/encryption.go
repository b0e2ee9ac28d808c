package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/assetbot/pkg/domain"
	"github.com/aretw0/assetbot/pkg/ports"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// sealedPrefix marks a field value written by the encryption middleware.
const sealedPrefix = "enc:v1:"

var (
	ErrInvalidKey = errors.New("encryption key must be 32 bytes (AES-256)")

	// ErrNotEncrypted is returned when a stored session holds plaintext fields.
	ErrNotEncrypted = errors.New("state holds unencrypted fields")
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot decrypt a field.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.StateStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that seals every user-supplied field of a
// session with AES-GCM: the identity, each transcript turn and the pending request.
// Stage, status and timestamps stay readable so stores can index and expire sessions.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != KeySize {
		return nil, ErrInvalidKey
	}
	for i, k := range config.FallbackKeys {
		if len(k) != KeySize {
			return nil, fmt.Errorf("fallback key %d: %w", i, ErrInvalidKey)
		}
	}
	return func(next ports.StateStore) ports.StateStore {
		return &encryptionMiddleware{next: next, config: config}
	}, nil
}

// ParseKey decodes a base64 key, as found in configuration.
func ParseKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	return key, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, sessionKey string, state *domain.ConversationState) error {
	seal := func(plain string) (string, error) {
		if plain == "" {
			return "", nil
		}
		ciphertext, err := encrypt([]byte(plain), m.config.ActiveKey)
		if err != nil {
			return "", err
		}
		return sealedPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
	}

	sealed, err := transform(state, seal)
	if err != nil {
		return fmt.Errorf("failed to encrypt state: %w", err)
	}
	return m.next.Save(ctx, sessionKey, sealed)
}

func (m *encryptionMiddleware) Load(ctx context.Context, sessionKey string) (*domain.ConversationState, error) {
	envelope, err := m.next.Load(ctx, sessionKey)
	if err != nil {
		return nil, err
	}

	open := func(value string) (string, error) {
		if value == "" {
			return "", nil
		}
		encoded, ok := strings.CutPrefix(value, sealedPrefix)
		if !ok {
			// Fail secure: a plaintext field means the store was written without us.
			return "", ErrNotEncrypted
		}
		ciphertext, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return "", fmt.Errorf("failed to decode ciphertext base64: %w", err)
		}
		plain, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
		if err != nil {
			return "", err
		}
		return string(plain), nil
	}

	state, err := transform(envelope, open)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt state: %w", err)
	}
	return state, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, sessionKey string) error {
	return m.next.Delete(ctx, sessionKey)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// transform returns a copy of state with fn applied to the identity, every turn and
// every pending field. The original is not modified.
func transform(state *domain.ConversationState, fn func(string) (string, error)) (*domain.ConversationState, error) {
	out := state.Clone()

	var err error
	if out.Identity, err = fn(state.Identity); err != nil {
		return nil, err
	}
	for i := range out.History {
		if out.History[i].Content, err = fn(state.History[i].Content); err != nil {
			return nil, err
		}
	}

	out.Pending.Reset()
	if v, ok := state.Pending.AssetType(); ok {
		if v, err = fn(v); err != nil {
			return nil, err
		}
		if err := out.Pending.SetAssetType(v); err != nil {
			return nil, err
		}
	}
	if v, ok := state.Pending.Configuration(); ok {
		if v, err = fn(v); err != nil {
			return nil, err
		}
		if err := out.Pending.SetConfiguration(v); err != nil {
			return nil, err
		}
	}
	if v, ok := state.Pending.Reason(); ok {
		if v, err = fn(v); err != nil {
			return nil, err
		}
		if err := out.Pending.SetReason(v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}
