// Package credential keeps the signed-in session in the system keyring.
package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const (
	serviceName = "tasknest"
	sessionKey  = "session-user"
)

// ErrNoSession is returned by Token when nobody is signed in.
var ErrNoSession = errors.New("no stored session")

// Options selects the keyring backend.
type Options struct {
	// Backend forces one keyring backend ("file", "keychain",
	// "secret-service", "wincred", "pass"). Empty allows all of them.
	Backend string
	// FileDir is where the file backend keeps its encrypted items.
	FileDir string
}

// Vault stores the id of the signed-in user.
type Vault struct {
	ring keyring.Keyring
}

// NewVault opens the system keyring.
func NewVault(opts Options) (*Vault, error) {
	backends := []keyring.BackendType{
		keyring.KeychainBackend,
		keyring.SecretServiceBackend,
		keyring.WinCredBackend,
		keyring.PassBackend,
		keyring.FileBackend,
	}
	if opts.Backend != "" {
		backends = []keyring.BackendType{keyring.BackendType(opts.Backend)}
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName:              serviceName,
		AllowedBackends:          backends,
		FileDir:                  opts.FileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt("tasknest-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &Vault{ring: ring}, nil
}

// NewVaultWithKeyring wraps an already opened keyring, such as
// keyring.NewArrayKeyring in tests.
func NewVaultWithKeyring(ring keyring.Keyring) *Vault {
	return &Vault{ring: ring}
}

// Token returns the stored session token, or ErrNoSession.
func (v *Vault) Token() (string, error) {
	item, err := v.ring.Get(sessionKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", sessionKey, err)
	}
	if len(item.Data) == 0 {
		return "", ErrNoSession
	}
	return string(item.Data), nil
}

// SetToken stores the session token, replacing any previous one.
func (v *Vault) SetToken(token string) error {
	err := v.ring.Set(keyring.Item{
		Key:   sessionKey,
		Data:  []byte(token),
		Label: "tasknest session",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", sessionKey, err)
	}
	return nil
}

// Clear removes the stored session. Clearing an empty vault is not an error.
func (v *Vault) Clear() error {
	err := v.ring.Remove(sessionKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", sessionKey, err)
	}
	return nil
}
