// Package prefs is the client's secure key-value store, standing in for the
// platform's encrypted preference storage. Values live in a single sealed
// JSON document on disk, grouped into isolated namespaces.
package prefs

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// Namespaces. Each concern gets its own bucket so clearing one cannot touch
// another.
const (
	NamespaceAuth       = "auth"
	NamespaceUser       = "user"
	NamespaceOnboarding = "onboarding"
	NamespaceBiometric  = "biometric"
)

const (
	saltLen   = 16
	secretLen = 32
)

var ErrCorrupt = errors.New("prefs: store corrupted")

// Store is safe for concurrent use by a single process. It is not a
// multi-process database; the app owns the file exclusively.
type Store struct {
	mu   sync.Mutex
	path string
	aead interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	}
	doc map[string]map[string]string
}

// Open loads (or initializes) the store at path. The sealing key is derived
// with scrypt from a random secret generated next to the store on first use.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("prefs: create dir: %w", err)
	}
	key, err := loadOrCreateKey(path + ".key")
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("prefs: init cipher: %w", err)
	}

	s := &Store{path: path, aead: aead, doc: map[string]map[string]string{}}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func loadOrCreateKey(keyPath string) ([]byte, error) {
	raw, err := os.ReadFile(keyPath)
	switch {
	case err == nil:
		if len(raw) != saltLen+secretLen {
			return nil, ErrCorrupt
		}
	case os.IsNotExist(err):
		raw = make([]byte, saltLen+secretLen)
		if _, err := rand.Read(raw); err != nil {
			return nil, fmt.Errorf("prefs: generate secret: %w", err)
		}
		if err := os.WriteFile(keyPath, raw, 0o600); err != nil {
			return nil, fmt.Errorf("prefs: write secret: %w", err)
		}
	default:
		return nil, fmt.Errorf("prefs: read secret: %w", err)
	}

	salt, secret := raw[:saltLen], raw[saltLen:]
	key, err := scrypt.Key(secret, salt, 1<<15, 8, 1, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("prefs: derive key: %w", err)
	}
	return key, nil
}

func (s *Store) load() error {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("prefs: read store: %w", err)
	}
	if len(raw) < chacha20poly1305.NonceSizeX {
		return ErrCorrupt
	}
	nonce, sealed := raw[:chacha20poly1305.NonceSizeX], raw[chacha20poly1305.NonceSizeX:]
	plain, err := s.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return ErrCorrupt
	}
	if err := json.Unmarshal(plain, &s.doc); err != nil {
		return ErrCorrupt
	}
	return nil
}

// flush seals and atomically replaces the file. Caller holds the lock.
func (s *Store) flush() error {
	plain, err := json.Marshal(s.doc)
	if err != nil {
		return fmt.Errorf("prefs: encode: %w", err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("prefs: nonce: %w", err)
	}
	sealed := s.aead.Seal(nil, nonce, plain, nil)

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(nonce, sealed...), 0o600); err != nil {
		return fmt.Errorf("prefs: write: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Get returns the value for key within the namespace.
func (s *Store) Get(namespace, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.doc[namespace]
	if !ok {
		return "", false
	}
	v, ok := ns[key]
	return v, ok
}

// GetBool interprets the stored value as a boolean flag; missing keys are
// false.
func (s *Store) GetBool(namespace, key string) bool {
	v, ok := s.Get(namespace, key)
	return ok && v == "true"
}

// Set stores key=value within the namespace and persists immediately.
func (s *Store) Set(namespace, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.doc[namespace]
	if !ok {
		ns = map[string]string{}
		s.doc[namespace] = ns
	}
	ns[key] = value
	return s.flush()
}

// SetBool stores a boolean flag.
func (s *Store) SetBool(namespace, key string, value bool) error {
	v := "false"
	if value {
		v = "true"
	}
	return s.Set(namespace, key, v)
}

// Delete removes a single key.
func (s *Store) Delete(namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ns, ok := s.doc[namespace]; ok {
		delete(ns, key)
	}
	return s.flush()
}

// ClearNamespace drops an entire namespace.
func (s *Store) ClearNamespace(namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.doc, namespace)
	return s.flush()
}
