package repository

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const sealInfo = "violation-portal session keyspace v1"

// errUndecodable marks a document that exists but cannot be opened or parsed,
// for example after the seal secret changed. Writes replace such a document.
var errUndecodable = errors.New("undecodable keyspace document")

type fileKeySpace struct {
	mu   sync.Mutex
	path string
	aead cipher.AEAD
}

// NewFileKeySpace stores all keys as one JSON document at path. When secret
// is non-empty the document is sealed with XChaCha20-Poly1305 under a key
// derived from secret.
func NewFileKeySpace(path, secret string) (KeySpace, error) {
	if path == "" {
		return nil, errors.New("file keyspace: empty path")
	}
	ks := &fileKeySpace{path: path}
	if secret != "" {
		key := make([]byte, chacha20poly1305.KeySize)
		if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(sealInfo)), key); err != nil {
			return nil, fmt.Errorf("derive seal key: %w", err)
		}
		aead, err := chacha20poly1305.NewX(key)
		if err != nil {
			return nil, fmt.Errorf("init seal cipher: %w", err)
		}
		ks.aead = aead
	}
	return ks, nil
}

func (f *fileKeySpace) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return "", err
	}
	val, ok := values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return val, nil
}

func (f *fileKeySpace) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if errors.Is(err, errUndecodable) {
		values, err = map[string]string{}, nil
	}
	if err != nil {
		return err
	}
	values[key] = value
	return f.write(values)
}

func (f *fileKeySpace) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if errors.Is(err, errUndecodable) {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", f.path, err)
		}
		return nil
	}
	if err != nil {
		return err
	}
	changed := false
	for _, key := range keys {
		if _, ok := values[key]; ok {
			delete(values, key)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return f.write(values)
}

func (f *fileKeySpace) Ping(context.Context) error {
	return os.MkdirAll(filepath.Dir(f.path), 0o700)
}

func (f *fileKeySpace) read() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	if len(raw) == 0 {
		return map[string]string{}, nil
	}

	if f.aead != nil {
		if raw, err = f.open(raw); err != nil {
			return nil, err
		}
	}

	values := map[string]string{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", errUndecodable, f.path, err)
	}
	return values, nil
}

func (f *fileKeySpace) write(values map[string]string) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}
	if f.aead != nil {
		if raw, err = f.seal(raw); err != nil {
			return err
		}
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".keyspace-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

func (f *fileKeySpace) seal(plain []byte) ([]byte, error) {
	nonce := make([]byte, f.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("seal nonce: %w", err)
	}
	return f.aead.Seal(nonce, nonce, plain, nil), nil
}

func (f *fileKeySpace) open(sealed []byte) ([]byte, error) {
	size := f.aead.NonceSize()
	if len(sealed) < size {
		return nil, fmt.Errorf("%w: open %s: sealed data too short", errUndecodable, f.path)
	}
	plain, err := f.aead.Open(nil, sealed[:size], sealed[size:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", errUndecodable, f.path, err)
	}
	return plain, nil
}
