package adapters

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/zalando/go-keyring"

	"github.com/applytrack/applytrack/internal/domain/position/ports"
	apperrors "github.com/applytrack/applytrack/internal/errors"
	"github.com/applytrack/applytrack/internal/fileutil"
)

const (
	// KeyringService groups applytrack secrets in the OS keychain.
	KeyringService = "applytrack"
	// DefaultKeyringAccount is the keychain entry holding the session token.
	DefaultKeyringAccount = "session-token"
)

// KeyringTokenStore keeps the token in the OS keychain.
type KeyringTokenStore struct {
	service string
	account string
}

// Ensure KeyringTokenStore implements the interface.
var _ ports.TokenStore = (*KeyringTokenStore)(nil)

// NewKeyringTokenStore creates a keychain-backed store. Empty arguments
// select the defaults.
func NewKeyringTokenStore(service, account string) *KeyringTokenStore {
	if service == "" {
		service = KeyringService
	}
	if account == "" {
		account = DefaultKeyringAccount
	}
	return &KeyringTokenStore{service: service, account: account}
}

// Get returns the stored token or "" when the entry is missing.
func (s *KeyringTokenStore) Get() (string, error) {
	token, err := keyring.Get(s.service, s.account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.WrapSafe(err, apperrors.KindIO, "keyring.Get", "failed to read token from keychain")
	}
	return strings.TrimSpace(token), nil
}

// Save stores token in the keychain.
func (s *KeyringTokenStore) Save(token string) error {
	if strings.TrimSpace(token) == "" {
		return apperrors.Validation("keyring.Save", "token is empty")
	}
	if err := keyring.Set(s.service, s.account, token); err != nil {
		return apperrors.WrapSafe(err, apperrors.KindIO, "keyring.Save", "failed to write token to keychain")
	}
	return nil
}

// Remove deletes the keychain entry.
func (s *KeyringTokenStore) Remove() error {
	err := keyring.Delete(s.service, s.account)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return apperrors.WrapSafe(err, apperrors.KindIO, "keyring.Remove", "failed to delete token from keychain")
	}
	return nil
}

// maxTokenFileSize bounds what Get will read from the token file.
const maxTokenFileSize = 64 << 10

// FileTokenStore keeps the token in a 0600 file guarded by an advisory lock,
// so concurrent CLI invocations never observe a half-written token.
type FileTokenStore struct {
	path string
	lock *flock.Flock
}

// Ensure FileTokenStore implements the interface.
var _ ports.TokenStore = (*FileTokenStore)(nil)

// NewFileTokenStore creates a file-backed store at path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the token file location.
func (s *FileTokenStore) Path() string {
	return s.path
}

// Get returns the stored token or "" when the file is missing.
func (s *FileTokenStore) Get() (string, error) {
	if err := s.ensureDir(); err != nil {
		return "", err
	}
	if err := s.lock.RLock(); err != nil {
		return "", apperrors.IOWrap(err, "tokenfile.Get", "failed to lock token file")
	}
	defer func() { _ = s.lock.Unlock() }()

	data, err := fileutil.ReadLimited(s.path, maxTokenFileSize)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.IOWrap(err, "tokenfile.Get", "failed to read token file")
	}
	return strings.TrimSpace(string(data)), nil
}

// Save writes token atomically through a temp file and rename.
func (s *FileTokenStore) Save(token string) error {
	if strings.TrimSpace(token) == "" {
		return apperrors.Validation("tokenfile.Save", "token is empty")
	}
	if err := s.ensureDir(); err != nil {
		return err
	}
	if err := s.lock.Lock(); err != nil {
		return apperrors.IOWrap(err, "tokenfile.Save", "failed to lock token file")
	}
	defer func() { _ = s.lock.Unlock() }()

	if err := fileutil.WriteAtomic(s.path, []byte(token+"\n"), 0o600); err != nil {
		return apperrors.IOWrap(err, "tokenfile.Save", "failed to write token file")
	}
	return nil
}

// Remove deletes the token file.
func (s *FileTokenStore) Remove() error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	if err := s.lock.Lock(); err != nil {
		return apperrors.IOWrap(err, "tokenfile.Remove", "failed to lock token file")
	}
	defer func() { _ = s.lock.Unlock() }()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return apperrors.IOWrap(err, "tokenfile.Remove", "failed to delete token file")
	}
	return nil
}

func (s *FileTokenStore) ensureDir() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return apperrors.IOWrap(err, "tokenfile", "failed to create token directory")
	}
	return nil
}

// MemoryTokenStore keeps the token for the lifetime of the process.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

// Ensure MemoryTokenStore implements the interface.
var _ ports.TokenStore = (*MemoryTokenStore)(nil)

// NewMemoryTokenStore creates a store holding token, which may be empty.
func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: token}
}

// Get returns the held token.
func (s *MemoryTokenStore) Get() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

// Save replaces the held token.
func (s *MemoryTokenStore) Save(token string) error {
	if strings.TrimSpace(token) == "" {
		return apperrors.Validation("memtoken.Save", "token is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Remove clears the held token.
func (s *MemoryTokenStore) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
