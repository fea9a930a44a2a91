// Package security keeps credentials out of terminal output.
package security

import (
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/applytrack/applytrack/internal/errors"
)

// Redacted replaces every masked value.
const Redacted = "[REDACTED]"

// minSecretLen keeps tiny values from blanking unrelated output.
const minSecretLen = 6

// Masker redacts bearer tokens, JWTs and any secrets registered with
// AddSecret. A new Masker is enabled.
type Masker struct {
	mu      sync.RWMutex
	enabled bool
	secrets []string
}

// NewMasker creates an enabled Masker.
func NewMasker() *Masker {
	return &Masker{enabled: true}
}

// SetEnabled turns masking on or off.
func (m *Masker) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

// Enabled reports whether masking is on.
func (m *Masker) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// AddSecret registers a literal value, such as an opaque session token, that
// the built-in patterns would not recognise.
func (m *Masker) AddSecret(secret string) {
	secret = strings.TrimSpace(secret)
	if len(secret) < minSecretLen {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.secrets {
		if s == secret {
			return
		}
	}
	m.secrets = append(m.secrets, secret)
	// Longest first so a secret containing another is replaced whole.
	sort.Slice(m.secrets, func(i, j int) bool { return len(m.secrets[i]) > len(m.secrets[j]) })
}

// Mask returns s with credentials replaced by Redacted.
func (m *Masker) Mask(s string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.enabled {
		return s
	}
	for _, secret := range m.secrets {
		s = strings.ReplaceAll(s, secret, Redacted)
	}
	return errors.RedactSensitive(s)
}

// Writer wraps w so everything written through it is masked.
func (m *Masker) Writer(w io.Writer) io.Writer {
	return &maskedWriter{w: w, m: m}
}

type maskedWriter struct {
	w io.Writer
	m *Masker
}

// Write masks p and reports len(p) on success, as io.Writer requires.
func (mw *maskedWriter) Write(p []byte) (int, error) {
	if _, err := io.WriteString(mw.w, mw.m.Mask(string(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}
