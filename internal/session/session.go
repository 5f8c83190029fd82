// Package session persists the authenticated user across process
// restarts. The manager stores the access token and the user record in
// a key-value store and restores them on startup.
package session

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/clubbook/members-book-go/internal/domain"
	"github.com/clubbook/members-book-go/internal/port"
)

const (
	keyAccessToken = "access_token"
	keyUserSession = "user_session"
)

// Manager reads and writes the current session.
type Manager struct {
	kv     port.KV
	logger *zap.Logger
}

func NewManager(kv port.KV, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{kv: kv, logger: logger}
}

// Save persists the session and its token.
func (m *Manager) Save(s *domain.Session) error {
	if s == nil {
		return fmt.Errorf("session: nil session")
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	if err := m.kv.Put(keyAccessToken, []byte(s.Token)); err != nil {
		return fmt.Errorf("session: store token: %w", err)
	}
	if err := m.kv.Put(keyUserSession, payload); err != nil {
		return fmt.Errorf("session: store user: %w", err)
	}
	m.logger.Debug("session saved", zap.String("user_id", s.UserID), zap.String("user_type", string(s.UserType)))
	return nil
}

// Restore returns the persisted session, or nil when none exists. A
// corrupt record is discarded rather than returned.
func (m *Manager) Restore() (*domain.Session, error) {
	payload, err := m.kv.Get(keyUserSession)
	if err != nil {
		return nil, fmt.Errorf("session: read user: %w", err)
	}
	if payload == nil {
		return nil, nil
	}
	var s domain.Session
	if err := json.Unmarshal(payload, &s); err != nil {
		m.logger.Warn("discarding corrupt session record", zap.Error(err))
		if clearErr := m.Clear(); clearErr != nil {
			return nil, clearErr
		}
		return nil, nil
	}
	if token, err := m.kv.Get(keyAccessToken); err == nil && token != nil {
		s.Token = string(token)
	}
	return &s, nil
}

// Token returns the persisted access token, empty when absent.
func (m *Manager) Token() (string, error) {
	v, err := m.kv.Get(keyAccessToken)
	if err != nil {
		return "", fmt.Errorf("session: read token: %w", err)
	}
	return string(v), nil
}

// Clear removes the session and token. Used on logout and whenever the
// backend reports the token as no longer valid.
func (m *Manager) Clear() error {
	if err := m.kv.Delete(keyAccessToken); err != nil {
		return fmt.Errorf("session: clear token: %w", err)
	}
	if err := m.kv.Delete(keyUserSession); err != nil {
		return fmt.Errorf("session: clear user: %w", err)
	}
	return nil
}
