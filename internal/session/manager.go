package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pcshop-storefront/internal/apperr"
	"pcshop-storefront/internal/logger"
	"pcshop-storefront/internal/models"
)

// Source yields the current session. Views re-read it on every call.
type Source interface {
	Current() (Session, bool)
}

// Authenticator is the part of the store service the manager needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, req models.RegisterRequest) error
}

// Manager ties a TokenStore to the store service's auth endpoints.
type Manager struct {
	store  TokenStore
	auth   Authenticator
	logger *zap.Logger
	now    func() time.Time
}

func NewManager(store TokenStore, auth Authenticator, l *zap.Logger) *Manager {
	return &Manager{
		store:  store,
		auth:   auth,
		logger: logger.OrNop(l),
		now:    time.Now,
	}
}

// Login authenticates, persists the token and returns the decoded session.
func (m *Manager) Login(ctx context.Context, email, password string) (Session, error) {
	token, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	s, err := Decode(token, m.now())
	if err != nil {
		m.logger.Warn("Login returned an unusable token", zap.Error(err))
		return Session{}, apperr.DecodeErr("login returned an unusable token", err)
	}
	if err := m.store.Save(token); err != nil {
		return Session{}, err
	}
	m.logger.Info("User logged in", zap.String("user_id", s.UserID), zap.Bool("is_admin", s.IsAdmin))
	return s, nil
}

// Register creates an account. The caller still has to log in.
func (m *Manager) Register(ctx context.Context, req models.RegisterRequest) error {
	return m.auth.Register(ctx, req)
}

// Logout forgets the stored token.
func (m *Manager) Logout() error {
	return m.store.Clear()
}

// Current decodes the stored token. A token that cannot be decoded or has
// expired is cleared and reported as no session.
func (m *Manager) Current() (Session, bool) {
	token, err := m.store.Load()
	if err != nil {
		m.logger.Warn("Failed to load session token", zap.Error(err))
		return Session{}, false
	}
	if token == "" {
		return Session{}, false
	}
	s, err := Decode(token, m.now())
	if err != nil {
		m.logger.Info("Discarding stored token", zap.Error(err))
		if clearErr := m.store.Clear(); clearErr != nil {
			m.logger.Warn("Failed to clear session token", zap.Error(clearErr))
		}
		return Session{}, false
	}
	return s, true
}

// Capability derives the visitor's capability from the current session.
func (m *Manager) Capability() Capability {
	return CapabilityOf(m)
}

// Require returns the current session or an AuthRequired error.
func (m *Manager) Require() (Session, error) {
	return Require(m)
}

// CapabilityOf derives the capability from any session source.
func CapabilityOf(src Source) Capability {
	s, ok := src.Current()
	if !ok {
		return AnonymousView
	}
	return s.Capability()
}

// Require returns the current session of src or an AuthRequired error.
func Require(src Source) (Session, error) {
	s, ok := src.Current()
	if !ok {
		return Session{}, apperr.AuthRequiredErr("You must be logged in to proceed.")
	}
	return s, nil
}

// Static is a fixed session source.
type Static struct {
	Session Session
	OK      bool
}

func (s Static) Current() (Session, bool) {
	return s.Session, s.OK
}
