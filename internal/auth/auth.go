// Package auth orchestrates login, registration, and logout against the
// remote auth service and keeps the current session persisted in the
// local store. Components receive the session through Current rather than
// any ambient lookup.
package auth

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kvasir-media/clipstream/internal/db"
	"github.com/kvasir-media/clipstream/internal/model"
)

// Service is the narrow contract of the remote auth endpoints.
type Service interface {
	Login(ctx context.Context, email, password string) (*model.Session, error)
	Register(ctx context.Context, name, email, password string) (*model.Session, error)
}

// TokenSink receives the active bearer token whenever it changes.
type TokenSink interface {
	SetToken(token string)
}

// Manager owns the current session.
type Manager struct {
	service  Service
	database *sql.DB
	sink     TokenSink
	current  *model.Session
}

// NewManager restores any persisted session from the local store and
// pushes its token to the sink.
func NewManager(service Service, database *sql.DB, sink TokenSink) (*Manager, error) {
	m := &Manager{service: service, database: database, sink: sink}

	session, err := db.GetSession(database)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	m.current = session
	if session != nil {
		sink.SetToken(session.Token)
	}
	return m, nil
}

// Current returns the active session, or nil when logged out.
func (m *Manager) Current() *model.Session {
	return m.current
}

// Login authenticates and persists the resulting session.
func (m *Manager) Login(ctx context.Context, email, password string) (*model.Session, error) {
	session, err := m.service.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return session, m.adopt(session)
}

// Register creates an account and persists the resulting session.
func (m *Manager) Register(ctx context.Context, name, email, password string) (*model.Session, error) {
	session, err := m.service.Register(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	return session, m.adopt(session)
}

// Logout clears the persisted session and the client token.
func (m *Manager) Logout() error {
	m.current = nil
	m.sink.SetToken("")
	if err := db.DeleteSession(m.database); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (m *Manager) adopt(session *model.Session) error {
	m.current = session
	m.sink.SetToken(session.Token)
	if err := db.SaveSession(m.database, session); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}
