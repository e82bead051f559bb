package session

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ectormgl/SQLTranslator/internal/database"
	"github.com/ectormgl/SQLTranslator/internal/dsn"
	"github.com/ectormgl/SQLTranslator/internal/export"
	"github.com/ectormgl/SQLTranslator/internal/nl2sql"
	"github.com/ectormgl/SQLTranslator/internal/query"
	"github.com/ectormgl/SQLTranslator/internal/schema"
)

type Exporter interface {
	Export(ctx context.Context, sessionID string, turn int, result query.Result) (export.Info, error)
	Open(ctx context.Context, sessionID string, turn int) (io.ReadCloser, error)
}

// Deps are shared by every session of a Manager.
type Deps struct {
	Translator nl2sql.Translator
	Engine     query.Engine
	Open       database.Opener
	DBOptions  database.Options
	// Introspect builds the schema reader for a fresh handle.
	Introspect func(db *sql.DB, dialect dsn.Dialect) schema.Introspector
	// HostedURI is used when a connect request asks for the hosted database.
	HostedURI string
	Exporter  Exporter
	Greeting  string
	Logger    *slog.Logger
	Now       func() time.Time
	NewID     func() string
}

type Manager struct {
	deps *Deps

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(deps Deps) (*Manager, error) {
	if deps.Translator == nil {
		return nil, fmt.Errorf("translator is required")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("query engine is required")
	}
	if deps.Open == nil {
		deps.Open = database.Open
	}
	if deps.Introspect == nil {
		deps.Introspect = func(db *sql.DB, dialect dsn.Dialect) schema.Introspector {
			return schema.NewSQLIntrospector(db, dialect, schema.Options{})
		}
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	return &Manager{deps: &deps, sessions: map[string]*Session{}}, nil
}

func (m *Manager) Create() *Session {
	session := newSession(m.deps.NewID(), m.deps)
	m.mu.Lock()
	m.sessions[session.id] = session
	m.mu.Unlock()
	m.deps.Logger.Info("session_created", slog.String("session_id", session.id))
	return session
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	return session, ok
}

// List returns snapshots ordered by creation time.
func (m *Manager) List() []Snapshot {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, session)
	}
	m.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].createdAt.Equal(sessions[j].createdAt) {
			return sessions[i].id < sessions[j].id
		}
		return sessions[i].createdAt.Before(sessions[j].createdAt)
	})
	out := make([]Snapshot, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, session.Snapshot())
	}
	return out
}

// Delete discards a session and closes its handle. It reports whether the
// session existed.
func (m *Manager) Delete(id string) (bool, error) {
	m.mu.Lock()
	session, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	m.deps.Logger.Info("session_deleted", slog.String("session_id", id))
	return true, session.Close()
}

// Exporter returns the configured exporter, or nil when export is disabled.
func (m *Manager) Exporter() Exporter { return m.deps.Exporter }

func (m *Manager) Close() error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = map[string]*Session{}
	m.mu.Unlock()

	var firstErr error
	for _, session := range sessions {
		if err := session.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
