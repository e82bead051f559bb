// Package session ties one user's connection and conversation together.
//
// A Session moves between two states. It starts Disconnected, becomes
// Connected after a successful Connect, and falls back to Disconnected when a
// later Connect fails. Ask runs the question → SQL → result pipeline and is
// only accepted while Connected. Actions on one session run one at a time.
package session

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ectormgl/SQLTranslator/internal/apperr"
	"github.com/ectormgl/SQLTranslator/internal/conversation"
	"github.com/ectormgl/SQLTranslator/internal/dsn"
	"github.com/ectormgl/SQLTranslator/internal/export"
	"github.com/ectormgl/SQLTranslator/internal/observability"
	"github.com/ectormgl/SQLTranslator/internal/prompt"
	"github.com/ectormgl/SQLTranslator/internal/query"
	"github.com/ectormgl/SQLTranslator/internal/schema"
)

const (
	answeredResponse     = "I've executed the query and displayed the results above. Is there anything else you'd like to know about the data?"
	executionErrorPrefix = "An error occurred while executing the query: "
)

type State string

const (
	StateDisconnected State = "disconnected"
	StateConnected    State = "connected"
)

// ConnectRequest selects how connection parameters are sourced. When more
// than one mode is set, UseHosted wins over UseURI, which wins over the
// discrete fields.
type ConnectRequest struct {
	Dialect   string `json:"dialect"`
	UseHosted bool   `json:"use_hosted"`
	UseURI    bool   `json:"use_uri"`
	URI       string `json:"uri"`
	Host      string `json:"host"`
	Port      string `json:"port"`
	User      string `json:"user"`
	Password  string `json:"password"`
	Database  string `json:"database"`
}

type AskOptions struct {
	Export bool
}

// Outcome is what one answered question produced. Err is set when the
// generated SQL failed to execute; the turn still completed.
type Outcome struct {
	SQL       string
	Columns   []string
	Rows      [][]any
	Response  string
	Err       error
	Export    *export.Info
	ExportErr error
	Duration  time.Duration
}

type Snapshot struct {
	ID        string              `json:"id"`
	State     State               `json:"state"`
	Dialect   dsn.Dialect         `json:"dialect,omitempty"`
	URI       string              `json:"uri,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	Turns     []conversation.Turn `json:"turns"`
}

type Session struct {
	id        string
	deps      *Deps
	createdAt time.Time
	log       *conversation.Log

	// run serializes Connect, Ask and Close.
	run sync.Mutex

	mu           sync.RWMutex
	state        State
	params       dsn.Params
	db           *sql.DB
	introspector schema.Introspector
}

func newSession(id string, deps *Deps) *Session {
	return &Session{
		id:        id,
		deps:      deps,
		createdAt: deps.Now().UTC(),
		log:       conversation.NewWithClock(deps.Greeting, deps.Now),
		state:     StateDisconnected,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Turns() []conversation.Turn { return s.log.Turns() }

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	state, params := s.state, s.params
	s.mu.RUnlock()

	snapshot := Snapshot{
		ID:        s.id,
		State:     state,
		CreatedAt: s.createdAt,
		Turns:     s.log.Turns(),
	}
	if state == StateConnected {
		snapshot.Dialect = params.Dialect
		snapshot.URI = dsn.Mask(dsn.BuildURI(params))
	}
	return snapshot
}

// Connect replaces any existing connection. The previous handle is closed
// before the new one is attempted, so a failed Connect always leaves the
// session Disconnected. No turn is appended either way.
func (s *Session) Connect(ctx context.Context, req ConnectRequest) error {
	s.run.Lock()
	defer s.run.Unlock()

	logger := s.logger()
	if err := s.disconnect(); err != nil {
		logger.WarnContext(ctx, "close_previous_failed", slog.String("error", err.Error()))
	}

	desc, err := s.descriptor(req)
	if err != nil {
		logger.WarnContext(ctx, "connect_rejected", slog.String("error", err.Error()))
		return err
	}
	params, err := dsn.Resolve(desc)
	if err != nil {
		logger.WarnContext(ctx, "connect_rejected", slog.String("error", dsn.Mask(err.Error())))
		return err
	}

	logger = logger.With(slog.String("dialect", string(params.Dialect)))
	logger.InfoContext(ctx, "connect_attempt", slog.String("uri", dsn.Mask(dsn.BuildURI(params))))

	db, err := s.deps.Open(ctx, params, s.deps.DBOptions)
	observability.ObserveConnect(string(params.Dialect), err)
	if err != nil {
		if apperr.KindOf(err) == "" {
			err = apperr.Wrap(apperr.KindConnection, "failed to initialize "+params.Dialect.DisplayName()+" database", err)
		}
		logger.ErrorContext(ctx, "connect_failed", slog.String("error", dsn.Mask(err.Error())))
		return err
	}

	s.mu.Lock()
	s.state = StateConnected
	s.params = params
	s.db = db
	s.introspector = s.deps.Introspect(db, params.Dialect)
	s.mu.Unlock()

	logger.InfoContext(ctx, "connected")
	return nil
}

func (s *Session) descriptor(req ConnectRequest) (dsn.Descriptor, error) {
	// The hosted URI names its own dialect; the selected one does not apply.
	if req.UseHosted {
		if strings.TrimSpace(s.deps.HostedURI) == "" {
			return dsn.Descriptor{}, apperr.Configuration("hosted database URI is not configured")
		}
		return dsn.Descriptor{URI: s.deps.HostedURI}, nil
	}

	var dialect dsn.Dialect
	if strings.TrimSpace(req.Dialect) != "" {
		parsed, err := dsn.ParseDialect(req.Dialect)
		if err != nil {
			return dsn.Descriptor{}, err
		}
		dialect = parsed
	}

	switch {
	case req.UseURI:
		if strings.TrimSpace(req.URI) == "" {
			return dsn.Descriptor{}, apperr.Configuration("connection URI is required")
		}
		return dsn.Descriptor{Dialect: dialect, URI: req.URI}, nil
	default:
		if dialect == "" {
			return dsn.Descriptor{}, apperr.Configuration("dialect is required")
		}
		return dsn.Descriptor{
			Dialect:  dialect,
			Host:     req.Host,
			Port:     req.Port,
			User:     req.User,
			Password: req.Password,
			Database: req.Database,
		}, nil
	}
}

// Schema returns the schema text the next prompt would embed.
func (s *Session) Schema(ctx context.Context) (string, error) {
	s.mu.RLock()
	state, introspector := s.state, s.introspector
	s.mu.RUnlock()
	if state != StateConnected {
		return "", apperr.New(apperr.KindNotConnected, "connect to a database first")
	}
	return introspector.Describe(ctx)
}

// Ask appends the question, generates SQL for it and runs that SQL.
//
// Blank questions and disconnected sessions are rejected before anything is
// appended. When schema loading or generation fails only the human turn
// remains and the error is returned. An execution failure is not an error
// here: it becomes the assistant turn and is reported in Outcome.Err.
func (s *Session) Ask(ctx context.Context, question string, opts AskOptions) (Outcome, error) {
	if strings.TrimSpace(question) == "" {
		return Outcome{}, apperr.New(apperr.KindInvalidInput, "question is required")
	}

	s.run.Lock()
	defer s.run.Unlock()

	s.mu.RLock()
	state, params, introspector, db := s.state, s.params, s.introspector, s.db
	s.mu.RUnlock()
	if state != StateConnected {
		return Outcome{}, apperr.New(apperr.KindNotConnected, "connect to a database first")
	}

	logger := s.logger().With(slog.String("dialect", string(params.Dialect)))
	start := s.deps.Now()
	s.log.Append(conversation.Human(question))

	schemaText, err := introspector.Describe(ctx)
	if err != nil {
		observability.ObserveTurn(observability.TurnSchemaError)
		logger.ErrorContext(ctx, "schema_failed", slog.String("error", err.Error()))
		return Outcome{}, err
	}

	text := prompt.Build(prompt.Input{
		Schema:   schemaText,
		History:  s.log.Turns(),
		Question: question,
	})

	generationStart := time.Now()
	generated, err := s.deps.Translator.Translate(ctx, text)
	observability.ObserveGeneration(time.Since(generationStart))
	if err != nil {
		if apperr.KindOf(err) == "" {
			err = apperr.Wrap(apperr.KindGeneration, "generate sql", err)
		}
		observability.ObserveTurn(observability.TurnGenerationError)
		logger.ErrorContext(ctx, "generation_failed", slog.String("error", err.Error()))
		return Outcome{}, err
	}
	logger.DebugContext(ctx, "sql_generated", slog.String("provider", generated.Provider), slog.String("model", generated.Model), slog.String("sql", generated.SQL))

	outcome := Outcome{SQL: generated.SQL}
	request := query.Request{Params: params, SQL: generated.SQL}
	if params.Dialect.Embedded() {
		request.DB = db
	}
	result, err := s.deps.Engine.Execute(ctx, request)
	if err != nil {
		outcome.Err = err
		outcome.Response = executionErrorPrefix + err.Error()
		observability.ObserveTurn(observability.TurnExecutionError)
		logger.WarnContext(ctx, "execution_failed", slog.String("error", dsn.Mask(err.Error())))
	} else {
		outcome.Columns = result.Columns
		outcome.Rows = result.Rows
		outcome.Response = answeredResponse
		observability.ObserveQuery(string(params.Dialect), result.Duration)
		observability.ObserveTurn(observability.TurnAnswered)
		logger.InfoContext(ctx, "query_answered", slog.Int("rows", len(result.Rows)), slog.String("duration", result.Duration.String()))
	}

	turnIndex := s.log.Len()
	s.log.Append(conversation.Assistant(outcome.Response))

	if outcome.Err == nil && opts.Export {
		s.exportResult(ctx, logger, turnIndex, result, &outcome)
	}
	outcome.Duration = s.deps.Now().Sub(start)
	return outcome, nil
}

func (s *Session) exportResult(ctx context.Context, logger *slog.Logger, turn int, result query.Result, outcome *Outcome) {
	if s.deps.Exporter == nil {
		outcome.ExportErr = apperr.Configuration("export is not enabled")
		return
	}
	info, err := s.deps.Exporter.Export(ctx, s.id, turn, result)
	observability.ObserveExport(err)
	if err != nil {
		outcome.ExportErr = err
		logger.ErrorContext(ctx, "export_failed", slog.Int("turn", turn), slog.String("error", err.Error()))
		return
	}
	outcome.Export = &info
	logger.InfoContext(ctx, "export_written", slog.String("key", info.Key), slog.Int64("rows", info.Rows))
}

// Close releases the schema handle. The conversation is kept.
func (s *Session) Close() error {
	s.run.Lock()
	defer s.run.Unlock()
	return s.disconnect()
}

func (s *Session) disconnect() error {
	s.mu.Lock()
	db := s.db
	s.db = nil
	s.introspector = nil
	s.params = dsn.Params{}
	s.state = StateDisconnected
	s.mu.Unlock()
	if db == nil {
		return nil
	}
	return db.Close()
}

func (s *Session) logger() *slog.Logger {
	return s.deps.Logger.With(slog.String("session_id", s.id))
}
