package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/ectormgl/SQLTranslator/internal/apperr"
	"github.com/ectormgl/SQLTranslator/internal/dsn"
	"github.com/ectormgl/SQLTranslator/internal/export"
	"github.com/ectormgl/SQLTranslator/internal/session"
	"github.com/ectormgl/SQLTranslator/internal/storage"
)

type askRequest struct {
	Question string `json:"question"`
	Export   bool   `json:"export"`
}

type askResponse struct {
	SQL         string       `json:"sql"`
	Columns     []string     `json:"columns"`
	Rows        [][]any      `json:"rows"`
	Response    string       `json:"response"`
	Error       string       `json:"error,omitempty"`
	Export      *export.Info `json:"export,omitempty"`
	ExportError string       `json:"export_error,omitempty"`
	Stats       askStats     `json:"stats"`
}

type askStats struct {
	DurationMs int64 `json:"duration_ms"`
	RowCount   int   `json:"row_count"`
	TurnCount  int   `json:"turn_count"`
}

type sessionHandlers struct {
	manager *session.Manager
}

func (h *sessionHandlers) list(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": h.manager.List()})
}

func (h *sessionHandlers) create(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w, r) {
		return
	}
	writeJSON(w, http.StatusCreated, h.manager.Create().Snapshot())
}

func (h *sessionHandlers) get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *sessionHandlers) delete(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w, r) {
		return
	}
	id := r.PathValue("id")
	existed, err := h.manager.Delete(id)
	if !existed {
		writeError(r.Context(), w, http.StatusNotFound, "SESSION_NOT_FOUND", "session was not found", false, map[string]any{"session_id": id})
		return
	}
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "SESSION_CLOSE_FAILED", "session was removed but its connection did not close cleanly", false, map[string]any{"details": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *sessionHandlers) connect(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var request session.ConnectRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid connect request body", false, map[string]any{"details": err.Error()})
		return
	}
	if err := s.Connect(r.Context(), request); err != nil {
		writeSessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *sessionHandlers) schema(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	text, err := s.Schema(r.Context())
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"schema": text})
}

func (h *sessionHandlers) ask(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var request askRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid ask request body", false, map[string]any{"details": err.Error()})
		return
	}

	outcome, err := s.Ask(r.Context(), request.Question, session.AskOptions{Export: request.Export})
	if err != nil {
		writeSessionError(w, r, err)
		return
	}

	response := askResponse{
		SQL:      outcome.SQL,
		Columns:  outcome.Columns,
		Rows:     outcome.Rows,
		Response: outcome.Response,
		Export:   outcome.Export,
		Stats: askStats{
			DurationMs: outcome.Duration.Milliseconds(),
			RowCount:   len(outcome.Rows),
			TurnCount:  len(s.Turns()),
		},
	}
	if response.Columns == nil {
		response.Columns = []string{}
	}
	if response.Rows == nil {
		response.Rows = [][]any{}
	}
	if outcome.Err != nil {
		response.Error = outcome.Err.Error()
	}
	if outcome.ExportErr != nil {
		response.ExportError = outcome.ExportErr.Error()
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *sessionHandlers) download(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	exporter := h.manager.Exporter()
	if exporter == nil {
		writeError(r.Context(), w, http.StatusNotFound, "EXPORT_NOT_ENABLED", "result export is not enabled", false, nil)
		return
	}
	turn, err := strconv.Atoi(r.PathValue("turn"))
	if err != nil || turn < 0 {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_TURN", "turn must be a non-negative integer", false, map[string]any{"turn": r.PathValue("turn")})
		return
	}

	body, err := exporter.Open(r.Context(), s.ID(), turn)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			writeError(r.Context(), w, http.StatusNotFound, "EXPORT_NOT_FOUND", "no export exists for this turn", false, map[string]any{"turn": turn})
			return
		}
		writeError(r.Context(), w, http.StatusBadGateway, "EXPORT_READ_FAILED", "failed to read export", true, map[string]any{"details": err.Error()})
		return
	}
	defer func() { _ = body.Close() }()

	w.Header().Set("Content-Type", export.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename=\"turn-"+strconv.Itoa(turn)+".parquet\"")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}

func (h *sessionHandlers) configured(w http.ResponseWriter, r *http.Request) bool {
	if h.manager == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "SESSIONS_NOT_CONFIGURED", "session dependencies are not configured", false, nil)
		return false
	}
	return true
}

func (h *sessionHandlers) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	if !h.configured(w, r) {
		return nil, false
	}
	id := r.PathValue("id")
	s, ok := h.manager.Get(id)
	if !ok {
		writeError(r.Context(), w, http.StatusNotFound, "SESSION_NOT_FOUND", "session was not found", false, map[string]any{"session_id": id})
		return nil, false
	}
	return s, true
}

func writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	details := map[string]any{"details": dsn.Mask(err.Error())}
	switch apperr.KindOf(err) {
	case apperr.KindConfiguration:
		writeError(r.Context(), w, http.StatusBadRequest, "CONFIGURATION_ERROR", err.Error(), false, nil)
	case apperr.KindInvalidInput:
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), false, nil)
	case apperr.KindNotConnected:
		writeError(r.Context(), w, http.StatusConflict, "NOT_CONNECTED", err.Error(), false, nil)
	case apperr.KindConnection:
		writeError(r.Context(), w, http.StatusBadGateway, "CONNECTION_ERROR", "failed to connect to database", true, details)
	case apperr.KindGeneration:
		writeError(r.Context(), w, http.StatusBadGateway, "GENERATION_ERROR", "failed to generate sql", true, details)
	case apperr.KindExecution:
		writeError(r.Context(), w, http.StatusBadGateway, "EXECUTION_ERROR", "failed to read database schema", true, details)
	default:
		writeError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_ERROR", "unexpected error", false, details)
	}
}
