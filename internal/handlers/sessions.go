package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jwebster45206/chronicle-engine/internal/services/queue"
	"github.com/jwebster45206/chronicle-engine/internal/sessions"
	"github.com/jwebster45206/chronicle-engine/pkg/engine"
	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

// Enqueuer accepts turns for background processing.
type Enqueuer interface {
	Enqueue(ctx context.Context, req *queue.TurnRequest) error
}

type CreateSessionResponse struct {
	SessionID string          `json:"session_id"`
	Snapshot  *world.Snapshot `json:"snapshot"`
}

type ChatRequest struct {
	Message string `json:"message"`
	Async   bool   `json:"async,omitempty"`
}

type ChatResponse struct {
	engine.TurnResult
	Snapshot *world.Snapshot `json:"snapshot,omitempty"`
}

type QueuedResponse struct {
	RequestID string `json:"request_id"`
	SessionID string `json:"session_id"`
}

type PanelRequest struct {
	Panel string `json:"panel"`
}

type PanelResponse struct {
	ActivePanel world.Panel `json:"active_panel"`
}

type PromptRequest struct {
	Text string `json:"text"`
}

// SessionsHandler serves sessions and everything scoped to one.
type SessionsHandler struct {
	manager     *sessions.Manager
	queue       Enqueuer
	logger      *slog.Logger
	turnTimeout time.Duration
}

// NewSessionsHandler creates the sessions handler. q may be nil, in which
// case async chat requests are refused.
func NewSessionsHandler(manager *sessions.Manager, q Enqueuer, turnTimeout time.Duration, logger *slog.Logger) *SessionsHandler {
	return &SessionsHandler{
		manager:     manager,
		queue:       q,
		logger:      logger,
		turnTimeout: turnTimeout,
	}
}

// ServeHTTP routes:
// POST   /v1/sessions             - Create a session
// GET    /v1/sessions/{id}        - Read the current snapshot
// DELETE /v1/sessions/{id}        - Delete a session
// POST   /v1/sessions/{id}/chat   - Run a turn
// POST   /v1/sessions/{id}/panel  - Toggle a panel
// PUT    /v1/sessions/{id}/prompt - Replace the world prompt
// DELETE /v1/sessions/{id}/prompt - Restore the default world prompt
// POST   /v1/sessions/{id}/reset  - Start over
// plus the direct world edits in dm.go.
func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var parts []string
	for _, p := range strings.Split(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}

	if len(parts) == 0 {
		if r.Method != http.MethodPost {
			h.methodNotAllowed(w, r, http.MethodPost)
			return
		}
		h.handleCreate(w, r)
		return
	}

	id := parts[0]
	log := h.logger.With("session_id", id)
	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			h.handleRead(w, r, id, log)
		case http.MethodDelete:
			h.handleDelete(w, r, id, log)
		default:
			h.methodNotAllowed(w, r, http.MethodGet, http.MethodDelete)
		}
		return
	}

	route := strings.Join(parts[1:], "/")
	switch route {
	case "chat":
		if h.allow(w, r, http.MethodPost) {
			h.handleChat(w, r, id, log)
		}
	case "panel":
		if h.allow(w, r, http.MethodPost) {
			h.handlePanel(w, r, id, log)
		}
	case "prompt":
		if h.allow(w, r, http.MethodPut, http.MethodDelete) {
			h.handlePrompt(w, r, id, log)
		}
	case "reset":
		if h.allow(w, r, http.MethodPost) {
			h.update(w, r, id, log, func(e *engine.Engine) error { return e.Reset() })
		}
	default:
		if !h.routeWorldEdit(w, r, id, parts[1:], log) {
			writeError(w, log, http.StatusNotFound, "Not found.")
		}
	}
}

// allow reports whether r uses one of methods, answering 405 otherwise.
func (h *SessionsHandler) allow(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	h.methodNotAllowed(w, r, methods...)
	return false
}

func (h *SessionsHandler) methodNotAllowed(w http.ResponseWriter, r *http.Request, methods ...string) {
	h.logger.Warn("Method not allowed", "method", r.Method, "path", r.URL.Path)
	w.Header().Set("Allow", strings.Join(methods, ", "))
	writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: "+strings.Join(methods, ", "))
}

func (h *SessionsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	snap, id, err := h.manager.Create(r.Context())
	if err != nil {
		writeFailure(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, CreateSessionResponse{SessionID: id, Snapshot: snap})
}

func (h *SessionsHandler) handleRead(w http.ResponseWriter, r *http.Request, id string, log *slog.Logger) {
	snap, err := h.manager.Get(r.Context(), id)
	if err != nil {
		writeFailure(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, snap)
}

func (h *SessionsHandler) handleDelete(w http.ResponseWriter, r *http.Request, id string, log *slog.Logger) {
	if err := h.manager.Delete(r.Context(), id); err != nil {
		writeFailure(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionsHandler) handleChat(w http.ResponseWriter, r *http.Request, id string, log *slog.Logger) {
	var req ChatRequest
	if !decodeBody(w, r, log, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, log, http.StatusBadRequest, "Message cannot be empty.")
		return
	}

	if req.Async {
		h.enqueueChat(w, r, id, req.Message, log)
		return
	}

	ctx := r.Context()
	if h.turnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.turnTimeout)
		defer cancel()
	}

	result, snap, err := h.manager.Submit(ctx, id, req.Message)
	if err != nil && result == nil {
		writeFailure(w, log, err)
		return
	}
	resp := ChatResponse{TurnResult: *result, Snapshot: snap}
	if err != nil {
		// The turn ran and failed; the recorded error is in the body.
		log.Warn("Turn failed", "error", err)
		writeJSON(w, log, http.StatusBadGateway, resp)
		return
	}
	writeJSON(w, log, http.StatusOK, resp)
}

func (h *SessionsHandler) enqueueChat(w http.ResponseWriter, r *http.Request, id, message string, log *slog.Logger) {
	if h.queue == nil {
		writeError(w, log, http.StatusServiceUnavailable, "Async turns are not available.")
		return
	}
	if _, err := h.manager.Get(r.Context(), id); err != nil {
		writeFailure(w, log, err)
		return
	}
	req := queue.NewTurnRequest(id, message)
	if err := h.queue.Enqueue(r.Context(), req); err != nil {
		writeFailure(w, log, err)
		return
	}
	log.Info("Turn queued", "request_id", req.RequestID)
	writeJSON(w, log, http.StatusAccepted, QueuedResponse{RequestID: req.RequestID, SessionID: id})
}

func (h *SessionsHandler) handlePanel(w http.ResponseWriter, r *http.Request, id string, log *slog.Logger) {
	var req PanelRequest
	if !decodeBody(w, r, log, &req) {
		return
	}
	panel, err := world.ParsePanel(req.Panel)
	if err != nil {
		writeError(w, log, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := h.manager.Update(r.Context(), id, func(e *engine.Engine) error {
		if panel == world.PanelNone {
			e.CloseAllPanels()
		} else {
			e.TogglePanel(panel)
		}
		return nil
	})
	if err != nil {
		writeFailure(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, PanelResponse{ActivePanel: snap.ActivePanel})
}

func (h *SessionsHandler) handlePrompt(w http.ResponseWriter, r *http.Request, id string, log *slog.Logger) {
	if r.Method == http.MethodDelete {
		h.update(w, r, id, log, func(e *engine.Engine) error { return e.ResetWorldPrompt() })
		return
	}
	var req PromptRequest
	if !decodeBody(w, r, log, &req) {
		return
	}
	h.update(w, r, id, log, func(e *engine.Engine) error { return e.UpdateWorldPrompt(req.Text) })
}

// update runs fn against the session and answers with the new snapshot.
func (h *SessionsHandler) update(w http.ResponseWriter, r *http.Request, id string, log *slog.Logger, fn func(e *engine.Engine) error) {
	snap, err := h.manager.Update(r.Context(), id, fn)
	if err != nil {
		writeFailure(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, snap)
}
