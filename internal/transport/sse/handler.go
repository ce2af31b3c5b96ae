// Package sse serves MCP over Server-Sent Events. GET /sse opens a stream and
// announces a message endpoint carrying a session id; each POST to that
// endpoint is routed to the session and answered on its stream.
package sse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/atlanticdynamic/deployhq-mcp/internal/config"
	"github.com/atlanticdynamic/deployhq-mcp/internal/deployhq"
	"github.com/atlanticdynamic/deployhq-mcp/internal/transport/jsonrpc"
)

const (
	// DefaultMessagePath is where clients post follow-up messages.
	DefaultMessagePath = "/message"

	// DefaultKeepAlive is the interval of comment frames on an idle stream.
	DefaultKeepAlive = 30 * time.Second

	// MaxMessageSize bounds the body of a posted message.
	MaxMessageSize = 1 << 20

	defaultQueueSize = 32
)

// Handler serves the SSE stream and message endpoints. It is safe for
// concurrent use.
type Handler struct {
	newSession  jsonrpc.SessionFactory
	fallback    deployhq.Credentials
	sessions    *sessionStore
	messagePath string
	keepAlive   time.Duration
	queueSize   int
	logger      *slog.Logger
}

// NewHandler returns a Handler that builds one session per stream with
// newSession.
func NewHandler(newSession jsonrpc.SessionFactory, opts ...Option) *Handler {
	h := &Handler{
		newSession:  newSession,
		sessions:    newSessionStore(),
		messagePath: DefaultMessagePath,
		keepAlive:   DefaultKeepAlive,
		queueSize:   defaultQueueSize,
		logger:      slog.Default().WithGroup("sse"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Len returns the number of open sessions.
func (h *Handler) Len() int {
	return h.sessions.len()
}

// Close ends every open session.
func (h *Handler) Close() {
	h.sessions.closeAll()
}

// ServeSSE opens an event stream for a new session.
func (h *Handler) ServeSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}

	creds := config.CredentialsFromHeaders(r.Header, h.fallback)
	if !creds.Complete() {
		h.logger.Error("Missing credentials in request headers")
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error":   "Unauthorized",
			"message": "Missing required headers: X-DeployHQ-Email, X-DeployHQ-API-Key, X-DeployHQ-Account",
		})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Server initialization failed",
			"message": "streaming is not supported by this connection",
		})
		return
	}

	rpc, err := h.newSession(creds)
	if err != nil {
		h.logger.Error("Failed to create session", "account", creds.Account, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Server initialization failed",
			"message": err.Error(),
		})
		return
	}

	sess, err := newSession(rpc, h.queueSize, h.logger)
	if err != nil {
		h.logger.Error("Failed to allocate session id", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Server initialization failed",
			"message": err.Error(),
		})
		return
	}

	h.sessions.add(sess)
	defer func() {
		h.sessions.remove(sess.id)
		sess.close()
		sess.logger.Info("SSE connection closed")
	}()
	sess.logger.Info("SSE session opened", "account", creds.Account)

	// requests in flight finish even if the client goes away
	go sess.run(context.WithoutCancel(r.Context()))

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, "endpoint", h.messagePath+"?sessionId="+sess.id); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-sess.done:
			return
		case data := <-sess.outbox:
			if err := writeEvent(w, "message", string(data)); err != nil {
				sess.logger.Warn("Failed to write event", "error", err)
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// ServeMessage routes a posted JSON-RPC message to its session.
func (h *Handler) ServeMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}

	id := r.URL.Query().Get("sessionId")
	if id == "" {
		h.logger.Error("No session ID provided in query parameter")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing sessionId query parameter"})
		return
	}

	sess, ok := h.sessions.get(id)
	if !ok {
		h.logger.Error("No session found", "session_id", id)
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Session not found"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxMessageSize+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Failed to read message"})
		return
	}
	if len(body) > MaxMessageSize {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "Message too large"})
		return
	}

	var req jsonrpc.Request
	if err := json.Unmarshal(body, &req); err != nil {
		sess.logger.Warn("Invalid message", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid message"})
		return
	}

	if err := sess.enqueue(r.Context(), &req); err != nil {
		if errors.Is(err, ErrSessionClosed) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Session not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to process message"})
		return
	}

	w.WriteHeader(http.StatusAccepted)
	_, _ = io.WriteString(w, "Accepted")
}

func writeEvent(w io.Writer, event, data string) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
