package sse

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/atlanticdynamic/deployhq-mcp/internal/transport/jsonrpc"
	"github.com/gofrs/uuid/v5"
)

var ErrSessionClosed = errors.New("session closed")

// session is one SSE connection. Inbound requests are queued and handled by
// a single goroutine so responses are emitted in arrival order.
type session struct {
	id      string
	handler *jsonrpc.Handler
	inbox   chan *jsonrpc.Request
	outbox  chan []byte
	done    chan struct{}
	once    sync.Once
	logger  *slog.Logger
}

func newSession(handler *jsonrpc.Handler, queueSize int, logger *slog.Logger) (*session, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	return &session{
		id:      id.String(),
		handler: handler,
		inbox:   make(chan *jsonrpc.Request, queueSize),
		outbox:  make(chan []byte, queueSize),
		done:    make(chan struct{}),
		logger:  logger.With("session_id", id.String()),
	}, nil
}

// enqueue hands req to the session worker, waiting while the queue is full.
func (s *session) enqueue(ctx context.Context, req *jsonrpc.Request) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}

	select {
	case s.inbox <- req:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run handles queued requests until the session is closed. A request that is
// already being handled when the stream goes away still runs to completion.
func (s *session) run(ctx context.Context) {
	for {
		select {
		case <-s.done:
			return
		case req := <-s.inbox:
			resp := s.handler.Handle(ctx, req)
			if resp == nil {
				continue
			}
			data, err := json.Marshal(resp)
			if err != nil {
				s.logger.Error("Failed to encode response", "error", err)
				continue
			}
			select {
			case s.outbox <- data:
			case <-s.done:
				return
			}
		}
	}
}

func (s *session) close() {
	s.once.Do(func() {
		close(s.done)
	})
}

// sessionStore maps session ids to live sessions.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*session)}
}

func (s *sessionStore) add(sess *session) {
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
}

func (s *sessionStore) get(id string) (*session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	return sess, ok
}

func (s *sessionStore) remove(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *sessionStore) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *sessionStore) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.close()
		delete(s.sessions, id)
	}
}
