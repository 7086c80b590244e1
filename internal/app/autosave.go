package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Amund211/gamenight/internal/domain"
	"github.com/Amund211/gamenight/internal/logging"
)

type sessionKey struct {
	kind domain.SessionKind
	id   string
}

type pendingSave struct {
	session domain.Session
	stop    func() bool
}

// ScheduleFunc runs f after delay. The returned function cancels the call if it has not started.
type ScheduleFunc func(delay time.Duration, f func()) (stop func() bool)

func AfterFuncScheduler(delay time.Duration, f func()) func() bool {
	return time.AfterFunc(delay, f).Stop
}

// SessionWriter debounces saves of live sessions.
//
// While a session is Live, saves only update an in-memory copy and the copy is written
// once no save has happened for the autosave delay. Reads return the pending copy.
// Saving a session that is not Live writes it immediately, along with anything pending.
type SessionWriter struct {
	repository sessionRepository
	delay      time.Duration
	timeout    time.Duration
	schedule   ScheduleFunc
	logger     *slog.Logger

	// writeLock is held for every write to the repository, before mu
	writeLock sync.Mutex

	mu      sync.Mutex
	pending map[sessionKey]*pendingSave
	closed  bool
}

func NewSessionWriter(
	repository sessionRepository,
	delay time.Duration,
	timeout time.Duration,
	schedule ScheduleFunc,
	logger *slog.Logger,
) *SessionWriter {
	return &SessionWriter{
		repository: repository,
		delay:      delay,
		timeout:    timeout,
		schedule:   schedule,
		logger:     logger,
		pending:    make(map[sessionKey]*pendingSave),
	}
}

func keyOf(session domain.Session) sessionKey {
	return sessionKey{kind: session.Kind, id: session.ID}
}

// takePending removes and returns the pending copy, cancelling its scheduled write
func (w *SessionWriter) takePending(key sessionKey) (domain.Session, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	pending, ok := w.pending[key]
	if !ok {
		return domain.Session{}, false
	}
	pending.stop()
	delete(w.pending, key)
	return pending.session, true
}

func (w *SessionWriter) CreateSession(ctx context.Context, session domain.Session) error {
	return w.repository.CreateSession(ctx, session)
}

func (w *SessionWriter) SaveSession(ctx context.Context, session domain.Session) error {
	key := keyOf(session)

	if session.Status == domain.StatusLive && w.delay > 0 {
		w.mu.Lock()
		if !w.closed {
			if previous, ok := w.pending[key]; ok {
				previous.stop()
			}
			w.pending[key] = &pendingSave{
				session: session.Clone(),
				stop:    w.schedule(w.delay, func() { w.flushInBackground(key) }),
			}
			w.mu.Unlock()
			return nil
		}
		w.mu.Unlock()
	}

	w.writeLock.Lock()
	defer w.writeLock.Unlock()

	w.takePending(key)
	return w.repository.SaveSession(ctx, session)
}

func (w *SessionWriter) flushInBackground(key sessionKey) {
	ctx := logging.AddToContext(context.Background(), w.logger)
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	err := w.flush(ctx, key)
	if err != nil {
		// NOTE: The session repository handles its own error reporting
		w.logger.ErrorContext(ctx, "Failed to autosave session",
			"sessionKind", string(key.kind),
			"sessionID", key.id,
			"error", err.Error(),
		)
	}
}

func (w *SessionWriter) flush(ctx context.Context, key sessionKey) error {
	w.writeLock.Lock()
	defer w.writeLock.Unlock()

	session, ok := w.takePending(key)
	if !ok {
		return nil
	}

	if err := w.repository.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("failed to save %s %s: %w", key.kind, key.id, err)
	}
	w.logger.InfoContext(ctx, "Autosaved session", "sessionKind", string(key.kind), "sessionID", key.id)
	return nil
}

// Flush writes every pending session now
func (w *SessionWriter) Flush(ctx context.Context) error {
	w.mu.Lock()
	keys := make([]sessionKey, 0, len(w.pending))
	for key := range w.pending {
		keys = append(keys, key)
	}
	w.mu.Unlock()

	var errs []error
	for _, key := range keys {
		if err := w.flush(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close flushes everything pending. Saves after Close are written immediately.
func (w *SessionWriter) Close(ctx context.Context) error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()

	return w.Flush(ctx)
}

func (w *SessionWriter) GetSession(ctx context.Context, kind domain.SessionKind, id string) (domain.Session, error) {
	w.mu.Lock()
	pending, ok := w.pending[sessionKey{kind: kind, id: id}]
	var session domain.Session
	if ok {
		session = pending.session.Clone()
	}
	w.mu.Unlock()

	if ok {
		return session, nil
	}
	return w.repository.GetSession(ctx, kind, id)
}

func (w *SessionWriter) ListSessions(ctx context.Context, kind domain.SessionKind) ([]domain.Session, error) {
	sessions, err := w.repository.ListSessions(ctx, kind)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for i, session := range sessions {
		if pending, ok := w.pending[keyOf(session)]; ok {
			sessions[i] = pending.session.Clone()
		}
	}
	return sessions, nil
}

func (w *SessionWriter) DeleteSession(ctx context.Context, kind domain.SessionKind, id string) error {
	w.writeLock.Lock()
	defer w.writeLock.Unlock()

	w.takePending(sessionKey{kind: kind, id: id})
	return w.repository.DeleteSession(ctx, kind, id)
}
