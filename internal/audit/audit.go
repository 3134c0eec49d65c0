// Package audit records one Log per request together with the leveled
// entries written while the request is handled.
package audit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go-wiki-api/internal/data"
	"go-wiki-api/internal/logger"

	"github.com/cenkalti/backoff/v4"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Level is the severity of an entry.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// StatusAborted is stored when the client went away before any status was
// written.
const StatusAborted = 499

// ProvisionalStatus is the status a Log holds until it is finalized.
const ProvisionalStatus = http.StatusOK

// ErrSessionFinalized is returned by Append and Finalize once the session
// has been finalized.
var ErrSessionFinalized = errors.New("audit session already finalized")

var (
	sessionsOpened = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wiki",
		Subsystem: "audit",
		Name:      "sessions_opened_total",
		Help:      "Audit sessions opened.",
	})

	sessionsFinalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wiki",
		Subsystem: "audit",
		Name:      "sessions_finalized_total",
		Help:      "Audit sessions finalized, by status class.",
	}, []string{"class"})

	storeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wiki",
		Subsystem: "audit",
		Name:      "store_failures_total",
		Help:      "Failed audit writes, by operation.",
	}, []string{"op"})
)

// Store persists logs and entries.
type Store interface {
	Create(ctx context.Context, l *data.Log) error
	AddEntry(ctx context.Context, e *data.LogEntry) error
	Finalize(ctx context.Context, id string, status int, at time.Time) error
}

// Recorder opens sessions.
type Recorder struct {
	store   Store
	log     logger.Logger
	now     func() time.Time
	backOff func() backoff.BackOff
}

func NewRecorder(store Store, log logger.Logger) *Recorder {
	return &Recorder{store: store, log: log, now: time.Now, backOff: finalizeBackOff}
}

// finalizeBackOff retries a failed finalize twice before giving up.
func finalizeBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	return backoff.WithMaxRetries(b, 2)
}

// Open writes the provisional Log for a request. userID is nil for
// anonymous requests.
func (r *Recorder) Open(ctx context.Context, method, route string, userID *int64) (*Session, error) {
	l := &data.Log{
		ID:        ulid.Make().String(),
		Method:    method,
		Route:     route,
		UserID:    userID,
		Status:    ProvisionalStatus,
		CreatedAt: r.now().UTC(),
	}
	if err := r.store.Create(ctx, l); err != nil {
		storeFailures.WithLabelValues("open").Inc()
		return nil, fmt.Errorf("failed to open audit session: %w", err)
	}
	sessionsOpened.Inc()
	return &Session{
		recorder: r,
		id:       l.ID,
		log:      r.log.With(map[string]interface{}{"audit_log_id": l.ID}),
	}, nil
}

// Session is the audit handle of one request. A nil *Session accepts and
// discards entries so code paths without auditing need no checks.
type Session struct {
	recorder *Recorder
	id       string
	log      logger.Logger

	mu        sync.Mutex
	position  int
	finalized bool
}

// ID returns the Log id.
func (s *Session) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// Append stores an entry after all entries appended before it.
func (s *Session) Append(ctx context.Context, level Level, message string) error {
	if s == nil {
		return nil
	}
	switch level {
	case LevelInfo, LevelWarning, LevelError:
	default:
		return fmt.Errorf("unknown audit level %q", level)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		s.log.Error(ErrSessionFinalized, fmt.Sprintf("Dropped %s entry %q", level, message))
		return ErrSessionFinalized
	}

	e := &data.LogEntry{
		LogID:     s.id,
		Position:  s.position + 1,
		Level:     string(level),
		Message:   message,
		CreatedAt: s.recorder.now().UTC(),
	}
	if err := s.recorder.store.AddEntry(ctx, e); err != nil {
		storeFailures.WithLabelValues("append").Inc()
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	s.position = e.Position
	return nil
}

func (s *Session) Info(ctx context.Context, message string) error {
	return s.Append(ctx, LevelInfo, message)
}

func (s *Session) Warn(ctx context.Context, message string) error {
	return s.Append(ctx, LevelWarning, message)
}

func (s *Session) Error(ctx context.Context, message string) error {
	return s.Append(ctx, LevelError, message)
}

// Finalize replaces the provisional status with status, retrying failed
// store writes. Only the first call has any effect; later calls return
// ErrSessionFinalized.
func (s *Session) Finalize(ctx context.Context, status int) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return ErrSessionFinalized
	}
	s.finalized = true

	at := s.recorder.now().UTC()
	err := backoff.Retry(func() error {
		err := s.recorder.store.Finalize(ctx, s.id, status, at)
		if errors.Is(err, data.ErrNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(s.recorder.backOff(), ctx))
	if err != nil {
		storeFailures.WithLabelValues("finalize").Inc()
		s.log.With(map[string]interface{}{"status": status}).Error(err, "Audit log left provisional")
		return fmt.Errorf("failed to finalize audit session: %w", err)
	}
	sessionsFinalized.WithLabelValues(statusClass(status)).Inc()
	return nil
}

// Finalized reports whether Finalize has been called.
func (s *Session) Finalized() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalized
}

func statusClass(status int) string {
	if status == StatusAborted {
		return "aborted"
	}
	return fmt.Sprintf("%dxx", status/100)
}

type sessionKey struct{}

// WithSession attaches s to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the request's session, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}
