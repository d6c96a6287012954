package messaging

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/orgspace-systems/orgspace-stack/common/logging"
)

// ErrClosed is returned by a closed Local broker.
var ErrClosed = errors.New("messaging: client closed")

// Local is an in-process Client. Handlers run synchronously on the
// publishing goroutine. It serves single-instance deployments and tests.
type Local struct {
	logger *logging.Logger

	mu     sync.RWMutex
	subs   map[*localSub]struct{}
	closed bool
}

// NewLocal creates an empty in-process broker. Handler failures are logged
// to logger, or to the process default when it is nil.
func NewLocal(logger *logging.Logger) *Local {
	if logger == nil {
		logger = logging.Default()
	}
	return &Local{
		logger: logger.With(slog.String("component", "local-broker")),
		subs:   make(map[*localSub]struct{}),
	}
}

func (l *Local) Publish(ctx context.Context, subject string, data []byte) error {
	return l.PublishMsg(ctx, &Message{Subject: subject, Data: data})
}

func (l *Local) PublishMsg(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.RLock()
	if l.closed {
		l.mu.RUnlock()
		return ErrClosed
	}
	var targets []*localSub
	for s := range l.subs {
		if SubjectMatches(s.subject, msg.Subject) {
			targets = append(targets, s)
		}
	}
	l.mu.RUnlock()

	out := *msg
	if out.Timestamp.IsZero() {
		out.Timestamp = time.Now()
	}
	for _, s := range targets {
		if err := s.handler(ctx, &out); err != nil {
			l.logger.WarnContext(ctx, "Message handler failed", slog.String("subject", msg.Subject), logging.Error(err))
		}
	}
	return nil
}

func (l *Local) Subscribe(subject string, handler MessageHandler) (Subscription, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrClosed
	}
	s := &localSub{owner: l, subject: subject, handler: handler}
	l.subs[s] = struct{}{}
	return s, nil
}

func (l *Local) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.subs = make(map[*localSub]struct{})
	return nil
}

func (l *Local) Drain() error { return l.Close() }

func (l *Local) IsConnected() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return !l.closed
}

func (l *Local) RTT() (time.Duration, error) {
	if !l.IsConnected() {
		return 0, ErrClosed
	}
	return 0, nil
}

type localSub struct {
	owner   *Local
	subject string
	handler MessageHandler
}

func (s *localSub) Unsubscribe() error {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()
	delete(s.owner.subs, s)
	return nil
}

func (s *localSub) Subject() string { return s.subject }

func (s *localSub) IsValid() bool {
	s.owner.mu.RLock()
	defer s.owner.mu.RUnlock()
	_, ok := s.owner.subs[s]
	return ok
}
