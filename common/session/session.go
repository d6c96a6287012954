// Package session holds the signed-in actor's session: the access token
// issued by the record API and the actor identity resolved at sign-in.
//
// A Session is created once after sign-in, handed explicitly to every
// component that calls the record API on the actor's behalf, and removed
// from its Store at logout.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/orgspace-systems/orgspace-stack/common/records"
)

// DefaultTTL bounds a session when the access token carries no expiry.
const DefaultTTL = 24 * time.Hour

var (
	// ErrNotFound means no live session exists for the given ID.
	ErrNotFound = errors.New("session not found")
	// ErrExpired means the session existed but its lifetime has passed.
	ErrExpired = errors.New("session expired")
)

// Session is the authenticated context for one signed-in actor.
type Session struct {
	ID        string        `json:"id"`
	Token     string        `json:"token"`
	Actor     records.Actor `json:"actor"`
	IssuedAt  time.Time     `json:"issued_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// New creates a session for actor. The lifetime is ttl, shortened to
// tokenExpiry when the token itself expires sooner.
func New(token string, actor records.Actor, now time.Time, ttl time.Duration, tokenExpiry time.Time) *Session {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	expires := now.Add(ttl)
	if !tokenExpiry.IsZero() && tokenExpiry.Before(expires) {
		expires = tokenExpiry
	}
	return &Session{
		ID:        uuid.NewString(),
		Token:     token,
		Actor:     actor,
		IssuedAt:  now,
		ExpiresAt: expires,
	}
}

// AccessToken returns the bearer credential for the record API.
func (s *Session) AccessToken() string {
	if s == nil {
		return ""
	}
	return s.Token
}

// Expired reports whether the session is past its lifetime at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// TTL returns the remaining lifetime at now, never negative.
func (s *Session) TTL(now time.Time) time.Duration {
	if d := s.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Store persists sessions between requests.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

type contextKey string

const sessionKey contextKey = "session"

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext returns the session stored in ctx, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok && s != nil
}
