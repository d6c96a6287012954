// Package auth binds browser cookies to server-side sessions. The browser
// only ever holds an opaque session ID; the record API access token stays in
// the session store and is forwarded as a bearer credential.
package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/orgspace-systems/orgspace-stack/common/access"
	"github.com/orgspace-systems/orgspace-stack/common/httputil"
	"github.com/orgspace-systems/orgspace-stack/common/logging"
	"github.com/orgspace-systems/orgspace-stack/common/session"
	"github.com/orgspace-systems/orgspace-stack/web/backend/internal/metrics"
)

// DefaultCookieName is used when Config.CookieName is empty.
const DefaultCookieName = "orgspace_session"

type Config struct {
	CookieName   string
	CookieDomain string
	CookieSecure bool
}

type Manager struct {
	store  session.Store
	cfg    Config
	logger *logging.Logger
	now    func() time.Time
}

func NewManager(store session.Store, cfg Config, logger *logging.Logger) *Manager {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Manager{
		store:  store,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Issue stores sess and sets its cookie. The cookie lives exactly as long as
// the session.
func (m *Manager) Issue(ctx context.Context, w http.ResponseWriter, sess *session.Session) error {
	maxAge := int(sess.TTL(m.now()) / time.Second)
	if maxAge <= 0 {
		return session.ErrExpired
	}
	if err := m.store.Save(ctx, sess); err != nil {
		return err
	}
	m.setCookie(w, sess.ID, maxAge)
	metrics.Sessions.WithLabelValues("issued").Inc()
	return nil
}

// Save persists changes to an already issued session.
func (m *Manager) Save(ctx context.Context, sess *session.Session) error {
	return m.store.Save(ctx, sess)
}

// Current returns the live session named by the request cookie.
func (m *Manager) Current(r *http.Request) (*session.Session, error) {
	c, err := r.Cookie(m.cfg.CookieName)
	if err != nil || c.Value == "" {
		return nil, session.ErrNotFound
	}
	sess, err := m.store.Get(r.Context(), c.Value)
	if err != nil {
		return nil, err
	}
	if sess.Expired(m.now()) {
		_ = m.store.Delete(r.Context(), sess.ID)
		return nil, session.ErrExpired
	}
	return sess, nil
}

// Revoke deletes the request's session, if any, and clears the cookie.
func (m *Manager) Revoke(w http.ResponseWriter, r *http.Request) error {
	defer m.clearCookie(w)
	c, err := r.Cookie(m.cfg.CookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	if err := m.store.Delete(r.Context(), c.Value); err != nil {
		return err
	}
	metrics.Sessions.WithLabelValues("revoked").Inc()
	return nil
}

// Protect rejects requests without a live session and attaches the session
// to the request context otherwise.
func (m *Manager) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.Current(r)
		if err != nil {
			switch {
			case errors.Is(err, session.ErrExpired):
				metrics.Sessions.WithLabelValues("expired").Inc()
				m.clearCookie(w)
				httputil.WriteJSONAPIUnauthorizedError(w, "Session expired, please sign in again")
			case errors.Is(err, session.ErrNotFound):
				metrics.Sessions.WithLabelValues("rejected").Inc()
				m.clearCookie(w)
				httputil.WriteJSONAPIUnauthorizedError(w, "Authentication required")
			default:
				m.logger.ErrorContext(r.Context(), "Session lookup failed", logging.Error(err))
				httputil.WriteJSONAPIError(w, http.StatusServiceUnavailable, "session_store_unavailable",
					"Service Unavailable", "Sessions are temporarily unavailable")
			}
			return
		}
		next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), sess)))
	})
}

// RequireAccess wraps Protect and additionally requires that the session's
// actor may open page.
func (m *Manager) RequireAccess(page access.Page) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return m.Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, _ := session.FromContext(r.Context())
			if !access.CanAccess(sess.Actor, page) {
				m.logger.WarnContext(r.Context(), "Page access denied", logging.Resource(string(page)))
				httputil.WriteJSONAPIError(w, http.StatusForbidden, "access_denied", "Forbidden",
					"Your role cannot open "+string(page))
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

func (m *Manager) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    value,
		Path:     "/",
		Domain:   m.cfg.CookieDomain,
		MaxAge:   maxAge,
		Secure:   m.cfg.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (m *Manager) clearCookie(w http.ResponseWriter) {
	m.setCookie(w, "", -1)
}
