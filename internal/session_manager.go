package internal

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/musicstore/pkg/session"
)

// SessionManager loads sessions lazily and persists them right before the
// response header is sent.
type SessionManager struct {
	store  session.Store
	cfg    session.Config
	logger *slog.Logger
	now    func() time.Time
}

// NewSessionManager creates a SessionManager. Empty cookie settings fall
// back to session defaults.
func NewSessionManager(store session.Store, cfg session.Config, logger *slog.Logger) *SessionManager {
	if cfg.CookieName == "" {
		cfg.CookieName = ".MusicStore.Session"
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = "/"
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = session.DefaultIdleTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{store: store, cfg: cfg, logger: logger, now: time.Now}
}

// Store returns the underlying session store.
func (m *SessionManager) Store() session.Store { return m.store }

// Config returns the effective configuration.
func (m *SessionManager) Config() session.Config { return m.cfg }

// Purge drops expired sessions from the store.
func (m *SessionManager) Purge(ctx context.Context) (int, error) {
	return m.store.Purge(ctx)
}

// Middleware makes Context.Session available to the rest of the pipeline.
func (m *SessionManager) Middleware() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			st := &sessionState{m: m, r: c.Request()}
			c.Set(sessionStateKey{}, st)

			ctx := c.Context()
			rw := c.ResponseWriter()
			rw.OnBeforeWrite(func() { st.flush(ctx, rw) })

			err := next(c)
			if err == nil && !rw.Written() {
				st.flush(ctx, rw)
			}
			return err
		}
	}
}

type sessionStateKey struct{}

type sessionState struct {
	m *SessionManager
	r *http.Request

	mu      sync.Mutex
	sess    *session.Session
	flushed bool
}

func (st *sessionState) load(ctx context.Context) (*session.Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.sess != nil {
		return st.sess, nil
	}

	if ck, err := st.r.Cookie(st.m.cfg.CookieName); err == nil && ck.Value != "" {
		sess, err := st.m.store.Load(ctx, ck.Value)
		switch {
		case err == nil:
			st.sess = sess
			return sess, nil
		case !errors.Is(err, session.ErrNotFound):
			return nil, err
		}
	}

	st.sess = session.New(rand.Text(), st.m.now())
	return st.sess, nil
}

// flush saves a touched session once. Existing sessions are saved on every
// request so their idle expiry slides; new ones only once they hold values.
func (st *sessionState) flush(ctx context.Context, w http.ResponseWriter) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.flushed || st.sess == nil {
		return
	}
	st.flushed = true

	sess := st.sess
	if sess.IsNew() && !sess.IsDirty() {
		return
	}
	isNew := sess.IsNew()
	sess.LastActiveAt = st.m.now()

	if err := st.m.store.Save(ctx, sess, st.m.cfg.IdleTimeout); err != nil {
		st.m.logger.ErrorContext(ctx, "failed to save session",
			slog.String("session_id", sess.ID),
			slog.Any("error", err),
		)
		return
	}
	if isNew {
		http.SetCookie(w, &http.Cookie{
			Name:     st.m.cfg.CookieName,
			Value:    sess.ID,
			Path:     st.m.cfg.CookiePath,
			HttpOnly: true,
			Secure:   st.m.cfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
