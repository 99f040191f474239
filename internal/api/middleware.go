package api

import (
	"net/http"
	"time"

	"github.com/trogers1052/paper-trader/internal/session"
	"go.uber.org/zap"
)

// noCache keeps browsers from caching balances and positions
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Expires", "0")
		w.Header().Set("Pragma", "no-cache")
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// loadSession resolves the session cookie into a session.State on the
// request context. Lookup failures degrade to anonymous.
func (h *Handler) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := session.Anonymous
		if c, err := r.Cookie(h.cookie.Name); err == nil {
			state, err = h.sessions.Lookup(r.Context(), c.Value)
			if err != nil {
				h.logger.Warn("session lookup failed", zap.Error(err))
				state = session.Anonymous
			}
		}
		next.ServeHTTP(w, r.WithContext(session.WithState(r.Context(), state)))
	})
}

// requireAuth sends anonymous requests to the login page
func (h *Handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !session.FromContext(r.Context()).Authenticated {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, userID int64) error {
	h.destroySession(r)

	token, err := h.sessions.Create(r.Context(), userID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (h *Handler) endSession(w http.ResponseWriter, r *http.Request) {
	h.destroySession(r)
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) destroySession(r *http.Request) {
	state := session.FromContext(r.Context())
	if state.Token == "" {
		return
	}
	if err := h.sessions.Destroy(r.Context(), state.Token); err != nil {
		h.logger.Warn("failed to destroy session", zap.Error(err))
	}
}
