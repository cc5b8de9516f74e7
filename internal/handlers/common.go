package handlers

import (
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lehigh-university-libraries/stylist/internal/config"
	"github.com/lehigh-university-libraries/stylist/internal/models"
	"github.com/lehigh-university-libraries/stylist/internal/storage"
	"github.com/lehigh-university-libraries/stylist/internal/studio"
)

const sessionCookie = "stylist_session"

type Handler struct {
	sessionStore *storage.SessionStore
	service      *studio.Service
	examples     []string
	maxUpload    int64
	sessionTTL   time.Duration
	page         *template.Template
}

func New(service *studio.Service, cfg config.Config) *Handler {
	return &Handler{
		sessionStore: storage.New(),
		service:      service,
		examples:     cfg.Examples,
		maxUpload:    cfg.MaxUploadBytes,
		sessionTTL:   cfg.SessionTTL,
		page:         pageTemplate,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, data, http.StatusOK)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

func (h *Handler) view(session *studio.Session) models.View {
	return studio.Present(session.Snapshot(), h.examples)
}

// Session helpers

// getSessionOrError resolves the {id} URL parameter. Browser sessions are
// only visible to the request carrying their cookie.
func (h *Handler) getSessionOrError(w http.ResponseWriter, r *http.Request) (*studio.Session, bool) {
	session, exists := h.sessionStore.Get(chi.URLParam(r, "id"))
	if exists && session.Origin == studio.OriginBrowser && cookieSessionID(r) != session.ID {
		exists = false
	}
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}

func cookieSessionID(r *http.Request) string {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// currentSession returns the browser session named by the cookie, if any.
func (h *Handler) currentSession(r *http.Request) (*studio.Session, bool) {
	id := cookieSessionID(r)
	if id == "" {
		return nil, false
	}
	session, ok := h.sessionStore.Get(id)
	if !ok || session.Origin != studio.OriginBrowser {
		return nil, false
	}
	return session, true
}

// browserSession returns the cookie's session, creating one (and the cookie)
// when there is none yet or the old one expired.
func (h *Handler) browserSession(w http.ResponseWriter, r *http.Request) *studio.Session {
	if session, ok := h.currentSession(r); ok {
		return session
	}

	session := h.sessionStore.Create(studio.OriginBrowser)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	slog.Info("Session created", "session_id", session.ID)
	return session
}

// SweepSessions drops idle sessions every quarter of the session TTL until
// ctx is done.
func (h *Handler) SweepSessions(ctx context.Context) {
	interval := max(h.sessionTTL/4, time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := h.sessionStore.Prune(h.sessionTTL); n > 0 {
				slog.Info("Expired idle sessions", "count", n, "ttl", h.sessionTTL)
			}
		}
	}
}
