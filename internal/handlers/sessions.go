package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/lehigh-university-libraries/stylist/internal/models"
	"github.com/lehigh-university-libraries/stylist/internal/studio"
)

// HandleSessions lists sessions created through the API. Browser sessions
// never appear here.
func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.sessionStore.GetAll()
	sessionList := make([]models.SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		if session.Origin != studio.OriginAPI {
			continue
		}
		snap := session.Snapshot()
		sessionList = append(sessionList, models.SessionSummary{
			ID:        snap.ID,
			State:     snap.State.Name(),
			HasImage:  snap.Image != nil,
			CreatedAt: snap.CreatedAt,
		})
	}
	sort.Slice(sessionList, func(i, j int) bool {
		return sessionList[i].CreatedAt.Before(sessionList[j].CreatedAt)
	})
	h.writeJSON(w, sessionList)
}

func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	session := h.sessionStore.Create(studio.OriginAPI)
	h.writeJSONStatus(w, h.view(session), http.StatusCreated)
}

func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, h.view(session))
}

func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	h.sessionStore.Delete(session.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleSessionPrompt(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	var request struct {
		Prompt  string `json:"prompt"`
		Example *int   `json:"example,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if request.Example != nil {
		if err := session.UseExample(*request.Example, h.examples); err != nil {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
	} else {
		session.SetPrompt(request.Prompt)
	}

	h.writeJSON(w, h.view(session))
}

// HandleSessionGenerate starts an edit and answers immediately with the
// loading view. Clients poll the session until the state leaves "loading".
func (h *Handler) HandleSessionGenerate(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	_, err := h.service.Submit(context.WithoutCancel(r.Context()), session)
	switch {
	case errors.Is(err, studio.ErrBusy):
		h.writeJSONStatus(w, h.view(session), http.StatusConflict)
	case err != nil:
		h.writeJSONStatus(w, h.view(session), http.StatusUnprocessableEntity)
	default:
		h.writeJSONStatus(w, h.view(session), http.StatusAccepted)
	}
}

func (h *Handler) HandleSessionPromote(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	if err := session.Promote(); err != nil {
		h.writeJSONStatus(w, h.view(session), http.StatusConflict)
		return
	}
	h.writeJSON(w, h.view(session))
}

func (h *Handler) HandleExamples(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.examples)
}
