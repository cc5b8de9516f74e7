package handlers

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/stylist/internal/studio"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	// Only data URIs built by images.Asset reach the template.
	"dataURI": func(s string) template.URL { return template.URL(s) },
}).ParseFS(templateFS, "templates/index.html"))

// HandlePage renders the studio for the browser's session. Visitors without
// one see an empty studio; the session is created by the first upload.
func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	view := studio.Present(studio.Snapshot{State: studio.Idle{}}, h.examples)
	if session, ok := h.currentSession(r); ok {
		view = h.view(session)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.page.Execute(w, view); err != nil {
		slog.Error("Unable to render page", "session_id", view.SessionID, "err", err)
	}
}

// HandlePrompt stores the prompt typed into the page, or the example picked.
func (h *Handler) HandlePrompt(w http.ResponseWriter, r *http.Request) {
	session, ok := h.currentSession(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if example := r.FormValue("example"); example != "" {
		index, err := strconv.Atoi(example)
		if err == nil {
			err = session.UseExample(index, h.examples)
		}
		if err != nil {
			slog.Warn("Invalid example prompt", "session_id", session.ID, "example", example, "err", err)
		}
	} else {
		session.SetPrompt(r.FormValue("prompt"))
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleGenerate is the page's "Generate New Look" action. The prompt field
// is submitted with it so the latest text is used.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	session, ok := h.currentSession(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err == nil && r.PostForm.Has("prompt") {
		if _, loading := session.State().(studio.Loading); !loading {
			session.SetPrompt(r.PostForm.Get("prompt"))
		}
	}
	if _, err := h.service.Submit(context.WithoutCancel(r.Context()), session); err != nil {
		slog.Info("Generate rejected", "session_id", session.ID, "err", err)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) HandlePromote(w http.ResponseWriter, r *http.Request) {
	session, ok := h.currentSession(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := session.Promote(); err != nil {
		slog.Info("Promote rejected", "session_id", session.ID, "err", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleResult downloads the generated image of the browser's session.
func (h *Handler) HandleResult(w http.ResponseWriter, r *http.Request) {
	session, ok := h.currentSession(r)
	if !ok {
		h.writeError(w, "No generated image", http.StatusNotFound)
		return
	}

	succeeded, ok := session.State().(studio.Succeeded)
	if !ok {
		h.writeError(w, "No generated image", http.StatusNotFound)
		return
	}

	name := "stylist" + succeeded.Result.Extension()
	w.Header().Set("Content-Type", succeeded.Result.MIMEType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+strings.ReplaceAll(name, `"`, "")+`"`)
	if _, err := w.Write(succeeded.Result.Data); err != nil {
		slog.Error("Unable to write result", "session_id", session.ID, "err", err)
	}
}
