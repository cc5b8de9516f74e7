package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/stylist/internal/images"
	"github.com/lehigh-university-libraries/stylist/internal/studio"
)

var errFileTooLarge = errors.New("file too large")

// HandleUpload is the page's file picker form action.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	session := h.browserSession(w, r)
	if err := h.selectUploadedImage(w, r, session); err != nil && !errors.Is(err, studio.ErrBusy) {
		slog.Warn("Upload rejected", "session_id", session.ID, "err", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleSessionImage is the JSON API counterpart of HandleUpload.
func (h *Handler) HandleSessionImage(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	err := h.selectUploadedImage(w, r, session)
	switch {
	case errors.Is(err, studio.ErrBusy):
		h.writeJSONStatus(w, h.view(session), http.StatusConflict)
	case errors.Is(err, errFileTooLarge):
		h.writeError(w, fmt.Sprintf("File too large (max %dMB)", h.maxUpload/(1024*1024)), http.StatusRequestEntityTooLarge)
	case err != nil:
		h.writeJSONStatus(w, h.view(session), http.StatusBadRequest)
	default:
		h.writeJSON(w, h.view(session))
	}
}

// selectUploadedImage reads the multipart "file" field into the session. Read
// failures are recorded on the session as well as returned.
func (h *Handler) selectUploadedImage(w http.ResponseWriter, r *http.Request, session *studio.Session) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1024*1024)

	file, header, err := r.FormFile("file")
	if err != nil && !isTooLarge(err) {
		file, header, err = r.FormFile("files")
	}
	if err != nil {
		if isTooLarge(err) {
			err = errFileTooLarge
		}
		if busy := session.FailImage(err); busy != nil {
			return busy
		}
		if errors.Is(err, errFileTooLarge) {
			return err
		}
		return fmt.Errorf("%w: %w", images.ErrRead, err)
	}
	defer file.Close()

	fileData, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		if busy := session.FailImage(err); busy != nil {
			return busy
		}
		return fmt.Errorf("%w: %w", images.ErrRead, err)
	}
	if int64(len(fileData)) > h.maxUpload {
		if busy := session.FailImage(errFileTooLarge); busy != nil {
			return busy
		}
		return errFileTooLarge
	}

	// curl and some clients label every upload as octet-stream; sniff those.
	declared := header.Header.Get("Content-Type")
	if declared == "application/octet-stream" {
		declared = ""
	}

	asset, err := images.Load(bytes.NewReader(fileData), declared)
	if err != nil {
		if busy := session.FailImage(err); busy != nil {
			return busy
		}
		return err
	}

	if err := session.SelectImage(asset); err != nil {
		return err
	}

	slog.Info("Image selected", "session_id", session.ID, "filename", header.Filename, "mime_type", asset.MIMEType, "bytes", len(asset.Data))
	return nil
}

// isTooLarge reports whether the request body hit the MaxBytesReader cap
// while the multipart form was being parsed.
func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
