package studio

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/stylist/internal/images"
	"github.com/lehigh-university-libraries/stylist/internal/providers"
)

// Service runs generation attempts for sessions against an editor.
type Service struct {
	editor   providers.Editor
	denylist []string
	wg       sync.WaitGroup
}

// NewService returns a service that filters prompts with denylist before
// handing them to editor.
func NewService(editor providers.Editor, denylist []string) *Service {
	return &Service{
		editor:   editor,
		denylist: denylist,
	}
}

// Generate runs one attempt to completion and returns the result. The session
// ends in Succeeded or Failed unless it was already busy.
func (s *Service) Generate(ctx context.Context, sess *Session) (images.Asset, error) {
	job, err := sess.Begin(s.denylist)
	if err != nil {
		slog.Info("Generation rejected", "session_id", sess.ID, "reason", err)
		return images.Asset{}, err
	}
	return s.run(ctx, sess, job)
}

// Submit begins an attempt synchronously and runs the edit in the background.
// The returned snapshot is Loading on success. Validation failures are
// returned after the session has moved to Failed.
func (s *Service) Submit(ctx context.Context, sess *Session) (Snapshot, error) {
	job, err := sess.Begin(s.denylist)
	if err != nil {
		slog.Info("Generation rejected", "session_id", sess.ID, "reason", err)
		return sess.Snapshot(), err
	}

	snap := sess.Snapshot()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_, _ = s.run(ctx, sess, job)
	}()
	return snap, nil
}

// Wait blocks until every background attempt has completed.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) run(ctx context.Context, sess *Session, job Job) (images.Asset, error) {
	slog.Info("Generating new look", "session_id", sess.ID, "mime_type", job.Image.MIMEType, "prompt_length", len(job.Prompt))
	start := time.Now()

	result, err := s.editor.Edit(ctx, job.Image, job.Prompt)
	sess.Complete(result, err)
	if err != nil {
		level := slog.LevelWarn
		if Message(err) == MsgGeneric {
			level = slog.LevelError
		}
		slog.Log(ctx, level, "Generation failed", "session_id", sess.ID, "err", err, "duration", time.Since(start))
		return images.Asset{}, err
	}

	slog.Info("Generation succeeded", "session_id", sess.ID, "mime_type", result.MIMEType, "duration", time.Since(start))
	return result, nil
}
