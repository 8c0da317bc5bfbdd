package syncengine

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/aldwin/othala/internal/apperr"
	"github.com/aldwin/othala/internal/models"
	"github.com/aldwin/othala/internal/pathcodec"
)

// Session tracks one open document: its current path, content type,
// and the pending-save timer. Exactly one commit cycle is in flight per
// session at a time; different sessions commit independently.
type Session struct {
	eng *Engine
	id  string

	mu            sync.Mutex
	currentPath   string
	contentType   models.ContentType
	timer         *time.Timer
	pending       []byte
	committing    bool
	lastCommitted []byte
	lastErr       error
	closed        bool
}

// NewSession creates an empty session. Open attaches it to a document.
func (e *Engine) NewSession() *Session {
	return &Session{
		eng: e,
		id:  strconv.FormatInt(e.nextSession.Add(1), 10),
	}
}

// ID returns the session identifier issued by the engine.
func (s *Session) ID() string { return s.id }

// Open reads the document at path and resets the session onto it: any
// pending timer from the previous document is cancelled and the last
// error is cleared. A commit already in flight is left to finish; its
// result is discarded unless the session reopened the same path.
func (s *Session) Open(path string) (*models.Document, error) {
	doc, err := s.eng.ReadDocument(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("syncengine: session %s closed: %w", s.id, apperr.ErrNotFound)
	}
	s.stopTimerLocked()
	s.currentPath = doc.Path
	s.contentType = doc.ContentType
	s.pending = nil
	s.lastCommitted = doc.Body
	s.lastErr = nil
	return doc, nil
}

// OnEdit records the latest full body from the editing surface and
// re-arms the debounce timer. Intermediate bodies are superseded and
// never separately persisted or versioned. Never blocks.
func (s *Session) OnEdit(body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = body
	if s.timer == nil {
		s.timer = time.AfterFunc(s.eng.cfg.DebounceWindow, s.commit)
	} else {
		s.timer.Reset(s.eng.cfg.DebounceWindow)
	}
}

// Restore replaces the in-memory body with a version snapshot and
// re-enters the debounce cycle as if the user had typed it, so the
// restore itself produces a new snapshot rather than rewriting history.
func (s *Session) Restore(v *models.Version) ([]byte, error) {
	s.mu.Lock()
	if s.closed || s.currentPath == "" {
		s.mu.Unlock()
		return nil, fmt.Errorf("syncengine: restore without an active document: %w", apperr.ErrNotFound)
	}
	s.mu.Unlock()

	body := []byte(v.Body)
	s.OnEdit(body)
	return body, nil
}

// Invalidate clears the active document if deletedPath is, or contains,
// the session's current path, so the session never points at storage
// that no longer exists. The pending timer is cancelled outright.
func (s *Session) Invalidate(deletedPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentPath == "" || !pathcodec.IsWithin(s.currentPath, deletedPath) {
		return
	}
	s.stopTimerLocked()
	s.currentPath = ""
	s.contentType = ""
	s.pending = nil
	s.lastCommitted = nil
}

// Close tears the session down and cancels any pending commit.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	s.closed = true
	s.currentPath = ""
	s.pending = nil
}

// Path returns the current canonical path, or "" when no document is active.
func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPath
}

// ContentType returns the active document's content type.
func (s *Session) ContentType() models.ContentType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contentType
}

// LastError returns the error of the most recent failed commit, or nil.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// commit fires when the debounce window elapses. It takes the pending
// body and runs one rename/save/version cycle against the engine.
func (s *Session) commit() {
	s.mu.Lock()
	if s.closed || s.currentPath == "" || s.pending == nil {
		s.mu.Unlock()
		return
	}
	if s.committing {
		// Single logical writer per session: lets the in-flight commit
		// settle, then waits out a fresh window.
		s.timer.Reset(s.eng.cfg.DebounceWindow)
		s.mu.Unlock()
		return
	}
	startPath := s.currentPath
	ct := s.contentType
	body := s.pending
	s.pending = nil
	s.committing = true
	s.mu.Unlock()

	res := s.eng.commitBody(startPath, ct, body)

	s.mu.Lock()
	s.committing = false
	// Stale-result suppression: the session may have moved to another
	// document (or been invalidated) while the commit was in flight.
	stale := s.closed || s.currentPath != startPath
	if !stale {
		if res.Err != nil {
			s.lastErr = res.Err
		} else {
			s.currentPath = res.Path
			s.lastCommitted = body
			s.lastErr = nil
		}
	}
	s.mu.Unlock()

	if !stale && s.eng.onResult != nil {
		s.eng.onResult(s.id, res)
	}
}

// stopTimerLocked cancels the pending timer; callers hold s.mu.
func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.pending = nil
}
