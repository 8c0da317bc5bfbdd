// Package syncengine turns a stream of in-memory edits into durable,
// consistently named, versioned documents on the vault store. It owns
// the debounce/rename/save/version orchestration and the per-session
// active-document identity.
package syncengine

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/aldwin/othala/internal/apperr"
	"github.com/aldwin/othala/internal/history"
	"github.com/aldwin/othala/internal/models"
	"github.com/aldwin/othala/internal/pathcodec"
	"github.com/aldwin/othala/internal/storage"
	"github.com/aldwin/othala/internal/title"
)

// RenamePolicy controls how a failed auto-rename during commit is handled.
type RenamePolicy string

const (
	// RenameBestEffort logs and swallows rename failures; the body is
	// saved at the old path. Renaming is a convenience, saving is the
	// durable contract.
	RenameBestEffort RenamePolicy = "best-effort"
	// RenameStrict still saves at the old path but surfaces the rename
	// failure through the commit result.
	RenameStrict RenamePolicy = "strict"
)

// Config holds engine tunables.
type Config struct {
	// DebounceWindow is the quiet period after the last edit before a
	// commit is attempted.
	DebounceWindow time.Duration
	RenamePolicy   RenamePolicy
}

// CommitResult reports the outcome of one commit cycle.
type CommitResult struct {
	// Path is the path the body was saved at (post-rename if one happened).
	Path    string
	Renamed bool
	// VersionID is the appended snapshot id on success.
	VersionID int64
	Err       error
}

// ResultFunc receives commit results; the API layer fans them out over SSE.
type ResultFunc func(sessionID string, res CommitResult)

const maxNameAttempts = 100

// Engine coordinates the vault store and version log for all sessions.
type Engine struct {
	store    storage.Provider
	versions *history.Store
	cfg      Config
	logger   *slog.Logger
	onResult ResultFunc

	nextSession atomic.Int64
}

// New creates an engine. onResult may be nil.
func New(store storage.Provider, versions *history.Store, cfg Config, logger *slog.Logger, onResult ResultFunc) *Engine {
	if cfg.DebounceWindow <= 0 {
		cfg.DebounceWindow = time.Second
	}
	if cfg.RenamePolicy == "" {
		cfg.RenamePolicy = RenameBestEffort
	}
	return &Engine{
		store:    store,
		versions: versions,
		cfg:      cfg,
		logger:   logger,
		onResult: onResult,
	}
}

// CreateDocument writes a new document with a unique default name under
// folder (vault root when folder is empty) and returns its path. It
// does not open a session.
func (e *Engine) CreateDocument(folder string, ct models.ContentType) (string, error) {
	if !ct.Valid() {
		return "", fmt.Errorf("syncengine: unknown content type %q: %w", ct, apperr.ErrInvalidPath)
	}
	if folder != "" {
		norm, err := pathcodec.Normalize(folder)
		if err != nil {
			return "", err
		}
		folder = norm
	}

	stem := "Untitled-" + strconv.FormatInt(time.Now().UnixMilli(), 10)
	for i := 0; i < maxNameAttempts; i++ {
		name := stem
		if i > 0 {
			name = fmt.Sprintf("%s-%d", stem, i)
		}
		path, err := pathcodec.Join(folder, name+ct.Ext())
		if err != nil {
			return "", err
		}
		exists, err := e.store.Exists(path)
		if err != nil {
			return "", err
		}
		if exists {
			continue
		}
		if err := e.store.Write(path, initialBody(ct)); err != nil {
			return "", err
		}
		return path, nil
	}
	return "", fmt.Errorf("syncengine: could not find a free name under %q: %w", folder, apperr.ErrNameCollision)
}

// ReadDocument returns the document stored at path.
func (e *Engine) ReadDocument(path string) (*models.Document, error) {
	norm, err := pathcodec.Normalize(path)
	if err != nil {
		return nil, err
	}
	body, err := e.store.Read(norm)
	if err != nil {
		return nil, err
	}
	return &models.Document{
		Path:        norm,
		ContentType: models.TypeForPath(norm),
		Body:        body,
	}, nil
}

// SaveDocument durably writes body at path and appends exactly one
// version snapshot. This is the direct (non-debounced) save path.
func (e *Engine) SaveDocument(path string, body []byte) (int64, error) {
	norm, err := pathcodec.Normalize(path)
	if err != nil {
		return 0, err
	}
	if err := e.store.Write(norm, body); err != nil {
		return 0, err
	}
	return e.versions.Append(norm, body)
}

// Rename moves a document or folder to a new canonical path.
func (e *Engine) Rename(oldPath, newPath string) (string, string, error) {
	oldNorm, err := pathcodec.Normalize(oldPath)
	if err != nil {
		return "", "", err
	}
	newNorm, err := pathcodec.Normalize(newPath)
	if err != nil {
		return "", "", err
	}
	if err := e.store.Move(oldNorm, newNorm); err != nil {
		return "", "", err
	}
	return oldNorm, newNorm, nil
}

// CreateFolder creates a folder at path. An existing folder is
// rejected with ErrAlreadyExists, not treated as an idempotent no-op.
func (e *Engine) CreateFolder(path string) error {
	norm, err := pathcodec.Normalize(path)
	if err != nil {
		return err
	}
	return e.store.Mkdir(norm)
}

// Delete recursively removes the document or folder at path. Sessions
// whose active document lives under path must be invalidated by the
// caller (the engine does not track the session registry).
func (e *Engine) Delete(path string) (string, error) {
	norm, err := pathcodec.Normalize(path)
	if err != nil {
		return "", err
	}
	if err := e.store.Delete(norm); err != nil {
		return "", err
	}
	return norm, nil
}

// ListVersions returns the newest-first snapshots recorded at path.
func (e *Engine) ListVersions(path string, limit int) ([]models.Version, error) {
	norm, err := pathcodec.Normalize(path)
	if err != nil {
		return nil, err
	}
	return e.versions.ListRecent(norm, limit)
}

// GetVersion returns a single snapshot by id.
func (e *Engine) GetVersion(id int64) (*models.Version, error) {
	return e.versions.Get(id)
}

// Tree returns the current vault listing.
func (e *Engine) Tree() ([]models.TreeNode, error) {
	return e.store.Tree()
}

// commitBody runs one commit cycle for a body that went quiet at path:
// derive a candidate title, attempt a best-effort rename, persist the
// body at the final path, and append a version snapshot.
func (e *Engine) commitBody(path string, ct models.ContentType, body []byte) CommitResult {
	res := CommitResult{Path: path}

	if t, ok := title.Extract(ct, body); ok {
		if candidate, ok := e.candidatePath(path, ct, t); ok && candidate != path {
			if err := e.store.Move(path, candidate); err != nil {
				e.logger.Warn("auto-rename failed, saving at old path",
					slog.String("path", path),
					slog.String("candidate", candidate),
					slog.String("error", err.Error()))
				if e.cfg.RenamePolicy == RenameStrict {
					res.Err = fmt.Errorf("syncengine: rename %s -> %s: %w", path, candidate, apperr.ErrRenameFailed)
				}
			} else {
				res.Path = candidate
				res.Renamed = true
			}
		}
	}

	if err := e.store.Write(res.Path, body); err != nil {
		res.Err = err
		return res
	}
	id, err := e.versions.Append(res.Path, body)
	if err != nil {
		res.Err = err
		return res
	}
	res.VersionID = id
	return res
}

// candidatePath maps a title to the canonical path it implies in the
// document's current folder. Titles that do not form a valid path
// segment yield no candidate.
func (e *Engine) candidatePath(path string, ct models.ContentType, t string) (string, bool) {
	joined, err := pathcodec.Join(pathcodec.Folder(path), t)
	if err != nil || pathcodec.Folder(joined) != pathcodec.Folder(path) {
		return "", false
	}
	return pathcodec.WithExtension(joined, ct.Ext()), true
}

func initialBody(ct models.ContentType) []byte {
	if ct == models.ContentBoard {
		return []byte(`{"title":"","cards":[],"edges":[]}`)
	}
	return []byte("")
}
