package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aldwin/othala/internal/apperr"
	"github.com/aldwin/othala/internal/syncengine"
)

// Handler holds API route handlers.
type Handler struct {
	eng      *syncengine.Engine
	registry *SessionRegistry
}

// NewHandler creates a new Handler.
func NewHandler(eng *syncengine.Engine, registry *SessionRegistry) *Handler {
	return &Handler{eng: eng, registry: registry}
}

// docPath extracts the document path from the URL (everything after the
// route prefix). Supports encoded slashes from OpenAPI clients
// (e.g. topics%2Fnote.md).
func docPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// GetTree handles GET /api/tree.
func (h *Handler) GetTree(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.eng.Tree()
	if err != nil {
		slog.Error("tree scan failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, errorBody("vault unavailable"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tree": nodes})
}

// ReadDocument handles GET /api/documents/*.
func (h *Handler) ReadDocument(w http.ResponseWriter, r *http.Request) {
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	doc, err := h.eng.ReadDocument(path)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrInvalidPath):
			writeJSON(w, http.StatusBadRequest, errorBody("invalid path"))
		default:
			slog.Error("read document failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, DocumentResponse{
		Path:        doc.Path,
		ContentType: doc.ContentType,
		Body:        string(doc.Body),
	})
}

// CreateDocument handles POST /api/documents.
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.ContentType == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content_type is required"))
		return
	}
	path, err := h.eng.CreateDocument(req.Folder, req.ContentType)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrInvalidPath):
			writeJSON(w, http.StatusBadRequest, errorBody("invalid path"))
		case errors.Is(err, apperr.ErrNameCollision):
			writeJSON(w, http.StatusConflict, errorBody("name collision"))
		default:
			slog.Error("create document failed", slog.String("folder", req.Folder), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"path": path})
}

// SaveDocument handles PUT /api/documents/*: a direct durable write
// that appends exactly one version snapshot.
func (h *Handler) SaveDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var req SaveDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	versionID, err := h.eng.SaveDocument(path, []byte(req.Body))
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrInvalidPath):
			writeJSON(w, http.StatusBadRequest, errorBody("invalid path"))
		default:
			slog.Error("save document failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("save failed"))
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"path": path, "version_id": versionID})
}

// Rename handles POST /api/rename.
func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.OldPath == "" || req.NewPath == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("old_path and new_path are required"))
		return
	}
	_, newPath, err := h.eng.Rename(req.OldPath, req.NewPath)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrNameCollision):
			writeJSON(w, http.StatusConflict, errorBody("destination already exists"))
		case errors.Is(err, apperr.ErrInvalidPath):
			writeJSON(w, http.StatusBadRequest, errorBody("invalid path"))
		default:
			slog.Error("rename failed", slog.String("old", req.OldPath), slog.String("new", req.NewPath), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": newPath})
}

// CreateFolder handles POST /api/folders. Re-creating an existing
// folder is a 409, not a silent no-op.
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req CreateFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.eng.CreateFolder(req.Path); err != nil {
		switch {
		case errors.Is(err, apperr.ErrAlreadyExists):
			writeJSON(w, http.StatusConflict, errorBody("folder already exists"))
		case errors.Is(err, apperr.ErrInvalidPath):
			writeJSON(w, http.StatusBadRequest, errorBody("invalid path"))
		default:
			slog.Error("create folder failed", slog.String("path", req.Path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"path": req.Path})
}

// DeleteDocument handles DELETE /api/documents/*: recursive, and any
// session pointing into the deleted subtree loses its active document.
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	deleted, err := h.eng.Delete(path)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrInvalidPath):
			writeJSON(w, http.StatusBadRequest, errorBody("invalid path"))
		default:
			slog.Error("delete failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	h.registry.InvalidateAll(deleted)
	w.WriteHeader(http.StatusNoContent)
}

// ListVersions handles GET /api/versions/*.
func (h *Handler) ListVersions(w http.ResponseWriter, r *http.Request) {
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	versions, err := h.eng.ListVersions(path, limit)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrInvalidPath):
			writeJSON(w, http.StatusBadRequest, errorBody("invalid path"))
		default:
			slog.Error("list versions failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, VersionsResponse{Versions: versions})
}

// OpenSession handles POST /api/sessions.
func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	sess := h.eng.NewSession()
	doc, err := sess.Open(req.Path)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrInvalidPath):
			writeJSON(w, http.StatusBadRequest, errorBody("invalid path"))
		default:
			slog.Error("open session failed", slog.String("path", req.Path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	h.registry.Add(sess)
	writeJSON(w, http.StatusCreated, SessionResponse{
		SessionID:   sess.ID(),
		Path:        doc.Path,
		ContentType: doc.ContentType,
		Body:        string(doc.Body),
	})
}

// EditSession handles POST /api/sessions/{id}/edit. Accepts the latest
// body and returns immediately; persistence happens after the debounce
// window, reported over SSE.
func (h *Handler) EditSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	sess := h.registry.Get(chi.URLParam(r, "id"))
	if sess == nil {
		writeJSON(w, http.StatusNotFound, errorBody("unknown session"))
		return
	}
	var req EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	sess.OnEdit([]byte(req.Body))
	w.WriteHeader(http.StatusAccepted)
}

// RestoreSession handles POST /api/sessions/{id}/restore.
func (h *Handler) RestoreSession(w http.ResponseWriter, r *http.Request) {
	sess := h.registry.Get(chi.URLParam(r, "id"))
	if sess == nil {
		writeJSON(w, http.StatusNotFound, errorBody("unknown session"))
		return
	}
	var req RestoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	v, err := h.eng.GetVersion(req.VersionID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("version not found"))
		} else {
			slog.Error("get version failed", slog.Int64("id", req.VersionID), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	body, err := sess.Restore(v)
	if err != nil {
		writeJSON(w, http.StatusConflict, errorBody("no active document"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"body": string(body)})
}

// CloseSession handles DELETE /api/sessions/{id}.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	h.registry.Remove(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}
