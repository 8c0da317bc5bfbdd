package api

import (
	"github.com/aldwin/othala/internal/models"
)

// DocumentResponse is the payload for reading a document.
type DocumentResponse struct {
	Path        string             `json:"path"`
	ContentType models.ContentType `json:"content_type"`
	Body        string             `json:"body"`
}

// CreateDocumentRequest is the request body for creating a document.
type CreateDocumentRequest struct {
	Folder      string             `json:"folder"`
	ContentType models.ContentType `json:"content_type"`
}

// SaveDocumentRequest is the request body for a direct save.
type SaveDocumentRequest struct {
	Body string `json:"body"`
}

// RenameRequest moves a document or folder.
type RenameRequest struct {
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
}

// CreateFolderRequest creates a folder.
type CreateFolderRequest struct {
	Path string `json:"path"`
}

// VersionsResponse wraps a newest-first snapshot listing.
type VersionsResponse struct {
	Versions []models.Version `json:"versions"`
}

// OpenSessionRequest opens an editing session on a document.
type OpenSessionRequest struct {
	Path string `json:"path"`
}

// SessionResponse describes an open session and its document.
type SessionResponse struct {
	SessionID   string             `json:"session_id"`
	Path        string             `json:"path"`
	ContentType models.ContentType `json:"content_type"`
	Body        string             `json:"body"`
}

// EditRequest carries the latest full body from the editing surface.
type EditRequest struct {
	Body string `json:"body"`
}

// RestoreRequest restores a version snapshot into the session.
type RestoreRequest struct {
	VersionID int64 `json:"version_id"`
}
