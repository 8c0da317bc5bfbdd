// Package models defines the domain types for Othala.
package models

import "time"

// ContentType discriminates the two kinds of documents in the vault.
type ContentType string

const (
	// ContentNote is a rich-text note, stored as a .md file.
	ContentNote ContentType = "note"
	// ContentBoard is a node/edge canvas board, stored as a .canvas file.
	ContentBoard ContentType = "board"
)

// Ext returns the file extension for the content type (with leading dot).
func (ct ContentType) Ext() string {
	if ct == ContentBoard {
		return ".canvas"
	}
	return ".md"
}

// Valid reports whether ct is a known content type.
func (ct ContentType) Valid() bool {
	return ct == ContentNote || ct == ContentBoard
}

// TypeForPath infers the content type from a document path's extension.
// Unknown extensions default to note, matching how the vault treats
// anything that is not a board.
func TypeForPath(path string) ContentType {
	if len(path) > len(".canvas") && path[len(path)-len(".canvas"):] == ".canvas" {
		return ContentBoard
	}
	return ContentNote
}

// Document is a single vault entry: a path, a content type, and an
// opaque body produced by the editing surface.
type Document struct {
	Path        string      `json:"path"`
	ContentType ContentType `json:"content_type"`
	Body        []byte      `json:"-"`
}

// Version is an immutable snapshot of a document body at save time.
// The Path field is the path at save time, not a stable document id;
// history recorded before a rename stays attached to the old path.
type Version struct {
	ID        int64     `json:"id"`
	Path      string    `json:"path"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
