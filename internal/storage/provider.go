// Package storage defines the vault file-system abstraction.
package storage

import "github.com/aldwin/othala/internal/models"

// Provider is the interface for vault file operations. All paths are
// canonical vault paths (forward-slash, relative to the vault root).
type Provider interface {
	// Read returns the raw bytes of the document at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent folders.
	Write(path string, content []byte) error
	// Move renames oldPath to newPath. It fails with ErrNotFound when
	// oldPath is absent and ErrNameCollision when newPath is occupied;
	// no partial rename is ever visible.
	Move(oldPath, newPath string) error
	// Delete removes the document or folder subtree at path.
	Delete(path string) error
	// Mkdir creates a folder. An existing folder is rejected, not a no-op.
	Mkdir(path string) error
	// Exists reports whether path refers to an existing entry.
	Exists(path string) (bool, error)
	// Tree returns the hierarchical listing of the whole vault.
	Tree() ([]models.TreeNode, error)
}
