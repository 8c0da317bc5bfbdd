package models

// TreeNodeKind tags a node in the vault tree.
type TreeNodeKind string

const (
	NodeFolder TreeNodeKind = "folder"
	NodeNote   TreeNodeKind = "note"
	NodeBoard  TreeNodeKind = "board"
)

// TreeNode is one entry in the hierarchical vault listing. Folders
// carry Children; documents do not.
type TreeNode struct {
	Name     string       `json:"name"`
	Path     string       `json:"path"`
	Kind     TreeNodeKind `json:"kind"`
	Children []TreeNode   `json:"children,omitempty"`
}
