package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aldwin/othala/internal/apperr"
	"github.com/aldwin/othala/internal/models"
)

// Tree scans the vault root recursively and returns its hierarchical
// listing. Only folders and recognized document files (.md, .canvas)
// appear; atomic-write temp files are skipped. An unreadable root is a
// scan error, never an empty vault.
func (f *FS) Tree() ([]models.TreeNode, error) {
	nodes, err := f.scanDir(f.root, "")
	if err != nil {
		return nil, fmt.Errorf("storage: %v: %w", err, apperr.ErrScan)
	}
	return nodes, nil
}

func (f *FS) scanDir(abs, rel string) ([]models.TreeNode, error) {
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, err
	}

	var nodes []models.TreeNode
	for _, e := range entries {
		name := e.Name()
		childRel := name
		if rel != "" {
			childRel = rel + "/" + name
		}

		if e.IsDir() {
			children, err := f.scanDir(filepath.Join(abs, name), childRel)
			if err != nil {
				return nil, err
			}
			if children == nil {
				children = []models.TreeNode{}
			}
			nodes = append(nodes, models.TreeNode{
				Name:     name,
				Path:     childRel,
				Kind:     models.NodeFolder,
				Children: children,
			})
			continue
		}

		if strings.HasPrefix(name, ".othala-tmp-") {
			continue
		}
		var kind models.TreeNodeKind
		switch {
		case strings.HasSuffix(name, ".md"):
			kind = models.NodeNote
		case strings.HasSuffix(name, ".canvas"):
			kind = models.NodeBoard
		default:
			continue
		}
		nodes = append(nodes, models.TreeNode{
			Name: name,
			Path: childRel,
			Kind: kind,
		})
	}
	return nodes, nil
}
