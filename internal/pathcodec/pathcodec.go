// Package pathcodec validates and normalizes vault document paths.
// Paths are forward-slash separated, case-sensitive, and always
// relative to the vault root. All functions are pure.
package pathcodec

import (
	"fmt"
	"strings"

	"github.com/aldwin/othala/internal/apperr"
)

// Normalize splits raw on path separators, rejects segments that could
// escape the vault root, and rejoins with a single "/". The result is
// canonical: Normalize(Normalize(p)) == Normalize(p).
func Normalize(raw string) (string, error) {
	if strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "\\") {
		return "", fmt.Errorf("pathcodec: absolute path %q: %w", raw, apperr.ErrInvalidPath)
	}
	// Windows-style drive prefixes also count as absolute.
	if len(raw) >= 2 && raw[1] == ':' {
		return "", fmt.Errorf("pathcodec: absolute path %q: %w", raw, apperr.ErrInvalidPath)
	}

	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	if len(parts) == 0 {
		return "", fmt.Errorf("pathcodec: empty path: %w", apperr.ErrInvalidPath)
	}
	for _, p := range parts {
		if p == "." || p == ".." {
			return "", fmt.Errorf("pathcodec: segment %q escapes vault root: %w", p, apperr.ErrInvalidPath)
		}
		if strings.TrimSpace(p) == "" {
			return "", fmt.Errorf("pathcodec: blank segment in %q: %w", raw, apperr.ErrInvalidPath)
		}
	}
	return strings.Join(parts, "/"), nil
}

// docExts are the recognized document extensions; WithExtension only
// replaces these, so a dot inside a title ("v1.2 plan") is not
// mistaken for an extension.
var docExts = []string{".md", ".canvas"}

// WithExtension replaces (or appends) the file extension of the last
// segment of base, preserving the parent folder. ext must include the
// leading dot.
func WithExtension(base, ext string) string {
	folder, name := split(base)
	for _, known := range docExts {
		if strings.HasSuffix(name, known) {
			name = name[:len(name)-len(known)]
			break
		}
	}
	if folder == "" {
		return name + ext
	}
	return folder + "/" + name + ext
}

// Join builds a canonical path for name under folder. An empty folder
// means the vault root.
func Join(folder, name string) (string, error) {
	if folder == "" {
		return Normalize(name)
	}
	return Normalize(folder + "/" + name)
}

// Folder returns the parent folder of path, or "" for a root-level path.
func Folder(path string) string {
	folder, _ := split(path)
	return folder
}

// Base returns the last segment of path.
func Base(path string) string {
	_, name := split(path)
	return name
}

// IsWithin reports whether path equals root or lives inside the folder
// subtree rooted at root. Both arguments must already be canonical.
func IsWithin(path, root string) bool {
	return path == root || strings.HasPrefix(path, root+"/")
}

func split(path string) (folder, name string) {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[:i], path[i+1:]
	}
	return "", path
}
