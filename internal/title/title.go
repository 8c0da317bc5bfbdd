// Package title derives a canonical document title from a body.
// Malformed bodies never produce an error, only "no candidate title" —
// the sync engine treats that as "keep the current name".
package title

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/aldwin/othala/internal/models"
)

var h1Re = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)

// tagRe strips any markup nested inside a heading element.
var tagRe = regexp.MustCompile(`<[^>]+>`)

// Extract returns the candidate title for body under the given content
// type, or ("", false) if there is none.
func Extract(ct models.ContentType, body []byte) (string, bool) {
	switch ct {
	case models.ContentBoard:
		return fromBoard(body)
	default:
		return fromNote(body)
	}
}

// fromNote scans for the first top-level heading. The editing surface
// emits HTML, but plain Markdown bodies (hand-written or imported) are
// recognized as well.
func fromNote(body []byte) (string, bool) {
	if m := h1Re.FindSubmatch(body); m != nil {
		t := strings.TrimSpace(tagRe.ReplaceAllString(string(m[1]), ""))
		if t != "" {
			return t, true
		}
	}
	for _, line := range strings.Split(string(body), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			if t := strings.TrimSpace(trimmed[2:]); t != "" {
				return t, true
			}
		}
	}
	return "", false
}

// fromBoard decodes the body as a board graph and returns its title
// field. A body that fails to parse yields no candidate.
func fromBoard(body []byte) (string, bool) {
	var b models.Board
	if err := json.Unmarshal(body, &b); err != nil {
		return "", false
	}
	t := strings.TrimSpace(b.Title)
	if t == "" {
		return "", false
	}
	return t, true
}
