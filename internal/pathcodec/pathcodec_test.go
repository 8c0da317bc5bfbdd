package pathcodec

import (
	"errors"
	"testing"

	"github.com/aldwin/othala/internal/apperr"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"note.md", "note.md"},
		{"topics/note.md", "topics/note.md"},
		{"topics//note.md", "topics/note.md"},
		{"topics/note.md/", "topics/note.md"},
		{`topics\note.md`, "topics/note.md"},
	}
	for _, c := range cases {
		got, err := Normalize(c.in)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	paths := []string{"a.md", "a/b/c.canvas", "x//y/", `a\b.md`}
	for _, p := range paths {
		once, err := Normalize(p)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", p, err)
		}
		twice, err := Normalize(once)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", once, err)
		}
		if once != twice {
			t.Errorf("not idempotent: %q -> %q -> %q", p, once, twice)
		}
	}
}

func TestNormalizeRejectsEscapes(t *testing.T) {
	cases := []string{
		"",
		"/",
		"/etc/passwd",
		"../outside.md",
		"a/../../b.md",
		"a/./b.md",
		`C:\vault\note.md`,
		"a/  /b.md",
	}
	for _, c := range cases {
		if _, err := Normalize(c); !errors.Is(err, apperr.ErrInvalidPath) {
			t.Errorf("Normalize(%q) err = %v, want ErrInvalidPath", c, err)
		}
	}
}

func TestWithExtension(t *testing.T) {
	cases := []struct {
		base, ext, want string
	}{
		{"Untitled-123.md", ".md", "Untitled-123.md"},
		{"topics/Untitled-123.md", ".md", "topics/Untitled-123.md"},
		{"topics/Meeting Notes", ".md", "topics/Meeting Notes.md"},
		{"boards/plan.canvas", ".canvas", "boards/plan.canvas"},
		{"boards/plan.md", ".canvas", "boards/plan.canvas"},
		{"notes/v1.2 plan", ".md", "notes/v1.2 plan.md"},
	}
	for _, c := range cases {
		if got := WithExtension(c.base, c.ext); got != c.want {
			t.Errorf("WithExtension(%q, %q) = %q, want %q", c.base, c.ext, got, c.want)
		}
	}
}

func TestJoin(t *testing.T) {
	got, err := Join("topics", "note.md")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if got != "topics/note.md" {
		t.Errorf("Join = %q", got)
	}

	got, err = Join("", "note.md")
	if err != nil {
		t.Fatalf("Join root: %v", err)
	}
	if got != "note.md" {
		t.Errorf("Join root = %q", got)
	}

	if _, err := Join("topics", "../evil.md"); !errors.Is(err, apperr.ErrInvalidPath) {
		t.Errorf("Join escape err = %v, want ErrInvalidPath", err)
	}
}

func TestFolderAndBase(t *testing.T) {
	if Folder("a/b/c.md") != "a/b" {
		t.Errorf("Folder = %q", Folder("a/b/c.md"))
	}
	if Folder("c.md") != "" {
		t.Errorf("Folder root = %q", Folder("c.md"))
	}
	if Base("a/b/c.md") != "c.md" {
		t.Errorf("Base = %q", Base("a/b/c.md"))
	}
}

func TestIsWithin(t *testing.T) {
	if !IsWithin("a/b/c.md", "a/b") {
		t.Error("c.md should be within a/b")
	}
	if !IsWithin("a/b", "a/b") {
		t.Error("a path is within itself")
	}
	if IsWithin("a/bc/d.md", "a/b") {
		t.Error("prefix match must respect segment boundary")
	}
}
