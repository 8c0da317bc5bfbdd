package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aldwin/othala/internal/storage"
	"github.com/aldwin/othala/internal/syncengine"
	"github.com/aldwin/othala/internal/testutil"
)

const testWindow = 30 * time.Millisecond

// testEnv sets up a temp vault, history DB, engine, and router.
// An empty authToken means auth-disabled mode.
func testEnv(t *testing.T, authToken string) (storage.Provider, http.Handler) {
	t.Helper()
	_, store := testutil.TestVault(t)
	versions := testutil.TestHistory(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := syncengine.New(store, versions, syncengine.Config{DebounceWindow: testWindow}, logger, nil)
	registry := NewSessionRegistry()
	router := NewRouter(eng, registry, authToken != "", authToken, nil)
	return store, router
}

func doJSON(t *testing.T, router http.Handler, method, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// eventually polls fn until it returns true or the timeout elapses.
func eventually(t *testing.T, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestCreateAndReadDocument(t *testing.T) {
	store, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/documents", map[string]string{"content_type": "note"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var created struct {
		Path string `json:"path"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if created.Path == "" {
		t.Fatal("no path returned")
	}
	if ok, _ := store.Exists(created.Path); !ok {
		t.Fatal("document missing on disk")
	}

	w = doJSON(t, router, http.MethodGet, "/documents/"+created.Path, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("read status = %d", w.Code)
	}
	var doc DocumentResponse
	_ = json.Unmarshal(w.Body.Bytes(), &doc)
	if doc.Path != created.Path || doc.ContentType != "note" {
		t.Errorf("doc = %+v", doc)
	}
}

func TestReadMissingDocument(t *testing.T) {
	_, router := testEnv(t, "")
	w := doJSON(t, router, http.MethodGet, "/documents/ghost.md", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSaveAppendsVersion(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPut, "/documents/direct.md", map[string]string{"body": "# Direct"})
	if w.Code != http.StatusOK {
		t.Fatalf("save status = %d, body = %s", w.Code, w.Body.String())
	}
	w = doJSON(t, router, http.MethodPut, "/documents/direct.md", map[string]string{"body": "# Direct v2"})
	if w.Code != http.StatusOK {
		t.Fatalf("save status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/versions/direct.md?limit=10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("versions status = %d", w.Code)
	}
	var resp VersionsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Versions) != 2 {
		t.Fatalf("versions = %d, want 2", len(resp.Versions))
	}
	if resp.Versions[0].Body != "# Direct v2" {
		t.Errorf("newest = %q, want v2 first", resp.Versions[0].Body)
	}
}

func TestRenameEndpoint(t *testing.T) {
	store, router := testEnv(t, "")
	_ = store.Write("old.md", []byte("x"))
	_ = store.Write("occupied.md", []byte("y"))

	w := doJSON(t, router, http.MethodPost, "/rename", map[string]string{"old_path": "old.md", "new_path": "occupied.md"})
	if w.Code != http.StatusConflict {
		t.Errorf("collision status = %d, want 409", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/rename", map[string]string{"old_path": "old.md", "new_path": "fresh.md"})
	if w.Code != http.StatusOK {
		t.Fatalf("rename status = %d", w.Code)
	}
	if ok, _ := store.Exists("fresh.md"); !ok {
		t.Error("renamed file missing")
	}

	w = doJSON(t, router, http.MethodPost, "/rename", map[string]string{"old_path": "gone.md", "new_path": "x.md"})
	if w.Code != http.StatusNotFound {
		t.Errorf("missing source status = %d, want 404", w.Code)
	}
}

func TestCreateFolderRejectsExisting(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/folders", map[string]string{"path": "projects"})
	if w.Code != http.StatusCreated {
		t.Fatalf("first create = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodPost, "/folders", map[string]string{"path": "projects"})
	if w.Code != http.StatusConflict {
		t.Errorf("second create = %d, want 409", w.Code)
	}
}

func TestDeleteDocument(t *testing.T) {
	store, router := testEnv(t, "")
	_ = store.Write("bye.md", []byte("x"))

	w := doJSON(t, router, http.MethodDelete, "/documents/bye.md", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/documents/bye.md", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("read after delete = %d, want 404", w.Code)
	}

	w = doJSON(t, router, http.MethodDelete, "/documents/bye.md", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("double delete = %d, want 404", w.Code)
	}
}

func TestSessionEditCommits(t *testing.T) {
	store, router := testEnv(t, "")
	_ = store.Write("Untitled-55.md", []byte(""))

	w := doJSON(t, router, http.MethodPost, "/sessions", map[string]string{"path": "Untitled-55.md"})
	if w.Code != http.StatusCreated {
		t.Fatalf("open session = %d, body = %s", w.Code, w.Body.String())
	}
	var sess SessionResponse
	_ = json.Unmarshal(w.Body.Bytes(), &sess)
	if sess.SessionID == "" {
		t.Fatal("no session id")
	}

	w = doJSON(t, router, http.MethodPost, "/sessions/"+sess.SessionID+"/edit",
		map[string]string{"body": "# Meeting Notes\nagenda"})
	if w.Code != http.StatusAccepted {
		t.Fatalf("edit status = %d", w.Code)
	}

	// After the debounce window the document is renamed and saved.
	eventually(t, func() bool {
		ok, _ := store.Exists("Meeting Notes.md")
		return ok
	}, "commit did not land at the renamed path")

	if ok, _ := store.Exists("Untitled-55.md"); ok {
		t.Error("old path still exists after rename")
	}

	w = doJSON(t, router, http.MethodGet, "/versions/Meeting%20Notes.md", nil)
	var resp VersionsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Versions) != 1 {
		t.Errorf("versions at new path = %d, want 1", len(resp.Versions))
	}
}

func TestSessionRestore(t *testing.T) {
	store, router := testEnv(t, "")
	_ = store.Write("doc.md", []byte(""))

	w := doJSON(t, router, http.MethodPost, "/sessions", map[string]string{"path": "doc.md"})
	var sess SessionResponse
	_ = json.Unmarshal(w.Body.Bytes(), &sess)

	doJSON(t, router, http.MethodPost, "/sessions/"+sess.SessionID+"/edit", map[string]string{"body": "first"})
	eventually(t, func() bool {
		b, err := store.Read("doc.md")
		return err == nil && string(b) == "first"
	}, "first commit missing")
	doJSON(t, router, http.MethodPost, "/sessions/"+sess.SessionID+"/edit", map[string]string{"body": "second"})
	eventually(t, func() bool {
		b, err := store.Read("doc.md")
		return err == nil && string(b) == "second"
	}, "second commit missing")

	w = doJSON(t, router, http.MethodGet, "/versions/doc.md", nil)
	var resp VersionsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Versions) != 2 {
		t.Fatalf("versions = %d, want 2", len(resp.Versions))
	}
	oldest := resp.Versions[len(resp.Versions)-1]

	w = doJSON(t, router, http.MethodPost, "/sessions/"+sess.SessionID+"/restore",
		map[string]int64{"version_id": oldest.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("restore status = %d, body = %s", w.Code, w.Body.String())
	}

	eventually(t, func() bool {
		b, err := store.Read("doc.md")
		return err == nil && string(b) == "first"
	}, "restored body not committed")

	w = doJSON(t, router, http.MethodGet, "/versions/doc.md", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Versions) != 3 {
		t.Errorf("versions after restore = %d, want 3", len(resp.Versions))
	}
}

func TestDeleteFolderInvalidatesSessions(t *testing.T) {
	store, router := testEnv(t, "")
	_ = store.Write("area/doc.md", []byte("body"))

	w := doJSON(t, router, http.MethodPost, "/sessions", map[string]string{"path": "area/doc.md"})
	var sess SessionResponse
	_ = json.Unmarshal(w.Body.Bytes(), &sess)

	w = doJSON(t, router, http.MethodDelete, "/documents/area", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}

	// An edit on the invalidated session must not resurrect the file.
	doJSON(t, router, http.MethodPost, "/sessions/"+sess.SessionID+"/edit", map[string]string{"body": "zombie"})
	time.Sleep(3 * testWindow)
	if ok, _ := store.Exists("area/doc.md"); ok {
		t.Error("deleted document resurrected by stale session")
	}
}

func TestCloseSession(t *testing.T) {
	store, router := testEnv(t, "")
	_ = store.Write("c.md", []byte(""))

	w := doJSON(t, router, http.MethodPost, "/sessions", map[string]string{"path": "c.md"})
	var sess SessionResponse
	_ = json.Unmarshal(w.Body.Bytes(), &sess)

	w = doJSON(t, router, http.MethodDelete, "/sessions/"+sess.SessionID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("close status = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodPost, "/sessions/"+sess.SessionID+"/edit", map[string]string{"body": "x"})
	if w.Code != http.StatusNotFound {
		t.Errorf("edit on closed session = %d, want 404", w.Code)
	}
}

func TestTreeEndpoint(t *testing.T) {
	store, router := testEnv(t, "")
	_ = store.Write("a.md", []byte("x"))
	_ = store.Write("sub/b.canvas", []byte(`{"title":"B"}`))

	w := doJSON(t, router, http.MethodGet, "/tree", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("tree status = %d", w.Code)
	}
	var resp struct {
		Tree []struct {
			Name string `json:"name"`
			Kind string `json:"kind"`
		} `json:"tree"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Tree) != 2 {
		t.Errorf("top-level nodes = %d, want 2", len(resp.Tree))
	}
}

func TestAuthTokenMode(t *testing.T) {
	store, router := testEnv(t, "secret")
	_ = store.Write("a.md", []byte("x"))

	req := httptest.NewRequest(http.MethodGet, "/documents/a.md", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/documents/a.md", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token status = %d, want 200", w.Code)
	}
}

func TestInvalidPathsRejected(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodGet, "/documents/..%2Fescape.md", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("traversal read status = %d, want 400", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/folders", map[string]string{"path": "../outside"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("traversal folder status = %d, want 400", w.Code)
	}
}
