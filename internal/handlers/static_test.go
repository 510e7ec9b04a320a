package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
)

func testStaticFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html": {Data: []byte("<!DOCTYPE html><title>Notes</title>")},
		"app.js":     {Data: []byte("console.log('notes');")},
	}
}

func TestSPAHandler_ServesIndexForAppPaths(t *testing.T) {
	t.Parallel()

	h := NewSPAHandler(testStaticFS())

	for _, path := range []string{"/app", "/app/notes/123"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "<title>Notes</title>") {
			t.Errorf("%s: expected index page", path)
		}
	}
}

func TestSPAHandler_ServesAssets(t *testing.T) {
	t.Parallel()

	h := NewSPAHandler(testStaticFS())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app.js", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "console.log") {
		t.Error("expected asset contents")
	}
}

func TestSPAHandler_JSONNotFound(t *testing.T) {
	t.Parallel()

	h := NewSPAHandler(testStaticFS())

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{name: "unknown path", method: http.MethodGet, path: "/nope"},
		{name: "non-GET method", method: http.MethodPost, path: "/app.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != http.StatusNotFound {
				t.Fatalf("expected 404, got %d", rec.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if body["error"] != "Route not found" {
				t.Errorf("expected route-not-found error, got %q", body["error"])
			}
		})
	}
}

func TestSPAHandler_NilFS(t *testing.T) {
	t.Parallel()

	h := NewSPAHandler(nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 with no frontend embedded, got %d", rec.Code)
	}
}
