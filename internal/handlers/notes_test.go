package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/khushik17/notesweb/internal/models"
	"github.com/khushik17/notesweb/internal/queue"
	"github.com/khushik17/notesweb/internal/request"
)

// fakeNoteRepo is an in-memory implementation of the note repository
type fakeNoteRepo struct {
	mu        sync.Mutex
	notes     map[uuid.UUID]*models.Note
	createErr error
	listErr   error
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{notes: make(map[uuid.UUID]*models.Note)}
}

func (f *fakeNoteRepo) Create(ctx context.Context, note *models.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	now := time.Now()
	note.CreatedAt = now
	note.UpdatedAt = now
	stored := *note
	f.notes[note.ID] = &stored
	return nil
}

func (f *fakeNoteRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.Note
	for _, n := range f.notes {
		if n.UserID == userID {
			copied := *n
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeNoteRepo) GetByIDAndUserID(ctx context.Context, id, userID uuid.UUID) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok || n.UserID != userID {
		return nil, fmt.Errorf("note not found: %w", sql.ErrNoRows)
	}
	copied := *n
	return &copied, nil
}

func (f *fakeNoteRepo) Update(ctx context.Context, note *models.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.notes[note.ID]
	if !ok || existing.UserID != note.UserID {
		return fmt.Errorf("note not found: %w", sql.ErrNoRows)
	}
	note.UpdatedAt = time.Now()
	stored := *note
	f.notes[note.ID] = &stored
	return nil
}

func (f *fakeNoteRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok || n.UserID != userID {
		return fmt.Errorf("note not found: %w", sql.ErrNoRows)
	}
	delete(f.notes, id)
	return nil
}

// fakeEnqueuer records published jobs
type fakeEnqueuer struct {
	mu   sync.Mutex
	jobs []*queue.Job
	err  error
}

func (f *fakeEnqueuer) Enqueue(ctx context.Context, job *queue.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeEnqueuer) all() []*queue.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*queue.Job(nil), f.jobs...)
}

func testUser() *models.User {
	name := "Alice"
	return &models.User{
		ID:          uuid.New(),
		ProviderUID: "uid-" + uuid.NewString(),
		Email:       "alice@example.com",
		Name:        &name,
	}
}

func noteRouter(h *NoteHandler) *mux.Router {
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/notes").Subrouter())
	return r
}

func doRequest(t *testing.T, router *mux.Router, user *models.User, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if user != nil {
		req = req.WithContext(request.WithUser(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateNote_Success(t *testing.T) {
	t.Parallel()

	repo := newFakeNoteRepo()
	jobs := &fakeEnqueuer{}
	h := NewNoteHandler(repo, jobs, zap.NewNop())
	user := testUser()

	rec := doRequest(t, noteRouter(h), user, http.MethodPost, "/notes",
		`{"title":"  Groceries  ","description":" Milk and eggs "}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var note models.Note
	if err := json.Unmarshal(rec.Body.Bytes(), &note); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if note.Title != "Groceries" {
		t.Errorf("expected trimmed title %q, got %q", "Groceries", note.Title)
	}
	if note.Description != "Milk and eggs" {
		t.Errorf("expected trimmed description, got %q", note.Description)
	}
	if note.UserID != user.ID {
		t.Errorf("expected note owned by %s, got %s", user.ID, note.UserID)
	}
	if note.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	h.Wait()
	published := jobs.all()
	if len(published) != 1 {
		t.Fatalf("expected 1 enqueued job, got %d", len(published))
	}
	job := published[0]
	if job.Type != queue.JobTypeNoteCreated {
		t.Errorf("expected job type %s, got %s", queue.JobTypeNoteCreated, job.Type)
	}
	if job.Note.RecipientEmail != user.Email {
		t.Errorf("expected recipient %s, got %s", user.Email, job.Note.RecipientEmail)
	}
	if job.Note.Title != "Groceries" {
		t.Errorf("expected job title %q, got %q", "Groceries", job.Note.Title)
	}
}

func TestCreateNote_MissingTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "absent title", body: `{"description":"x"}`},
		{name: "empty title", body: `{"title":""}`},
		{name: "whitespace title", body: `{"title":"   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := newFakeNoteRepo()
			jobs := &fakeEnqueuer{}
			h := NewNoteHandler(repo, jobs, zap.NewNop())

			rec := doRequest(t, noteRouter(h), testUser(), http.MethodPost, "/notes", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal error body: %v", err)
			}
			if body["error"] != "Title is required" {
				t.Errorf("expected error %q, got %q", "Title is required", body["error"])
			}

			h.Wait()
			if len(repo.notes) != 0 {
				t.Error("expected no note to be persisted")
			}
			if len(jobs.all()) != 0 {
				t.Error("expected no job to be enqueued")
			}
		})
	}
}

func TestCreateNote_InvalidBody(t *testing.T) {
	t.Parallel()

	h := NewNoteHandler(newFakeNoteRepo(), nil, zap.NewNop())
	rec := doRequest(t, noteRouter(h), testUser(), http.MethodPost, "/notes", "{not json")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCreateNote_EnqueueFailureDoesNotChangeResponse(t *testing.T) {
	t.Parallel()

	repo := newFakeNoteRepo()
	jobs := &fakeEnqueuer{err: fmt.Errorf("broker down")}
	h := NewNoteHandler(repo, jobs, zap.NewNop())

	rec := doRequest(t, noteRouter(h), testUser(), http.MethodPost, "/notes", `{"title":"Still works"}`)
	h.Wait()

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 despite enqueue failure, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "broker") {
		t.Error("enqueue failure leaked into the response body")
	}
	if len(repo.notes) != 1 {
		t.Errorf("expected note to be persisted, got %d", len(repo.notes))
	}
}

func TestCreateNote_NilQueue(t *testing.T) {
	t.Parallel()

	h := NewNoteHandler(newFakeNoteRepo(), nil, zap.NewNop())
	rec := doRequest(t, noteRouter(h), testUser(), http.MethodPost, "/notes", `{"title":"No queue"}`)
	h.Wait()

	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201 with nil queue, got %d", rec.Code)
	}
}

func TestListNotes_NewestFirstAndOwnerScoped(t *testing.T) {
	t.Parallel()

	repo := newFakeNoteRepo()
	h := NewNoteHandler(repo, nil, zap.NewNop())
	user := testUser()
	other := testUser()

	base := time.Now()
	for i, title := range []string{"first", "second", "third"} {
		repo.notes[uuid.New()] = &models.Note{
			ID:        uuid.New(),
			UserID:    user.ID,
			Title:     title,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	repo.notes[uuid.New()] = &models.Note{
		ID:     uuid.New(),
		UserID: other.ID,
		Title:  "not yours",
	}

	rec := doRequest(t, noteRouter(h), user, http.MethodGet, "/notes", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var notes []*models.Note
	if err := json.Unmarshal(rec.Body.Bytes(), &notes); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(notes) != 3 {
		t.Fatalf("expected 3 notes, got %d", len(notes))
	}
	if notes[0].Title != "third" || notes[2].Title != "first" {
		t.Errorf("expected newest-first ordering, got %s .. %s", notes[0].Title, notes[2].Title)
	}
	for _, n := range notes {
		if n.Title == "not yours" {
			t.Error("another user's note leaked into the listing")
		}
	}
}

func TestUpdateNote_PartialUpdate(t *testing.T) {
	t.Parallel()

	repo := newFakeNoteRepo()
	h := NewNoteHandler(repo, nil, zap.NewNop())
	user := testUser()

	noteID := uuid.New()
	repo.notes[noteID] = &models.Note{
		ID:          noteID,
		UserID:      user.ID,
		Title:       "Original title",
		Description: "Original description",
		CreatedAt:   time.Now().Add(-time.Hour),
		UpdatedAt:   time.Now().Add(-time.Hour),
	}

	rec := doRequest(t, noteRouter(h), user, http.MethodPut, "/notes/"+noteID.String(),
		`{"description":"New description"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var note models.Note
	if err := json.Unmarshal(rec.Body.Bytes(), &note); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if note.Title != "Original title" {
		t.Errorf("omitted title was overwritten: %q", note.Title)
	}
	if note.Description != "New description" {
		t.Errorf("expected updated description, got %q", note.Description)
	}
	if !note.UpdatedAt.After(note.CreatedAt) {
		t.Error("expected updated_at to be bumped past created_at")
	}
}

func TestUpdateNote_NotFound(t *testing.T) {
	t.Parallel()

	repo := newFakeNoteRepo()
	h := NewNoteHandler(repo, nil, zap.NewNop())
	user := testUser()
	other := testUser()

	noteID := uuid.New()
	repo.notes[noteID] = &models.Note{ID: noteID, UserID: other.ID, Title: "not yours"}

	tests := []struct {
		name string
		path string
	}{
		{name: "nonexistent note", path: "/notes/" + uuid.NewString()},
		{name: "another user's note", path: "/notes/" + noteID.String()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := doRequest(t, noteRouter(h), user, http.MethodPut, tt.path, `{"title":"x"}`)
			if rec.Code != http.StatusNotFound {
				t.Errorf("expected 404, got %d", rec.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal error body: %v", err)
			}
			if body["error"] != "Note not found" {
				t.Errorf("expected error %q, got %q", "Note not found", body["error"])
			}
		})
	}
}

func TestUpdateNote_InvalidID(t *testing.T) {
	t.Parallel()

	h := NewNoteHandler(newFakeNoteRepo(), nil, zap.NewNop())
	rec := doRequest(t, noteRouter(h), testUser(), http.MethodPut, "/notes/not-a-uuid", `{"title":"x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestDeleteNote(t *testing.T) {
	t.Parallel()

	repo := newFakeNoteRepo()
	h := NewNoteHandler(repo, nil, zap.NewNop())
	user := testUser()

	noteID := uuid.New()
	repo.notes[noteID] = &models.Note{ID: noteID, UserID: user.ID, Title: "doomed"}

	rec := doRequest(t, noteRouter(h), user, http.MethodDelete, "/notes/"+noteID.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body["message"] != "Note deleted successfully" {
		t.Errorf("expected deletion message, got %q", body["message"])
	}
	if len(repo.notes) != 0 {
		t.Error("expected note to be removed")
	}

	// Deleting again reports not found
	rec = doRequest(t, noteRouter(h), user, http.MethodDelete, "/notes/"+noteID.String(), "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", rec.Code)
	}
}

func TestDeleteNote_OtherUsersNote(t *testing.T) {
	t.Parallel()

	repo := newFakeNoteRepo()
	h := NewNoteHandler(repo, nil, zap.NewNop())
	other := testUser()

	noteID := uuid.New()
	repo.notes[noteID] = &models.Note{ID: noteID, UserID: other.ID, Title: "not yours"}

	rec := doRequest(t, noteRouter(h), testUser(), http.MethodDelete, "/notes/"+noteID.String(), "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if len(repo.notes) != 1 {
		t.Error("another user's note was deleted")
	}
}

func TestNotes_Unauthenticated(t *testing.T) {
	t.Parallel()

	h := NewNoteHandler(newFakeNoteRepo(), nil, zap.NewNop())
	router := noteRouter(h)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/notes"},
		{http.MethodPost, "/notes"},
		{http.MethodPut, "/notes/" + uuid.NewString()},
		{http.MethodDelete, "/notes/" + uuid.NewString()},
	} {
		rec := doRequest(t, router, nil, tc.method, tc.path, `{"title":"x"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 without user, got %d", tc.method, tc.path, rec.Code)
		}
	}
}
