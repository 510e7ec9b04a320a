package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/khushik17/notesweb/internal/database"
	"github.com/khushik17/notesweb/internal/models"
	"github.com/khushik17/notesweb/internal/queue"
	"github.com/khushik17/notesweb/internal/request"
	"github.com/khushik17/notesweb/internal/validation"
)

const (
	// MaxTitleLength is the maximum length for a note title
	MaxTitleLength = 200
	// MaxDescriptionLength is the maximum length for a note description
	MaxDescriptionLength = 10000
	// enqueueTimeout bounds the detached publish of a notification job
	enqueueTimeout = 10 * time.Second
)

// JobEnqueuer publishes background jobs. Satisfied by queue.RabbitMQQueue.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, job *queue.Job) error
}

// NoteHandler handles note-related requests
type NoteHandler struct {
	noteRepo database.NoteRepositoryInterface
	jobs     JobEnqueuer
	logger   *zap.Logger

	// notifyWG tracks in-flight notification goroutines so shutdown
	// (and tests) can wait for them
	notifyWG sync.WaitGroup
}

// NewNoteHandler creates a new note handler. jobs may be nil, in which case
// note creation skips the email notification.
func NewNoteHandler(noteRepo database.NoteRepositoryInterface, jobs JobEnqueuer, logger *zap.Logger) *NoteHandler {
	return &NoteHandler{
		noteRepo: noteRepo,
		jobs:     jobs,
		logger:   logger,
	}
}

// RegisterRoutes registers note routes on the given router
// The router should already have the /notes prefix
func (h *NoteHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListNotes).Methods("GET")
	r.HandleFunc("", h.CreateNote).Methods("POST")
	r.HandleFunc("/{id}", h.UpdateNote).Methods("PUT")
	r.HandleFunc("/{id}", h.DeleteNote).Methods("DELETE")
}

// Wait blocks until all in-flight notification goroutines have finished.
// Called during graceful shutdown.
func (h *NoteHandler) Wait() {
	h.notifyWG.Wait()
}

// CreateNoteRequest represents a create note request
type CreateNoteRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=10000"`
}

// UpdateNoteRequest represents an update note request. Omitted fields keep
// their current value.
type UpdateNoteRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ListNotes lists the authenticated user's notes, newest first
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	notes, err := h.noteRepo.ListByUserID(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to list notes", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to retrieve notes")
		return
	}

	respondJSON(w, http.StatusOK, notes)
}

// CreateNote creates a new note and queues an email notification
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		if _, ok := err.(validator.ValidationErrors); ok {
			respondError(w, http.StatusBadRequest, "Title is required")
			return
		}
		respondError(w, http.StatusBadRequest, "Validation failed")
		return
	}

	req.Title = validation.SanitizeText(req.Title)
	req.Description = validation.SanitizeText(req.Description)
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "Title is required")
		return
	}
	if len(req.Title) > MaxTitleLength {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("Title exceeds maximum length of %d characters", MaxTitleLength))
		return
	}

	note := &models.Note{
		ID:          uuid.New(),
		UserID:      user.ID,
		Title:       req.Title,
		Description: req.Description,
	}

	if err := h.noteRepo.Create(r.Context(), note); err != nil {
		h.logger.Error("failed to create note", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to create note")
		return
	}

	respondJSON(w, http.StatusCreated, note)

	// The response is already committed; notification failures are logged
	// and never surfaced to the client.
	h.dispatchNoteCreated(user, note)
}

// dispatchNoteCreated publishes the email job from a detached goroutine so
// the request goroutine returns immediately.
func (h *NoteHandler) dispatchNoteCreated(user *models.User, note *models.Note) {
	if h.jobs == nil {
		return
	}

	recipientName := ""
	if user.Name != nil {
		recipientName = *user.Name
	}
	job := queue.NewNoteCreatedJob(user.ID, note.ID, queue.NoteCreatedPayload{
		RecipientEmail: user.Email,
		RecipientName:  recipientName,
		Title:          note.Title,
		Description:    note.Description,
		NoteCreatedAt:  note.CreatedAt,
	})

	h.notifyWG.Add(1)
	go func() {
		defer h.notifyWG.Done()

		ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
		defer cancel()

		if err := h.jobs.Enqueue(ctx, job); err != nil {
			h.logger.Warn("failed to enqueue note-created email job",
				zap.String("note_id", note.ID.String()),
				zap.Error(err))
		}
	}()
}

// UpdateNote updates an existing note owned by the authenticated user
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid note ID")
		return
	}

	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()

	// The lookup is owner-scoped, so another user's note is indistinguishable
	// from a missing one.
	note, err := h.noteRepo.GetByIDAndUserID(ctx, id, user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "Note not found")
			return
		}
		h.logger.Error("failed to load note", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to update note")
		return
	}

	if req.Title != nil {
		sanitized := validation.SanitizeText(*req.Title)
		if sanitized == "" {
			respondError(w, http.StatusBadRequest, "Title is required")
			return
		}
		if len(sanitized) > MaxTitleLength {
			respondError(w, http.StatusBadRequest,
				fmt.Sprintf("Title exceeds maximum length of %d characters", MaxTitleLength))
			return
		}
		note.Title = sanitized
	}
	if req.Description != nil {
		note.Description = validation.SanitizeText(*req.Description)
	}

	if err := h.noteRepo.Update(ctx, note); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "Note not found")
			return
		}
		h.logger.Error("failed to update note", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to update note")
		return
	}

	respondJSON(w, http.StatusOK, note)
}

// DeleteNote deletes a note owned by the authenticated user
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid note ID")
		return
	}

	if err := h.noteRepo.Delete(r.Context(), id, user.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "Note not found")
			return
		}
		h.logger.Error("failed to delete note", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to delete note")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Note deleted successfully"})
}
