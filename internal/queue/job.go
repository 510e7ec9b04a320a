package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobType identifies the kind of work a job carries
type JobType string

const (
	// JobTypeNoteCreated asks the worker to send a "note created" email
	JobTypeNoteCreated JobType = "note_created"
)

// NoteCreatedPayload holds everything the mailer needs to build the
// notification without touching the database again.
type NoteCreatedPayload struct {
	RecipientEmail string    `json:"recipient_email"`
	RecipientName  string    `json:"recipient_name"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	NoteCreatedAt  time.Time `json:"note_created_at"`
}

// Job represents a unit of background work
type Job struct {
	ID        uuid.UUID          `json:"id"`
	Type      JobType            `json:"type"`
	UserID    uuid.UUID          `json:"user_id"`
	NoteID    uuid.UUID          `json:"note_id"`
	Note      NoteCreatedPayload `json:"note"`
	CreatedAt time.Time          `json:"created_at"`
}

// NewNoteCreatedJob creates a job for the email worker
func NewNoteCreatedJob(userID, noteID uuid.UUID, payload NoteCreatedPayload) *Job {
	return &Job{
		ID:        uuid.New(),
		Type:      JobTypeNoteCreated,
		UserID:    userID,
		NoteID:    noteID,
		Note:      payload,
		CreatedAt: time.Now(),
	}
}

// Validate checks that the job is well-formed
func (j *Job) Validate() error {
	if j.ID == uuid.Nil {
		return fmt.Errorf("job ID is required")
	}
	if j.Type != JobTypeNoteCreated {
		return fmt.Errorf("unknown job type: %s", j.Type)
	}
	if j.UserID == uuid.Nil {
		return fmt.Errorf("user ID is required")
	}
	if j.NoteID == uuid.Nil {
		return fmt.Errorf("note ID is required")
	}
	if j.Note.RecipientEmail == "" {
		return fmt.Errorf("recipient email is required")
	}
	return nil
}

// Marshal serializes the job to JSON
func (j *Job) Marshal() ([]byte, error) {
	return json.Marshal(j)
}

// UnmarshalJob deserializes a job from JSON
func UnmarshalJob(data []byte) (*Job, error) {
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job: %w", err)
	}
	return &job, nil
}
