package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/khushik17/notesweb/internal/models"
)

// NoteRepository handles note database operations. Every read and mutation is
// scoped by owner: a note is only reachable through its owning user's id.
type NoteRepository struct {
	db *DB
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// Create creates a new note
func (r *NoteRepository) Create(ctx context.Context, note *models.Note) error {
	query := `
		INSERT INTO notes (id, user_id, title, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		note.ID,
		note.UserID,
		note.Title,
		note.Description,
		now,
		now,
	).Scan(&note.CreatedAt, &note.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

// ListByUserID retrieves all notes for a user, newest first.
func (r *NoteRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Note, error) {
	query := `
		SELECT id, user_id, title, description, created_at, updated_at
		FROM notes
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			_ = closeErr
		}
	}()

	notes := []*models.Note{}
	for rows.Next() {
		note := &models.Note{}
		if err := rows.Scan(
			&note.ID,
			&note.UserID,
			&note.Title,
			&note.Description,
			&note.CreatedAt,
			&note.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}

	return notes, nil
}

// GetByIDAndUserID retrieves a note matching both id and owner.
// "Absent" and "owned by someone else" are indistinguishable here:
// both wrap sql.ErrNoRows.
func (r *NoteRepository) GetByIDAndUserID(ctx context.Context, id, userID uuid.UUID) (*models.Note, error) {
	note := &models.Note{}
	query := `
		SELECT id, user_id, title, description, created_at, updated_at
		FROM notes
		WHERE id = $1 AND user_id = $2
	`

	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&note.ID,
		&note.UserID,
		&note.Title,
		&note.Description,
		&note.CreatedAt,
		&note.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("note not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	return note, nil
}

// Update overwrites title and description of the note matching id and owner,
// refreshing updated_at. Wraps sql.ErrNoRows when no owned note matched.
func (r *NoteRepository) Update(ctx context.Context, note *models.Note) error {
	query := `
		UPDATE notes
		SET title = $3, description = $4, updated_at = $5
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		note.ID,
		note.UserID,
		note.Title,
		note.Description,
		time.Now(),
	).Scan(&note.UpdatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("note not found: %w", err)
	}
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	return nil
}

// Delete removes the note matching id and owner.
// Wraps sql.ErrNoRows when no owned note matched.
func (r *NoteRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := `DELETE FROM notes WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("note not found: %w", sql.ErrNoRows)
	}

	return nil
}
