package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/khushik17/notesweb/internal/models"
)

// NoteRepositoryInterface defines the interface for note repository operations
// This interface enables better testability by allowing mock implementations
type NoteRepositoryInterface interface {
	Create(ctx context.Context, note *models.Note) error
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Note, error)
	GetByIDAndUserID(ctx context.Context, id, userID uuid.UUID) (*models.Note, error)
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// UserRepositoryInterface defines the interface for user repository operations
type UserRepositoryInterface interface {
	FindOrCreate(ctx context.Context, providerUID, email string, name *string) (*models.User, error)
	GetByProviderUID(ctx context.Context, providerUID string) (*models.User, error)
}

// Ensure concrete types implement the interfaces
var (
	_ NoteRepositoryInterface = (*NoteRepository)(nil)
	_ UserRepositoryInterface = (*UserRepository)(nil)
)
