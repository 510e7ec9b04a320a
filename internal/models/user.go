package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a user in the system, mapped from an identity-provider
// subject. Exactly one row exists per distinct ProviderUID.
type User struct {
	ID          uuid.UUID `json:"id"`
	ProviderUID string    `json:"provider_uid"`
	Email       string    `json:"email"`
	Name        *string   `json:"name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DeriveName picks a display name for a newly created user: the token's name
// claim, falling back to the local part of the email, then to "User".
func DeriveName(claimName, email string) string {
	if claimName != "" {
		return claimName
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return "User"
}
