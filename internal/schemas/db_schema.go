// Package schemas defines the data structures
package schemas

import (
	"time"

	"github.com/google/uuid"
)

// User represents the data model for a user in the system.
type User struct {
	ID                 *uuid.UUID `json:"id"`                   // Unique identifier for the user.
	Username           string     `json:"username"`             // Username of the user.
	Email              string     `json:"email"`                // Email address of the user.
	Password           string     `json:"-"`                    // Password hash of the user.
	Inactive           bool       `json:"inactive"`             // Whether the account still awaits activation.
	ActivationToken    *string    `json:"-"`                    // One-time token consumed to activate the account.
	PasswordResetToken *string    `json:"-"`                    // One-time token consumed to reset the password.
	Image              *string    `json:"image"`                // Stored profile image reference.
	CreatedAt          *time.Time `json:"created_at,omitempty"` // Timestamp when the user was created.
}

// SessionToken represents an opaque bearer credential owned by a user.
// LastUsedAt slides forward on every successful verification; a token whose
// last use is older than the expiry window is invalid and gets purged.
type SessionToken struct {
	Token      string     `json:"token"`        // Opaque random token string, primary key.
	UserID     *uuid.UUID `json:"user_id"`      // Identifier of the owning user.
	LastUsedAt *time.Time `json:"last_used_at"` // Timestamp of the last successful use.
}

// Hoax represents a short text post authored by a user.
type Hoax struct {
	ID        *uuid.UUID `json:"id"`         // Unique identifier for the hoax.
	UserID    *uuid.UUID `json:"user_id"`    // Identifier of the author.
	Content   string     `json:"content"`    // Text content of the hoax.
	CreatedAt *time.Time `json:"created_at"` // Timestamp when the hoax was created.
}
