// Package domain contains the core business entities for Bookworm.
// These are pure Go structs with no external dependencies, representing
// the fundamental concepts of the book-review sharing service.
package domain

import (
	"fmt"
	"time"
)

// AvatarBaseURL is the endpoint used to derive deterministic profile images.
const AvatarBaseURL = "https://api.dicebear.com/9.x/avataaars/svg"

// User represents a registered user in the system.
// Users own books and authenticate with an email/password pair.
type User struct {
	// ID is the unique identifier for the user (auto-generated).
	ID int64 `json:"id"`

	// Username is the unique display name. Constraints: at least 3 characters.
	Username string `json:"username"`

	// Email is the unique email address used for login.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	// This should never be exposed in API responses.
	PasswordHash string `json:"-"`

	// ProfileImage is the avatar URL, derived from the username at
	// registration and immutable afterwards.
	ProfileImage string `json:"profileImage"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"createdAt"`
}

// NewUser creates a new User with a derived profile image.
func NewUser(username, email, passwordHash string) *User {
	return &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		ProfileImage: AvatarURL(username),
		CreatedAt:    time.Now().UTC(),
	}
}

// AvatarURL derives the deterministic avatar URL for a username.
func AvatarURL(username string) string {
	return fmt.Sprintf("%s?seed=%s", AvatarBaseURL, username)
}
