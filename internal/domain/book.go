// Package domain contains the core business entities for Bookworm.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Book represents a single book review entry.
// Every book has exactly one owner, set at creation and never reassigned.
type Book struct {
	// ID is the unique identifier for the book (server-generated UUID).
	ID uuid.UUID `json:"id"`

	// Title is the book title.
	Title string `json:"title"`

	// Caption is the reviewer's short write-up.
	Caption string `json:"caption"`

	// Rating is the reviewer's score. The range (1-5) is enforced by the
	// client; the server only requires it to be present.
	Rating int `json:"rating"`

	// ImageURL is the durable URL of the uploaded cover image.
	ImageURL string `json:"image"`

	// OwnerID references the user who created the book.
	OwnerID int64 `json:"ownerId"`

	// Owner is the expanded owner reference, populated on list queries.
	// Only the public fields of the owner are ever exposed.
	Owner *OwnerRef `json:"user,omitempty"`

	// CreatedAt is the server-assigned creation timestamp, used as the
	// sole sort key for listings.
	CreatedAt time.Time `json:"createdAt"`
}

// OwnerRef is the public projection of a book's owner.
type OwnerRef struct {
	Username     string `json:"username"`
	ProfileImage string `json:"profileImage"`
}

// NewBook creates a new Book owned by the given user.
func NewBook(ownerID int64, title, caption string, rating int, imageURL string) *Book {
	return &Book{
		ID:        uuid.New(),
		Title:     title,
		Caption:   caption,
		Rating:    rating,
		ImageURL:  imageURL,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}
}

// OwnedBy reports whether the book belongs to the given user.
// Ownership comparison is always done through this method so the
// equality contract lives in one place.
func (b *Book) OwnedBy(userID int64) bool {
	return b.OwnerID == userID
}
