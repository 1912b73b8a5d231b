// Package repository defines data access interfaces for Bookworm.
// These interfaces abstract database operations, allowing for different
// implementations (PostgreSQL, SQLite, mocks for testing) while keeping
// the service layer clean.
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/prn-tf/bookworm-api/internal/domain"
)

// =============================================================================
// User Repository
// =============================================================================

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create creates a new user. The user's ID is set on success.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// ExistsByUsername checks if a user with the given username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail checks if a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// =============================================================================
// Book Repository
// =============================================================================

// BookRepository defines the interface for book data access.
type BookRepository interface {
	// Create creates a new book.
	Create(ctx context.Context, book *domain.Book) error

	// GetByID retrieves a book by ID. The owner reference is not expanded.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error)

	// List returns a page of books ordered by creation time descending
	// (ties broken by insertion order, stable across identical queries).
	// Each returned book carries an expanded owner reference.
	List(ctx context.Context, opts ListOptions) ([]*domain.Book, error)

	// ListByOwner returns all books owned by the given user, ordered by
	// creation time descending, without pagination.
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Book, error)

	// Count returns the total number of books.
	Count(ctx context.Context) (int64, error)

	// Delete deletes a book by ID.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ListOptions contains offset-based pagination options.
type ListOptions struct {
	// Offset is the number of records to skip.
	Offset int

	// Limit is the maximum number of records to return.
	Limit int
}

// =============================================================================
// Health
// =============================================================================

// DatabaseHealth is the interface database handles expose for liveness
// checks and shutdown.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Close() error
}
