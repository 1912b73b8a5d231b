package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/prn-tf/bookworm-api/internal/domain"
	"github.com/prn-tf/bookworm-api/internal/repository"
)

// bookRepository implements repository.BookRepository for PostgreSQL.
type bookRepository struct {
	db *DB
}

// NewBookRepository creates a new PostgreSQL book repository.
func NewBookRepository(db *DB) repository.BookRepository {
	return &bookRepository{db: db}
}

// Create creates a new book.
func (r *bookRepository) Create(ctx context.Context, book *domain.Book) error {
	query := `
		INSERT INTO books (id, title, caption, rating, image_url, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		book.ID,
		book.Title,
		book.Caption,
		book.Rating,
		book.ImageURL,
		book.OwnerID,
		book.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

// GetByID retrieves a book by ID.
func (r *bookRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	query := `
		SELECT id, title, caption, rating, image_url, owner_id, created_at
		FROM books
		WHERE id = $1
	`

	book := &domain.Book{}
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&book.ID,
		&book.Title,
		&book.Caption,
		&book.Rating,
		&book.ImageURL,
		&book.OwnerID,
		&book.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get book by ID: %w", err)
	}

	return book, nil
}

// List returns a page of books ordered by creation time descending.
// Ties are broken by insertion order (the bigserial seq column), so
// repeated identical queries are stable absent concurrent writes.
func (r *bookRepository) List(ctx context.Context, opts repository.ListOptions) ([]*domain.Book, error) {
	query := `
		SELECT b.id, b.title, b.caption, b.rating, b.image_url, b.owner_id, b.created_at,
		       u.username, u.profile_image
		FROM books b
		JOIN users u ON u.id = b.owner_id
		ORDER BY b.created_at DESC, b.seq DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Pool.Query(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		book := &domain.Book{Owner: &domain.OwnerRef{}}
		err := rows.Scan(
			&book.ID,
			&book.Title,
			&book.Caption,
			&book.Rating,
			&book.ImageURL,
			&book.OwnerID,
			&book.CreatedAt,
			&book.Owner.Username,
			&book.Owner.ProfileImage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating books: %w", err)
	}

	return books, nil
}

// ListByOwner returns all books owned by the given user.
func (r *bookRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Book, error) {
	query := `
		SELECT id, title, caption, rating, image_url, owner_id, created_at
		FROM books
		WHERE owner_id = $1
		ORDER BY created_at DESC, seq DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list books by owner: %w", err)
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		book := &domain.Book{}
		err := rows.Scan(
			&book.ID,
			&book.Title,
			&book.Caption,
			&book.Rating,
			&book.ImageURL,
			&book.OwnerID,
			&book.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating books: %w", err)
	}

	return books, nil
}

// Count returns the total number of books.
func (r *bookRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM books`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return total, nil
}

// Delete deletes a book by ID.
func (r *bookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Ensure bookRepository implements repository.BookRepository.
var _ repository.BookRepository = (*bookRepository)(nil)
