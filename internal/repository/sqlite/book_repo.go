package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prn-tf/bookworm-api/internal/domain"
	"github.com/prn-tf/bookworm-api/internal/repository"
)

// bookRepository implements repository.BookRepository for SQLite.
type bookRepository struct {
	db *DB
}

// NewBookRepository creates a new SQLite book repository.
func NewBookRepository(db *DB) repository.BookRepository {
	return &bookRepository{db: db}
}

// Create creates a new book.
func (r *bookRepository) Create(ctx context.Context, book *domain.Book) error {
	query := `
		INSERT INTO books (id, title, caption, rating, image_url, owner_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		book.ID.String(),
		book.Title,
		book.Caption,
		book.Rating,
		book.ImageURL,
		book.OwnerID,
		book.CreatedAt.Format(time.RFC3339Nano),
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
		WHERE id = ?
	`

	book := &domain.Book{}
	var bookID, createdAt string

	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(
		&bookID,
		&book.Title,
		&book.Caption,
		&book.Rating,
		&book.ImageURL,
		&book.OwnerID,
		&createdAt,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get book by ID: %w", err)
	}

	book.ID, _ = uuid.Parse(bookID)
	book.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return book, nil
}

// List returns a page of books ordered by creation time descending.
// Ties are broken by insertion order (the autoincrement seq column), so
// repeated identical queries are stable absent concurrent writes.
func (r *bookRepository) List(ctx context.Context, opts repository.ListOptions) ([]*domain.Book, error) {
	query := `
		SELECT b.id, b.title, b.caption, b.rating, b.image_url, b.owner_id, b.created_at,
		       u.username, u.profile_image
		FROM books b
		JOIN users u ON u.id = b.owner_id
		ORDER BY b.created_at DESC, b.seq DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	return scanBooks(rows, true)
}

// ListByOwner returns all books owned by the given user.
func (r *bookRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Book, error) {
	query := `
		SELECT id, title, caption, rating, image_url, owner_id, created_at
		FROM books
		WHERE owner_id = ?
		ORDER BY created_at DESC, seq DESC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list books by owner: %w", err)
	}
	defer rows.Close()

	return scanBooks(rows, false)
}

// Count returns the total number of books.
func (r *bookRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return total, nil
}

// Delete deletes a book by ID.
func (r *bookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// scanBooks scans book rows, optionally with the joined owner projection.
func scanBooks(rows *sql.Rows, withOwner bool) ([]*domain.Book, error) {
	var books []*domain.Book
	for rows.Next() {
		book := &domain.Book{}
		var bookID, createdAt string

		dest := []interface{}{
			&bookID,
			&book.Title,
			&book.Caption,
			&book.Rating,
			&book.ImageURL,
			&book.OwnerID,
			&createdAt,
		}
		if withOwner {
			book.Owner = &domain.OwnerRef{}
			dest = append(dest, &book.Owner.Username, &book.Owner.ProfileImage)
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}

		book.ID, _ = uuid.Parse(bookID)
		book.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating books: %w", err)
	}

	return books, nil
}

// Ensure bookRepository implements repository.BookRepository.
var _ repository.BookRepository = (*bookRepository)(nil)
