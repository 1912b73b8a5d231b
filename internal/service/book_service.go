// Package service provides the business logic for Bookworm.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/bookworm-api/internal/blob"
	"github.com/prn-tf/bookworm-api/internal/domain"
	"github.com/prn-tf/bookworm-api/internal/repository"
)

const (
	// DefaultPage is used when no page is requested.
	DefaultPage = 1

	// DefaultPageLimit is used when no limit is requested. No upper bound
	// is enforced on the limit.
	DefaultPageLimit = 5

	// totalCountKey is the cache key for the total book count.
	totalCountKey = "books:total"

	// totalCountTTL bounds staleness of the cached total when
	// invalidation is missed (e.g. cache unavailable during a write).
	totalCountTTL = time.Minute
)

// BookService orchestrates book creation, listing and deletion,
// enforcing the ownership and pagination contracts.
type BookService struct {
	bookRepo repository.BookRepository
	blobs    blob.Store
	cache    repository.Cache
	logger   zerolog.Logger
}

// NewBookService creates a new BookService.
func NewBookService(
	bookRepo repository.BookRepository,
	blobs blob.Store,
	cache repository.Cache,
	logger zerolog.Logger,
) *BookService {
	return &BookService{
		bookRepo: bookRepo,
		blobs:    blobs,
		cache:    cache,
		logger:   logger.With().Str("service", "book").Logger(),
	}
}

// CreateBookInput contains the data needed to create a book.
type CreateBookInput struct {
	OwnerID      int64
	Title        string
	Caption      string
	Rating       int
	ImagePayload string
}

// BookPage is one page of the chronologically sorted book collection.
type BookPage struct {
	Books       []*domain.Book
	CurrentPage int
	TotalBooks  int64
	TotalPages  int
}

// Create validates the input, uploads the image, and persists a new book
// owned by the caller. Validation happens before the upload so a rejected
// request has no side effects; if the upload succeeds but the insert
// fails, the uploaded blob is orphaned (accepted gap, no transaction
// spans the two stores).
func (s *BookService) Create(ctx context.Context, input CreateBookInput) (*domain.Book, error) {
	if input.Title == "" || input.Caption == "" || input.ImagePayload == "" || input.Rating == 0 {
		return nil, ErrMissingBookFields
	}

	data, contentType, err := blob.DecodePayload(input.ImagePayload)
	if err != nil {
		return nil, ErrInvalidImage
	}

	upload, err := s.blobs.Upload(ctx, data, contentType)
	if err != nil {
		s.logger.Error().Err(err).Int64("owner_id", input.OwnerID).Msg("image upload failed")
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	book := domain.NewBook(input.OwnerID, input.Title, input.Caption, input.Rating, upload.URL)

	if err := s.bookRepo.Create(ctx, book); err != nil {
		s.logger.Error().Err(err).Str("book_id", book.ID.String()).Msg("failed to create book")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.invalidateTotal(ctx)

	s.logger.Info().
		Str("book_id", book.ID.String()).
		Int64("owner_id", input.OwnerID).
		Str("title", book.Title).
		Msg("book created")

	return book, nil
}

// ListPage returns one page of books, newest first, with each book's
// owner expanded to its public projection. page defaults to 1 and limit
// to 5; the limit is deliberately not capped.
func (s *BookService) ListPage(ctx context.Context, page, limit int) (*BookPage, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}

	books, err := s.bookRepo.List(ctx, repository.ListOptions{
		Offset: (page - 1) * limit,
		Limit:  limit,
	})
	if err != nil {
		s.logger.Error().Err(err).Int("page", page).Msg("failed to list books")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	total, err := s.totalBooks(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to count books")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return &BookPage{
		Books:       books,
		CurrentPage: page,
		TotalBooks:  total,
		TotalPages:  totalPages,
	}, nil
}

// ListByOwner returns all books owned by the given user, newest first.
func (s *BookService) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Book, error) {
	books, err := s.bookRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error().Err(err).Int64("owner_id", ownerID).Msg("failed to list books by owner")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return books, nil
}

// Delete removes a book owned by the caller. The stored image is deleted
// best-effort before the record: a blob deletion failure is logged and
// never surfaces to the caller.
func (s *BookService) Delete(ctx context.Context, ownerID int64, bookID uuid.UUID) error {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrBookNotFound
		}
		s.logger.Error().Err(err).Str("book_id", bookID.String()).Msg("failed to get book")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if !book.OwnedBy(ownerID) {
		return domain.ErrNotOwner
	}

	if handle := blob.HandleFromURL(book.ImageURL); handle != "" {
		if err := s.blobs.Delete(ctx, handle); err != nil {
			s.logger.Warn().Err(err).
				Str("book_id", bookID.String()).
				Str("handle", handle).
				Msg("failed to delete image blob")
		}
	}

	if err := s.bookRepo.Delete(ctx, bookID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrBookNotFound
		}
		s.logger.Error().Err(err).Str("book_id", bookID.String()).Msg("failed to delete book")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.invalidateTotal(ctx)

	s.logger.Info().
		Str("book_id", bookID.String()).
		Int64("owner_id", ownerID).
		Msg("book deleted")

	return nil
}

// totalBooks returns the total book count, served from cache when
// possible. Cache failures fall back to the repository.
func (s *BookService) totalBooks(ctx context.Context) (int64, error) {
	if value, err := s.cache.Get(ctx, totalCountKey); err == nil {
		if total, err := strconv.ParseInt(string(value), 10, 64); err == nil {
			return total, nil
		}
	}

	total, err := s.bookRepo.Count(ctx)
	if err != nil {
		return 0, err
	}

	if err := s.cache.Set(ctx, totalCountKey, []byte(strconv.FormatInt(total, 10)), totalCountTTL); err != nil {
		s.logger.Debug().Err(err).Msg("failed to cache book total")
	}

	return total, nil
}

// invalidateTotal drops the cached total after a write.
func (s *BookService) invalidateTotal(ctx context.Context) {
	if err := s.cache.Delete(ctx, totalCountKey); err != nil {
		s.logger.Debug().Err(err).Msg("failed to invalidate cached book total")
	}
}
