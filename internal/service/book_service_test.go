package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/bookworm-api/internal/blob"
	"github.com/prn-tf/bookworm-api/internal/cache/memory"
	"github.com/prn-tf/bookworm-api/internal/domain"
	"github.com/prn-tf/bookworm-api/internal/repository"
)

// =============================================================================
// Mock Types
// =============================================================================

type mockBookRepository struct {
	mock.Mock
}

func (m *mockBookRepository) Create(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *mockBookRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *mockBookRepository) List(ctx context.Context, opts repository.ListOptions) ([]*domain.Book, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Book), args.Error(1)
}

func (m *mockBookRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Book, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Book), args.Error(1)
}

func (m *mockBookRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockBookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockBlobStore struct {
	mock.Mock
}

func (m *mockBlobStore) Upload(ctx context.Context, data []byte, contentType string) (*blob.Upload, error) {
	args := m.Called(ctx, data, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blob.Upload), args.Error(1)
}

func (m *mockBlobStore) Delete(ctx context.Context, handle string) error {
	args := m.Called(ctx, handle)
	return args.Error(0)
}

// noopCache misses every read and accepts every write.
type noopCache struct{}

func (noopCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, repository.ErrCacheMiss
}

func (noopCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (noopCache) Delete(ctx context.Context, key string) error { return nil }

func (noopCache) Exists(ctx context.Context, key string) (bool, error) { return false, nil }

func newBookService(repo repository.BookRepository, blobs blob.Store) *BookService {
	return NewBookService(repo, blobs, noopCache{}, zerolog.Nop())
}

func validImagePayload() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("image bytes"))
}

// =============================================================================
// Tests
// =============================================================================

func TestBookService_Create(t *testing.T) {
	tests := []struct {
		name      string
		input     CreateBookInput
		setupRepo func(*mockBookRepository)
		setupBlob func(*mockBlobStore)
		wantErr   error
	}{
		{
			name: "missing title",
			input: CreateBookInput{
				OwnerID: 1, Caption: "great read", Rating: 4,
				ImagePayload: validImagePayload(),
			},
			wantErr: ErrMissingBookFields,
		},
		{
			name: "missing rating",
			input: CreateBookInput{
				OwnerID: 1, Title: "Dune", Caption: "great read",
				ImagePayload: validImagePayload(),
			},
			wantErr: ErrMissingBookFields,
		},
		{
			name: "missing image",
			input: CreateBookInput{
				OwnerID: 1, Title: "Dune", Caption: "great read", Rating: 4,
			},
			wantErr: ErrMissingBookFields,
		},
		{
			name: "undecodable image",
			input: CreateBookInput{
				OwnerID: 1, Title: "Dune", Caption: "great read", Rating: 4,
				ImagePayload: "!!not base64!!",
			},
			wantErr: ErrInvalidImage,
		},
		{
			name: "upload failure leaves no record",
			input: CreateBookInput{
				OwnerID: 1, Title: "Dune", Caption: "great read", Rating: 4,
				ImagePayload: validImagePayload(),
			},
			setupBlob: func(m *mockBlobStore) {
				m.On("Upload", mock.Anything, mock.Anything, "image/png").
					Return(nil, errors.New("backend down"))
			},
			wantErr: ErrUploadFailed,
		},
		{
			name: "persist failure",
			input: CreateBookInput{
				OwnerID: 1, Title: "Dune", Caption: "great read", Rating: 4,
				ImagePayload: validImagePayload(),
			},
			setupBlob: func(m *mockBlobStore) {
				m.On("Upload", mock.Anything, mock.Anything, "image/png").
					Return(&blob.Upload{URL: "http://x/img", Handle: "img"}, nil)
			},
			setupRepo: func(m *mockBookRepository) {
				m.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))
			},
			wantErr: ErrInternalError,
		},
		{
			name: "success",
			input: CreateBookInput{
				OwnerID: 1, Title: "Dune", Caption: "great read", Rating: 4,
				ImagePayload: validImagePayload(),
			},
			setupBlob: func(m *mockBlobStore) {
				m.On("Upload", mock.Anything, []byte("image bytes"), "image/png").
					Return(&blob.Upload{URL: "http://x/covers/abc.png", Handle: "abc"}, nil)
			},
			setupRepo: func(m *mockBookRepository) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockBookRepository)
			blobs := new(mockBlobStore)
			if tt.setupRepo != nil {
				tt.setupRepo(repo)
			}
			if tt.setupBlob != nil {
				tt.setupBlob(blobs)
			}

			svc := newBookService(repo, blobs)
			book, err := svc.Create(context.Background(), tt.input)

			if tt.wantErr != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tt.wantErr)
				// Validation and upload failures must not touch the
				// repository; a persist failure necessarily has.
				if tt.setupRepo == nil {
					repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				}
				return
			}

			require.NoError(t, err)
			require.NotEqual(t, uuid.Nil, book.ID)
			require.Equal(t, tt.input.Title, book.Title)
			require.Equal(t, tt.input.OwnerID, book.OwnerID)
			require.Equal(t, "http://x/covers/abc.png", book.ImageURL)
			require.False(t, book.CreatedAt.IsZero())

			repo.AssertExpectations(t)
			blobs.AssertExpectations(t)
		})
	}
}

func TestBookService_ListPage(t *testing.T) {
	makeBooks := func(n int) []*domain.Book {
		books := make([]*domain.Book, n)
		for i := range books {
			books[i] = &domain.Book{ID: uuid.New(), Title: "book"}
		}
		return books
	}

	tests := []struct {
		name           string
		page, limit    int
		total          int64
		wantOffset     int
		wantLimit      int
		wantPage       int
		wantTotalPages int
	}{
		{
			name: "first page defaults",
			page: 0, limit: 0, total: 12,
			wantOffset: 0, wantLimit: 5, wantPage: 1, wantTotalPages: 3,
		},
		{
			name: "second page skips one page worth",
			page: 2, limit: 5, total: 12,
			wantOffset: 5, wantLimit: 5, wantPage: 2, wantTotalPages: 3,
		},
		{
			name: "total divides evenly",
			page: 1, limit: 5, total: 10,
			wantOffset: 0, wantLimit: 5, wantPage: 1, wantTotalPages: 2,
		},
		{
			name: "empty collection",
			page: 1, limit: 5, total: 0,
			wantOffset: 0, wantLimit: 5, wantPage: 1, wantTotalPages: 0,
		},
		{
			name: "page beyond the end is served empty",
			page: 9, limit: 5, total: 12,
			wantOffset: 40, wantLimit: 5, wantPage: 9, wantTotalPages: 3,
		},
		{
			name: "negative page falls back to first",
			page: -3, limit: 5, total: 12,
			wantOffset: 0, wantLimit: 5, wantPage: 1, wantTotalPages: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remaining := int(tt.total) - tt.wantOffset
			if remaining < 0 {
				remaining = 0
			}
			if remaining > tt.wantLimit {
				remaining = tt.wantLimit
			}

			repo := new(mockBookRepository)
			repo.On("List", mock.Anything, repository.ListOptions{
				Offset: tt.wantOffset,
				Limit:  tt.wantLimit,
			}).Return(makeBooks(remaining), nil)
			repo.On("Count", mock.Anything).Return(tt.total, nil)

			svc := newBookService(repo, new(mockBlobStore))
			page, err := svc.ListPage(context.Background(), tt.page, tt.limit)

			require.NoError(t, err)
			require.Equal(t, tt.wantPage, page.CurrentPage)
			require.Equal(t, tt.total, page.TotalBooks)
			require.Equal(t, tt.wantTotalPages, page.TotalPages)
			require.Len(t, page.Books, remaining)

			repo.AssertExpectations(t)
		})
	}
}

func TestBookService_TotalCountCached(t *testing.T) {
	repo := new(mockBookRepository)
	repo.On("List", mock.Anything, mock.Anything).Return([]*domain.Book{}, nil)
	repo.On("Count", mock.Anything).Return(int64(7), nil).Once()

	cache := memory.NewCache()
	defer cache.Close()

	svc := NewBookService(repo, new(mockBlobStore), cache, zerolog.Nop())

	// The second call is served from cache; Count is hit once.
	for i := 0; i < 2; i++ {
		page, err := svc.ListPage(context.Background(), 1, 5)
		require.NoError(t, err)
		require.Equal(t, int64(7), page.TotalBooks)
	}

	repo.AssertExpectations(t)
}

func TestBookService_ListByOwner(t *testing.T) {
	mine := []*domain.Book{
		{ID: uuid.New(), OwnerID: 1},
		{ID: uuid.New(), OwnerID: 1},
	}

	repo := new(mockBookRepository)
	repo.On("ListByOwner", mock.Anything, int64(1)).Return(mine, nil)

	svc := newBookService(repo, new(mockBlobStore))
	books, err := svc.ListByOwner(context.Background(), 1)

	require.NoError(t, err)
	require.Equal(t, mine, books)
	repo.AssertExpectations(t)
}

func TestBookService_Delete(t *testing.T) {
	bookID := uuid.New()
	owned := &domain.Book{
		ID:       bookID,
		OwnerID:  1,
		ImageURL: "http://x/covers/abc123.png",
	}

	tests := []struct {
		name      string
		ownerID   int64
		setupRepo func(*mockBookRepository)
		setupBlob func(*mockBlobStore)
		wantErr   error
	}{
		{
			name:    "book not found",
			ownerID: 1,
			setupRepo: func(m *mockBookRepository) {
				m.On("GetByID", mock.Anything, bookID).Return(nil, repository.ErrNotFound)
			},
			wantErr: domain.ErrBookNotFound,
		},
		{
			name:    "not the owner",
			ownerID: 2,
			setupRepo: func(m *mockBookRepository) {
				m.On("GetByID", mock.Anything, bookID).Return(owned, nil)
			},
			wantErr: domain.ErrNotOwner,
		},
		{
			name:    "success",
			ownerID: 1,
			setupRepo: func(m *mockBookRepository) {
				m.On("GetByID", mock.Anything, bookID).Return(owned, nil)
				m.On("Delete", mock.Anything, bookID).Return(nil)
			},
			setupBlob: func(m *mockBlobStore) {
				m.On("Delete", mock.Anything, "abc123").Return(nil)
			},
		},
		{
			name:    "blob deletion failure does not block",
			ownerID: 1,
			setupRepo: func(m *mockBookRepository) {
				m.On("GetByID", mock.Anything, bookID).Return(owned, nil)
				m.On("Delete", mock.Anything, bookID).Return(nil)
			},
			setupBlob: func(m *mockBlobStore) {
				m.On("Delete", mock.Anything, "abc123").Return(errors.New("backend down"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockBookRepository)
			blobs := new(mockBlobStore)
			if tt.setupRepo != nil {
				tt.setupRepo(repo)
			}
			if tt.setupBlob != nil {
				tt.setupBlob(blobs)
			}

			svc := newBookService(repo, blobs)
			err := svc.Delete(context.Background(), tt.ownerID, bookID)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				// Neither blob nor record may be touched before the
				// ownership check passes.
				repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
				blobs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			repo.AssertExpectations(t)
			blobs.AssertExpectations(t)
		})
	}
}
