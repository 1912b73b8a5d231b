package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/bookworm-api/internal/auth"
	"github.com/prn-tf/bookworm-api/internal/domain"
	"github.com/prn-tf/bookworm-api/internal/repository"
	"github.com/prn-tf/bookworm-api/internal/service"
)

func newTestRouter(t *testing.T, userRepo *mockUserRepository, bookRepo *mockBookRepository) (http.Handler, *auth.TokenService) {
	t.Helper()

	tokens := auth.NewTokenService("test-secret", time.Hour)
	authService := service.NewAuthService(userRepo, tokens, zerolog.Nop())
	bookService := service.NewBookService(bookRepo, new(mockBlobStore), noopCache{}, zerolog.Nop())

	router := NewRouter(RouterConfig{
		AuthHandler:    NewAuthHandler(authService, zerolog.Nop()),
		BookHandler:    NewBookHandler(bookService, zerolog.Nop()),
		AuthMiddleware: auth.Middleware(tokens, userRepo, zerolog.Nop()),
		Logger:         zerolog.Nop(),
	})
	return router, tokens
}

func TestRouter_Health(t *testing.T) {
	router, _ := newTestRouter(t, new(mockUserRepository), new(mockBookRepository))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "healthy")
}

func TestRouter_BooksRequireAuth(t *testing.T) {
	router, _ := newTestRouter(t, new(mockUserRepository), new(mockBookRepository))

	for _, target := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/books/"},
		{http.MethodGet, "/api/books/"},
		{http.MethodGet, "/api/books/user"},
		{http.MethodDelete, "/api/books/" + "00000000-0000-0000-0000-000000000001"},
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(target.method, target.path, nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", target.method, target.path)
		require.Contains(t, rec.Body.String(), "No authentication token, access denied")
	}
}

func TestRouter_AuthenticatedListing(t *testing.T) {
	userRepo := new(mockUserRepository)
	bookRepo := new(mockBookRepository)

	userRepo.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, Username: "reader"}, nil)
	bookRepo.On("List", mock.Anything, repository.ListOptions{Offset: 0, Limit: 5}).
		Return([]*domain.Book{}, nil)
	bookRepo.On("Count", mock.Anything).Return(int64(0), nil)

	router, tokens := newTestRouter(t, userRepo, bookRepo)

	token, err := tokens.Issue(1)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/books/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"currentPage":1`)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t, new(mockUserRepository), new(mockBookRepository))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/books/", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
