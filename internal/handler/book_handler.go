package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/bookworm-api/internal/auth"
	"github.com/prn-tf/bookworm-api/internal/domain"
	"github.com/prn-tf/bookworm-api/internal/service"
)

// BookHandler handles book resource requests. All routes it serves sit
// behind the auth middleware, so an authenticated user is always present
// on the request context.
type BookHandler struct {
	bookService *service.BookService
	logger      zerolog.Logger
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(bookService *service.BookService, logger zerolog.Logger) *BookHandler {
	return &BookHandler{
		bookService: bookService,
		logger:      logger.With().Str("handler", "book").Logger(),
	}
}

// createBookRequest is the body of POST /api/books.
type createBookRequest struct {
	Title   string `json:"title"`
	Caption string `json:"caption"`
	Rating  int    `json:"rating"`
	Image   string `json:"image"`
}

// bookPageResponse is the body of GET /api/books.
type bookPageResponse struct {
	Books       []*domain.Book `json:"books"`
	CurrentPage int            `json:"currentPage"`
	TotalBooks  int64          `json:"totalBooks"`
	TotalPages  int            `json:"totalPages"`
}

// Create handles POST /api/books.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Token is not valid")
		return
	}

	var req createBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	book, err := h.bookService.Create(r.Context(), service.CreateBookInput{
		OwnerID:      user.ID,
		Title:        req.Title,
		Caption:      req.Caption,
		Rating:       req.Rating,
		ImagePayload: req.Image,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, book)
}

// List handles GET /api/books?page&limit.
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", service.DefaultPage)
	limit := queryInt(r, "limit", service.DefaultPageLimit)

	result, err := h.bookService.ListPage(r.Context(), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	books := result.Books
	if books == nil {
		books = []*domain.Book{}
	}

	writeJSON(w, http.StatusOK, bookPageResponse{
		Books:       books,
		CurrentPage: result.CurrentPage,
		TotalBooks:  result.TotalBooks,
		TotalPages:  result.TotalPages,
	})
}

// ListMine handles GET /api/books/user.
func (h *BookHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Token is not valid")
		return
	}

	books, err := h.bookService.ListByOwner(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	if books == nil {
		books = []*domain.Book{}
	}
	writeJSON(w, http.StatusOK, books)
}

// Delete handles DELETE /api/books/{id}.
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Token is not valid")
		return
	}

	bookID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Book not found")
		return
	}

	if err := h.bookService.Delete(r.Context(), user.ID, bookID); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Book deleted Successfully")
}

// queryInt reads an integer query parameter, falling back to def when
// the parameter is absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}
