// Package handler provides the HTTP layer for the Bookworm API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prn-tf/bookworm-api/internal/domain"
	"github.com/prn-tf/bookworm-api/internal/service"
)

// messageResponse is the JSON shape of every non-payload response.
type messageResponse struct {
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeMessage writes a {message} JSON response with the given status.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// writeError maps a service error to its HTTP status and user-facing
// message. Unrecognized errors degrade to a 500 with the error's own
// message; the process never crashes on a handler failure.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		writeMessage(w, http.StatusBadRequest, "All fields are required")
	case errors.Is(err, service.ErrPasswordTooShort):
		writeMessage(w, http.StatusBadRequest, "Password should be at least 6 characters long")
	case errors.Is(err, service.ErrUsernameTooShort):
		writeMessage(w, http.StatusBadRequest, "Username should be at least 3 characters long")
	case errors.Is(err, domain.ErrEmailTaken):
		writeMessage(w, http.StatusBadRequest, "Email already exist")
	case errors.Is(err, domain.ErrUsernameTaken):
		writeMessage(w, http.StatusBadRequest, "Username already exist")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeMessage(w, http.StatusBadRequest, "Invalid Credentials")
	case errors.Is(err, service.ErrMissingBookFields):
		writeMessage(w, http.StatusBadRequest, "Please provide all fields")
	case errors.Is(err, service.ErrInvalidImage):
		writeMessage(w, http.StatusBadRequest, "Invalid image payload")
	case errors.Is(err, domain.ErrBookNotFound):
		writeMessage(w, http.StatusBadRequest, "Book not found")
	case errors.Is(err, domain.ErrNotOwner):
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
	default:
		writeMessage(w, http.StatusInternalServerError, err.Error())
	}
}
