// Package service provides the business logic for Bookworm.
package service

import "errors"

// Common service errors.
var (
	// Registration / login errors
	ErrMissingFields    = errors.New("all fields are required")
	ErrPasswordTooShort = errors.New("password should be at least 6 characters long")
	ErrUsernameTooShort = errors.New("username should be at least 3 characters long")

	// Book errors
	ErrMissingBookFields = errors.New("please provide all fields")
	ErrInvalidImage      = errors.New("image payload could not be decoded")
	ErrUploadFailed      = errors.New("image upload failed")

	// General errors
	ErrInternalError = errors.New("internal server error")
)
