// Package auth provides session token issuance and request authentication
// for Bookworm.
package auth

import "errors"

// Authentication errors.
var (
	// ErrInvalidToken indicates the token is malformed, tampered with,
	// or expired. Presenting a bad token is a routine rejection, not a
	// fatal error.
	ErrInvalidToken = errors.New("token is not valid")

	// ErrNoToken indicates the request carried no bearer token.
	ErrNoToken = errors.New("no authentication token, access denied")
)
