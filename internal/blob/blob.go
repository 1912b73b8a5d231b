// Package blob defines the image storage contract for Bookworm and its
// backends. A blob store turns an uploaded image payload into a durable
// public URL plus an opaque handle usable for later deletion.
package blob

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// ErrUploadFailed indicates the backend could not store the payload.
var ErrUploadFailed = errors.New("image upload failed")

// Upload is the result of storing an image payload.
type Upload struct {
	// URL is the durable, publicly reachable URL of the stored image.
	URL string

	// Handle is the opaque reference used to delete the image later.
	Handle string
}

// Store is the blob storage contract.
type Store interface {
	// Upload stores an image payload and returns its URL and handle.
	Upload(ctx context.Context, data []byte, contentType string) (*Upload, error)

	// Delete removes a previously uploaded image by handle.
	// Callers treat deletion as best-effort.
	Delete(ctx context.Context, handle string) error
}

// HandleFromURL derives the deletion handle from a stored image URL:
// the last path segment with any file extension stripped. Returns an
// empty string when the URL has no usable path.
func HandleFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	path := strings.TrimSuffix(u.Path, "/")
	idx := strings.LastIndex(path, "/")
	segment := path[idx+1:]

	if dot := strings.LastIndex(segment, "."); dot > 0 {
		segment = segment[:dot]
	}
	return segment
}
