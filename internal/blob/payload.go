package blob

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrInvalidPayload indicates the image payload could not be decoded.
var ErrInvalidPayload = errors.New("invalid image payload")

// defaultContentType is assumed when the payload carries no media type.
const defaultContentType = "application/octet-stream"

// DecodePayload decodes a client-supplied image payload. Payloads arrive
// either as a data URI ("data:image/png;base64,....") or as a bare
// base64 string. Returns the raw bytes and the declared content type.
func DecodePayload(payload string) ([]byte, string, error) {
	contentType := defaultContentType
	encoded := payload

	if strings.HasPrefix(payload, "data:") {
		comma := strings.Index(payload, ",")
		if comma < 0 {
			return nil, "", ErrInvalidPayload
		}

		meta := payload[len("data:"):comma]
		encoded = payload[comma+1:]

		if semi := strings.Index(meta, ";"); semi >= 0 {
			meta = meta[:semi]
		}
		if meta != "" {
			contentType = meta
		}
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", ErrInvalidPayload
	}
	if len(data) == 0 {
		return nil, "", ErrInvalidPayload
	}

	return data, contentType, nil
}
