package blob

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandleFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "cloud URL with extension",
			url:  "https://res.example.com/v1699/abc123def.png",
			want: "abc123def",
		},
		{
			name: "sharded filesystem URL without extension",
			url:  "http://localhost:3000/media/ab/cd/abcdef1234567890",
			want: "abcdef1234567890",
		},
		{
			name: "trailing slash",
			url:  "https://example.com/images/handle.jpg/",
			want: "handle",
		},
		{
			name: "multiple dots keeps all but last extension",
			url:  "https://example.com/covers/my.book.cover.webp",
			want: "my.book.cover",
		},
		{
			name: "hidden-file style segment is kept whole",
			url:  "https://example.com/x/.hidden",
			want: ".hidden",
		},
		{
			name: "bare host",
			url:  "https://example.com",
			want: "",
		},
		{
			name: "unparseable",
			url:  "http://exa mple.com/\x7f",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, HandleFromURL(tt.url))
		})
	}
}

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantData string
		wantType string
		wantErr  error
	}{
		{
			name:     "data URI with media type",
			payload:  "data:image/png;base64,aGVsbG8=",
			wantData: "hello",
			wantType: "image/png",
		},
		{
			name:     "data URI without media type",
			payload:  "data:;base64,aGVsbG8=",
			wantData: "hello",
			wantType: "application/octet-stream",
		},
		{
			name:     "bare base64",
			payload:  "aGVsbG8=",
			wantData: "hello",
			wantType: "application/octet-stream",
		},
		{
			name:    "data URI without comma",
			payload: "data:image/png;base64",
			wantErr: ErrInvalidPayload,
		},
		{
			name:    "invalid base64",
			payload: "!!not base64!!",
			wantErr: ErrInvalidPayload,
		},
		{
			name:    "empty decoded content",
			payload: "data:image/png;base64,",
			wantErr: ErrInvalidPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, contentType, err := DecodePayload(tt.payload)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantData, string(data))
			require.Equal(t, tt.wantType, contentType)
		})
	}
}
