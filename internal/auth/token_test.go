package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := svc.Verify(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), userID)
}

func TestTokenService_DefaultTTL(t *testing.T) {
	svc := NewTokenService("test-secret", 0)
	require.Equal(t, DefaultTokenTTL, svc.ttl)

	svc = NewTokenService("test-secret", -time.Hour)
	require.Equal(t, DefaultTokenTTL, svc.ttl)
}

func TestTokenService_VerifyRejects(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{
			name: "garbage input",
			token: func(t *testing.T) string {
				return "not-a-token"
			},
		},
		{
			name: "empty input",
			token: func(t *testing.T) string {
				return ""
			},
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				other := NewTokenService("different-secret", time.Hour)
				token, err := other.Issue(42)
				require.NoError(t, err)
				return token
			},
		},
		{
			name: "expired",
			token: func(t *testing.T) string {
				expired := NewTokenService("test-secret", -time.Minute)
				// Constructor clamps non-positive TTLs, so force it.
				expired.ttl = -time.Minute
				token, err := expired.Issue(42)
				require.NoError(t, err)
				return token
			},
		},
		{
			name: "tampered payload",
			token: func(t *testing.T) string {
				token, err := svc.Issue(42)
				require.NoError(t, err)
				return token[:len(token)-3] + "xxx"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token(t))
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
