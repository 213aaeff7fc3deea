package tokens

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barbuddy/apperrors"
)

func TestIssueAndVerify(t *testing.T) {
	svc := NewService("test-secret", time.Hour)
	userID := uuid.New()

	token, err := svc.Issue(userID, "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, identity.UserID)
	assert.Equal(t, "alice@example.com", identity.Email)
}

func TestVerifyEmptyToken(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	_, err := svc.Verify("")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnauthenticated, apperrors.FromError(err).Code)
}

func TestVerifyMalformedToken(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	_, err := svc.Verify("not-a-jwt")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidCredential, apperrors.FromError(err).Code)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewService("secret-one", time.Hour)
	verifier := NewService("secret-two", time.Hour)

	token, err := issuer.Issue(uuid.New(), "bob@example.com")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidCredential, apperrors.FromError(err).Code)
}

func TestVerifyExpiredToken(t *testing.T) {
	svc := NewService("test-secret", time.Hour)
	svc.expiry = -time.Minute

	token, err := svc.Issue(uuid.New(), "carol@example.com")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidCredential, apperrors.FromError(err).Code)
}

func TestDefaultExpiry(t *testing.T) {
	svc := NewService("test-secret", 0)
	assert.Equal(t, 24*time.Hour, svc.expiry)
}
