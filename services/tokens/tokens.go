package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"barbuddy/apperrors"
)

// Identity is the authenticated principal extracted from a verified token.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Service issues and verifies signed JWTs.
type Service struct {
	secret []byte
	expiry time.Duration
}

func NewService(secret string, expiry time.Duration) *Service {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &Service{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// Issue creates a signed token for the given user.
func (s *Service) Issue(userID uuid.UUID, email string) (string, error) {
	now := time.Now()

	claims := &CustomClaims{
		ID:    userID.String(),
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a token string and returns the identity it carries.
// A missing token yields an unauthenticated error; a present but bad token
// yields an invalid-credential error.
func (s *Service) Verify(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, apperrors.NewUnauthenticated("")
	}

	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		return Identity{}, apperrors.NewInvalidCredential().WithInternal(err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return Identity{}, apperrors.NewInvalidCredential()
	}

	userID, err := uuid.Parse(claims.ID)
	if err != nil {
		return Identity{}, apperrors.NewInvalidCredential().WithInternal(err)
	}

	return Identity{UserID: userID, Email: claims.Email}, nil
}
