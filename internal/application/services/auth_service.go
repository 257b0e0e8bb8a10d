package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/retailops/loadboard/internal/infrastructure/config"
	"github.com/retailops/loadboard/internal/ports"
)

// AuthService validates the bearer tokens presented to the task API and
// mints new ones for operators
type AuthService struct {
	authConfig config.AuthConfig
	now        func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(authConfig config.AuthConfig) *AuthService {
	return &AuthService{authConfig: authConfig, now: time.Now}
}

// ValidateToken checks signature, issuer and expiry
func (s *AuthService) ValidateToken(tokenString string) (*ports.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.authConfig.Secret), nil
	},
		jwt.WithIssuer(s.authConfig.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("invalid token: missing subject")
	}

	return &ports.Claims{
		Subject: claims.Subject,
		Issuer:  claims.Issuer,
	}, nil
}

// IssueToken signs an HS256 token for subject
func (s *AuthService) IssueToken(subject string) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("subject is required")
	}

	now := s.now()
	claims := &jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.authConfig.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.authConfig.ExpiresIn)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.authConfig.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

var _ ports.TokenService = (*AuthService)(nil)
