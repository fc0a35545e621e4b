package service

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/spec-kit/queue-dashboard/internal/auth"
	"github.com/spec-kit/queue-dashboard/internal/config"
	apperrors "github.com/spec-kit/queue-dashboard/pkg/util/errorutil"
)

// AuthService authenticates the dashboard operator.
type AuthService struct {
	email        string
	passwordHash string
	tokenMgr     *auth.TokenManager
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig) *AuthService {
	return &AuthService{
		email:        strings.ToLower(strings.TrimSpace(cfg.OperatorEmail)),
		passwordHash: cfg.OperatorPasswordHash,
		tokenMgr:     auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
	}
}

// Login checks the operator credentials and returns a signed access token.
func (s *AuthService) Login(_ context.Context, email, password string) (string, time.Time, error) {
	if s.email == "" || s.passwordHash == "" {
		return "", time.Time{}, apperrors.NewUnauthorized("operator login not configured")
	}
	given := strings.ToLower(strings.TrimSpace(email))
	emailMatch := subtle.ConstantTimeCompare([]byte(given), []byte(s.email)) == 1
	// always run bcrypt so a wrong email costs the same as a wrong password
	passwordErr := auth.ComparePassword(s.passwordHash, password)
	if !emailMatch || passwordErr != nil {
		return "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(s.email, auth.RoleOperator)
	if err != nil {
		return "", time.Time{}, apperrors.NewInternalError(err)
	}
	return token, exp, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
