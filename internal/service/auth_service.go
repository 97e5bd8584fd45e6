package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/cabinet/config"
	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/auth"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountLocked      = errors.New("account is temporarily locked due to multiple failed login attempts")
)

// AuthService authenticates the single practice account configured through
// AUTH_USERNAME and AUTH_PASSWORD_HASH. Failed attempts are counted in memory.
type AuthService struct {
	cfg        config.AuthConfig
	jwtManager *auth.JWTManager
	auditSvc   *AuditService
	log        *zap.Logger
	now        func() time.Time

	mu          sync.Mutex
	failed      int
	lockedUntil time.Time
}

func NewAuthService(cfg config.AuthConfig, jwtManager *auth.JWTManager, auditSvc *AuditService, log *zap.Logger) *AuthService {
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = 5
	}
	return &AuthService{cfg: cfg, jwtManager: jwtManager, auditSvc: auditSvc, log: log, now: time.Now}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.TokenPair, error) {
	if s.isLocked() {
		return nil, ErrAccountLocked
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.Username)) == 1
	// The hash is always compared so a wrong username costs as much as a wrong password.
	passErr := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(password))
	if !userOK || passErr != nil {
		s.recordFailure()
		s.log.Warn("failed login attempt",
			zap.String("username", username),
			zap.String("ip", CallerFrom(ctx).IPAddress),
		)
		return nil, ErrInvalidCredentials
	}
	s.resetFailures()

	pair, err := s.jwtManager.GenerateTokenPair(&domain.Claims{Subject: s.cfg.Username})
	if err != nil {
		s.log.Error("failed to generate token pair", zap.Error(err))
		return nil, fmt.Errorf("generating tokens: %w", err)
	}

	s.auditSvc.LogAsync(WithCaller(ctx, Caller{
		Actor:     s.cfg.Username,
		IPAddress: CallerFrom(ctx).IPAddress,
		RequestID: CallerFrom(ctx).RequestID,
	}), AuditEntry{Action: "login", ResourceType: "session", ResourceID: s.cfg.Username})
	s.log.Info("practice account logged in", zap.String("ip", CallerFrom(ctx).IPAddress))

	return pair, nil
}

// RefreshToken issues a new pair given a valid refresh token for the configured account.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	// A rename of AUTH_USERNAME invalidates outstanding refresh tokens.
	if claims.Subject != s.cfg.Username {
		return nil, ErrInvalidCredentials
	}
	return s.jwtManager.GenerateTokenPair(&domain.Claims{Subject: claims.Subject})
}

// Authenticate validates an access token and returns its claims.
func (s *AuthService) Authenticate(accessToken string) (*domain.Claims, error) {
	claims, err := s.jwtManager.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, err
	}
	if claims.Subject != s.cfg.Username {
		return nil, auth.ErrTokenInvalid
	}
	return claims, nil
}

func (s *AuthService) isLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().Before(s.lockedUntil)
}

func (s *AuthService) recordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed++
	if s.failed >= s.cfg.MaxFailedAttempts {
		s.lockedUntil = s.now().Add(s.cfg.LockDuration)
		s.failed = 0
	}
}

func (s *AuthService) resetFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = 0
}
