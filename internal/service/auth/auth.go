// internal/service/auth/auth.go
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"killbill-service/internal/domain/admin"
	xerrors "killbill-service/internal/pkg/errors"
	"killbill-service/internal/pkg/jwt"
	"killbill-service/internal/pkg/session"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	adminRepo   admin.Repository
	jwtManager  *jwt.Manager
	rateLimiter *session.RateLimiter
	revocations *session.Revocations
	logger      *zap.Logger
}

func NewAuthService(
	adminRepo admin.Repository,
	jwtManager *jwt.Manager,
	rateLimiter *session.RateLimiter,
	revocations *session.Revocations,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		adminRepo:   adminRepo,
		jwtManager:  jwtManager,
		rateLimiter: rateLimiter,
		revocations: revocations,
		logger:      logger,
	}
}

// ========== Login ==========

// Login authenticates an admin with email/password and issues an access token
func (s *AuthService) Login(ctx context.Context, req *admin.LoginRequest) (*admin.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	allowed, _, err := s.rateLimiter.CheckLoginAttempt(ctx, req.IPAddress, email)
	if err != nil {
		// Redis trouble must not lock admins out.
		s.logger.Warn("login attempt check failed", zap.Error(err))
	} else if !allowed {
		s.logger.Warn("login rate limited", zap.String("email", email), zap.String("ip", req.IPAddress))
		return nil, xerrors.ErrRateLimited
	}

	a, err := s.adminRepo.FindByEmail(ctx, email)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			s.logger.Warn("login failed, unknown email", zap.String("email", email))
			return nil, xerrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to find admin: %w", err)
	}

	if !a.IsActive {
		s.logger.Warn("login failed, admin inactive", zap.Int64("admin_id", a.ID))
		return nil, xerrors.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("login failed, bad password", zap.Int64("admin_id", a.ID))
		return nil, xerrors.ErrUnauthorized
	}

	token, jti, expiresAt, err := s.jwtManager.Generator.GenerateAccessToken(a.ID, a.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if err := s.rateLimiter.ResetLoginAttempts(ctx, req.IPAddress, email); err != nil {
		s.logger.Warn("failed to reset login attempts", zap.Error(err))
	}

	if err := s.adminRepo.UpdateLastLogin(ctx, a.ID); err != nil {
		// log only
		s.logger.Error("failed to update last login", zap.Int64("admin_id", a.ID), zap.Error(err))
	}

	s.logger.Info("admin logged in", zap.Int64("admin_id", a.ID), zap.String("jti", jti))

	return &admin.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Admin: admin.AdminInfo{
			ID:        a.ID,
			FullName:  a.FullName,
			Email:     a.Email,
			LastLogin: a.LastLogin,
		},
	}, nil
}

// Me returns the public profile of the authenticated admin
func (s *AuthService) Me(ctx context.Context, adminID int64) (*admin.AdminInfo, error) {
	a, err := s.adminRepo.FindByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	return &admin.AdminInfo{ID: a.ID, FullName: a.FullName, Email: a.Email, LastLogin: a.LastLogin}, nil
}

// ChangePassword replaces the password after checking the current one
func (s *AuthService) ChangePassword(ctx context.Context, adminID int64, req *admin.ChangePasswordRequest) error {
	a, err := s.adminRepo.FindByID(ctx, adminID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return xerrors.FieldError("current_password", "current password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.adminRepo.UpdatePassword(ctx, adminID, string(hashed)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("admin password changed", zap.Int64("admin_id", adminID))
	return nil
}

// Logout revokes the current access token until it expires
func (s *AuthService) Logout(ctx context.Context, adminID int64, jti string, expiresAt time.Time) error {
	if err := s.revocations.Revoke(ctx, jti, expiresAt); err != nil {
		return err
	}
	s.logger.Info("admin logged out", zap.Int64("admin_id", adminID), zap.String("jti", jti))
	return nil
}
