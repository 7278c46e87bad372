// internal/service/auth/admin_create.go
package auth

import (
	"context"
	"fmt"
	"strings"

	"killbill-service/internal/domain/admin"
	xerrors "killbill-service/internal/pkg/errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// CreateAdmin adds a back-office operator
func (s *AuthService) CreateAdmin(ctx context.Context, req *admin.CreateAdminRequest) (*admin.AdminInfo, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.adminRepo.FindByEmail(ctx, email); err == nil {
		return nil, xerrors.FieldError("email", "an admin with this email already exists")
	} else if !xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.adminRepo.Create(ctx, &admin.Admin{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        email,
		PasswordHash: string(hashed),
		IsActive:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	s.logger.Info("admin created", zap.Int64("admin_id", created.ID), zap.String("email", created.Email))
	return &admin.AdminInfo{ID: created.ID, FullName: created.FullName, Email: created.Email}, nil
}

// EnsureBootstrapAdmin creates the first admin account from the environment
// when the admins table is empty (called on startup)
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, email, password, fullName string) error {
	count, err := s.adminRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}

	if count > 0 {
		s.logger.Info("admin accounts exist, skipping bootstrap")
		return nil
	}

	if email == "" || password == "" {
		s.logger.Warn("no admin accounts and ADMIN_EMAIL/ADMIN_PASSWORD unset; the API has no usable login")
		return nil
	}
	if fullName == "" {
		fullName = "Administrator"
	}

	s.logger.Info("creating bootstrap admin account", zap.String("email", email))

	_, err = s.CreateAdmin(ctx, &admin.CreateAdminRequest{
		FullName: fullName,
		Email:    email,
		Password: password,
	})
	return err
}
