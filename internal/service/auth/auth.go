// internal/service/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leaddist-service/internal/domain/admin"
	xerrors "leaddist-service/internal/pkg/errors"
	"leaddist-service/internal/pkg/jwt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AdminRepository interface {
	Create(ctx context.Context, a *admin.Admin) error
	FindByEmail(ctx context.Context, email string) (*admin.Admin, error)
	FindByID(ctx context.Context, id int64) (*admin.Admin, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	SuperAdminExists(ctx context.Context) (bool, error)
	UpdateLastLogin(ctx context.Context, id int64) error
}

type LoginLimiter interface {
	CheckLoginAttempt(ctx context.Context, ip, email string) (bool, int64, error)
	ResetLoginAttempts(ctx context.Context, ip, email string) error
}

// TokenRevoker tracks signed-out tokens.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// ErrInvalidCredentials hides whether the email or the password was wrong.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", xerrors.ErrUnauthorized)

type AuthService struct {
	repo    AdminRepository
	tokens  *jwt.Manager
	limiter LoginLimiter
	revoker TokenRevoker
	logger  *zap.Logger
}

func NewAuthService(repo AdminRepository, tokens *jwt.Manager, limiter LoginLimiter, revoker TokenRevoker, logger *zap.Logger) *AuthService {
	return &AuthService{
		repo:    repo,
		tokens:  tokens,
		limiter: limiter,
		revoker: revoker,
		logger:  logger,
	}
}

// ========== Registration ==========

// Register creates an admin account and signs them in.
func (s *AuthService) Register(ctx context.Context, req *admin.RegisterRequest) (*admin.LoginResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrInvalidInput, err)
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: admin with this email already exists", xerrors.ErrDuplicateEntry)
	}

	a, err := s.createAdmin(ctx, req.Name, req.Email, req.Password, admin.RoleAdmin)
	if err != nil {
		return nil, err
	}

	s.logger.Info("admin registered", zap.Int64("admin_id", a.ID), zap.String("email", a.Email))
	return s.issue(a)
}

// ========== Login ==========

// Login checks credentials, throttled per ip and email.
func (s *AuthService) Login(ctx context.Context, req *admin.LoginRequest) (*admin.LoginResponse, error) {
	email := normalizeEmail(req.Email)

	allowed, _, err := s.limiter.CheckLoginAttempt(ctx, req.IPAddress, email)
	if err != nil {
		// fail open: a limiter outage must not lock every admin out
		s.logger.Error("login rate limiter unavailable", zap.Error(err))
	} else if !allowed {
		return nil, fmt.Errorf("%w: too many login attempts, try again later", xerrors.ErrRateLimited)
	}

	a, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.limiter.ResetLoginAttempts(ctx, req.IPAddress, email); err != nil {
		s.logger.Warn("failed to reset login attempts", zap.Error(err))
	}
	if err := s.repo.UpdateLastLogin(ctx, a.ID); err != nil {
		s.logger.Warn("failed to update last login", zap.Int64("admin_id", a.ID), zap.Error(err))
	}

	s.logger.Info("admin logged in", zap.Int64("admin_id", a.ID))
	return s.issue(a)
}

// ========== Tokens ==========

// ValidateToken verifies a bearer token and rejects signed-out ones.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.tokens.Verifier.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrUnauthorized, err)
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("%w: token has been revoked", xerrors.ErrUnauthorized)
	}
	return claims, nil
}

// Logout revokes the token with the given id until it would have expired.
func (s *AuthService) Logout(ctx context.Context, adminID int64, jti string, expiresAt time.Time) error {
	if err := s.revoker.Revoke(ctx, jti, time.Until(expiresAt)); err != nil {
		return err
	}
	s.logger.Info("admin logged out", zap.Int64("admin_id", adminID))
	return nil
}

// Me returns the admin behind a verified token.
func (s *AuthService) Me(ctx context.Context, adminID int64) (*admin.Info, error) {
	a, err := s.repo.FindByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: admin no longer exists", xerrors.ErrUnauthorized)
		}
		return nil, err
	}
	info := a.Info()
	return &info, nil
}

// ========== Bootstrap ==========

// EnsureSuperAdminExists creates the configured super admin if none exists.
func (s *AuthService) EnsureSuperAdminExists(ctx context.Context, email, password, name string) error {
	exists, err := s.repo.SuperAdminExists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check super admin existence: %w", err)
	}
	if exists {
		s.logger.Info("super admin already exists, skipping creation")
		return nil
	}

	email = normalizeEmail(email)
	if email == "" || len(password) < 8 {
		return fmt.Errorf("super admin email and a password of at least 8 characters are required")
	}

	taken, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return fmt.Errorf("email %s already belongs to a regular admin", email)
	}

	a, err := s.createAdmin(ctx, name, email, password, admin.RoleSuperAdmin)
	if err != nil {
		return err
	}
	s.logger.Info("super admin created", zap.Int64("admin_id", a.ID), zap.String("email", email))
	return nil
}

// ========== Helper Methods ==========

func (s *AuthService) createAdmin(ctx context.Context, name, email, password, role string) (*admin.Admin, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	a := &admin.Admin{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AuthService) issue(a *admin.Admin) (*admin.LoginResponse, error) {
	token, _, expiresAt, err := s.tokens.Generator.Generate(a.ID, a.Email, a.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &admin.LoginResponse{Token: token, ExpiresAt: expiresAt, Admin: a.Info()}, nil
}
