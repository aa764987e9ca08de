// Package services implements the server's business logic between the HTTP
// layer and the repositories.
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"secureshare/internal/common"
	"secureshare/internal/rbac"
	"secureshare/internal/server/auth"
	"secureshare/internal/server/models"
	"secureshare/internal/server/repositories/blacklist"
	"secureshare/internal/server/repositories/users"
	"secureshare/internal/server/repositories/verification"
)

// generateCode is a test seam over auth.GenerateCode.
var generateCode = auth.GenerateCode

type AuthService struct {
	users                users.Repository
	challenges           verification.Repository
	blacklist            blacklist.Repository
	sender               auth.CodeSender
	jwtSecret            []byte
	accessTokenValidity  time.Duration
	verificationValidity time.Duration
}

func NewAuthService(
	userRepo users.Repository,
	challengeRepo verification.Repository,
	blacklistRepo blacklist.Repository,
	sender auth.CodeSender,
	jwtSecret []byte,
	accessTokenValidity, verificationValidity time.Duration,
) *AuthService {
	return &AuthService{
		users:                userRepo,
		challenges:           challengeRepo,
		blacklist:            blacklistRepo,
		sender:               sender,
		jwtSecret:            jwtSecret,
		accessTokenValidity:  accessTokenValidity,
		verificationValidity: verificationValidity,
	}
}

// Register creates an account with the user role.
func (s *AuthService) Register(ctx context.Context, name, email string, password []byte) (*models.User, error) {
	hash, salt := auth.HashPassword(password)

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Salt:         salt,
		Role:         rbac.RoleUser,
	}

	user, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// EnsureAdmin seeds the administrator account on startup so the admin
// surface is reachable in a fresh deployment. It is a no-op when the
// account already exists or when no admin credentials are configured.
func (s *AuthService) EnsureAdmin(ctx context.Context, email string, password []byte) error {
	if email == "" || len(password) == 0 {
		return nil
	}

	switch _, err := s.users.GetByEmail(ctx, email); {
	case err == nil:
		return nil
	case !errors.Is(err, common.ErrNotFound):
		return fmt.Errorf("error looking up admin: %w", err)
	}

	hash, salt := auth.HashPassword(password)

	_, err := s.users.Create(ctx, &models.User{
		Name:         "System Administrator",
		Email:        email,
		PasswordHash: hash,
		Salt:         salt,
		Role:         rbac.RoleAdmin,
	})
	if err != nil && !errors.Is(err, common.ErrAlreadyExists) {
		return fmt.Errorf("error creating admin: %w", err)
	}
	return nil
}

// Login checks the credentials and, when they hold, opens a verification
// challenge instead of a session. The returned identifier names the
// challenge; the code travels out of band.
func (s *AuthService) Login(ctx context.Context, email string, password []byte) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrUnauthorized
		}
		return "", common.ErrInternal
	}

	if !auth.VerifyPassword(password, user.Salt, user.PasswordHash) {
		return "", common.ErrUnauthorized
	}

	verificationID := uuid.NewString()
	code := generateCode()

	ch := &verification.Challenge{UserID: user.ID, Code: code}
	if err := s.challenges.Create(ctx, verificationID, ch, s.verificationValidity); err != nil {
		return "", common.ErrInternal
	}

	if err := s.sender.Send(ctx, user.Email, code); err != nil {
		return "", common.ErrInternal
	}

	return verificationID, nil
}

// Verify completes a challenge. A lapsed challenge and a wrong code are
// distinct failures; the challenge survives a wrong code until its TTL.
func (s *AuthService) Verify(ctx context.Context, verificationID, code string) (*models.User, string, error) {
	ch, err := s.challenges.Get(ctx, verificationID)
	if err != nil {
		if errors.Is(err, common.ErrVerificationExpired) {
			return nil, "", common.ErrVerificationExpired
		}
		return nil, "", common.ErrInternal
	}

	if subtle.ConstantTimeCompare([]byte(ch.Code), []byte(code)) != 1 {
		return nil, "", common.ErrInvalidCode
	}

	user, err := s.users.GetByID(ctx, ch.UserID)
	if err != nil {
		return nil, "", common.ErrInternal
	}

	token, err := auth.GenerateToken(user.ID, user.Role.String(), s.jwtSecret, s.accessTokenValidity)
	if err != nil {
		return nil, "", common.ErrInternal
	}

	// The challenge is single use.
	if err := s.challenges.Delete(ctx, verificationID); err != nil {
		return nil, "", common.ErrInternal
	}

	return user, token, nil
}

// Logout revokes the presented token for the remainder of its lifetime.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		// an invalid or expired token has nothing left to revoke
		return nil
	}
	return s.blacklist.AddToken(ctx, token, claims.ExpiresAt.Time)
}

// Authenticate validates a bearer token against signature, expiry and the
// revocation list, and returns the caller's user row.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, common.ErrUnauthorized
	}

	revoked, err := s.blacklist.IsTokenBlacklisted(ctx, token)
	if err != nil {
		return nil, common.ErrInternal
	}
	if revoked {
		return nil, common.ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, common.ErrUnauthorized
	}
	return user, nil
}

// ListUsers returns every account. Admin only; the HTTP layer enforces it.
func (s *AuthService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.users.List(ctx)
}

// DeleteUser removes an account.
func (s *AuthService) DeleteUser(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}
