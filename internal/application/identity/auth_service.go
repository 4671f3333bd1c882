package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/ecsledger/backend/internal/domain/identity"
	"github.com/ecsledger/backend/internal/domain/shared"
	"github.com/ecsledger/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// ErrInvalidCredentials is returned for any unknown user or wrong password
var ErrInvalidCredentials = shared.NewDomainError(shared.CodeUnauthorized, "Invalid username or password")

// AuthService handles signup, login and logout for ledger operators
type AuthService struct {
	userRepo    identity.UserRepository
	sessions    *auth.SessionService
	revocations auth.RevocationList
	logger      *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	sessions *auth.SessionService,
	revocations auth.RevocationList,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessions:    sessions,
		revocations: revocations,
		logger:      logger,
	}
}

// Signup creates an operator account and signs it in
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*SessionResult, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))

	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, shared.NewStorageFailure("check username", err)
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Username is already taken")
	}

	user, err := identity.NewUser(username, input.Password)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Username is already taken")
		}
		return nil, shared.NewStorageFailure("create user", err)
	}

	s.logger.Info("User signed up", zap.Uint64("user_id", user.ID), zap.String("username", user.Username))
	return s.issue(ctx, user)
}

// Login verifies credentials and issues a session
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*SessionResult, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown user", zap.String("username", input.Username))
			return nil, ErrInvalidCredentials
		}
		return nil, shared.NewStorageFailure("find user", err)
	}
	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("username", input.Username))
		return nil, ErrInvalidCredentials
	}

	user.RecordLogin()
	if err := s.userRepo.Update(ctx, user); err != nil {
		// the session is still valid
		s.logger.Error("Failed to record login", zap.Uint64("user_id", user.ID), zap.Error(err))
	}

	s.logger.Info("User logged in", zap.Uint64("user_id", user.ID), zap.String("username", user.Username))
	return s.issue(ctx, user)
}

func (s *AuthService) issue(_ context.Context, user *identity.User) (*SessionResult, error) {
	session, err := s.sessions.IssueSession(auth.Identity{UserID: user.ID, Username: user.Username})
	if err != nil {
		s.logger.Error("Failed to issue session", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to issue session")
	}
	return &SessionResult{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      toUserInfo(user),
	}, nil
}

// Logout revokes the session's jti for the rest of its lifetime
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.JTI == "" {
		return nil
	}
	ttl := input.ExpiresAt.Sub(s.sessions.Now())
	if err := s.revocations.Revoke(ctx, input.JTI, ttl); err != nil {
		s.logger.Error("Failed to revoke session", zap.Uint64("user_id", input.UserID), zap.Error(err))
		return shared.NewStorageFailure("revoke session", err)
	}
	s.logger.Info("User logged out", zap.Uint64("user_id", input.UserID))
	return nil
}

// GetCurrentUser returns the operator behind a session
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uint64) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("user", userID)
		}
		return nil, shared.NewStorageFailure("find user", err)
	}
	info := toUserInfo(user)
	return &info, nil
}

func toUserInfo(u *identity.User) UserInfo {
	return UserInfo{ID: u.ID, Username: u.Username, LastLoginAt: u.LastLoginAt}
}
