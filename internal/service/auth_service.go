package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-wiki-api/internal/auth"
	"go-wiki-api/internal/data"
)

var (
	// ErrMissingCredentials is returned when email, password or name is absent.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrInvalidCredentials covers unknown emails, wrong passwords and inactive accounts alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// TokenIssuer signs tokens for a user id.
type TokenIssuer interface {
	Issue(userID int64) (string, time.Time, error)
}

// Token is what the auth routes hand back to the client.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AuthService registers users and exchanges credentials for tokens.
type AuthService struct {
	users  UserRepository
	tokens TokenIssuer
	roles  auth.RoleAssigner
}

// NewAuthService creates a new AuthService. roles may be nil, in which case
// new users get no role.
func NewAuthService(users UserRepository, tokens TokenIssuer, roles auth.RoleAssigner) *AuthService {
	return &AuthService{users: users, tokens: tokens, roles: roles}
}

// Register creates an active account with the member role and returns a
// token for it.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*Token, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" || strings.TrimSpace(name) == "" {
		return nil, ErrMissingCredentials
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	// The account is activated only once it holds its role.
	user := &data.User{Email: email, Password: hash, Name: name}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	if s.roles != nil {
		if err := auth.GrantRole(s.roles, user.ID, auth.RoleMember); err != nil {
			if derr := s.users.Discard(ctx, user.ID); derr != nil {
				return nil, errors.Join(err, fmt.Errorf("failed to discard user %d: %w", user.ID, derr))
			}
			return nil, err
		}
	}
	if err := s.users.SetActive(ctx, user.ID, true); err != nil {
		return nil, fmt.Errorf("failed to activate user %d: %w", user.ID, err)
	}
	return s.issue(user.ID)
}

// Login verifies email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Token, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, data.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	ok, err := auth.CheckPassword(user.Password, password)
	if err != nil {
		return nil, err
	}
	if !ok || !user.Active {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user.ID)
}

// Refresh issues a new token for an already authenticated user.
func (s *AuthService) Refresh(ctx context.Context, userID int64) (*Token, error) {
	return s.issue(userID)
}

func (s *AuthService) issue(userID int64) (*Token, error) {
	raw, exp, err := s.tokens.Issue(userID)
	if err != nil {
		return nil, err
	}
	return &Token{Token: raw, ExpiresAt: exp}, nil
}
