package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-wiki-api/internal/data"
)

// Reason explains why a request was not authenticated.
type Reason string

const (
	ReasonNoToken      Reason = "no-token"
	ReasonInvalidToken Reason = "invalid-token"
	ReasonExpiredToken Reason = "expired-token"
)

// Rejection is the outcome of an authentication attempt that failed for a
// reason the caller should see.
type Rejection struct {
	Reason Reason
}

func (r *Rejection) Error() string {
	return "authentication rejected: " + string(r.Reason)
}

// Principal is the authenticated identity acting on a request.
type Principal struct {
	ID   int64
	Name string
}

// Subject is the principal's name in authorization policies.
func (p *Principal) Subject() string {
	return Subject(p.ID)
}

// Subject returns the policy subject for a user id.
func Subject(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

// TokenVerifier checks a raw bearer token and returns the user id it names.
type TokenVerifier interface {
	Verify(raw string) (int64, error)
}

// UserLookup resolves the user a token names.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*data.User, error)
}

// Authenticator turns an Authorization header into a Principal.
type Authenticator struct {
	tokens TokenVerifier
	users  UserLookup
}

func NewAuthenticator(tokens TokenVerifier, users UserLookup) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Authenticate resolves the principal for header. A rejected credential
// yields a *Rejection; any other error means the users store failed.
// Unknown and inactive users are reported as invalid tokens.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (*Principal, error) {
	if header == "" {
		return nil, &Rejection{Reason: ReasonNoToken}
	}
	scheme, raw, ok := strings.Cut(header, " ")
	raw = strings.TrimSpace(raw)
	if !ok || !strings.EqualFold(scheme, "Bearer") || raw == "" {
		return nil, &Rejection{Reason: ReasonInvalidToken}
	}

	userID, err := a.tokens.Verify(raw)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil, &Rejection{Reason: ReasonExpiredToken}
		}
		return nil, &Rejection{Reason: ReasonInvalidToken}
	}

	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, &Rejection{Reason: ReasonInvalidToken}
		}
		return nil, fmt.Errorf("failed to load principal: %w", err)
	}
	if !user.Active {
		return nil, &Rejection{Reason: ReasonInvalidToken}
	}
	return &Principal{ID: user.ID, Name: user.Name}, nil
}
