package middleware

import (
	"context"

	"go-wiki-api/internal/auth"
)

// contextKey defines a custom type for context keys to avoid collisions.
type contextKey string

const userContextKey = contextKey("user")

// anonymousSubject is the policy subject of unauthenticated requests.
const anonymousSubject = "anonymous"

// UserInfo is the authenticated principal as seen by handlers.
type UserInfo struct {
	ID      int64
	Name    string
	Subject string
}

// Anonymous reports whether the request carries no principal.
func (u *UserInfo) Anonymous() bool {
	return u.ID == 0
}

// GetUserInfo retrieves the user information from the request context.
func GetUserInfo(ctx context.Context) *UserInfo {
	if userInfo, ok := ctx.Value(userContextKey).(*UserInfo); ok {
		return userInfo
	}
	// Return an anonymous user if no user info is found in the context.
	return &UserInfo{Subject: anonymousSubject}
}

// SetUserInfo adds the user information to the request context.
func SetUserInfo(ctx context.Context, userInfo *UserInfo) context.Context {
	return context.WithValue(ctx, userContextKey, userInfo)
}

func userInfoFromPrincipal(p *auth.Principal) *UserInfo {
	return &UserInfo{ID: p.ID, Name: p.Name, Subject: p.Subject()}
}
