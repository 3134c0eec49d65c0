//go:build unit

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go-wiki-api/internal/auth"
	"go-wiki-api/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizer(t *testing.T) {
	e, err := auth.NewMemoryEnforcer()
	require.NoError(t, err)
	require.NoError(t, auth.GrantRole(e, 1, auth.RoleMember))

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := Authorizer(e, logger.Nop())(ok)

	tests := []struct {
		name   string
		user   *UserInfo
		method string
		path   string
		want   int
	}{
		{"member edits tags", &UserInfo{ID: 1, Subject: auth.Subject(1)}, http.MethodPost, "/v1/wiki/tag", http.StatusOK},
		{"member reads logs", &UserInfo{ID: 1, Subject: auth.Subject(1)}, http.MethodGet, "/v1/log", http.StatusForbidden},
		{"user without role", &UserInfo{ID: 2, Subject: auth.Subject(2)}, http.MethodPut, "/v1/wiki/tag/x", http.StatusForbidden},
		{"anonymous", nil, http.MethodPost, "/v1/wiki/tag", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.user != nil {
				req = req.WithContext(SetUserInfo(req.Context(), tt.user))
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
			if tt.want == http.StatusForbidden {
				assert.Equal(t, "auth/forbidden", decodeError(t, rr)["code"])
			}
		})
	}
}
