package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go-wiki-api/internal/audit"
	"go-wiki-api/internal/auth"
	"go-wiki-api/internal/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Authenticator resolves the principal behind an Authorization header.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*auth.Principal, error)
}

// SessionOpener starts the audit session of a request.
type SessionOpener interface {
	Open(ctx context.Context, method, route string, userID *int64) (*audit.Session, error)
}

// RouteOptions declare what a route needs from the pipeline.
type RouteOptions struct {
	// RequireAuth rejects requests without a valid bearer token and, when
	// the pipeline has an authorizer, checks the principal's policy.
	RequireAuth bool
	// Audit records the request in the audit log.
	Audit bool
}

// Pipeline wraps handlers with authentication, auditing and authorization.
//
// For every request the steps run in this order:
//  1. the bearer token is resolved (no response is written yet);
//  2. the audit session is opened, attributed to the principal only when
//     authentication succeeded; failing to open it answers 500;
//  3. a rejected token answers 401;
//  4. the authorizer may answer 403;
//  5. the handler runs;
//  6. the session is finalized with the status written, exactly once,
//     even when the handler panics or the client disconnects.
type Pipeline struct {
	authn           Authenticator
	sessions        SessionOpener
	authorizer      func(http.Handler) http.Handler
	log             logger.Logger
	finalizeTimeout time.Duration
}

// NewPipeline creates a Pipeline. authorizer may be nil.
func NewPipeline(authn Authenticator, sessions SessionOpener, authorizer func(http.Handler) http.Handler, log logger.Logger, finalizeTimeout time.Duration) *Pipeline {
	if finalizeTimeout <= 0 {
		finalizeTimeout = 5 * time.Second
	}
	return &Pipeline{
		authn:           authn,
		sessions:        sessions,
		authorizer:      authorizer,
		log:             log,
		finalizeTimeout: finalizeTimeout,
	}
}

// Route returns the middleware for a route declared with opts.
func (p *Pipeline) Route(opts RouteOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if opts.RequireAuth && p.authorizer != nil {
			next = p.authorizer(next)
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var (
				principal *auth.Principal
				authErr   error
			)
			if opts.RequireAuth {
				principal, authErr = p.authn.Authenticate(ctx, r.Header.Get("Authorization"))
			}

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			var session *audit.Session
			if opts.Audit {
				var userID *int64
				if principal != nil {
					id := principal.ID
					userID = &id
				}
				s, err := p.sessions.Open(ctx, r.Method, r.URL.Path, userID)
				if err != nil {
					p.log.Error(err, "Failed to open audit session")
					WriteError(w, Internal(err, "Internal server error"))
					return
				}
				session = s
				defer p.finalize(ctx, session, ww)
				ctx = audit.WithSession(ctx, session)
			}

			if authErr != nil {
				var rejection *auth.Rejection
				if errors.As(authErr, &rejection) {
					_ = session.Warn(ctx, "Authentication rejected: "+string(rejection.Reason))
					WriteError(ww, rejectionError(rejection))
					return
				}
				p.log.Error(authErr, "Failed to authenticate request")
				_ = session.Error(ctx, "Failed to authenticate request")
				WriteError(ww, Internal(authErr, "Internal server error"))
				return
			}

			if principal != nil {
				ctx = SetUserInfo(ctx, userInfoFromPrincipal(principal))
			}
			next.ServeHTTP(ww, r.WithContext(ctx))
		})
	}
}

// finalize runs deferred and re-raises any panic it recovers. A written
// status wins; otherwise a panic records 500, and http.ErrAbortHandler or a
// client that left records StatusAborted.
func (p *Pipeline) finalize(reqCtx context.Context, session *audit.Session, ww chimw.WrapResponseWriter) {
	rec := recover()

	status := ww.Status()
	switch {
	case rec == http.ErrAbortHandler:
		status = audit.StatusAborted
	case status != 0:
	case rec != nil:
		status = http.StatusInternalServerError
	case reqCtx.Err() != nil:
		status = audit.StatusAborted
	default:
		// net/http answers 200 for a handler that writes nothing.
		status = http.StatusOK
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(reqCtx), p.finalizeTimeout)
	defer cancel()
	if err := session.Finalize(ctx, status); err != nil {
		p.log.Error(err, "Failed to finalize audit session")
	}

	if rec != nil {
		panic(rec)
	}
}

func rejectionError(r *auth.Rejection) *AppError {
	switch r.Reason {
	case auth.ReasonNoToken:
		return NewError(http.StatusUnauthorized, "auth/no-token", "No token provided")
	case auth.ReasonExpiredToken:
		return NewError(http.StatusUnauthorized, "auth/token-expired", "Token expired")
	default:
		return NewError(http.StatusUnauthorized, "auth/invalid-token", "Invalid token")
	}
}
