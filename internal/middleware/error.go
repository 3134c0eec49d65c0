package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go-wiki-api/internal/audit"
	"go-wiki-api/internal/logger"
)

// AppError is a failure a handler reports to the client. Code is a stable
// machine-readable identifier; Err is the cause and is never sent.
type AppError struct {
	Err     error
	Message string
	Code    string
	Status  int
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

// AppHandler is a custom handler function type that returns an AppError.
type AppHandler func(http.ResponseWriter, *http.Request) *AppError

// NewError builds an AppError without a cause.
func NewError(status int, code, message string) *AppError {
	return &AppError{Status: status, Code: code, Message: message}
}

// Internal wraps an unexpected failure. The client only sees message.
func Internal(err error, message string) *AppError {
	return &AppError{Err: err, Status: http.StatusInternalServerError, Code: "server/internal", Message: message}
}

// Error is a middleware that converts handler errors into JSON responses.
// Server errors are logged and added to the request's audit session; their
// cause is never written to the client.
func Error(log logger.Logger) func(AppHandler) http.Handler {
	return func(next AppHandler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("%v", rec)
					}
					log.Error(err, "Panic recovered")
					appErr := Internal(err, "Internal server error")
					_ = audit.FromContext(r.Context()).Error(r.Context(), "panic: "+err.Error())
					WriteError(w, appErr)
				}
			}()

			appErr := next(w, r)
			if appErr == nil {
				return
			}
			if appErr.Status >= http.StatusInternalServerError {
				log.Error(appErr.Err, appErr.Message)
				if err := audit.FromContext(r.Context()).Error(r.Context(), appErr.Message); err != nil {
					log.Error(err, "Failed to record error in audit log")
				}
			}
			WriteError(w, appErr)
		})
	}
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the {error, code} body for e.
func WriteError(w http.ResponseWriter, e *AppError) {
	WriteJSON(w, e.Status, map[string]string{"error": e.Message, "code": e.Code})
}
