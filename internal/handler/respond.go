package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go-wiki-api/internal/audit"
	"go-wiki-api/internal/data"
	"go-wiki-api/internal/logger"
	"go-wiki-api/internal/middleware"
	"go-wiki-api/internal/query"
	"go-wiki-api/internal/service"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// errorFrom translates a service or repository error into the response
// the client sees. Unknown errors become a generic 500 with the given
// message.
func errorFrom(err error, message string) *middleware.AppError {
	var (
		conflict *data.ConflictError
		input    *service.InputError
	)
	switch {
	case errors.As(err, &conflict):
		return conflictError(conflict)
	case errors.As(err, &input):
		return &middleware.AppError{Err: err, Status: http.StatusBadRequest, Code: "body/invalid-object", Message: capitalize(input.Error()) + "."}
	case errors.Is(err, data.ErrNotFound):
		return &middleware.AppError{Err: err, Status: http.StatusNotFound, Code: "object/not-found", Message: "Object not found"}
	case errors.Is(err, data.ErrNotImplemented):
		return &middleware.AppError{Err: err, Status: http.StatusMethodNotAllowed, Code: "method/not-implemented", Message: "Not implemented"}
	case errors.Is(err, data.ErrInvalidReference):
		return &middleware.AppError{Err: err, Status: http.StatusBadRequest, Code: "body/invalid-reference", Message: "Referenced object does not exist."}
	case errors.Is(err, query.ErrInvalidQuery):
		return &middleware.AppError{Err: err, Status: http.StatusBadRequest, Code: "query/invalid", Message: capitalize(err.Error())}
	case errors.Is(err, service.ErrMissingCredentials):
		return &middleware.AppError{Err: err, Status: http.StatusBadRequest, Code: "auth/missing-credentials", Message: "Email and password are required"}
	case errors.Is(err, service.ErrInvalidCredentials):
		return &middleware.AppError{Err: err, Status: http.StatusUnauthorized, Code: "auth/invalid-credentials", Message: "Email or password incorrect"}
	}
	return middleware.Internal(err, message)
}

// conflictError maps a unique violation to "<entity>/<field>-exists".
// Account conflicts live under the auth namespace.
func conflictError(c *data.ConflictError) *middleware.AppError {
	namespace := c.Entity
	if namespace == "user" {
		namespace = "auth"
	}
	field := c.Field
	if field == "" {
		field = "id"
	}
	code := namespace + "/" + strings.ToLower(field) + "-exists"
	return &middleware.AppError{Err: c, Status: http.StatusBadRequest, Code: code, Message: capitalize(c.Error()) + "."}
}

// decodeJSON reads the request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v interface{}) *middleware.AppError {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return &middleware.AppError{Err: err, Status: http.StatusBadRequest, Code: "body/invalid-object", Message: "Request body is not valid JSON."}
	}
	return nil
}

// listOptions parses the shared list parameters of r.
func listOptions(r *http.Request) (query.Options, *middleware.AppError) {
	opts, err := query.FromValues(r.URL.Query())
	if err != nil {
		return query.Options{}, errorFrom(err, "Invalid query")
	}
	return opts, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// auditInfo adds an info entry to the request's audit session.
func auditInfo(r *http.Request, log logger.Logger, message string) {
	if err := audit.FromContext(r.Context()).Info(r.Context(), message); err != nil {
		log.Error(err, "Failed to write audit entry")
	}
}
