package service

import (
	"errors"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ErrInvalidInput is returned when a required field is blank.
var ErrInvalidInput = errors.New("invalid input")

// ugcPolicy cleans rendered page HTML. Stored text is never rewritten.
var ugcPolicy = bluemonday.UGCPolicy()

// requiredText returns s unchanged, or an InputError when it is blank.
func requiredText(field, s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", &InputError{Field: field}
	}
	return s, nil
}

// InputError names the field that failed validation.
type InputError struct {
	Field string
}

func (e *InputError) Error() string {
	return e.Field + " must not be empty"
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// requiredID rejects blank ids. Ids are stored as given.
func requiredID(id string) error {
	_, err := requiredText("id", id)
	return err
}
