package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var (
	// store errors
	ErrNotFound           = errors.New("document not found")
	ErrPreconditionFailed = errors.New("document does not match update condition")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

// NewFieldError is a shortcut for a ValidationError on a single field.
func NewFieldError(field, msg string) error {
	return &ValidationError{
		Err:    errors.New(field + ": " + msg),
		Fields: []FieldError{{Field: field, Error: msg}},
	}
}

func (err ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	msgs := make([]string, 0, len(err.Fields))
	for _, f := range err.Fields {
		msgs = append(msgs, f.Field+": "+f.Error)
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

// DuplicateKeyError is returned by stores when a write violates a unique index.
type DuplicateKeyError struct {
	Collection string
	Field      string
}

func (err *DuplicateKeyError) Error() string {
	if err.Field == "" {
		return fmt.Sprintf("duplicate key in %s", err.Collection)
	}
	return fmt.Sprintf("%s already exists", err.Field)
}

// NotFoundError reports a missing document of a given resource.
type NotFoundError struct {
	Resource string
	ID       string
}

func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func (err *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", err.Resource, err.ID)
}

// Is makes errors.Is(err, ErrNotFound) hold for NotFoundError.
func (err *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
