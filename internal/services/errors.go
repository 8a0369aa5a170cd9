package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Kind string

const (
	KindUnauthenticated  Kind = "unauthenticated"
	KindPermissionDenied Kind = "permission_denied"
	KindNotFound         Kind = "not_found"
	KindValidation       Kind = "validation_error"
	KindConflict         Kind = "conflict"
	KindTypeMismatch     Kind = "type_mismatch"
	KindInternal         Kind = "internal"
)

// Error Facade 返回的结构化错误，Kind 是稳定的错误类别
type Error struct {
	Kind       Kind   `json:"kind"`
	Message    string `json:"message"`
	Entity     string `json:"entity,omitempty"`
	Key        string `json:"key,omitempty"`
	Field      string `json:"field,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Expected   string `json:"expected,omitempty"`
	Got        string `json:"got,omitempty"`
	Err        error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func ErrUnauthenticated(msg string) *Error {
	if msg == "" {
		msg = "authentication required"
	}
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

func ErrPermissionDenied(reason string) *Error {
	return &Error{Kind: KindPermissionDenied, Message: reason}
}

func ErrNotFound(entity, key string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s %q not found", strings.ToLower(entity), key),
		Entity:  entity,
		Key:     key,
	}
}

func ErrValidation(field, constraint string) *Error {
	return &Error{
		Kind:       KindValidation,
		Message:    fmt.Sprintf("%s: %s", field, constraint),
		Field:      field,
		Constraint: constraint,
	}
}

func ErrConflict(constraint string) *Error {
	return &Error{
		Kind:       KindConflict,
		Message:    fmt.Sprintf("unique constraint %s violated", constraint),
		Constraint: constraint,
	}
}

func ErrTypeMismatch(expected, got string) *Error {
	return &Error{
		Kind:     KindTypeMismatch,
		Message:  fmt.Sprintf("expected %s identifier, got %s", expected, got),
		Expected: expected,
		Got:      got,
	}
}

func ErrInternal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// KindOf 返回错误类别，非 *Error 视为 internal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// isUniqueViolation 唯一约束冲突，兼容 postgres 和 sqlite
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// storageError 把存储层错误转换为 Facade 错误
func storageError(err error, entity, key string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound(entity, key)
	}
	return ErrInternal(err)
}
