// Package apperr: ошибки предметной области и их классы.
package apperr

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// PersistenceError: сбой хранилища; повторы на совести вызывающего.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func NotFound(entity string, id uint) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func Persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

func Conflict(reason string) error {
	return &ConflictError{Reason: reason}
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

func IsPersistence(err error) bool {
	var e *PersistenceError
	return errors.As(err, &e)
}
