package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the operation conflicts with the current state of the resource.
var ErrConflict = errors.New("state conflict")

// ErrBusy indicates that a required period lock could not be acquired within the bounded wait.
var ErrBusy = errors.New("resource busy")

// ErrInternal indicates an internal-consistency failure. Errors wrapping it are
// fatal for the affected fiscal period: writes are halted until investigated.
var ErrInternal = errors.New("internal consistency error")
