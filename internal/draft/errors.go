package draft

import (
	"errors"
	"fmt"
)

// ErrorClass groups errors by how a caller should react to them.
type ErrorClass string

const (
	// ClassUsage covers API misuse: bad arguments, invalid keys, misused drafts.
	ClassUsage ErrorClass = "usage"

	// ClassRevokedAccess covers any read or write on a draft whose
	// transaction has already finished.
	ClassRevokedAccess ErrorClass = "revoked_access"

	// ClassConflict covers a recipe that both modified its draft and
	// returned a replacement value.
	ClassConflict ErrorClass = "conflict"

	// ClassStructural covers malformed value graphs and unappliable patches.
	ClassStructural ErrorClass = "structural"
)

// ErrorCode identifies the specific failure within a class.
type ErrorCode string

const (
	ErrCodeInvalidRecipe    ErrorCode = "INVALID_RECIPE"
	ErrCodeInvalidListener  ErrorCode = "INVALID_LISTENER"
	ErrCodeNotDraftable     ErrorCode = "NOT_DRAFTABLE"
	ErrCodeNotManualDraft   ErrorCode = "NOT_MANUAL_DRAFT"
	ErrCodeAlreadyFinalized ErrorCode = "ALREADY_FINALIZED"
	ErrCodeInvalidKey       ErrorCode = "INVALID_KEY"
	ErrCodeInvalidValue     ErrorCode = "INVALID_VALUE"
	ErrCodeRevoked          ErrorCode = "REVOKED"
	ErrCodeConflict         ErrorCode = "MODIFIED_AND_REPLACED"
	ErrCodeCircular         ErrorCode = "CIRCULAR_REFERENCE"
	ErrCodeUnresolvedPath   ErrorCode = "UNRESOLVED_PATH"
	ErrCodeUnsupportedOp    ErrorCode = "UNSUPPORTED_OP"
)

var codeClass = map[ErrorCode]ErrorClass{
	ErrCodeInvalidRecipe:    ClassUsage,
	ErrCodeInvalidListener:  ClassUsage,
	ErrCodeNotDraftable:     ClassUsage,
	ErrCodeNotManualDraft:   ClassUsage,
	ErrCodeAlreadyFinalized: ClassUsage,
	ErrCodeInvalidKey:       ClassUsage,
	ErrCodeInvalidValue:     ClassUsage,
	ErrCodeRevoked:          ClassRevokedAccess,
	ErrCodeConflict:         ClassConflict,
	ErrCodeCircular:         ClassStructural,
	ErrCodeUnresolvedPath:   ClassStructural,
	ErrCodeUnsupportedOp:    ClassStructural,
}

// Error is the single error type returned by the engine.
//
// All engine errors are local and synchronous. By the time one reaches the
// caller, the transaction that raised it has been revoked.
type Error struct {
	// Class is the error category.
	Class ErrorClass

	// Code identifies the specific failure.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Path locates the failure inside the value graph, when known.
	Path Path
}

// Class sentinels for use with errors.Is.
var (
	ErrUsage      = &Error{Class: ClassUsage}
	ErrRevoked    = &Error{Class: ClassRevokedAccess}
	ErrConflict   = &Error{Class: ClassConflict}
	ErrStructural = &Error{Class: ClassStructural}
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code == "" {
		return string(e.Class) + " error"
	}
	if e.Path != nil {
		return fmt.Sprintf("%s: %s (path=%s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches a target *Error by code, or by class when the target has no code.
// This lets callers write errors.Is(err, draft.ErrRevoked).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" {
		return t.Code == e.Code
	}
	return t.Class == e.Class
}

func newError(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Class:   codeClass[code],
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func newPathError(code ErrorCode, path Path, format string, args ...any) *Error {
	e := newError(code, format, args...)
	e.Path = path
	return e
}

func errRevoked() *Error {
	return newError(ErrCodeRevoked, "cannot use a draft after its transaction has finished")
}

// IsUsageError reports whether err is a usage error.
// Uses errors.Is to handle wrapped errors.
func IsUsageError(err error) bool {
	return errors.Is(err, ErrUsage)
}

// IsRevokedError reports whether err is an access to a revoked draft.
func IsRevokedError(err error) bool {
	return errors.Is(err, ErrRevoked)
}

// IsConflictError reports whether a recipe both modified and replaced its draft.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsStructuralError reports whether err is a structural error.
func IsStructuralError(err error) bool {
	return errors.Is(err, ErrStructural)
}
