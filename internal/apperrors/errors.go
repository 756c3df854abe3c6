// Package apperrors defines the error taxonomy shared by the store,
// repositories and presentation adapters. Every error that crosses a
// package boundary is either an *Error or wraps one.
package apperrors

import "errors"

// Kind classifies an error by how a caller should react to it.
type Kind int

const (
	// KindStore is a generic remote failure such as a constraint violation.
	KindStore Kind = iota
	// KindNetwork is a transient connectivity failure.
	KindNetwork
	// KindAuth means there is no session or it has expired.
	KindAuth
	// KindValidation is rejected input, detected before any remote call.
	KindValidation
	// KindNotFound means the addressed row does not exist.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	default:
		return "store"
	}
}

// Error is a classified application error with a stable code, a
// human-readable message, and an optional internal cause.
type Error struct {
	Kind     Kind
	Code     string
	Message  string
	Internal error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

// Unwrap returns the internal error for use with errors.Is/As.
func (e *Error) Unwrap() error { return e.Internal }

// Is matches errors of the same code so that wrapped copies of a sentinel
// compare equal to the sentinel itself.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap creates a new Error with the same kind/code/message as sentinel
// but wrapping an internal error.
func Wrap(sentinel *Error, internal error) *Error {
	return &Error{
		Kind:     sentinel.Kind,
		Code:     sentinel.Code,
		Message:  sentinel.Message,
		Internal: internal,
	}
}

// WithMessage creates a new Error with a custom message.
func WithMessage(sentinel *Error, message string) *Error {
	return &Error{
		Kind:     sentinel.Kind,
		Code:     sentinel.Code,
		Message:  message,
		Internal: sentinel.Internal,
	}
}

// KindOf returns the kind of the first *Error in err's chain.
// Unclassified errors are reported as KindStore.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStore
}

func isKind(err error, k Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == k
}

// IsNetwork reports whether err is a transient connectivity failure.
func IsNetwork(err error) bool { return isKind(err, KindNetwork) }

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool { return isKind(err, KindAuth) }

// IsValidation reports whether err is rejected input.
func IsValidation(err error) bool { return isKind(err, KindValidation) }

// IsNotFound reports whether err refers to a missing row.
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

// IsStore reports whether err is a generic remote failure. Errors that are
// not classified at all count as store errors.
func IsStore(err error) bool {
	return err != nil && KindOf(err) == KindStore
}

// Authentication errors.
var (
	ErrUnauthenticated = &Error{Kind: KindAuth, Code: "UNAUTHENTICATED", Message: "not signed in"}
	ErrSessionExpired  = &Error{Kind: KindAuth, Code: "SESSION_EXPIRED", Message: "session expired"}
)

// Validation errors.
var (
	ErrInvalidInput       = &Error{Kind: KindValidation, Code: "INVALID_INPUT", Message: "invalid input"}
	ErrEmptyTitle         = &Error{Kind: KindValidation, Code: "EMPTY_TITLE", Message: "todo title must not be empty"}
	ErrCategoryRequired   = &Error{Kind: KindValidation, Code: "CATEGORY_REQUIRED", Message: "todo category is required"}
	ErrInvalidPriority    = &Error{Kind: KindValidation, Code: "INVALID_PRIORITY", Message: "priority must be high, medium or low"}
	ErrInvalidPatch       = &Error{Kind: KindValidation, Code: "INVALID_PATCH", Message: "invalid todo patch"}
	ErrSubcategoryOrphan  = &Error{Kind: KindValidation, Code: "SUBCATEGORY_WITHOUT_CATEGORY", Message: "subcategory requires a category"}
	ErrInvalidEmail       = &Error{Kind: KindValidation, Code: "INVALID_EMAIL", Message: "a valid email address is required"}
	ErrInvalidSortOption  = &Error{Kind: KindValidation, Code: "INVALID_SORT", Message: "unknown sort option"}
	ErrInvalidStatsPeriod = &Error{Kind: KindValidation, Code: "INVALID_PERIOD", Message: "period must be day, week or month"}
)

// Lookup errors.
var (
	ErrTodoNotFound     = &Error{Kind: KindNotFound, Code: "TODO_NOT_FOUND", Message: "todo not found"}
	ErrCategoryNotFound = &Error{Kind: KindNotFound, Code: "CATEGORY_NOT_FOUND", Message: "category not found"}
	ErrProfileNotFound  = &Error{Kind: KindNotFound, Code: "PROFILE_NOT_FOUND", Message: "profile not found"}
)

// Remote errors.
var (
	ErrStore            = &Error{Kind: KindStore, Code: "STORE_ERROR", Message: "store request failed"}
	ErrConstraint       = &Error{Kind: KindStore, Code: "CONSTRAINT", Message: "store constraint violated"}
	ErrStoreUnavailable = &Error{Kind: KindNetwork, Code: "STORE_UNAVAILABLE", Message: "store unreachable"}
)
