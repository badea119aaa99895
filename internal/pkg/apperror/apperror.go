package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindUnauthorized
	KindSessionRevoked
	KindFeatureDisabled
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimited
	KindNotImplemented
	KindClassificationUnavailable
	KindStorageUnavailable
)

var kindNames = map[Kind]string{
	KindInternal:                  "internal",
	KindInvalidInput:              "invalid_input",
	KindUnauthorized:              "unauthorized",
	KindSessionRevoked:            "session_revoked",
	KindFeatureDisabled:           "feature_disabled",
	KindForbidden:                 "forbidden",
	KindNotFound:                  "not_found",
	KindConflict:                  "conflict",
	KindRateLimited:               "rate_limited",
	KindNotImplemented:            "not_implemented",
	KindClassificationUnavailable: "classification_unavailable",
	KindStorageUnavailable:        "storage_unavailable",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthorized, KindSessionRevoked:
		return http.StatusUnauthorized
	case KindFeatureDisabled, KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindNotImplemented:
		return http.StatusNotImplemented
	case KindClassificationUnavailable, KindStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is the typed error every service returns. Message is safe to show
// to clients; Err carries the underlying cause for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so callers can write errors.Is(err, apperror.ErrNotFound).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Kind sentinels for errors.Is.
var (
	ErrInvalidInput              = &Error{Kind: KindInvalidInput}
	ErrUnauthorized              = &Error{Kind: KindUnauthorized}
	ErrSessionRevoked            = &Error{Kind: KindSessionRevoked}
	ErrFeatureDisabled           = &Error{Kind: KindFeatureDisabled}
	ErrForbidden                 = &Error{Kind: KindForbidden}
	ErrNotFound                  = &Error{Kind: KindNotFound}
	ErrConflict                  = &Error{Kind: KindConflict}
	ErrRateLimited               = &Error{Kind: KindRateLimited}
	ErrNotImplemented            = &Error{Kind: KindNotImplemented}
	ErrClassificationUnavailable = &Error{Kind: KindClassificationUnavailable}
	ErrStorageUnavailable        = &Error{Kind: KindStorageUnavailable}
	ErrInternal                  = &Error{Kind: KindInternal}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func InvalidInput(message string) *Error { return New(KindInvalidInput, message) }
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }
func SessionRevoked() *Error             { return New(KindSessionRevoked, "Session revoked") }
func FeatureDisabled(message string) *Error {
	return New(KindFeatureDisabled, message)
}
func Forbidden(message string) *Error      { return New(KindForbidden, message) }
func NotFound(message string) *Error       { return New(KindNotFound, message) }
func Conflict(message string) *Error       { return New(KindConflict, message) }
func RateLimited(message string) *Error    { return New(KindRateLimited, message) }
func NotImplemented(message string) *Error { return New(KindNotImplemented, message) }
func ClassificationUnavailable(err error) *Error {
	return Wrap(KindClassificationUnavailable, "Mood classification temporarily unavailable. Try again later.", err)
}
func Internal(err error) *Error { return Wrap(KindInternal, "Server Error", err) }

// As extracts an *Error from err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// FromStorage translates a GORM/pgx error into an *Error. Errors that are
// already typed pass through unchanged; nil stays nil.
func FromStorage(err error, notFoundMessage string) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Wrap(KindNotFound, notFoundMessage, err)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return Wrap(KindConflict, "Resource already exists", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return Wrap(KindConflict, "Resource already exists", err)
		case pgErr.Code == "22P02":
			return Wrap(KindInvalidInput, "Invalid identifier format", err)
		case pgErr.Code == "42P01":
			return Wrap(KindStorageUnavailable, "Storage not initialised", err)
		case strings.HasPrefix(pgErr.Code, "08"):
			return Wrap(KindStorageUnavailable, "Storage unavailable", err)
		}
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return Wrap(KindStorageUnavailable, "Storage unavailable", err)
	}

	return Internal(err)
}

// SQLState returns the SQLSTATE code and class of a pg error, for logging.
func SQLState(err error) (code, class string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 {
		return pgErr.Code, pgErr.Code[:2]
	}
	return "", ""
}
