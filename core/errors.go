package core

import "github.com/pkg/errors"

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

func (err *ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// NetworkError wraps a failed upstream call. Transient; actions failing
// with it stay queued and are retried on the next sync pass.
type NetworkError struct {
	Err        error
	StatusCode int // 0 when the request never completed
}

func NewNetworkError(err error, statusCode int) error {
	return &NetworkError{Err: err, StatusCode: statusCode}
}

func (err *NetworkError) Error() string {
	if err.Err == nil {
		return "network error"
	}
	return err.Err.Error()
}

func (err *NetworkError) Unwrap() error { return err.Err }

func IsNetworkError(err error) bool {
	_, ok := errors.Cause(err).(*NetworkError)
	return ok
}

// IOError wraps a persistent-store failure. The failing call is lost but
// the store remains usable for subsequent calls.
type IOError struct {
	Op  string
	Err error
}

func NewIOError(op string, err error) error {
	return &IOError{Op: op, Err: err}
}

func (err *IOError) Error() string {
	return "store: " + err.Op + ": " + err.Err.Error()
}

func (err *IOError) Unwrap() error { return err.Err }

func IsIOError(err error) bool {
	_, ok := errors.Cause(err).(*IOError)
	return ok
}

// SchemaDowngradeError is fatal at store-open: the store on disk was
// written by a newer schema version than this build understands.
type SchemaDowngradeError struct {
	Stored, Requested int
}

func (err *SchemaDowngradeError) Error() string {
	return "store schema downgrade refused"
}

func IsSchemaDowngrade(err error) bool {
	_, ok := errors.Cause(err).(*SchemaDowngradeError)
	return ok
}

// AuthExpiredError marks a replay whose captured bearer token is no longer
// accepted. The action is never dropped; it stays queued.
type AuthExpiredError struct {
	ActionID string
}

func (err *AuthExpiredError) Error() string {
	return "captured auth token expired"
}

func IsAuthExpired(err error) bool {
	_, ok := errors.Cause(err).(*AuthExpiredError)
	return ok
}

// OfflineUnavailableError surfaces to a reader only when the network
// failed and neither a cached value nor a fallback exists.
type OfflineUnavailableError struct {
	CacheKey string
	Err      error // the original network error
}

func (err *OfflineUnavailableError) Error() string {
	return "unavailable offline: " + err.CacheKey
}

func (err *OfflineUnavailableError) Unwrap() error { return err.Err }

func IsOfflineUnavailable(err error) bool {
	_, ok := errors.Cause(err).(*OfflineUnavailableError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s *shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
