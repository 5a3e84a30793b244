package ferr

import "fmt"

// Error is the structured error type for blz. It carries enough context
// for the façade to decide whether to retry, roll back, or surface the
// error verbatim to a caller.
type Error struct {
	// Code is the unique error code (e.g., "ERR_202_HTTP_STATUS").
	Code string

	// Kind is the taxonomy kind from spec §7.
	Kind Kind

	// Message is the human-readable error message.
	Message string

	// Category groups Kind for reporting.
	Category Category

	// Details contains additional context as key-value pairs (e.g.
	// the alias, the attempted URL, the HTTP status code).
	Details map[string]string

	// Cause is the underlying error, if any.
	Cause error

	// Retryable indicates the Fetcher may retry this with backoff.
	Retryable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap supports errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches by Code, so errors.Is(err, ferr.New(ErrCodeNotFound, KindNotFound, "", nil)) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetail attaches a key-value detail and returns the error for chaining.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates an Error of the given code/kind.
func New(code string, kind Kind, message string, cause error) *Error {
	return &Error{
		Code:      code,
		Kind:      kind,
		Message:   message,
		Category:  categoryForKind[kind],
		Cause:     cause,
		Retryable: retryableKinds[kind],
	}
}

// Wrap creates an Error from an existing error, code, and kind.
func Wrap(code string, kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	return New(code, kind, err.Error(), err)
}

// Validation builds a validation-kind error.
func Validation(code, message string, cause error) *Error {
	return New(code, KindValidation, message, cause)
}

// Network builds a network-kind error (retryable).
func Network(message string, cause error) *Error {
	return New(ErrCodeNetwork, KindNetwork, message, cause)
}

// HTTPStatus builds an http_status-kind error carrying the response
// code. Only 429 and 5xx responses are retryable; other 4xx codes are
// fatal for the current cycle (spec §4.1/§7).
func HTTPStatus(status int, cause error) *Error {
	e := New(ErrCodeHTTPStatus, KindHTTPStatus, fmt.Sprintf("unexpected HTTP status %d", status), cause)
	e.Retryable = status == 429 || status >= 500
	return e.WithDetail("status", fmt.Sprintf("%d", status))
}

// TooLarge builds a too_large-kind error.
func TooLarge(maxBytes int64) *Error {
	return New(ErrCodeTooLarge, KindTooLarge, fmt.Sprintf("response exceeded %d bytes", maxBytes), nil)
}

// Timeout builds a timeout-kind error.
func Timeout(cause error) *Error {
	return New(ErrCodeTimeout, KindTimeout, "operation exceeded its time budget", cause)
}

// Parse builds a parse-kind error (rare; the parser normally emits
// diagnostics instead of failing outright).
func Parse(message string, cause error) *Error {
	return New(ErrCodeParseFailed, KindParse, message, cause)
}

// IndexErr builds an index_error-kind error.
func IndexErr(message string, cause error) *Error {
	return New(ErrCodeIndexError, KindIndexError, message, cause)
}

// StorageErr builds a storage_error-kind error.
func StorageErr(message string, cause error) *Error {
	return New(ErrCodeStorageError, KindStorageErr, message, cause)
}

// Conflict builds a conflict-kind error (another writer holds the lock).
func Conflict(alias string) *Error {
	return New(ErrCodeConflict, KindConflict, "another writer holds the source lock", nil).WithDetail("alias", alias)
}

// Cancelled builds a cancelled-kind error.
func Cancelled() *Error {
	return New(ErrCodeCancelled, KindCancelled, "operation cancelled", nil)
}

// NotFound builds a not_found-kind error.
func NotFound(what string) *Error {
	return New(ErrCodeNotFound, KindNotFound, what+" not found", nil)
}

// Internal builds an internal-kind error for unexpected conditions.
func Internal(message string, cause error) *Error {
	return New(ErrCodeInternal, KindInternal, message, cause)
}

// IsRetryable reports whether err is an *Error marked retryable.
func IsRetryable(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Retryable
}

// KindOf extracts the Kind from err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return ""
}

// CodeOf extracts the Code from err, or "" if err is not an *Error.
func CodeOf(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}
