// Package ferr provides the structured error taxonomy used throughout blz.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: validation errors
//   - 2XX: network/fetch errors
//   - 3XX: parse errors
//   - 4XX: index/storage errors
//   - 5XX: internal/operational errors
package ferr

// Category classifies an error for reporting and retry policy.
type Category string

const (
	CategoryValidation Category = "VALIDATION"
	CategoryNetwork    Category = "NETWORK"
	CategoryParse      Category = "PARSE"
	CategoryStorage    Category = "STORAGE"
	CategoryInternal   Category = "INTERNAL"
)

// Kind is the error taxonomy named in the specification: validation,
// network, http_status, not_modified, too_large, timeout, parse,
// index_error, storage_error, conflict, cancelled, not_found.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindNetwork     Kind = "network"
	KindHTTPStatus  Kind = "http_status"
	KindNotModified Kind = "not_modified"
	KindTooLarge    Kind = "too_large"
	KindTimeout     Kind = "timeout"
	KindParse       Kind = "parse"
	KindIndexError  Kind = "index_error"
	KindStorageErr  Kind = "storage_error"
	KindConflict    Kind = "conflict"
	KindCancelled   Kind = "cancelled"
	KindNotFound    Kind = "not_found"
	KindInternal    Kind = "internal"
)

// Error codes, grouped by Kind, following the ERR_<NNN>_<NAME> shape.
const (
	ErrCodeInvalidAlias = "ERR_101_INVALID_ALIAS"
	ErrCodeInvalidURL   = "ERR_102_INVALID_URL"
	ErrCodeInvalidRange = "ERR_103_INVALID_RANGE"
	ErrCodeInvalidQuery = "ERR_104_INVALID_QUERY"
	ErrCodeSchemeDenied = "ERR_105_SCHEME_DENIED"

	ErrCodeNetwork     = "ERR_201_NETWORK"
	ErrCodeHTTPStatus  = "ERR_202_HTTP_STATUS"
	ErrCodeNotModified = "ERR_203_NOT_MODIFIED"
	ErrCodeTooLarge    = "ERR_204_TOO_LARGE"
	ErrCodeTimeout     = "ERR_205_TIMEOUT"

	ErrCodeParseFailed = "ERR_301_PARSE_FAILED"

	ErrCodeIndexError   = "ERR_401_INDEX_ERROR"
	ErrCodeStorageError = "ERR_402_STORAGE_ERROR"
	ErrCodeConflict     = "ERR_403_CONFLICT"
	ErrCodeNotFound     = "ERR_404_NOT_FOUND"

	ErrCodeCancelled = "ERR_501_CANCELLED"
	ErrCodeInternal  = "ERR_502_INTERNAL"
)

// categoryForKind maps each Kind to its reporting category.
var categoryForKind = map[Kind]Category{
	KindValidation:  CategoryValidation,
	KindNetwork:     CategoryNetwork,
	KindHTTPStatus:  CategoryNetwork,
	KindNotModified: CategoryNetwork,
	KindTooLarge:    CategoryNetwork,
	KindTimeout:     CategoryNetwork,
	KindParse:       CategoryParse,
	KindIndexError:  CategoryStorage,
	KindStorageErr:  CategoryStorage,
	KindConflict:    CategoryStorage,
	KindNotFound:    CategoryStorage,
	KindCancelled:   CategoryInternal,
	KindInternal:    CategoryInternal,
}

// retryableKinds are the Kinds the Fetcher retries with backoff (spec §7):
// network errors and HTTP 429/5xx responses.
var retryableKinds = map[Kind]bool{
	KindNetwork:    true,
	KindHTTPStatus: true,
}
