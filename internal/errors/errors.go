// Package errors provides structured error types for applytrack.
// It implements error classification, machine-readable codes, HTTP status
// mapping and redaction of credentials.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Kind represents the category of an error.
type Kind uint8

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown Kind = iota
	// KindDomain indicates a business rule violation.
	KindDomain
	// KindUnauthorized indicates missing or rejected credentials.
	KindUnauthorized
	// KindForbidden indicates the caller may not access the resource.
	KindForbidden
	// KindNotFound indicates a resource was not found.
	KindNotFound
	// KindInfrastructure indicates a failure talking to a backing service.
	KindInfrastructure
	// KindConfig indicates a configuration error.
	KindConfig
	// KindValidation indicates invalid user input outside the domain model.
	KindValidation
	// KindIO indicates a file I/O error.
	KindIO
	// KindCanceled indicates the operation was canceled.
	KindCanceled
	// KindInternal indicates an internal error.
	KindInternal
)

// String returns a human-readable string for the error kind.
func (k Kind) String() string {
	switch k {
	case KindDomain:
		return "domain"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindInfrastructure:
		return "infrastructure"
	case KindConfig:
		return "configuration"
	case KindValidation:
		return "validation"
	case KindIO:
		return "io"
	case KindCanceled:
		return "canceled"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Machine-readable error codes.
const (
	CodeDomain            = "DOMAIN_ERROR"
	CodeMissingCompany    = "MISSING_COMPANY"
	CodeMissingRoleTitle  = "MISSING_ROLE_TITLE"
	CodeMissingBody       = "MISSING_COMMENT_BODY"
	CodeInvalidDate       = "INVALID_DATE"
	CodeInvalidURL        = "INVALID_URL"
	CodeInvalidStatus     = "INVALID_STATUS"
	CodeInvalidTransition = "INVALID_STATUS_TRANSITION"
	CodePositionLocked    = "POSITION_LOCKED"

	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeNotFound       = "NOT_FOUND"
	CodeInfrastructure = "INFRASTRUCTURE_ERROR"
	CodeFetch          = "FETCH_ERROR"
	CodeCreate         = "CREATE_ERROR"
	CodeUpdate         = "UPDATE_ERROR"
	CodeDelete         = "DELETE_ERROR"
)

// Sentinels for errors.Is matching by kind.
var (
	ErrUnauthorized   = &Error{Kind: KindUnauthorized}
	ErrForbidden      = &Error{Kind: KindForbidden}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrInfrastructure = &Error{Kind: KindInfrastructure}
)

// Error is the standard error type for applytrack.
type Error struct {
	// Kind is the category of the error.
	Kind Kind
	// Code is the machine-readable error code.
	Code string
	// Op is the operation being performed when the error occurred.
	Op string
	// Message is a human-readable error message.
	Message string
	// Status is the HTTP status associated with the error, if any.
	Status int
	// Err is the underlying error.
	Err error
	// Details contains additional context about the error.
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches this error.
// A target carrying a Code matches on Kind and Code. A target without Op
// matches on Kind only (sentinel pattern). Otherwise Kind and Op must match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" {
		return e.Kind == t.Kind && e.Code == t.Code
	}
	if t.Op == "" {
		return e.Kind == t.Kind
	}
	return e.Kind == t.Kind && e.Op == t.Op
}

// WithDetail adds a single detail to the error and returns the modified error.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithOp sets the operation and returns the modified error.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// New creates a new Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

// Newf creates a new Error with the given kind and formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, kind Kind, op string, message string) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, kind Kind, op string, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// GetKind returns the Kind of an error.
// If the error is not an *Error, it returns KindUnknown.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// GetCode returns the code of the outermost *Error in the chain.
func GetCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsKind checks if an error is of a specific kind.
func IsKind(err error, kind Kind) bool {
	return GetKind(err) == kind
}

// IsDomain reports whether err is a business rule violation.
func IsDomain(err error) bool {
	return IsKind(err, KindDomain)
}

// IsInfrastructure reports whether err came from a backing service,
// including the authorization and not-found refinements.
func IsInfrastructure(err error) bool {
	switch GetKind(err) {
	case KindInfrastructure, KindUnauthorized, KindForbidden, KindNotFound:
		return true
	default:
		return false
	}
}

// HTTPStatus returns the HTTP status carried by err, or 0.
func HTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// Domain creates a business rule violation. Domain errors carry no Op so
// their message is exactly what the user sees.
func Domain(code, message string) *Error {
	if code == "" {
		code = CodeDomain
	}
	return &Error{
		Kind:    KindDomain,
		Code:    code,
		Message: message,
	}
}

// Infrastructure creates a backing service failure.
func Infrastructure(op, code, message string, status int) *Error {
	if code == "" {
		code = CodeInfrastructure
	}
	return &Error{
		Kind:    KindInfrastructure,
		Code:    code,
		Op:      op,
		Message: message,
		Status:  status,
	}
}

// InfrastructureWrap wraps a transport failure as an infrastructure error.
// The underlying error is redacted.
func InfrastructureWrap(err error, op, code, message string) *Error {
	e := WrapSafe(err, KindInfrastructure, op, message)
	if code == "" {
		code = CodeInfrastructure
	}
	e.Code = code
	return e
}

// Unauthorized creates an authorization failure with status 401.
func Unauthorized(op, message string) *Error {
	if message == "" {
		message = "Unauthorized access"
	}
	return &Error{
		Kind:    KindUnauthorized,
		Code:    CodeUnauthorized,
		Op:      op,
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

// Forbidden creates an access failure with status 403.
func Forbidden(op, message string) *Error {
	if message == "" {
		message = "Access forbidden"
	}
	return &Error{
		Kind:    KindForbidden,
		Code:    CodeForbidden,
		Op:      op,
		Message: message,
		Status:  http.StatusForbidden,
	}
}

// NotFound creates a not found error with status 404.
func NotFound(op, message string) *Error {
	if message == "" {
		message = "Resource not found"
	}
	return &Error{
		Kind:    KindNotFound,
		Code:    CodeNotFound,
		Op:      op,
		Message: message,
		Status:  http.StatusNotFound,
	}
}

// Config creates a configuration error.
func Config(op, message string) *Error {
	return &Error{
		Kind:    KindConfig,
		Op:      op,
		Message: message,
	}
}

// ConfigWrap wraps an error as a configuration error.
func ConfigWrap(err error, op, message string) *Error {
	return Wrap(err, KindConfig, op, message)
}

// Validation creates a validation error.
func Validation(op, message string) *Error {
	return &Error{
		Kind:    KindValidation,
		Op:      op,
		Message: message,
	}
}

// IO creates an I/O error.
func IO(op, message string) *Error {
	return &Error{
		Kind:    KindIO,
		Op:      op,
		Message: message,
	}
}

// IOWrap wraps an error as an I/O error.
func IOWrap(err error, op, message string) *Error {
	return Wrap(err, KindIO, op, message)
}

// CanceledWrap wraps a context error.
func CanceledWrap(err error, op string) *Error {
	return Wrap(err, KindCanceled, op, "operation canceled")
}

// Internal creates an internal error.
func Internal(op, message string) *Error {
	return &Error{
		Kind:    KindInternal,
		Op:      op,
		Message: message,
	}
}

// InternalWrap wraps an error as an internal error.
func InternalWrap(err error, op, message string) *Error {
	return Wrap(err, KindInternal, op, message)
}

// Sensitive data redaction patterns.
// Word boundaries are used where applicable so that only complete tokens match.
var sensitivePatterns = []*regexp.Regexp{
	// Bearer tokens, including JWTs with dots
	regexp.MustCompile(`\bBearer\s+[a-zA-Z0-9_.-]{20,}`),
	// Bare JWTs: header.payload.signature
	regexp.MustCompile(`\beyJ[a-zA-Z0-9_-]{10,}\.[a-zA-Z0-9_-]{10,}\.[a-zA-Z0-9_-]*`),
	// Basic auth with password in URL
	regexp.MustCompile(`://[^:/]+:[^@/]+@`),
	// access_token JSON fields
	regexp.MustCompile(`"access_token"\s*:\s*"[^"]*"`),
}

// RedactSensitive removes credentials from a message.
func RedactSensitive(s string) string {
	result := s
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, "[REDACTED]")
	}
	return result
}

// RedactError creates a new error with credentials redacted from its message.
// If the error is nil, returns nil.
func RedactError(err error) error {
	if err == nil {
		return nil
	}
	redacted := RedactSensitive(err.Error())
	if redacted == err.Error() {
		return err
	}
	return fmt.Errorf("%s", redacted)
}

// WrapSafe wraps an error with credentials redacted.
func WrapSafe(err error, kind Kind, op, message string) *Error {
	if err == nil {
		return &Error{
			Kind:    kind,
			Op:      op,
			Message: message,
		}
	}
	return Wrap(RedactError(err), kind, op, message)
}

// IsSensitive checks if a string contains credentials.
func IsSensitive(s string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	lower := strings.ToLower(s)
	return strings.Contains(lower, "password") ||
		strings.Contains(lower, "token") ||
		strings.Contains(lower, "secret")
}
