package bcontent

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Code is an error code that mirrors the http status codes. Errors that carry one tell the host
// which status to render for the aborted request.
type Code int

const (
	CodeUnknown               Code = 0
	CodeBadRequest            Code = http.StatusBadRequest            // RFC 9110, 15.5.1
	CodeForbidden             Code = http.StatusForbidden             // RFC 9110, 15.5.4
	CodeNotFound              Code = http.StatusNotFound              // RFC 9110, 15.5.5
	CodeMethodNotAllowed      Code = http.StatusMethodNotAllowed      // RFC 9110, 15.5.6
	CodeRequestTimeout        Code = http.StatusRequestTimeout        // RFC 9110, 15.5.9
	CodeRequestEntityTooLarge Code = http.StatusRequestEntityTooLarge // RFC 9110, 15.5.14

	CodeInternalServerError Code = http.StatusInternalServerError // RFC 9110, 15.6.1
	CodeServiceUnavailable  Code = http.StatusServiceUnavailable  // RFC 9110, 15.6.4
)

// Error kinds. Errors produced by this package are marked with one of them so callers can
// classify failures with errors.Is regardless of wrapping.
var (
	ErrMethodNotAllowed    = errors.New("method not allowed")
	ErrBodyDiscard         = errors.New("discard request body")
	ErrNotFound            = errors.New("resource not found")
	ErrResourceUnavailable = errors.New("resource unavailable")
	ErrTransmission        = errors.New("transmission failed")

	ErrUnknownDirective   = errors.New("unknown directive")
	ErrMissingArgument    = errors.New("missing required directive argument")
	ErrTooManyArguments   = errors.New("too many directive arguments")
	ErrInvalidDirective   = errors.New("invalid directive")
	ErrDuplicateDirective = errors.New("directive already installed")
)

// Error describes an http error.
type Error struct {
	code Code
	err  error
}

// NewError inits a new error given the error code.
func NewError(c Code, underlying error) *Error {
	return &Error{c, underlying}
}

func (e *Error) Code() Code { return e.code }
func (e *Error) Error() string {
	status := http.StatusText(int(e.Code()))
	if status == "" {
		status = "Unknown"
	}

	return fmt.Sprintf("%s: %s", status, e.err.Error())
}

// Unwrap allows errors.Is and errors.As to inspect the underlying error.
func (e *Error) Unwrap() error { return e.err }

// CodeOf returns the error's status code if it is or wraps an [*Error] and
// [CodeUnknown] otherwise.
func CodeOf(err error) Code {
	if herr, ok := asError(err); ok {
		return herr.Code()
	}
	return CodeUnknown
}

// StatusOf returns the http status a host should render for err. Errors without a code
// become internal server errors.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}

	if c := CodeOf(err); c != CodeUnknown {
		return int(c)
	}

	return http.StatusInternalServerError
}

// asError uses errors.As to unwrap any error and look for a *Error.
func asError(err error) (*Error, bool) {
	var herr *Error
	ok := errors.As(err, &herr)
	return herr, ok
}
