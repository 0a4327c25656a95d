package httpapi

import (
	"errors"
	"net/http"

	"github.com/AntonStoeckl/library-circulation-go/librarystore"
	"github.com/AntonStoeckl/library-circulation-go/reports"
)

// Error codes of the JSON error body.
const (
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeNotFound        = "NOT_FOUND"
	CodeRejected        = "REJECTED"
	CodeConflict        = "CONFLICT"
	CodeUnavailable     = "UNAVAILABLE"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternal        = "INTERNAL"
)

var errNotFound = errors.New("not found")

// notFoundError carries the user-facing reason of a failed lookup.
type notFoundError struct {
	reason string
}

func (e notFoundError) Error() string {
	return e.reason
}

func (e notFoundError) Is(target error) bool {
	return target == errNotFound
}

// classify maps an error to its HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, errNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, librarystore.ErrPolicyViolation):
		return http.StatusConflict, CodeRejected
	case errors.Is(err, librarystore.ErrConcurrencyConflict):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, librarystore.ErrConnection):
		return http.StatusServiceUnavailable, CodeUnavailable
	case errors.Is(err, reports.ErrUnknownKind), errors.Is(err, reports.ErrUnsupportedFormat):
		return http.StatusBadRequest, CodeInvalidArgument
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func errorBody(code string, message string) errorDTO {
	var body errorDTO
	body.Error.Code = code
	body.Error.Message = message

	return body
}
