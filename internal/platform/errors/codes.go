// Package errors provides structured domain errors mapped onto HTTP statuses.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Input errors
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeInvalidORCID       Code = "INVALID_ORCID_ID"
	CodeInvalidEnum        Code = "INVALID_ENUM"
	CodeNameRequired       Code = "NAME_REQUIRED"
	CodeInvalidURL         Code = "INVALID_URL"
	CodeUploadMissing      Code = "UPLOAD_MISSING"
	CodeUploadTooLarge     Code = "UPLOAD_TOO_LARGE"
	CodeUploadType         Code = "UPLOAD_UNSUPPORTED_TYPE"
	CodeUsernameExhausted  Code = "USERNAME_EXHAUSTED"
	CodeProfileExists      Code = "PROFILE_ALREADY_EXISTS"
	CodeUsernameInvalid    Code = "USERNAME_INVALID"
	CodeTemplateIDInvalid  Code = "TEMPLATE_ID_INVALID"
	CodeTemplateIDConflict Code = "TEMPLATE_ID_CONFLICT"

	// Access errors
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeForbidden       Code = "FORBIDDEN"

	// Lookup errors
	CodeNotFound        Code = "NOT_FOUND"
	CodeUserNotFound    Code = "USER_NOT_FOUND"
	CodeProfileNotFound Code = "PROFILE_NOT_FOUND"

	// Upstream errors
	CodeORCIDUnavailable Code = "ORCID_UNAVAILABLE"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input, duplicates
	case CodeInvalidInput,
		CodeInvalidORCID,
		CodeInvalidEnum,
		CodeNameRequired,
		CodeInvalidURL,
		CodeUploadMissing,
		CodeUploadTooLarge,
		CodeUploadType,
		CodeProfileExists,
		CodeUsernameInvalid,
		CodeTemplateIDInvalid,
		CodeTemplateIDConflict:
		return http.StatusBadRequest

	case CodeUnauthenticated:
		return http.StatusUnauthorized

	case CodeForbidden:
		return http.StatusForbidden

	case CodeNotFound,
		CodeUserNotFound,
		CodeProfileNotFound:
		return http.StatusNotFound

	case CodeORCIDUnavailable:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}
