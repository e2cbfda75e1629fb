// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import "errors"

// ErrorType represents the semantic category of an error
type ErrorType int

const (
	ErrorTypeValidation     ErrorType = iota // Malformed batch, missing fields, name limits (400 Bad Request)
	ErrorTypeNotFound                        // Org folder absent (404 Not Found)
	ErrorTypeUnauthorized                    // Caller identity or org mismatch (401 Unauthorized)
	ErrorTypeAuthentication                  // Service login rejected by Connect (401 Unauthorized)
	ErrorTypeUnavailable                     // Transport or parse failure talking to Connect (503 Service Unavailable)
	ErrorTypeRemoteAPI                       // Connect reported a non-ok status (400 Bad Request)
	ErrorTypeProvisioning                    // Room/user creation failed on Connect (400 Bad Request)
	ErrorTypeRateLimited                     // Caller exceeded the request rate (429 Too Many Requests)
	ErrorTypeInternal                        // Internal server errors (500 Internal Server Error)
)

// Common errors
var (
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrMissingSession     = errors.New("no session cookie in login response")
	ErrMalformedBatch     = errors.New("malformed data structure")
)

// DomainError represents an error with semantic type information
type DomainError struct {
	Type    ErrorType
	Message string
	// Subcode is the status subcode reported by Connect, if any.
	Subcode string
	Err     error // underlying error for wrapping
}

func (e *DomainError) Error() string {
	msg := e.Message
	if e.Subcode != "" {
		msg += ": " + e.Subcode
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// GetErrorType returns the semantic type of an error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ErrorTypeInternal // default fallback
}

// GetSubcode returns the Connect status subcode carried by err, or "".
func GetSubcode(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Subcode
	}
	return ""
}

// Error constructors for different types
func NewValidationError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeValidation, Message: message, Err: errors.Join(err...)}
}

func NewNotFoundError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeNotFound, Message: message, Err: errors.Join(err...)}
}

func NewUnauthorizedError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeUnauthorized, Message: message, Err: errors.Join(err...)}
}

func NewAuthenticationError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeAuthentication, Message: message, Err: errors.Join(err...)}
}

func NewUnavailableError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeUnavailable, Message: message, Err: errors.Join(err...)}
}

func NewRemoteAPIError(message, subcode string) *DomainError {
	return &DomainError{Type: ErrorTypeRemoteAPI, Message: message, Subcode: subcode}
}

// NewProvisioningError reports a failed create step. The subcode of a wrapped
// RemoteAPIError is carried over when subcode is empty.
func NewProvisioningError(message, subcode string, err ...error) *DomainError {
	joined := errors.Join(err...)
	if subcode == "" {
		subcode = GetSubcode(joined)
		if subcode != "" {
			// The subcode is already part of the message; drop the duplicate.
			joined = nil
		}
	}
	return &DomainError{Type: ErrorTypeProvisioning, Message: message, Subcode: subcode, Err: joined}
}

func NewRateLimitedError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeRateLimited, Message: message, Err: errors.Join(err...)}
}

func NewInternalError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeInternal, Message: message, Err: errors.Join(err...)}
}
