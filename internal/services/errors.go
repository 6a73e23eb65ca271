package services

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors shared by the resolvers, stores and handlers.
var (
	ErrNoCandidateFound           = errors.New("no place candidates found")
	ErrFeatureIDExtraction        = errors.New("could not extract feature ID from Google Maps URL")
	ErrInvalidSharedLink          = errors.New("invalid Google Maps URL format")
	ErrLinkResolutionFailed       = errors.New("failed to resolve Google Maps URL")
	ErrLookupUnavailable          = errors.New("place lookup unavailable")
	ErrIdentifierNotFound         = errors.New("place identifier not found at provider")
	ErrDuplicateProviderReference = errors.New("a cafe already references this provider place")
	ErrCafeNotFound               = errors.New("cafe not found")
	ErrUserNotFound               = errors.New("user not found")
	ErrEmailAlreadyUsed           = errors.New("email already in use")
	ErrInvalidInput               = errors.New("invalid input")
	ErrUploadTokensDisabled       = errors.New("upload tokens are not configured")
)

// Kind separates failures the caller caused from failures on our side
type Kind int

const (
	KindClient Kind = iota
	KindServer
)

// AppError carries the HTTP status and a client-safe message for an error.
// Err keeps the original cause for logs and errors.Is.
type AppError struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ClientError wraps cause as a 4xx failure
func ClientError(status int, message string, cause error) *AppError {
	return &AppError{Kind: KindClient, Status: status, Message: message, Err: cause}
}

// ServerError wraps cause as a 5xx failure
func ServerError(status int, message string, cause error) *AppError {
	return &AppError{Kind: KindServer, Status: status, Message: message, Err: cause}
}

// Classify maps any error returned by a service to an AppError.
// Unknown errors become a generic 500 with no detail for the client.
func Classify(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrNoCandidateFound):
		return ClientError(http.StatusNotFound, err.Error(), err)
	case errors.Is(err, ErrFeatureIDExtraction), errors.Is(err, ErrInvalidSharedLink), errors.Is(err, ErrInvalidInput):
		return ClientError(http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, ErrCafeNotFound), errors.Is(err, ErrUserNotFound):
		return ClientError(http.StatusNotFound, err.Error(), err)
	case errors.Is(err, ErrDuplicateProviderReference), errors.Is(err, ErrEmailAlreadyUsed):
		return ClientError(http.StatusConflict, err.Error(), err)
	case errors.Is(err, ErrLookupUnavailable), errors.Is(err, ErrIdentifierNotFound):
		return ServerError(http.StatusBadGateway, "place provider unavailable", err)
	case errors.Is(err, ErrLinkResolutionFailed):
		return ServerError(http.StatusBadGateway, ErrLinkResolutionFailed.Error(), err)
	case errors.Is(err, ErrUploadTokensDisabled):
		return ServerError(http.StatusServiceUnavailable, err.Error(), err)
	}
	return ServerError(http.StatusInternalServerError, "Internal Server Error", err)
}

// invalidInput builds a 400 that still matches ErrInvalidInput
func invalidInput(format string, args ...any) error {
	return ClientError(http.StatusBadRequest, fmt.Sprintf(format, args...), ErrInvalidInput)
}
