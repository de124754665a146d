package models

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrorTypeIngestion         ErrorType = "ingestion"
	ErrorTypeTransport         ErrorType = "transport"
	ErrorTypeMalformedPayload  ErrorType = "malformed_payload"
	ErrorTypeDuplicateEmail    ErrorType = "duplicate_email"
	ErrorTypeInvalidCredential ErrorType = "invalid_credential"
	ErrorTypeConfiguration     ErrorType = "configuration"
)

// DomainError carries one of the pipeline's error types. Excerpt is only set
// for malformed payloads.
type DomainError struct {
	Type    ErrorType
	Message string
	Excerpt string
	Err     error
}

func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Excerpt != "" {
		msg = fmt.Sprintf("%s. Raw response: %s", msg, e.Excerpt)
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

func NewIngestionError(message string, err error) *DomainError {
	return NewError(ErrorTypeIngestion, message, err)
}

func NewTransportError(message string, err error) *DomainError {
	return NewError(ErrorTypeTransport, message, err)
}

func NewMalformedPayloadError(message, excerpt string, err error) *DomainError {
	e := NewError(ErrorTypeMalformedPayload, message, err)
	e.Excerpt = excerpt
	return e
}

func NewDuplicateEmailError(email string) *DomainError {
	return NewError(ErrorTypeDuplicateEmail, fmt.Sprintf("email already exists: %s", email), nil)
}

func NewInvalidCredentialError(message string) *DomainError {
	return NewError(ErrorTypeInvalidCredential, message, nil)
}

func NewConfigurationError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfiguration, message, err)
}

// IsType reports whether any error in err's chain is a DomainError of type t.
func IsType(err error, t ErrorType) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type == t
	}
	return false
}
