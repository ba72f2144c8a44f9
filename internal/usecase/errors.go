package usecase

import (
	"errors"
	"fmt"
)

const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeDatabase        = "DATABASE_ERROR"
	CodeExternalService = "EXTERNAL_SERVICE_ERROR"
)

// DomainError is a business-rule rejection: the request was understood and
// refused. Safe to show to the caller.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// TechnicalError is an infrastructure failure: database or an upstream
// service. The caller retries or escalates; the message is still safe.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func IsValidationError(err error) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == CodeValidation
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsExternalServiceError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te) && te.Code == CodeExternalService
}
