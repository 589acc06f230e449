package service

import "errors"

var (
	// ErrBadRequest matches every *BadRequestError.
	ErrBadRequest = errors.New("bad request")
	ErrConflict   = errors.New("conflict")
)

// BadRequestError carries a message that is safe to show to the client.
type BadRequestError struct {
	Message string
}

func NewBadRequest(message string) *BadRequestError {
	return &BadRequestError{Message: message}
}

func (e *BadRequestError) Error() string { return e.Message }

func (e *BadRequestError) Is(target error) bool { return target == ErrBadRequest }
