package contract

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrorCodeInternal                ErrorCode = "INTERNAL_ERROR"
	ErrorCodeBadRequest              ErrorCode = "BAD_REQUEST"
	ErrorCodeInvalidParameterValue   ErrorCode = "INVALID_PARAMETER_VALUE"
	ErrorCodeResourceDoesNotExist    ErrorCode = "RESOURCE_DOES_NOT_EXIST"
	ErrorCodeEndpointNotFound        ErrorCode = "ENDPOINT_NOT_FOUND"
	ErrorCodeServiceUnderMaintenance ErrorCode = "SERVICE_UNDER_MAINTENANCE"
)

type Error struct {
	Code    ErrorCode `json:"error_code"`
	Message string    `json:"message"`
	Inner   error     `json:"-"`
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

func NewErrorWith(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Inner:   err,
	}
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Inner != nil {
		return fmt.Sprintf("%s: %s", msg, e.Inner)
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Inner
}

func (e *Error) MarshalJSON() ([]byte, error) {
	message := e.Message
	if e.Inner != nil {
		message = fmt.Sprintf("%s: %s", e.Message, e.Inner)
	}

	return json.Marshal(struct {
		Code    ErrorCode `json:"error_code"`
		Message string    `json:"message"`
	}{e.Code, message})
}

//nolint:cyclop
func (e *Error) StatusCode() int {
	switch e.Code {
	case ErrorCodeBadRequest, ErrorCodeInvalidParameterValue:
		return http.StatusBadRequest
	case ErrorCodeResourceDoesNotExist, ErrorCodeEndpointNotFound:
		return http.StatusNotFound
	case ErrorCodeServiceUnderMaintenance:
		return http.StatusServiceUnavailable
	case ErrorCodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
