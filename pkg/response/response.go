package response

import "errors"

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

//Error Codes
type ErrCode string

var (
	FAILED_REQUEST ErrCode = "REQUEST_FAILED"
	BAD_REQUEST    ErrCode = "FAILED_TO_DECODE"
	VALIDATION     ErrCode = "VALIDATION_FAILED"
	NOT_FOUND      ErrCode = "NOT_FOUND"
	CONFLICT       ErrCode = "CONFLICT"
	INCONSISTENT   ErrCode = "INCONSISTENT_STATE"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("resource not found")
	ErrConflict   = errors.New("slot already booked")

	// ErrInconsistent means a reschedule lost its booking from both the old
	// and the new key: the compensating re-insert after a conflicting insert
	// failed too. This is data loss, not a business rejection, and must never
	// be reported to callers as an ordinary conflict.
	ErrInconsistent = errors.New("booking state inconsistent")
)

func Error(code, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}
