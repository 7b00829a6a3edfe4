// Package apperrors defines the failure taxonomy of the webhook pipeline and
// how each failure maps onto an HTTP status.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of pipeline failure.
type Code string

const (
	CodeSignatureInvalid    Code = "SIGNATURE_INVALID"
	CodePayloadMalformed    Code = "PAYLOAD_MALFORMED"
	CodeSummarizationFailed Code = "SUMMARIZATION_FAILED"
	CodeDeliveryFailed      Code = "DELIVERY_FAILED"
)

// Error is a classified pipeline failure. None of them are retried.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// SignatureInvalid is returned when the webhook signature does not match.
func SignatureInvalid() *Error {
	return &Error{Code: CodeSignatureInvalid, Message: "invalid webhook signature"}
}

// PayloadMalformed wraps a body that could not be read or decoded.
func PayloadMalformed(err error) *Error {
	return &Error{Code: CodePayloadMalformed, Message: "malformed payload", Err: err}
}

// Summarization wraps a failed model call or an unparseable model response.
func Summarization(err error) *Error {
	return &Error{Code: CodeSummarizationFailed, Message: "summarization failed", Err: err}
}

// Delivery wraps a failure to render or send the notification email.
func Delivery(err error) *Error {
	return &Error{Code: CodeDeliveryFailed, Message: "notification delivery failed", Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HTTPStatus maps err onto the status the webhook endpoint responds with.
func HTTPStatus(err error) int {
	if CodeOf(err) == CodeSignatureInvalid {
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
