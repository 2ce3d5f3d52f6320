// Package goerror carries the error taxonomy shared by usecases and the HTTP
// layer. Results of the OTP lifecycle are values, not errors; this package is
// only for malformed requests and infrastructure faults.
package goerror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned for unknown routes.
var ErrNotFound = errors.New("resource not found")

// Type is the broad class of an Error.
type Type int

const (
	TypeServer Type = iota
	TypeBusiness
	TypeValidation
)

func (t Type) String() string {
	switch t {
	case TypeServer:
		return "ERROR_TYPE_SERVER"
	case TypeBusiness:
		return "ERROR_TYPE_BUSINESS"
	case TypeValidation:
		return "ERROR_TYPE_VALIDATION"
	}
	return "ERROR_TYPE_UNKNOWN"
}

// Code selects the HTTP status an Error maps to.
type Code int

const (
	CodeInternal Code = iota
	CodeInvalidFormat
	CodeInvalidInput
	CodeNotFound
	CodeMethodNotAllowed
	CodeUnavailable
)

var codeStatus = map[Code]int{
	CodeInternal:         http.StatusInternalServerError,
	CodeInvalidFormat:    http.StatusBadRequest,
	CodeInvalidInput:     http.StatusUnprocessableEntity,
	CodeNotFound:         http.StatusNotFound,
	CodeMethodNotAllowed: http.StatusMethodNotAllowed,
	CodeUnavailable:      http.StatusServiceUnavailable,
}

var codeName = map[Code]string{
	CodeInternal:         "ERROR_CODE_INTERNAL",
	CodeInvalidFormat:    "ERROR_CODE_INVALID_FORMAT",
	CodeInvalidInput:     "ERROR_CODE_INVALID_INPUT",
	CodeNotFound:         "ERROR_CODE_NOT_FOUND",
	CodeMethodNotAllowed: "ERROR_CODE_METHOD_NOT_ALLOWED",
	CodeUnavailable:      "ERROR_CODE_UNAVAILABLE",
}

func (c Code) String() string {
	if s, ok := codeName[c]; ok {
		return s
	}
	return codeName[CodeInternal]
}

// Error is the structured error the router knows how to render.
type Error struct {
	cause   error
	msg     string
	errType Type
	code    Code
	fields  map[string]string
}

func (e *Error) Error() string {
	switch {
	case e.cause != nil:
		return e.cause.Error()
	case e.msg != "":
		return e.msg
	}
	return e.errType.String()
}

// String is the verbose form used in logs.
func (e *Error) String() string {
	return fmt.Sprintf("type=%s code=%s msg=%q cause=%v", e.errType, e.code, e.msg, e.cause)
}

// Msg is the message safe to show to a client.
func (e *Error) Msg() string { return e.msg }

func (e *Error) Type() Type { return e.errType }

func (e *Error) Code() Code { return e.code }

// Fields holds per-field validation messages, when any.
func (e *Error) Fields() map[string]string { return e.fields }

func (e *Error) Unwrap() error { return e.cause }

// StatusCode maps the error code to an HTTP status.
func (e *Error) StatusCode() int {
	if s, ok := codeStatus[e.code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// NewServer wraps an infrastructure fault. The cause is never shown to clients.
func NewServer(err error) error {
	return &Error{cause: err, msg: "Internal server error", errType: TypeServer, code: CodeInternal}
}

// NewUnavailable marks a dependency that is temporarily unreachable.
func NewUnavailable(err error) error {
	return &Error{cause: err, msg: "Service temporarily unavailable", errType: TypeServer, code: CodeUnavailable}
}

// NewBusiness reports a rule violation with a client-facing message.
func NewBusiness(msg string, code Code) error {
	return &Error{msg: msg, errType: TypeBusiness, code: code}
}

// NewInvalidInput reports failed field validation. Either pass the validator
// error or key/value pairs of field and message.
func NewInvalidInput(err error, kv ...string) error {
	e := &Error{cause: err, msg: "Validation error", errType: TypeValidation, code: CodeInvalidInput}
	if err != nil {
		return e
	}
	if len(kv)%2 != 0 {
		return NewInvalidFormat()
	}

	e.fields = make(map[string]string, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		e.fields[kv[i]] = kv[i+1]
	}
	return e
}

// NewInvalidFormat reports a body that could not be decoded.
func NewInvalidFormat(msgs ...string) error {
	msg := "Invalid request body"
	if len(msgs) > 0 && msgs[0] != "" {
		msg = msgs[0]
	}
	return &Error{msg: msg, errType: TypeValidation, code: CodeInvalidFormat}
}
