package entity

import (
	"net/http"
	"strconv"
)

const (
	StatusEmailOK      = "email_ok"
	StatusEmailFail    = "email_fail"
	StatusEmailInvalid = "email_invalid"
	StatusOTPOK        = "otp_ok"
	StatusOTPFail      = "otp_fail"
	StatusOTPTimeout   = "otp_timeout"
)

type GenerateResult int

const (
	GenerateInvalidAddress GenerateResult = iota
	GenerateDeliveryFailed
	GenerateDelivered
)

func (r GenerateResult) Status() string {
	switch r {
	case GenerateDelivered:
		return StatusEmailOK
	case GenerateDeliveryFailed:
		return StatusEmailFail
	}
	return StatusEmailInvalid
}

func (r GenerateResult) Message() string {
	switch r {
	case GenerateDelivered:
		return "Email containing OTP has been sent successfully."
	case GenerateDeliveryFailed:
		return "Email address does not exist or sending to the email has failed."
	}
	return "Email address is invalid."
}

func (r GenerateResult) OK() bool { return r == GenerateDelivered }

func (r GenerateResult) StatusCode() int { return statusCode(r.OK()) }

type VerifyKind int

const (
	VerifyTimeout VerifyKind = iota
	VerifyVerified
	VerifyRetry
	VerifyFailed
)

// VerifyResult is the caller-facing outcome of a verification.
// Remaining is set for VerifyRetry only.
type VerifyResult struct {
	Kind      VerifyKind
	Remaining int
	// ValidMinutes feeds the timeout message.
	ValidMinutes int
}

func (r VerifyResult) Status() string {
	switch r.Kind {
	case VerifyVerified:
		return StatusOTPOK
	case VerifyRetry:
		return "Invalid OTP. Remaining attempts: " + strconv.Itoa(r.Remaining)
	case VerifyFailed:
		return StatusOTPFail
	}
	return StatusOTPTimeout
}

func (r VerifyResult) Message() string {
	switch r.Kind {
	case VerifyVerified:
		return "OTP is valid and checked."
	case VerifyRetry:
		return r.Status()
	case VerifyFailed:
		return "OTP is wrong after maximum attempts."
	}
	m := r.ValidMinutes
	if m <= 0 {
		m = 1
	}
	return "Timeout after " + strconv.Itoa(m) + " min."
}

func (r VerifyResult) OK() bool { return r.Kind == VerifyVerified }

func (r VerifyResult) StatusCode() int { return statusCode(r.OK()) }

// VerifyResultOf maps a store outcome onto the caller-facing result.
func VerifyResultOf(o CheckOutcome) VerifyResult {
	switch o.Kind {
	case CheckSuccess:
		return VerifyResult{Kind: VerifyVerified}
	case CheckMismatch:
		return VerifyResult{Kind: VerifyRetry, Remaining: o.Remaining}
	case CheckExhausted:
		return VerifyResult{Kind: VerifyFailed}
	}
	return VerifyResult{Kind: VerifyTimeout}
}

func statusCode(ok bool) int {
	if ok {
		return http.StatusOK
	}
	return http.StatusBadRequest
}
