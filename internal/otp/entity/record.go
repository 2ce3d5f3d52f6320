package entity

import "time"

// Record is the pending OTP for one email address.
type Record struct {
	Code              string
	RemainingAttempts int
	ExpiresAt         time.Time
}

// Expired reports whether now is past the record's expiry.
func (r Record) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

type CheckKind int

const (
	CheckNotFound CheckKind = iota
	CheckExpired
	CheckSuccess
	CheckMismatch
	CheckExhausted
)

func (k CheckKind) String() string {
	switch k {
	case CheckNotFound:
		return "not_found"
	case CheckExpired:
		return "expired"
	case CheckSuccess:
		return "success"
	case CheckMismatch:
		return "mismatch"
	case CheckExhausted:
		return "exhausted"
	}
	return "unknown"
}

// CheckOutcome is what a store reports for one verification attempt.
// Remaining is only meaningful for CheckMismatch.
type CheckOutcome struct {
	Kind      CheckKind
	Remaining int
}
