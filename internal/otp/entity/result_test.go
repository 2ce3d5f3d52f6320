package entity

import (
	"net/http"
	"testing"
	"time"
)

func TestVerifyResultOf(t *testing.T) {
	tests := []struct {
		name   string
		in     CheckOutcome
		status string
		code   int
	}{
		{name: "not found", in: CheckOutcome{Kind: CheckNotFound}, status: StatusOTPTimeout, code: http.StatusBadRequest},
		{name: "expired", in: CheckOutcome{Kind: CheckExpired}, status: StatusOTPTimeout, code: http.StatusBadRequest},
		{name: "success", in: CheckOutcome{Kind: CheckSuccess}, status: StatusOTPOK, code: http.StatusOK},
		{name: "mismatch", in: CheckOutcome{Kind: CheckMismatch, Remaining: 9}, status: "Invalid OTP. Remaining attempts: 9", code: http.StatusBadRequest},
		{name: "exhausted", in: CheckOutcome{Kind: CheckExhausted}, status: StatusOTPFail, code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VerifyResultOf(tt.in)

			if got.Status() != tt.status {
				t.Fatalf("Status() = %q, want %q", got.Status(), tt.status)
			}
			if got.StatusCode() != tt.code {
				t.Fatalf("StatusCode() = %d, want %d", got.StatusCode(), tt.code)
			}
		})
	}
}

func TestVerifyResult_TimeoutMessage(t *testing.T) {
	if got := (VerifyResult{Kind: VerifyTimeout}).Message(); got != "Timeout after 1 min." {
		t.Fatalf("Message() = %q", got)
	}
	if got := (VerifyResult{Kind: VerifyTimeout, ValidMinutes: 5}).Message(); got != "Timeout after 5 min." {
		t.Fatalf("Message() = %q", got)
	}
}

func TestGenerateResult(t *testing.T) {
	if GenerateDelivered.Status() != StatusEmailOK || GenerateDelivered.StatusCode() != http.StatusOK {
		t.Fatalf("Delivered = %s/%d", GenerateDelivered.Status(), GenerateDelivered.StatusCode())
	}
	if GenerateDeliveryFailed.Status() != StatusEmailFail || GenerateDeliveryFailed.StatusCode() != http.StatusBadRequest {
		t.Fatalf("DeliveryFailed = %s/%d", GenerateDeliveryFailed.Status(), GenerateDeliveryFailed.StatusCode())
	}
	if GenerateInvalidAddress.Message() != "Email address is invalid." {
		t.Fatalf("InvalidAddress message = %q", GenerateInvalidAddress.Message())
	}
}

func TestRecord_Expired(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := Record{ExpiresAt: at}

	if r.Expired(at) {
		t.Fatalf("Expired() at the boundary = true, want false")
	}
	if !r.Expired(at.Add(time.Nanosecond)) {
		t.Fatalf("Expired() after boundary = false, want true")
	}
}
