package validator

import (
	"errors"
	"testing"
)

type generateRequest struct {
	Email string `validate:"required,email"`
	OTP   string `validate:"required,numeric"`
}

func newV10(t *testing.T) *V10 {
	t.Helper()

	v, err := NewV10()
	if err != nil {
		t.Fatalf("NewV10() error = %v", err)
	}
	return v
}

func TestV10_Validate(t *testing.T) {
	// Arrange
	v := newV10(t)

	// Act
	err := v.Validate(generateRequest{Email: "nope", OTP: ""})

	// Assert
	var ve V10ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Validate() error = %v, want V10ValidationError", err)
	}
	if _, ok := ve.Values()["email"]; !ok {
		t.Fatalf("missing email field error: %v", ve)
	}
	if _, ok := ve.Values()["otp"]; !ok {
		t.Fatalf("missing otp field error: %v", ve)
	}
}

func TestV10_ValidateOK(t *testing.T) {
	v := newV10(t)

	if err := v.Validate(generateRequest{Email: "a@example.com", OTP: "012345"}); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestV10_IsSyntacticallyValid(t *testing.T) {
	v := newV10(t)

	tests := []struct {
		address string
		want    bool
	}{
		{address: "user@example.com", want: true},
		{address: "first.last+tag@sub.example.org", want: true},
		{address: "", want: false},
		{address: "user@", want: false},
		{address: "example.com", want: false},
		{address: "Jane <jane@example.com>", want: false},
		{address: " user@example.com", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			if got := v.IsSyntacticallyValid(tt.address); got != tt.want {
				t.Fatalf("IsSyntacticallyValid(%q) = %v, want %v", tt.address, got, tt.want)
			}
		})
	}
}

func TestV10_MatchesAllowedDomain(t *testing.T) {
	v := newV10(t)

	tests := []struct {
		address string
		suffix  string
		want    bool
	}{
		{address: "user@Example.COM", suffix: "example.com", want: true},
		{address: "user@example.com", suffix: "@EXAMPLE.com", want: true},
		{address: "user@example.org", suffix: "example.com", want: false},
		{address: "user@anything.io", suffix: "", want: true},
	}

	for _, tt := range tests {
		if got := v.MatchesAllowedDomain(tt.address, tt.suffix); got != tt.want {
			t.Fatalf("MatchesAllowedDomain(%q, %q) = %v, want %v", tt.address, tt.suffix, got, tt.want)
		}
	}
}
