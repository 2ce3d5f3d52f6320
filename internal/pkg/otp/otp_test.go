package otp

import (
	"bytes"
	"errors"
	"testing"
	"unicode"
)

func TestNewGenerator_RejectsBadLength(t *testing.T) {
	for _, n := range []int{0, -1, MaxLength + 1} {
		if _, err := NewGenerator(n); !errors.Is(err, ErrInvalidLength) {
			t.Fatalf("NewGenerator(%d) error = %v, want ErrInvalidLength", n, err)
		}
	}
}

func TestGenerator_FixedWidthNumeric(t *testing.T) {
	for _, n := range []int{1, 4, 6, 9} {
		// Arrange
		g, err := NewGenerator(n)
		if err != nil {
			t.Fatalf("NewGenerator(%d) error = %v", n, err)
		}

		for range 200 {
			// Act
			code, err := g.Generate()

			// Assert
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if len(code) != n {
				t.Fatalf("len(%q) = %d, want %d", code, len(code), n)
			}
			for _, r := range code {
				if !unicode.IsDigit(r) {
					t.Fatalf("code %q has non-digit %q", code, r)
				}
			}
		}
		if g.Length() != n {
			t.Fatalf("Length() = %d, want %d", g.Length(), n)
		}
	}
}

func TestGenerator_ZeroPads(t *testing.T) {
	// An all-zero random source draws 0.
	g, err := newGenerator(6, bytes.NewReader(make([]byte, 64)))
	if err != nil {
		t.Fatalf("newGenerator() error = %v", err)
	}

	code, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if code != "000000" {
		t.Fatalf("Generate() = %q, want 000000", code)
	}
}

func TestGenerator_ReaderFailure(t *testing.T) {
	g, _ := newGenerator(6, bytes.NewReader(nil))

	if _, err := g.Generate(); err == nil {
		t.Fatalf("Generate() expected error on empty entropy source")
	}
}
