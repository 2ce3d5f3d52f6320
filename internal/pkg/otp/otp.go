// Package otp generates the numeric one-time codes mailed to users.
//
// Codes are drawn uniformly from [0, 10^n) with crypto/rand and rendered with
// pquerna/otp's Digits formatter, so every code is exactly n characters wide
// and leading zeros are preserved.
package otp

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"

	"github.com/pquerna/otp"
)

// MaxLength keeps the code inside the int32 range Digits.Format accepts.
const MaxLength = 9

// ErrInvalidLength is returned for a code length outside 1..MaxLength.
var ErrInvalidLength = errors.New("otp: length must be between 1 and 9")

// Generator produces fixed-width numeric codes.
type Generator struct {
	digits otp.Digits
	limit  *big.Int
	rand   io.Reader
}

// NewGenerator returns a Generator for codes of the given width.
func NewGenerator(length int) (*Generator, error) {
	return newGenerator(length, rand.Reader)
}

func newGenerator(length int, src io.Reader) (*Generator, error) {
	if length < 1 || length > MaxLength {
		return nil, ErrInvalidLength
	}

	limit := big.NewInt(1)
	for range length {
		limit.Mul(limit, big.NewInt(10))
	}

	return &Generator{digits: otp.Digits(length), limit: limit, rand: src}, nil
}

// Length is the width of every generated code.
func (g *Generator) Length() int {
	return g.digits.Length()
}

// Generate returns a new zero-padded code.
func (g *Generator) Generate() (string, error) {
	n, err := rand.Int(g.rand, g.limit)
	if err != nil {
		return "", err
	}
	return g.digits.Format(int32(n.Int64())), nil
}
