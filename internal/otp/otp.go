// Package otp generates one-time passwords for email verification.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Length is the number of digits in a generated code.
const Length = 6

// Generate returns a random 6-digit code, zero-padded.
func Generate() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < Length; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	return fmt.Sprintf("%0*d", Length, n), nil
}
