package utils

import (
	"crypto/rand"
	"math/big"
)

// RandomDigits generates n cryptographically random decimal digits.
// Used for account numbers, withdrawal folios and passwords.
func RandomDigits(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + v.Int64())
	}
	return string(digits), nil
}
