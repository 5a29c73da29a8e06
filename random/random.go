package random

import (
	crand "crypto/rand"
	"math/big"
)

const charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// String returns a random alphanumeric string read from crypto/rand.
// It panics if the system source of randomness fails.
func String(length int) string {
	s, err := StringSecure(length)
	if err != nil {
		panic(err)
	}
	return s
}

func StringSecure(length int) (string, error) {
	b := make([]byte, length)
	l := big.NewInt(int64(len(charset)))
	for i := range b {
		num, err := crand.Int(crand.Reader, l)
		if err != nil {
			return "", err
		}
		b[i] = charset[num.Int64()]
	}
	return string(b), nil
}
